package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/member"
)

type memberRow struct {
	ID              string       `db:"id"`
	ChapterID       string       `db:"chapter_id"`
	FirstName       string       `db:"first_name"`
	LastName        string       `db:"last_name"`
	Email           string       `db:"email"`
	Phone           string       `db:"phone"`
	AddressLine1    string       `db:"address_line1"`
	AddressLine2    string       `db:"address_line2"`
	City            string       `db:"city"`
	State           string       `db:"state"`
	ZipCode         string       `db:"zip_code"`
	Country         string       `db:"country"`
	Status          string       `db:"status"`
	EngagementScore int          `db:"engagement_score"`
	CECredits       float64      `db:"ce_credits"`
	MemberSince     sql.NullTime `db:"member_since"`
	RenewalDate     sql.NullTime `db:"renewal_date"`
	Company         string       `db:"company"`
	JobTitle        string       `db:"job_title"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func (r memberRow) toMember() member.Member {
	return member.Member{
		ID:              r.ID,
		ChapterID:       r.ChapterID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		AddressLine1:    r.AddressLine1,
		AddressLine2:    r.AddressLine2,
		City:            r.City,
		State:           r.State,
		ZipCode:         r.ZipCode,
		Country:         r.Country,
		Status:          r.Status,
		EngagementScore: r.EngagementScore,
		CECredits:       r.CECredits,
		MemberSince:     r.MemberSince.Time,
		RenewalDate:     r.RenewalDate.Time,
		Company:         r.Company,
		JobTitle:        r.JobTitle,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func newMemberRow(mbr member.Member) memberRow {
	return memberRow{
		ID:              mbr.ID,
		ChapterID:       mbr.ChapterID,
		FirstName:       mbr.FirstName,
		LastName:        mbr.LastName,
		Email:           mbr.Email,
		Phone:           mbr.Phone,
		AddressLine1:    mbr.AddressLine1,
		AddressLine2:    mbr.AddressLine2,
		City:            mbr.City,
		State:           mbr.State,
		ZipCode:         mbr.ZipCode,
		Country:         mbr.Country,
		Status:          mbr.Status,
		EngagementScore: mbr.EngagementScore,
		CECredits:       mbr.CECredits,
		MemberSince:     sql.NullTime{Time: mbr.MemberSince, Valid: !mbr.MemberSince.IsZero()},
		RenewalDate:     sql.NullTime{Time: mbr.RenewalDate, Valid: !mbr.RenewalDate.IsZero()},
		Company:         mbr.Company,
		JobTitle:        mbr.JobTitle,
		CreatedAt:       mbr.CreatedAt,
		UpdatedAt:       mbr.UpdatedAt,
	}
}

func toMembers(rows []memberRow) []member.Member {
	members := make([]member.Member, len(rows))
	for i, r := range rows {
		members[i] = r.toMember()
	}
	return members
}

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) member.Repository {
	return &memberRepository{db: db}
}

func (repo *memberRepository) CheckMemberEmailUniqueness(email string, excludedMembers ...member.Member) error {
	q := `SELECT COUNT(*) FROM members WHERE email = ?`
	args := []interface{}{email}

	if len(excludedMembers) > 0 {
		ids := make([]string, len(excludedMembers))
		for i, m := range excludedMembers {
			ids[i] = m.ID
		}
		inQ, inArgs, err := sqlx.In(`id NOT IN (?)`, ids)
		if err != nil {
			return errors.Wrap(err, "building exclusion filter")
		}
		q += ` AND ` + inQ
		args = append(args, inArgs...)
	}

	var count int
	if err := repo.db.Get(&count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking member email uniqueness")
	}
	if count > 0 {
		return member.ErrEmailExists
	}
	return nil
}

func (repo *memberRepository) CreateMember(mbr member.Member) (member.Member, error) {
	const q = `
	INSERT INTO members (
		id, chapter_id, first_name, last_name, email, phone, address_line1,
		address_line2, city, state, zip_code, country, status, engagement_score,
		ce_credits, member_since, renewal_date, company, job_title, created_at, updated_at
	) VALUES (
		:id, :chapter_id, :first_name, :last_name, :email, :phone, :address_line1,
		:address_line2, :city, :state, :zip_code, :country, :status, :engagement_score,
		:ce_credits, :member_since, :renewal_date, :company, :job_title, :created_at, :updated_at
	)`
	if _, err := repo.db.NamedExec(q, newMemberRow(mbr)); err != nil {
		return member.Member{}, errors.Wrap(err, "inserting member")
	}
	return mbr, nil
}

func (repo *memberRepository) QueryAllMembers() ([]member.Member, error) {
	var rows []memberRow
	if err := repo.db.Select(&rows, `SELECT * FROM members`); err != nil {
		return nil, errors.Wrap(err, "selecting members")
	}
	return toMembers(rows), nil
}

func (repo *memberRepository) GetMemberByID(id string) (member.Member, error) {
	var row memberRow
	if err := repo.db.Get(&row, `SELECT * FROM members WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "selecting member")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) GetMemberByEmail(email string) (member.Member, error) {
	var row memberRow
	if err := repo.db.Get(&row, `SELECT * FROM members WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "selecting member")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) FilterMembers(filter member.QueryFilter) ([]member.Member, error) {
	q := `SELECT * FROM members WHERE true`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		q += ` AND (first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR company ILIKE ?)`
		args = append(args, val, val, val, val)
	}
	if len(filter.Statuses) > 0 {
		inQ, inArgs, err := sqlx.In(`status IN (?)`, filter.Statuses)
		if err != nil {
			return nil, errors.Wrap(err, "building status filter")
		}
		q += ` AND ` + inQ
		args = append(args, inArgs...)
	}
	if filter.ChapterID != "" {
		q += ` AND chapter_id = ?`
		args = append(args, filter.ChapterID)
	}
	if filter.EngagementMin != nil {
		q += ` AND engagement_score >= ?`
		args = append(args, *filter.EngagementMin)
	}
	if filter.EngagementMax != nil {
		q += ` AND engagement_score <= ?`
		args = append(args, *filter.EngagementMax)
	}
	if !filter.RenewalFrom.IsZero() {
		q += ` AND renewal_date >= ?`
		args = append(args, filter.RenewalFrom.UTC())
	}
	if !filter.RenewalTo.IsZero() {
		q += ` AND renewal_date <= ?`
		args = append(args, filter.RenewalTo.UTC())
	}

	var rows []memberRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering members")
	}
	return toMembers(rows), nil
}

func (repo *memberRepository) UpdateMember(mbr member.Member, engagement *int, ceCredits *float64) (member.Member, error) {
	const q = `
	UPDATE members SET
		chapter_id = $2,
		first_name = $3,
		last_name = $4,
		email = $5,
		phone = $6,
		address_line1 = $7,
		address_line2 = $8,
		city = $9,
		state = $10,
		zip_code = $11,
		country = $12,
		status = COALESCE(NULLIF($13, ''), status),
		engagement_score = COALESCE($14, engagement_score),
		ce_credits = COALESCE($15, ce_credits),
		renewal_date = COALESCE($16, renewal_date),
		company = $17,
		job_title = $18,
		updated_at = $19
	WHERE id = $1`

	var renewal interface{}
	if !mbr.RenewalDate.IsZero() {
		renewal = mbr.RenewalDate
	}
	res, err := repo.db.Exec(q,
		mbr.ID, mbr.ChapterID, mbr.FirstName, mbr.LastName, mbr.Email, mbr.Phone,
		mbr.AddressLine1, mbr.AddressLine2, mbr.City, mbr.State, mbr.ZipCode, mbr.Country,
		mbr.Status, engagement, ceCredits, renewal, mbr.Company, mbr.JobTitle, mbr.UpdatedAt,
	)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "updating member")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return member.Member{}, member.ErrNotFound
	}
	return repo.GetMemberByID(mbr.ID)
}

func (repo *memberRepository) DeleteMembersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM members WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting members")
	}
	return nil
}
