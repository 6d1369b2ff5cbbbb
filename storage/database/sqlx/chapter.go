package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/chapter"
)

type chapterRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Type              string         `db:"type"`
	ParentChapterID   sql.NullString `db:"parent_chapter_id"`
	State             string         `db:"state"`
	City              string         `db:"city"`
	Region            string         `db:"region"`
	MemberCount       int            `db:"member_count"`
	ActiveEventsCount int            `db:"active_events_count"`
	ContactEmail      string         `db:"contact_email"`
	President         string         `db:"president"`
	WebsiteURL        string         `db:"website_url"`
	Description       string         `db:"description"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r chapterRow) toChapter() chapter.Chapter {
	return chapter.Chapter{
		ID:                r.ID,
		Name:              r.Name,
		Type:              r.Type,
		ParentChapterID:   r.ParentChapterID.String,
		State:             r.State,
		City:              r.City,
		Region:            r.Region,
		MemberCount:       r.MemberCount,
		ActiveEventsCount: r.ActiveEventsCount,
		ContactEmail:      r.ContactEmail,
		President:         r.President,
		WebsiteURL:        r.WebsiteURL,
		Description:       r.Description,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func newChapterRow(chp chapter.Chapter) chapterRow {
	return chapterRow{
		ID:                chp.ID,
		Name:              chp.Name,
		Type:              chp.Type,
		ParentChapterID:   sql.NullString{String: chp.ParentChapterID, Valid: chp.ParentChapterID != ""},
		State:             chp.State,
		City:              chp.City,
		Region:            chp.Region,
		MemberCount:       chp.MemberCount,
		ActiveEventsCount: chp.ActiveEventsCount,
		ContactEmail:      chp.ContactEmail,
		President:         chp.President,
		WebsiteURL:        chp.WebsiteURL,
		Description:       chp.Description,
		CreatedAt:         chp.CreatedAt,
		UpdatedAt:         chp.UpdatedAt,
	}
}

func toChapters(rows []chapterRow) []chapter.Chapter {
	chapters := make([]chapter.Chapter, len(rows))
	for i, r := range rows {
		chapters[i] = r.toChapter()
	}
	return chapters
}

type chapterRepository struct {
	db *sqlx.DB
}

func NewChapterRepository(db *sqlx.DB) chapter.Repository {
	return &chapterRepository{db: db}
}

func (repo *chapterRepository) CreateChapter(chp chapter.Chapter) (chapter.Chapter, error) {
	const q = `
	INSERT INTO chapters (
		id, name, type, parent_chapter_id, state, city, region, member_count,
		active_events_count, contact_email, president, website_url, description,
		created_at, updated_at
	) VALUES (
		:id, :name, :type, :parent_chapter_id, :state, :city, :region, :member_count,
		:active_events_count, :contact_email, :president, :website_url, :description,
		:created_at, :updated_at
	)`
	if _, err := repo.db.NamedExec(q, newChapterRow(chp)); err != nil {
		return chapter.Chapter{}, errors.Wrap(err, "inserting chapter")
	}
	return chp, nil
}

func (repo *chapterRepository) QueryAllChapters() ([]chapter.Chapter, error) {
	var rows []chapterRow
	if err := repo.db.Select(&rows, `SELECT * FROM chapters`); err != nil {
		return nil, errors.Wrap(err, "selecting chapters")
	}
	return toChapters(rows), nil
}

func (repo *chapterRepository) GetChapterByID(id string) (chapter.Chapter, error) {
	var row chapterRow
	if err := repo.db.Get(&row, `SELECT * FROM chapters WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return chapter.Chapter{}, chapter.ErrNotFound
		}
		return chapter.Chapter{}, errors.Wrap(err, "selecting chapter")
	}
	return row.toChapter(), nil
}

func (repo *chapterRepository) FilterChapters(filter chapter.QueryFilter) ([]chapter.Chapter, error) {
	q := `SELECT * FROM chapters WHERE true`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		q += ` AND (name ILIKE ? OR state ILIKE ? OR city ILIKE ?)`
		args = append(args, val, val, val)
	}
	if len(filter.Types) > 0 {
		inQ, inArgs, err := sqlx.In(`type IN (?)`, filter.Types)
		if err != nil {
			return nil, errors.Wrap(err, "building type filter")
		}
		q += ` AND ` + inQ
		args = append(args, inArgs...)
	}
	if filter.State != "" {
		q += ` AND state ILIKE ?`
		args = append(args, filter.State)
	}
	if filter.ParentID != "" {
		q += ` AND parent_chapter_id = ?`
		args = append(args, filter.ParentID)
	}

	var rows []chapterRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering chapters")
	}
	return toChapters(rows), nil
}

func (repo *chapterRepository) UpdateChapter(chp chapter.Chapter) (chapter.Chapter, error) {
	const q = `
	UPDATE chapters SET
		name = COALESCE(NULLIF(:name, ''), name),
		type = COALESCE(NULLIF(:type, ''), type),
		parent_chapter_id = :parent_chapter_id,
		state = :state,
		city = :city,
		region = :region,
		contact_email = :contact_email,
		president = :president,
		website_url = :website_url,
		description = :description,
		updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExec(q, newChapterRow(chp))
	if err != nil {
		return chapter.Chapter{}, errors.Wrap(err, "updating chapter")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return chapter.Chapter{}, chapter.ErrNotFound
	}
	return repo.GetChapterByID(chp.ID)
}

func (repo *chapterRepository) DeleteChaptersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM chapters WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting chapters")
	}
	return nil
}
