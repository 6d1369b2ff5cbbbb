package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/campaign"
)

type campaignRow struct {
	ID        string          `db:"id"`
	ChapterID sql.NullString  `db:"chapter_id"`
	Name      string          `db:"name"`
	Subject   string          `db:"subject"`
	Body      string          `db:"body"`
	Audience  json.RawMessage `db:"audience"`
	Status    string          `db:"status"`
	SentCount int             `db:"sent_count"`
	SentAt    sql.NullTime    `db:"sent_at"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r campaignRow) toCampaign() (campaign.Campaign, error) {
	var audience campaign.Audience
	if len(r.Audience) > 0 {
		if err := json.Unmarshal(r.Audience, &audience); err != nil {
			return campaign.Campaign{}, errors.Wrap(err, "decoding audience")
		}
	}
	cmp := campaign.Campaign{
		ID:        r.ID,
		ChapterID: r.ChapterID.String,
		Name:      r.Name,
		Subject:   r.Subject,
		Body:      r.Body,
		Audience:  audience,
		Status:    r.Status,
		SentCount: r.SentCount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.SentAt.Valid {
		sentAt := r.SentAt.Time
		cmp.SentAt = &sentAt
	}
	return cmp, nil
}

func newCampaignRow(cmp campaign.Campaign) (campaignRow, error) {
	audience, err := json.Marshal(cmp.Audience)
	if err != nil {
		return campaignRow{}, errors.Wrap(err, "encoding audience")
	}
	row := campaignRow{
		ID:        cmp.ID,
		ChapterID: sql.NullString{String: cmp.ChapterID, Valid: cmp.ChapterID != ""},
		Name:      cmp.Name,
		Subject:   cmp.Subject,
		Body:      cmp.Body,
		Audience:  audience,
		Status:    cmp.Status,
		SentCount: cmp.SentCount,
		CreatedAt: cmp.CreatedAt,
		UpdatedAt: cmp.UpdatedAt,
	}
	if cmp.SentAt != nil {
		row.SentAt = sql.NullTime{Time: *cmp.SentAt, Valid: true}
	}
	return row, nil
}

func toCampaigns(rows []campaignRow) ([]campaign.Campaign, error) {
	campaigns := make([]campaign.Campaign, len(rows))
	for i, r := range rows {
		cmp, err := r.toCampaign()
		if err != nil {
			return nil, err
		}
		campaigns[i] = cmp
	}
	return campaigns, nil
}

type campaignRepository struct {
	db *sqlx.DB
}

func NewCampaignRepository(db *sqlx.DB) campaign.Repository {
	return &campaignRepository{db: db}
}

func (repo *campaignRepository) CreateCampaign(cmp campaign.Campaign) (campaign.Campaign, error) {
	row, err := newCampaignRow(cmp)
	if err != nil {
		return campaign.Campaign{}, err
	}
	const q = `
	INSERT INTO campaigns (
		id, chapter_id, name, subject, body, audience, status, sent_count, sent_at, created_at, updated_at
	) VALUES (
		:id, :chapter_id, :name, :subject, :body, :audience, :status, :sent_count, :sent_at, :created_at, :updated_at
	)`
	if _, err = repo.db.NamedExec(q, row); err != nil {
		return campaign.Campaign{}, errors.Wrap(err, "inserting campaign")
	}
	return cmp, nil
}

func (repo *campaignRepository) QueryAllCampaigns() ([]campaign.Campaign, error) {
	var rows []campaignRow
	if err := repo.db.Select(&rows, `SELECT * FROM campaigns`); err != nil {
		return nil, errors.Wrap(err, "selecting campaigns")
	}
	return toCampaigns(rows)
}

func (repo *campaignRepository) GetCampaignByID(id string) (campaign.Campaign, error) {
	var row campaignRow
	if err := repo.db.Get(&row, `SELECT * FROM campaigns WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return campaign.Campaign{}, campaign.ErrNotFound
		}
		return campaign.Campaign{}, errors.Wrap(err, "selecting campaign")
	}
	return row.toCampaign()
}

func (repo *campaignRepository) UpdateCampaign(cmp campaign.Campaign, audience *campaign.Audience) (campaign.Campaign, error) {
	// only save set fields
	const q = `
	UPDATE campaigns SET
		name = COALESCE(NULLIF($2, ''), name),
		subject = COALESCE(NULLIF($3, ''), subject),
		body = COALESCE(NULLIF($4, ''), body),
		status = COALESCE(NULLIF($5, ''), status),
		sent_count = CASE WHEN $6::timestamptz IS NULL THEN sent_count ELSE $7 END,
		sent_at = COALESCE($6, sent_at),
		audience = COALESCE($8, audience),
		updated_at = $9
	WHERE id = $1`

	var sentAt interface{}
	if cmp.SentAt != nil {
		sentAt = *cmp.SentAt
	}
	var audienceRaw interface{}
	if audience != nil {
		raw, err := json.Marshal(audience)
		if err != nil {
			return campaign.Campaign{}, errors.Wrap(err, "encoding audience")
		}
		audienceRaw = raw
	}

	res, err := repo.db.Exec(q, cmp.ID, cmp.Name, cmp.Subject, cmp.Body, cmp.Status, sentAt, cmp.SentCount, audienceRaw, cmp.UpdatedAt)
	if err != nil {
		return campaign.Campaign{}, errors.Wrap(err, "updating campaign")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campaign.Campaign{}, campaign.ErrNotFound
	}
	return repo.GetCampaignByID(cmp.ID)
}

func (repo *campaignRepository) DeleteCampaignsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM campaigns WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting campaigns")
	}
	return nil
}
