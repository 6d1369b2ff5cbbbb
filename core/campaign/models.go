package campaign

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

// Campaign statuses
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
)

var Statuses = []string{StatusDraft, StatusScheduled, StatusSent}

// Audience selects the members a campaign goes out to.
// Empty fields widen the audience.
type Audience struct {
	ChapterID     string   `json:"chapter_id,omitempty"`
	Statuses      []string `json:"statuses,omitempty" validate:"dive,memberstatus"`
	EngagementMin *int     `json:"engagement_min,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type Campaign struct {
	ID        string     `json:"id"`
	ChapterID string     `json:"chapter_id,omitempty"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Audience  Audience   `json:"audience"`
	Status    string     `json:"status"`
	SentCount int        `json:"sent_count"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// NewCampaign contains information needed to create a new Campaign.
type NewCampaign struct {
	ChapterID string   `json:"chapter_id"`
	Name      string   `json:"name" validate:"required"`
	Subject   string   `json:"subject" validate:"required"`
	Body      string   `json:"body" validate:"required"`
	Audience  Audience `json:"audience"`
}

func (nc *NewCampaign) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Subject = core.CleanString(nc.Subject)
	return validate.Struct(nc)
}

// UpdateCampaign defines what information may be provided to modify a draft Campaign.
type UpdateCampaign struct {
	Name     string    `json:"name"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Audience *Audience `json:"audience"`
}

func (uc *UpdateCampaign) Validate(orig Campaign, validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Subject = core.CleanString(uc.Subject)
	if uc.Name == "" {
		uc.Name = orig.Name
	}
	if uc.Subject == "" {
		uc.Subject = orig.Subject
	}
	if uc.Body == "" {
		uc.Body = orig.Body
	}
	return validate.Struct(uc)
}
