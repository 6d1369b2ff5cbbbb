package member

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

// Member statuses
const (
	StatusActive   = "active"
	StatusLapsed   = "lapsed"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

var Statuses = []string{StatusActive, StatusLapsed, StatusInactive, StatusPending}

type Member struct {
	ID              string    `json:"id"`
	ChapterID       string    `json:"chapter_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	AddressLine1    string    `json:"address_line1,omitempty"`
	AddressLine2    string    `json:"address_line2,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	ZipCode         string    `json:"zip_code,omitempty"`
	Country         string    `json:"country,omitempty"`
	Status          string    `json:"status"`
	EngagementScore int       `json:"engagement_score"`
	CECredits       float64   `json:"ce_credits"`
	MemberSince     time.Time `json:"member_since,omitempty"`
	RenewalDate     time.Time `json:"renewal_date,omitempty"`
	Company         string    `json:"company,omitempty"`
	JobTitle        string    `json:"job_title,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (m Member) Name() string { return m.FirstName + " " + m.LastName }

func (m Member) IsActive() bool { return m.Status == StatusActive }

// RenewalDue reports whether the member's renewal falls within the window.
func (m Member) RenewalDue(now time.Time, window time.Duration) bool {
	if m.RenewalDate.IsZero() {
		return false
	}
	return !m.RenewalDate.Before(now) && m.RenewalDate.Sub(now) <= window
}

// NewMember contains information needed to create a new Member.
type NewMember struct {
	ChapterID       string  `json:"chapter_id" validate:"required"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone"`
	AddressLine1    string  `json:"address_line1"`
	AddressLine2    string  `json:"address_line2"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	ZipCode         string  `json:"zip_code"`
	Country         string  `json:"country"`
	Status          string  `json:"status" validate:"omitempty,memberstatus"`
	EngagementScore int     `json:"engagement_score" validate:"gte=0,lte=100"`
	CECredits       float64 `json:"ce_credits" validate:"gte=0"`
	Company         string  `json:"company"`
	JobTitle        string  `json:"job_title"`
}

func (nm *NewMember) Validate(validate *validator.Validate, svc Service) error {
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Email = core.CleanString(nm.Email, true /* lower */)

	if err := validate.Struct(nm); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nm.Email)
}

// UpdateMember defines what information may be provided to modify an existing Member.
type UpdateMember struct {
	ChapterID       string   `json:"chapter_id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	AddressLine1    string   `json:"address_line1"`
	AddressLine2    string   `json:"address_line2"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	ZipCode         string   `json:"zip_code"`
	Country         string   `json:"country"`
	Status          string   `json:"status" validate:"omitempty,memberstatus"`
	EngagementScore *int     `json:"engagement_score" validate:"omitempty,gte=0,lte=100"`
	CECredits       *float64 `json:"ce_credits" validate:"omitempty,gte=0"`
	Company         string   `json:"company"`
	JobTitle        string   `json:"job_title"`
}

func (um *UpdateMember) Validate(orig Member, validate *validator.Validate, svc Service) error {
	um.FirstName = core.CleanString(um.FirstName)
	um.LastName = core.CleanString(um.LastName)
	um.Email = core.CleanString(um.Email, true /* lower */)

	if um.FirstName == "" {
		um.FirstName = orig.FirstName
	}
	if um.LastName == "" {
		um.LastName = orig.LastName
	}
	if um.Email == "" {
		um.Email = orig.Email
	}
	if um.ChapterID == "" {
		um.ChapterID = orig.ChapterID
	}
	if um.Status == "" {
		um.Status = orig.Status
	}
	if um.Phone == "" {
		um.Phone = orig.Phone
	}
	if um.AddressLine1 == "" {
		um.AddressLine1 = orig.AddressLine1
	}
	if um.AddressLine2 == "" {
		um.AddressLine2 = orig.AddressLine2
	}
	if um.City == "" {
		um.City = orig.City
	}
	if um.State == "" {
		um.State = orig.State
	}
	if um.ZipCode == "" {
		um.ZipCode = orig.ZipCode
	}
	if um.Country == "" {
		um.Country = orig.Country
	}
	if um.Company == "" {
		um.Company = orig.Company
	}
	if um.JobTitle == "" {
		um.JobTitle = orig.JobTitle
	}

	if err := validate.Struct(um); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(um.Email, orig)
}

type QueryFilter struct {
	Search        string    `query:"search"`
	Statuses      []string  `query:"status"`
	ChapterID     string    `query:"chapter_id"`
	EngagementMin *int      `query:"engagement_min"`
	EngagementMax *int      `query:"engagement_max"`
	RenewalFrom   time.Time `query:"renewal_from"`
	RenewalTo     time.Time `query:"renewal_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Statuses == nil && qf.ChapterID == "" &&
		qf.EngagementMin == nil && qf.EngagementMax == nil &&
		qf.RenewalFrom.IsZero() && qf.RenewalTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
