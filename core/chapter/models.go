package chapter

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

// Chapter types
const (
	TypeNational = "national"
	TypeState    = "state"
	TypeLocal    = "local"
)

var Types = []string{TypeNational, TypeState, TypeLocal}

type Chapter struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	ParentChapterID   string    `json:"parent_chapter_id,omitempty"`
	State             string    `json:"state,omitempty"`
	City              string    `json:"city,omitempty"`
	Region            string    `json:"region,omitempty"`
	MemberCount       int       `json:"member_count"`
	ActiveEventsCount int       `json:"active_events_count"`
	ContactEmail      string    `json:"contact_email,omitempty"`
	President         string    `json:"president,omitempty"`
	WebsiteURL        string    `json:"website_url,omitempty"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

func (c Chapter) IsNational() bool { return c.Type == TypeNational }
func (c Chapter) IsState() bool    { return c.Type == TypeState }
func (c Chapter) IsLocal() bool    { return c.Type == TypeLocal }

// NewChapter contains information needed to create a new Chapter.
type NewChapter struct {
	Name            string `json:"name" validate:"required"`
	Type            string `json:"type" validate:"required,chaptertype"`
	ParentChapterID string `json:"parent_chapter_id"`
	State           string `json:"state"`
	City            string `json:"city"`
	Region          string `json:"region"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email"`
	President       string `json:"president"`
	WebsiteURL      string `json:"website_url" validate:"omitempty,url"`
	Description     string `json:"description"`
}

func (nc *NewChapter) Validate(validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.State = core.CleanString(nc.State)
	nc.City = core.CleanString(nc.City)
	nc.ContactEmail = core.CleanString(nc.ContactEmail, true /* lower */)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return checkHierarchy(nc.Type, nc.ParentChapterID, nc.State, nc.City, svc)
}

// UpdateChapter defines what information may be provided to modify an existing Chapter.
// Zero-valued fields are left untouched.
type UpdateChapter struct {
	Name            string `json:"name"`
	Type            string `json:"type" validate:"omitempty,chaptertype"`
	ParentChapterID string `json:"parent_chapter_id"`
	State           string `json:"state"`
	City            string `json:"city"`
	Region          string `json:"region"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email"`
	President       string `json:"president"`
	WebsiteURL      string `json:"website_url" validate:"omitempty,url"`
	Description     string `json:"description"`
}

func (uc *UpdateChapter) Validate(orig Chapter, validate *validator.Validate, svc Service) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Type = core.CleanString(uc.Type, true /* lower */)
	uc.ContactEmail = core.CleanString(uc.ContactEmail, true /* lower */)
	if uc.Name == "" {
		uc.Name = orig.Name
	}
	if uc.Type == "" {
		uc.Type = orig.Type
	}
	if uc.ParentChapterID == "" {
		uc.ParentChapterID = orig.ParentChapterID
	}
	if uc.State == "" {
		uc.State = orig.State
	}
	if uc.City == "" {
		uc.City = orig.City
	}
	if uc.Region == "" {
		uc.Region = orig.Region
	}
	if uc.ContactEmail == "" {
		uc.ContactEmail = orig.ContactEmail
	}
	if uc.President == "" {
		uc.President = orig.President
	}
	if uc.WebsiteURL == "" {
		uc.WebsiteURL = orig.WebsiteURL
	}
	if uc.Description == "" {
		uc.Description = orig.Description
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return checkHierarchy(uc.Type, uc.ParentChapterID, uc.State, uc.City, svc)
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Types    []string `query:"type"`
	State    string   `query:"state"`
	ParentID string   `query:"parent_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Types == nil && qf.State == "" && qf.ParentID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.State = core.CleanString(qf.State)
}

// Bulk patch strategies
const (
	BulkReplace = "replace"
	BulkClear   = "clear"
)

// bulkPatchableFields are the chapter fields a bulk patch may touch.
var bulkPatchableFields = map[string]bool{
	"region":        true,
	"contact_email": true,
	"president":     true,
	"website_url":   true,
	"description":   true,
}

// BulkPatch applies a field/value map to a set of chapters.
// With the "clear" strategy values are ignored and the fields are blanked.
type BulkPatch struct {
	IDs      []string          `json:"ids" validate:"required,min=1"`
	Fields   map[string]string `json:"fields" validate:"required,min=1"`
	Strategy string            `json:"strategy" validate:"required,oneof=replace clear"`
}

func (bp *BulkPatch) Validate(validate *validator.Validate) error {
	for i, id := range bp.IDs {
		bp.IDs[i] = core.CleanString(id)
	}
	if err := validate.Struct(bp); err != nil {
		return err
	}
	for field := range bp.Fields {
		if !bulkPatchableFields[field] {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: "field cannot be bulk-edited"})
		}
	}
	return nil
}

type BulkItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult tallies a bulk patch run. Succeeded+Failed always equals
// the number of submitted ids; partial application stands.
type BulkResult struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Errors    []BulkItemError `json:"errors,omitempty"`
}
