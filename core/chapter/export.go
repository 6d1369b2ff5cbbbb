package chapter

import (
	"strconv"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/export"
)

var exportableFields = map[string]func(c Chapter) string{
	"id":                  func(c Chapter) string { return c.ID },
	"name":                func(c Chapter) string { return c.Name },
	"type":                func(c Chapter) string { return c.Type },
	"parent_chapter_id":   func(c Chapter) string { return c.ParentChapterID },
	"state":               func(c Chapter) string { return c.State },
	"city":                func(c Chapter) string { return c.City },
	"region":              func(c Chapter) string { return c.Region },
	"member_count":        func(c Chapter) string { return strconv.Itoa(c.MemberCount) },
	"active_events_count": func(c Chapter) string { return strconv.Itoa(c.ActiveEventsCount) },
	"contact_email":       func(c Chapter) string { return c.ContactEmail },
	"president":           func(c Chapter) string { return c.President },
	"website_url":         func(c Chapter) string { return c.WebsiteURL },
}

// DefaultExportFields is the projection used when the caller picks none.
var DefaultExportFields = []string{"id", "name", "type", "state", "city", "member_count"}

// ExportDataset projects chapters onto the chosen fields.
func ExportDataset(chapters []Chapter, fields []string) (export.Dataset, error) {
	if len(fields) == 0 {
		fields = DefaultExportFields
	}
	for _, f := range fields {
		if _, ok := exportableFields[f]; !ok {
			return export.Dataset{}, core.NewValidationError(nil, core.FieldError{
				Field: "fields", Error: "unknown field " + f,
			})
		}
	}

	ds := export.Dataset{Title: "Chapters", Columns: fields}
	for _, c := range chapters {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = exportableFields[f](c)
		}
		ds.Append(row...)
	}
	return ds, nil
}
