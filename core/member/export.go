package member

import (
	"strconv"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/export"
)

const exportDateFormat = "2006-01-02"

var exportableFields = map[string]func(m Member) string{
	"id":               func(m Member) string { return m.ID },
	"chapter_id":       func(m Member) string { return m.ChapterID },
	"first_name":       func(m Member) string { return m.FirstName },
	"last_name":        func(m Member) string { return m.LastName },
	"name":             func(m Member) string { return m.Name() },
	"email":            func(m Member) string { return m.Email },
	"phone":            func(m Member) string { return m.Phone },
	"city":             func(m Member) string { return m.City },
	"state":            func(m Member) string { return m.State },
	"status":           func(m Member) string { return m.Status },
	"engagement_score": func(m Member) string { return strconv.Itoa(m.EngagementScore) },
	"ce_credits":       func(m Member) string { return strconv.FormatFloat(m.CECredits, 'f', 1, 64) },
	"company":          func(m Member) string { return m.Company },
	"job_title":        func(m Member) string { return m.JobTitle },
	"member_since": func(m Member) string {
		if m.MemberSince.IsZero() {
			return ""
		}
		return m.MemberSince.Format(exportDateFormat)
	},
	"renewal_date": func(m Member) string {
		if m.RenewalDate.IsZero() {
			return ""
		}
		return m.RenewalDate.Format(exportDateFormat)
	},
}

// chapterNameField is resolved through a lookup the caller provides.
const chapterNameField = "chapter_name"

// DefaultExportFields is the projection used when the caller picks none.
var DefaultExportFields = []string{"id", "name", "email", "status", "chapter_id", "engagement_score"}

// ExportDataset projects members onto the chosen fields. The chapter_name
// field goes through chapterName; a failed lookup leaves the cell blank and
// is collected as a row error rather than aborting the export.
func ExportDataset(members []Member, fields []string, chapterName func(id string) (string, error)) (export.Dataset, []export.RowError, error) {
	if len(fields) == 0 {
		fields = DefaultExportFields
	}
	for _, f := range fields {
		if _, ok := exportableFields[f]; !ok && f != chapterNameField {
			return export.Dataset{}, nil, core.NewValidationError(nil, core.FieldError{
				Field: "fields", Error: "unknown field " + f,
			})
		}
	}

	ds := export.Dataset{Title: "Members", Columns: fields}
	var rowErrs []export.RowError
	for i, m := range members {
		row := make([]string, len(fields))
		for j, f := range fields {
			if f == chapterNameField {
				name, err := chapterName(m.ChapterID)
				if err != nil {
					rowErrs = append(rowErrs, export.RowError{Index: i, Err: err.Error()})
					continue
				}
				row[j] = name
				continue
			}
			row[j] = exportableFields[f](m)
		}
		ds.Append(row...)
	}
	return ds, rowErrs, nil
}
