package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func testDataset() Dataset {
	ds := Dataset{Title: "Members", Columns: []string{"name", "email"}}
	ds.Append("Alice Alpha", "alice@test.cd")
	ds.Append("Bob Beta", "bob@test.cd")
	return ds
}

func TestWrite_csv(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, testDataset()); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "name,email", lines[0])
	assert.Equal(t, "Alice Alpha,alice@test.cd", lines[1])
}

func TestWrite_xlsx(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, testDataset()); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	// xlsx files are zip archives
	assert.Equal(t, "PK", buf.String()[:2])
}

func TestWrite_pdf(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatPDF, testDataset()); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
}

func TestWrite_unknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "doc", testDataset())
	assert.Equal(t, ErrUnknownFormat, errors.Cause(err))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "application/octet-stream", ContentType("doc"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Members.csv", Filename("Members", FormatCSV))
}
