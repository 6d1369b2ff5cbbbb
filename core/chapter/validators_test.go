package chapter

import (
	"testing"

	"github.com/abelmak/chapterdesk/core"
)

type hierarchySvc struct {
	Service
	chapters map[string]Chapter
}

func (s hierarchySvc) GetByID(id string) (Chapter, error) {
	if c, ok := s.chapters[id]; ok {
		return c, nil
	}
	return Chapter{}, ErrNotFound
}

func Test_checkHierarchy(t *testing.T) {
	svc := hierarchySvc{chapters: map[string]Chapter{
		"nat": chp("nat", TypeNational, ""),
		"tx":  chp("tx", TypeState, "nat"),
		"atx": chp("atx", TypeLocal, "tx"),
	}}

	tests := []struct {
		name                       string
		typ, parentID, state, city string
		wantField                  string // empty means valid
		wantText                   string
	}{
		{name: "national root", typ: TypeNational},
		{
			name: "national with parent", typ: TypeNational, parentID: "tx",
			wantField: "parent_chapter_id", wantText: natNoParentText,
		},
		{name: "state under national", typ: TypeState, parentID: "nat", state: "CA"},
		{
			name: "state without parent", typ: TypeState, state: "CA",
			wantField: "parent_chapter_id", wantText: stateParentReqText,
		},
		{
			name: "state without state field", typ: TypeState, parentID: "nat",
			wantField: "state", wantText: stateFieldReqText,
		},
		{
			name: "state under state", typ: TypeState, parentID: "tx", state: "CA",
			wantField: "parent_chapter_id", wantText: parentWrongKindText,
		},
		{name: "local under state", typ: TypeLocal, parentID: "tx", state: "TX", city: "Austin"},
		{
			name: "local without parent", typ: TypeLocal, state: "TX", city: "Austin",
			wantField: "parent_chapter_id", wantText: localParentReqText,
		},
		{
			name: "local without city", typ: TypeLocal, parentID: "tx", state: "TX",
			wantField: "city", wantText: localFieldsReqText,
		},
		{
			name: "local without state field", typ: TypeLocal, parentID: "tx", city: "Austin",
			wantField: "city", wantText: localFieldsReqText,
		},
		{
			name: "local under national", typ: TypeLocal, parentID: "nat", state: "TX", city: "Austin",
			wantField: "parent_chapter_id", wantText: parentWrongKindText,
		},
		{
			name: "local under local", typ: TypeLocal, parentID: "atx", state: "TX", city: "Austin",
			wantField: "parent_chapter_id", wantText: parentWrongKindText,
		},
		{
			name: "unknown parent", typ: TypeLocal, parentID: "ghost", state: "TX", city: "Austin",
			wantField: "parent_chapter_id", wantText: parentNotFoundText,
		},
		{
			name: "unknown type", typ: "regional",
			wantField: "type", wantText: chapterTypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkHierarchy(tt.typ, tt.parentID, tt.state, tt.city, svc)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("checkHierarchy() = %v; want nil", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("checkHierarchy() = %v; want a *core.ValidationError", err)
			}
			if len(vErr.Fields) != 1 {
				t.Fatalf("fields = %v; want 1", vErr.Fields)
			}
			if fld := vErr.Fields[0]; fld.Field != tt.wantField || fld.Error != tt.wantText {
				t.Errorf("field error = %+v; want %q: %q", fld, tt.wantField, tt.wantText)
			}
		})
	}
}
