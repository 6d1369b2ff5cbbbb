package tests

import (
	"net/http"
	"testing"

	. "github.com/abelmak/chapterdesk/apps/api/echo"
	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/user"
)

func Test_auditTrail(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin", "admin@test.cd", "secret", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	t.Run("create is recorded", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "National", Type: chapter.TypeNational})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		entries, err := auditSvc.Query(&audit.QueryFilter{Action: audit.ActionCreate, ObjectType: "chapters"})
		if err != nil {
			t.Fatalf("Query(): %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries; want 1", len(entries))
		}
		e := entries[0]
		if e.ActorID != admin.ID || e.ActorEmail != admin.Email {
			t.Errorf("actor = %q/%q; want %q/%q", e.ActorID, e.ActorEmail, admin.ID, admin.Email)
		}
		if e.Status != audit.StatusSuccess || e.ObjectID == "" {
			t.Errorf("entry = %+v; want a successful entry with an object id", e)
		}
	})

	t.Run("failure is recorded", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "Orphan State", Type: chapter.TypeState})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		entries, err := auditSvc.Query(&audit.QueryFilter{Action: audit.ActionCreate, ObjectType: "chapters"})
		if err != nil {
			t.Fatalf("Query(): %v", err)
		}
		var failures int
		for _, e := range entries {
			if e.Status == audit.StatusFailure {
				failures++
				if e.Metadata["error"] == "" {
					t.Error("failure entry carries no error metadata")
				}
			}
		}
		if failures != 1 {
			t.Errorf("got %d failure entries; want 1", failures)
		}
	})

	t.Run("export is recorded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/export", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		entries, err := auditSvc.Query(&audit.QueryFilter{Action: audit.ActionExport})
		if err != nil {
			t.Fatalf("Query(): %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries; want 1", len(entries))
		}
		if entries[0].ObjectType != "chapters" {
			t.Errorf("object_type = %q; want chapters", entries[0].ObjectType)
		}
	})

	t.Run("login is recorded", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Username: admin.Username, Password: "secret"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		entries, err := auditSvc.Query(&audit.QueryFilter{Action: audit.ActionLogin})
		if err != nil {
			t.Fatalf("Query(): %v", err)
		}
		if len(entries) != 1 || entries[0].ActorID != admin.ID {
			t.Errorf("entries = %+v; want one login entry for the admin", entries)
		}
	})
}

func Test_auditApi_query(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	auditSvc.Record(audit.Entry{
		ActorID: admin.ID, Action: audit.ActionDelete, ObjectType: "members", ObjectID: "m1",
	})
	auditSvc.Record(audit.Entry{
		ActorID: staff.ID, Action: audit.ActionUpdate, ObjectType: "events", ObjectID: "e1",
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/audit", getToken(t, staff))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("filter by actor", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/audit?actor_id="+staff.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var entries []audit.Entry
		if err := unmarshallObj(t, rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("unmarshallObj(): %v", err)
		}
		if len(entries) != 1 || entries[0].ObjectID != "e1" {
			t.Errorf("entries = %+v; want the staff update only", entries)
		}
	})
}
