package tests

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
)

func Test_chapterApi_crud(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	var nationalID string

	t.Run("create requires admin", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "National", Type: chapter.TypeNational})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", getToken(t, staff), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("create national", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "National", Type: chapter.TypeNational})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var chp chapter.Chapter
		if err := unmarshallObj(t, rec.Body.Bytes(), &chp); err != nil {
			t.Fatalf("unmarshallObj(): %v", err)
		}
		nationalID = chp.ID
	})

	t.Run("state requires a parent", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "Texas", Type: chapter.TypeState, State: "TX"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("create state under national", func(t *testing.T) {
		body := marchallObj(t, chapter.NewChapter{Name: "Texas", Type: chapter.TypeState, State: "TX", ParentChapterID: nationalID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/chapters", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/lol", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, chapter.UpdateChapter{President: "Jane Doe"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/chapters/"+nationalID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		chp, err := chapterRepo.GetChapterByID(nationalID)
		if err != nil {
			t.Fatalf("GetChapterByID(): %v", err)
		}
		if chp.President != "Jane Doe" {
			t.Errorf("president = %q; want %q", chp.President, "Jane Doe")
		}
	})

	t.Run("single-field update keeps the rest", func(t *testing.T) {
		chp := createChapter(t, "Ohio", chapter.TypeState, nationalID, "OH", "")
		chp.Region = "Midwest"
		chp.President = "Pat Smith"
		chp.ContactEmail = "ohio@test.cd"
		chp.WebsiteURL = "https://ohio.test.cd"
		if _, err := chapterRepo.UpdateChapter(chp); err != nil {
			t.Fatalf("UpdateChapter(): %v", err)
		}

		body := marchallObj(t, chapter.UpdateChapter{Name: "Ohio Chapter"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/chapters/"+chp.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		got, err := chapterRepo.GetChapterByID(chp.ID)
		if err != nil {
			t.Fatalf("GetChapterByID(): %v", err)
		}
		if got.Name != "Ohio Chapter" {
			t.Errorf("name = %q; want %q", got.Name, "Ohio Chapter")
		}
		if got.Region != "Midwest" || got.President != "Pat Smith" ||
			got.ContactEmail != "ohio@test.cd" || got.WebsiteURL != "https://ohio.test.cd" {
			t.Errorf("chapter = %+v; untouched optional fields must survive", got)
		}
	})
}

func Test_chapterApi_tree(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	tx := createChapter(t, "Texas", chapter.TypeState, national.ID, "TX", "")
	austin := createChapter(t, "Austin", chapter.TypeLocal, tx.ID, "TX", "Austin")

	req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/tree", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var tree chapter.Tree
	if err := unmarshallObj(t, rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("unmarshallObj(): %v", err)
	}
	if len(tree.National) != 1 || tree.National[0].ID != national.ID {
		t.Errorf("national bucket = %+v", tree.National)
	}
	if len(tree.State) != 1 || tree.State[0].ID != tx.ID {
		t.Errorf("state bucket = %+v", tree.State)
	}
	if len(tree.Local) != 1 || tree.Local[0].ID != austin.ID {
		t.Errorf("local bucket = %+v", tree.Local)
	}
}

func Test_chapterApi_benchmark(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	tx := createChapter(t, "Texas", chapter.TypeState, national.ID, "TX", "")
	austin := createChapter(t, "Austin", chapter.TypeLocal, tx.ID, "TX", "Austin")
	dallas := createChapter(t, "Dallas", chapter.TypeLocal, tx.ID, "TX", "Dallas")

	createMember(t, austin.ID, "A", "One", "a1@test.cd", member.StatusActive, 80)
	createMember(t, austin.ID, "A", "Two", "a2@test.cd", member.StatusActive, 60)
	createMember(t, dallas.ID, "D", "One", "d1@test.cd", member.StatusActive, 40)

	req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/"+austin.ID+"/benchmark", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var bm chapter.Benchmark
	if err := unmarshallObj(t, rec.Body.Bytes(), &bm); err != nil {
		t.Fatalf("unmarshallObj(): %v", err)
	}
	if bm.ChapterID != austin.ID {
		t.Errorf("chapter_id = %q; want %q", bm.ChapterID, austin.ID)
	}
	if bm.Estimated {
		t.Error("expected a real peer set")
	}
	if len(bm.Scores) != len(chapter.Metrics) {
		t.Errorf("got %d scores; want %d", len(bm.Scores), len(chapter.Metrics))
	}
}

func Test_chapterApi_bulkUpdate(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	tx := createChapter(t, "Texas", chapter.TypeState, national.ID, "TX", "")
	austin := createChapter(t, "Austin", chapter.TypeLocal, tx.ID, "TX", "Austin")

	t.Run("unknown field is rejected", func(t *testing.T) {
		body := marchallObj(t, chapter.BulkPatch{
			IDs:      []string{austin.ID},
			Fields:   map[string]string{"name": "nope"},
			Strategy: chapter.BulkReplace,
		})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/chapters/bulk", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("partial application stands", func(t *testing.T) {
		body := marchallObj(t, chapter.BulkPatch{
			IDs:      []string{austin.ID, "ghost"},
			Fields:   map[string]string{"region": "South"},
			Strategy: chapter.BulkReplace,
		})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/chapters/bulk", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var res chapter.BulkResult
		if err := unmarshallObj(t, rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshallObj(): %v", err)
		}
		if res.Succeeded != 1 || res.Failed != 1 {
			t.Errorf("result = %+v; want 1 succeeded, 1 failed", res)
		}
		chp, err := chapterRepo.GetChapterByID(austin.ID)
		if err != nil {
			t.Fatalf("GetChapterByID(): %v", err)
		}
		if chp.Region != "South" {
			t.Errorf("region = %q; want %q", chp.Region, "South")
		}
	})

	t.Run("clear blanks the fields", func(t *testing.T) {
		body := marchallObj(t, chapter.BulkPatch{
			IDs:      []string{austin.ID},
			Fields:   map[string]string{"region": ""},
			Strategy: chapter.BulkClear,
		})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/chapters/bulk", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		chp, err := chapterRepo.GetChapterByID(austin.ID)
		if err != nil {
			t.Fatalf("GetChapterByID(): %v", err)
		}
		if chp.Region != "" {
			t.Errorf("region = %q; want empty", chp.Region)
		}
	})
}

func Test_chapterApi_export(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	tx := createChapter(t, "Texas", chapter.TypeState, national.ID, "TX", "")
	createChapter(t, "Austin", chapter.TypeLocal, tx.ID, "TX", "Austin")

	t.Run("unknown format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/export?format=doc", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/export?field=lol", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("csv export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/chapters/export?format=csv&field=name&field=type", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Content-Type = %q; want text/csv", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
			t.Errorf("Content-Disposition = %q; want an attachment", cd)
		}
		assertCSVRows(t, rec, 4) // header + 3 chapters
	})
}

func assertCSVRows(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != want {
		t.Errorf("got %d csv rows; want %d", len(rows), want)
	}
}
