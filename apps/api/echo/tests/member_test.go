package tests

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"testing"

	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
	"github.com/pkg/errors"
)

func Test_memberApi_create(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	existing := createMember(t, national.ID, "Taken", "Email", "taken@test.cd", member.StatusActive, 50)

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/members",
			body: marchallObj(t, member.NewMember{}), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"chapter_id": "this field is required",
				"first_name": "this field is required",
				"last_name":  "this field is required",
				"email":      "this field is required",
			}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/v1/members",
			body: marchallObj(t, member.NewMember{
				ChapterID: national.ID, FirstName: "Dup", LastName: "User", Email: existing.Email,
			}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a member with this email already exists"}),
		},
		{
			name: "ok", method: http.MethodPost, path: "/v1/members",
			body: marchallObj(t, member.NewMember{
				ChapterID: national.ID, FirstName: "New", LastName: "Member",
				Email: "new@test.cd", EngagementScore: 75,
			}),
			token:    token,
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var mbr member.Member
				if err := unmarshallObj(t, rec.Body.Bytes(), &mbr); err != nil {
					t.Fatalf("unmarshallObj(): %v", err)
				}
				if mbr.ID == "" || mbr.Status != member.StatusPending {
					t.Errorf("member = %+v; want an id and pending status", mbr)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_memberApi_query(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	tx := createChapter(t, "Texas", chapter.TypeState, national.ID, "TX", "")

	m1 := createMember(t, national.ID, "Alice", "Alpha", "alice@test.cd", member.StatusActive, 90)
	m2 := createMember(t, national.ID, "Bob", "Beta", "bob@test.cd", member.StatusLapsed, 30)
	m3 := createMember(t, tx.ID, "Carol", "Gamma", "carol@test.cd", member.StatusActive, 60)

	path := func(params url.Values) string { return "/v1/members?" + params.Encode() }

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/v1/members",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "get all", method: http.MethodGet, path: "/v1/members", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, m1, m2, m3),
		},
		{
			name: "search", method: http.MethodGet, path: path(url.Values{"search": {"alice"}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, m1),
		},
		{
			name: "by status", method: http.MethodGet, path: path(url.Values{"status": {member.StatusLapsed}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, m2),
		},
		{
			name: "by chapter", method: http.MethodGet, path: path(url.Values{"chapter_id": {tx.ID}}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, m3),
		},
		{
			name:   "by engagement range", method: http.MethodGet,
			path:   path(url.Values{"engagement_min": {"50"}, "engagement_max": {"95"}}),
			token:  token,
			wantCode: http.StatusOK, wantData: marchallList(t, m1, m3),
		},
		{
			name:   "combo", method: http.MethodGet,
			path:   path(url.Values{"status": {member.StatusActive}, "chapter_id": {national.ID}}),
			token:  token,
			wantCode: http.StatusOK, wantData: marchallList(t, m1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_memberApi_updateDestroy(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	mbr := createMember(t, national.ID, "Mem", "Ber", "mem@test.cd", member.StatusActive, 50)

	t.Run("update status", func(t *testing.T) {
		body := marchallObj(t, member.UpdateMember{Status: member.StatusLapsed})
		req, rec := newAuthRequest(http.MethodPut, "/v1/members/"+mbr.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		got, err := memberRepo.GetMemberByID(mbr.ID)
		if err != nil {
			t.Fatalf("GetMemberByID(): %v", err)
		}
		if got.Status != member.StatusLapsed {
			t.Errorf("status = %q; want %q", got.Status, member.StatusLapsed)
		}
		if got.FirstName != mbr.FirstName {
			t.Errorf("first_name = %q; blank update must not clobber", got.FirstName)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/members/"+mbr.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := memberRepo.GetMemberByID(mbr.ID); errors.Cause(err) != member.ErrNotFound {
			t.Errorf("err = %v; want %v", err, member.ErrNotFound)
		}
	})

	t.Run("destroy unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/members/ghost", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}

func Test_memberApi_export(t *testing.T) {
	app := setup(t)

	staff := createUser(t, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	token := getToken(t, staff)

	national := createChapter(t, "National", chapter.TypeNational, "", "", "")
	createMember(t, national.ID, "Alice", "Alpha", "alice@test.cd", member.StatusActive, 90)
	createMember(t, national.ID, "Bob", "Beta", "bob@test.cd", member.StatusLapsed, 30)

	t.Run("csv with chapter names", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/members/export?field=name&field=email&field=chapter_name", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		rows, err := csv.NewReader(rec.Body).ReadAll()
		if err != nil {
			t.Fatalf("reading csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d csv rows; want 3", len(rows))
		}
		for _, row := range rows[1:] {
			if row[2] != national.Name {
				t.Errorf("chapter_name = %q; want %q", row[2], national.Name)
			}
		}
	})

	t.Run("bad filter param", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/members/export?engagement_min=lots", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}
