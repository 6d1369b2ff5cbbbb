package tests

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	. "github.com/abelmak/chapterdesk/apps/api/echo"
	"github.com/abelmak/chapterdesk/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Awe Some", "awesome", "awe@test.cd", "s3cr3t", nil, true)
	deactivated := createUser(t, "Gone", "gone", "gone@test.cd", "s3cr3t", nil, false)

	tests := []httpTest{
		{
			name: "empty credentials", body: marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Username: deactivated.Username, Password: "s3cr3t"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login with username", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "s3cr3t"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login with email", body: marchallObj(t, LoginRequest{Username: usr.Email, Password: "s3cr3t"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var resp LoginResponse
				if err := unmarshallObj(t, rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Errorf("expected a token, got %q (err %v)", resp.Token, err)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	path := func(search string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	usr1 := createUser(t, "User", "awe", "awe@test.cd", "", nil, true)
	usr2 := createUser(t, "King", "user02", "king@test.cd", "", nil, true)
	staff := createUser(t, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStaff}, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	owner := createUser(t, "Owner", "owner", "owner@test.cd", "", []string{user.RoleAdminOwner}, true)
	president := createUser(t, "President", "prez", "prez@test.cd", "", []string{user.RoleChapterPresident}, true)
	naughty := createUser(t, "N Dog", "ndog", "ndog@test.cd", "", []string{user.RoleStaff}, false)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2, staff, admin, owner, president, naughty),
		},
		{name: "search (unknown)", path: path("lol", nil), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "search=USE", path: path("USE", nil), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2),
		},
		{name: "role (unknown)", path: path("", nil, "lol"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "role=admin:", path: path("", nil, user.RoleAdmin), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin, owner),
		},
		{
			name: "role=staff:", path: path("", nil, user.RoleStaff), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, staff, naughty),
		},
		{
			name: "is_active=false", path: path("", bPtr(false)), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, naughty),
		},
		{
			name: "all combo", path: path("hero", bPtr(true), user.RoleStaff), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, staff),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieveUpdate(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "s3cr3t", nil, true)
	other := createUser(t, "Other", "other", "other@test.cd", "s3cr3t", nil, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "s3cr3t", []string{user.RoleAdmin}, true)

	t.Run("owner can retrieve self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, getToken(t, usr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}, rec)
	})

	t.Run("others get a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("admin can retrieve anyone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}, rec)
	})

	t.Run("owner cannot change own roles", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdmin}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, getToken(t, usr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("owner can change own name", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "New Name"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, getToken(t, usr), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		refreshed, err := usrRepo.GetUserByID(usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID(): %v", err)
		}
		if refreshed.Name != "New Name" {
			t.Errorf("name = %q; want %q", refreshed.Name, "New Name")
		}
	})

	t.Run("admin cannot grant a role above their own", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdminOwner}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "", nil, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("admin can delete others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+usr.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := usrRepo.GetUserByID(usr.ID); err != user.ErrNotFound {
			t.Errorf("GetUserByID() err = %v; want %v", err, user.ErrNotFound)
		}
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)

	createUser(t, "User", "awe", "awe@test.cd", "0ldPass!", nil, true)

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		body := marchallObj(t, PasswordResetRequest{Email: "ghost@test.cd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("known email gets a reset mail", func(t *testing.T) {
		body := marchallObj(t, PasswordResetRequest{Email: "awe@test.cd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "s3cr3t", nil, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := unmarshallObj(t, rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Errorf("expected a token, got %q (err %v)", resp.Token, err)
	}
}
