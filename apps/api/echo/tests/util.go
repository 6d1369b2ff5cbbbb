package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/abelmak/chapterdesk/apps/api/echo"
	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/campaign"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/event"
	"github.com/abelmak/chapterdesk/core/finance"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
	emailsvc "github.com/abelmak/chapterdesk/services/email"
	logsvc "github.com/abelmak/chapterdesk/services/logger"
	inmemdb "github.com/abelmak/chapterdesk/storage/database/inmem"
)

var (
	conf *core.Config

	usrRepo     user.Repository
	chapterRepo chapter.Repository
	memberRepo  member.Repository
	eventRepo   event.Repository
	financeRepo finance.Repository
	auditSvc    audit.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf = &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "ChapterDesk",
		SecretKey:                 []byte("secret"),
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
		},
	}
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)

	// set up store & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	chapterRepo = inmemdb.NewChapterRepository(db)
	memberRepo = inmemdb.NewMemberRepository(db)
	eventRepo = inmemdb.NewEventRepository(db)
	financeRepo = inmemdb.NewTransactionRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(conf, usrRepo, mailSvc)
	chapterSvc := chapter.NewService(chapterRepo, inmemdb.NewChapterStats(db))
	memberSvc := member.NewService(memberRepo, mailSvc)
	eventSvc := event.NewService(eventRepo)
	financeSvc := finance.NewService(financeRepo)
	campaignSvc := campaign.NewService(inmemdb.NewCampaignRepository(db), memberSvc, mailSvc)
	auditSvc = audit.NewService(inmemdb.NewAuditRepository(db), logger)

	validate := validator.New()
	translator := newTranslator(t)
	core.InitValidators(validate, translator)
	chapter.InitValidators(validate, translator)
	member.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			ChapterSvc:     chapterSvc,
			MemberSvc:      memberSvc,
			EventSvc:       eventSvc,
			CampaignSvc:    campaignSvc,
			FinanceSvc:     financeSvc,
			AuditSvc:       auditSvc,
		},
	)
}

func newTranslator(t *testing.T) ut.Translator {
	t.Helper()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, found := uni.GetTranslator("en")
	if !found {
		t.Fatal("translator not found")
	}
	return translator
}

func createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createChapter(t *testing.T, name, typ, parentID, state, city string) chapter.Chapter {
	t.Helper()

	now := time.Now().UTC()
	chp, err := chapterRepo.CreateChapter(chapter.Chapter{
		ID:              uuid.New().String(),
		Name:            name,
		Type:            typ,
		ParentChapterID: parentID,
		State:           state,
		City:            city,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateChapter(): %v", err)
	}
	return chp
}

func createMember(t *testing.T, chapterID, first, last, email, status string, engagement int) member.Member {
	t.Helper()

	now := time.Now().UTC()
	mbr, err := memberRepo.CreateMember(member.Member{
		ID:              uuid.New().String(),
		ChapterID:       chapterID,
		FirstName:       first,
		LastName:        last,
		Email:           email,
		Country:         "USA",
		Status:          status,
		EngagementScore: engagement,
		MemberSince:     now.AddDate(-1, 0, 0),
		RenewalDate:     now.AddDate(0, 6, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateMember(): %v", err)
	}
	return mbr
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func unmarshallObj(t *testing.T, data []byte, obj interface{}) error {
	t.Helper()
	return json.Unmarshal(data, obj)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
