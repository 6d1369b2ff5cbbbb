package member_test

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/member"
	emailsvc "github.com/abelmak/chapterdesk/services/email"
	logsvc "github.com/abelmak/chapterdesk/services/logger"
	inmemdb "github.com/abelmak/chapterdesk/storage/database/inmem"
)

func setupService(t *testing.T) (member.Service, member.Repository) {
	t.Helper()

	conf := &core.Config{TestMode: true, AppName: "ChapterDesk", FrontendBaseURL: "http://localhost:3000"}
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	core.ParseEmailTemplates(conf, logger)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	repo := inmemdb.NewMemberRepository(db)
	return member.NewService(repo, emailsvc.NewConsoleServiceMock(conf)), repo
}

func seedMember(t *testing.T, repo member.Repository, email, status string, renewal time.Time) member.Member {
	t.Helper()

	now := time.Now().UTC()
	mbr, err := repo.CreateMember(member.Member{
		ID:          uuid.New().String(),
		ChapterID:   "chp1",
		FirstName:   "Test",
		LastName:    "Member",
		Email:       email,
		Phone:       "555-0100",
		City:        "Austin",
		Status:      status,
		Company:     "Acme Insurance",
		JobTitle:    "Broker",
		MemberSince: now.AddDate(-1, 0, 0),
		RenewalDate: renewal,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateMember(): %v", err)
	}
	return mbr
}

func TestService_SendRenewalReminders(t *testing.T) {
	svc, repo := setupService(t)

	now := time.Now().UTC()
	window := 30 * 24 * time.Hour

	seedMember(t, repo, "due@test.cd", member.StatusActive, now.AddDate(0, 0, 10))
	seedMember(t, repo, "far@test.cd", member.StatusActive, now.AddDate(0, 6, 0))
	seedMember(t, repo, "lapsed@test.cd", member.StatusLapsed, now.AddDate(0, 0, 10))

	emailsvc.SentMessages = nil

	sent, err := svc.SendRenewalReminders(window, func(id string) string { return "Austin" })
	if err != nil {
		t.Fatalf("SendRenewalReminders(): %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d; want 1", sent)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("got %d messages; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != "due@test.cd" {
		t.Errorf("recipient = %q; want due@test.cd", msg.To[0].Address)
	}
	if msg.TextContent == "" {
		t.Error("message body was not rendered")
	}
}

func TestService_Update_partial(t *testing.T) {
	svc, repo := setupService(t)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	member.InitValidators(validate, translator)

	mbr := seedMember(t, repo, "mem@test.cd", member.StatusActive, time.Now().UTC().AddDate(0, 6, 0))

	score := 85
	um := member.UpdateMember{EngagementScore: &score}
	if err := um.Validate(mbr, validate, svc); err != nil {
		t.Fatalf("Validate(): %v", err)
	}
	got, err := svc.Update(mbr.ID, um)
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if got.EngagementScore != 85 {
		t.Errorf("engagement_score = %d; want 85", got.EngagementScore)
	}
	if got.Email != mbr.Email || got.Status != mbr.Status {
		t.Errorf("member = %+v; untouched fields must survive", got)
	}
	if got.Phone != mbr.Phone || got.City != mbr.City || got.Company != mbr.Company || got.JobTitle != mbr.JobTitle {
		t.Errorf("member = %+v; untouched optional fields must survive", got)
	}
}
