package member

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core"
)

var (
	// errors
	ErrNotFound    = errors.New("member not found")
	ErrEmailExists = errors.New("a member with this email already exists")

	renewalReminderTemplate = "renewal_reminder"
)

type (
	Repository interface {
		CheckMemberEmailUniqueness(email string, excludedMembers ...Member) error
		CreateMember(m Member) (Member, error)
		QueryAllMembers() ([]Member, error)
		GetMemberByID(id string) (Member, error)
		GetMemberByEmail(email string) (Member, error)
		// FilterMembers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Member.FirstName, Member.LastName, Member.Email or Member.Company.
		FilterMembers(filter QueryFilter) ([]Member, error)
		UpdateMember(m Member, engagement *int, ceCredits *float64) (Member, error)
		DeleteMembersByID(ids ...string) error
	}

	Service interface {
		CheckEmailUniqueness(email string, exclMembers ...Member) error
		Create(nm NewMember) (Member, error)
		Query(filter *QueryFilter) ([]Member, error)
		GetByID(id string) (Member, error)
		GetByEmail(email string) (Member, error)
		Update(id string, um UpdateMember) (Member, error)
		Delete(ids ...string) error
		// SendRenewalReminders emails every active member whose renewal date
		// falls within the window and returns how many reminders went out.
		SendRenewalReminders(window time.Duration, chapterName func(id string) string) (int, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) CheckEmailUniqueness(email string, exclMembers ...Member) error {
	if err := svc.repo.CheckMemberEmailUniqueness(email, exclMembers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nm NewMember) (Member, error) {
	now := time.Now().UTC()
	status := nm.Status
	if status == "" {
		status = StatusPending
	}
	mbr := Member{
		ID:              uuid.New().String(),
		ChapterID:       nm.ChapterID,
		FirstName:       nm.FirstName,
		LastName:        nm.LastName,
		Email:           nm.Email,
		Phone:           nm.Phone,
		AddressLine1:    nm.AddressLine1,
		AddressLine2:    nm.AddressLine2,
		City:            nm.City,
		State:           nm.State,
		ZipCode:         nm.ZipCode,
		Country:         nm.Country,
		Status:          status,
		EngagementScore: nm.EngagementScore,
		CECredits:       nm.CECredits,
		MemberSince:     now,
		RenewalDate:     now.AddDate(1, 0, 0),
		Company:         nm.Company,
		JobTitle:        nm.JobTitle,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateMember(mbr)
}

func (svc *service) Query(filter *QueryFilter) ([]Member, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllMembers()
	}
	return svc.repo.FilterMembers(*filter)
}

func (svc *service) GetByID(id string) (Member, error) {
	return svc.repo.GetMemberByID(id)
}

func (svc *service) GetByEmail(email string) (Member, error) {
	return svc.repo.GetMemberByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) Update(id string, um UpdateMember) (Member, error) {
	mbr := Member{
		ID:           id,
		ChapterID:    um.ChapterID,
		FirstName:    um.FirstName,
		LastName:     um.LastName,
		Email:        um.Email,
		Phone:        um.Phone,
		AddressLine1: um.AddressLine1,
		AddressLine2: um.AddressLine2,
		City:         um.City,
		State:        um.State,
		ZipCode:      um.ZipCode,
		Country:      um.Country,
		Status:       um.Status,
		Company:      um.Company,
		JobTitle:     um.JobTitle,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateMember(mbr, um.EngagementScore, um.CECredits)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteMembersByID(ids...)
}

func (svc *service) SendRenewalReminders(window time.Duration, chapterName func(id string) string) (int, error) {
	members, err := svc.repo.QueryAllMembers()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var msgs []*core.EmailMessage
	for _, mbr := range members {
		if !mbr.IsActive() || !mbr.RenewalDue(now, window) {
			continue
		}
		name := ""
		if chapterName != nil {
			name = chapterName(mbr.ChapterID)
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: mbr.Name(), Address: mbr.Email}},
			Subject:      fmt.Sprintf("Your membership renews on %s", mbr.RenewalDate.Format("Jan 2, 2006")),
			TemplateName: renewalReminderTemplate,
			TemplateData: struct {
				FirstName   string
				ChapterName string
				RenewalDate string
			}{mbr.FirstName, name, mbr.RenewalDate.Format("Jan 2, 2006")},
		})
	}

	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return len(msgs), nil
}
