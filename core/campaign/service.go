package campaign

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/member"
)

var (
	// errors
	ErrNotFound    = errors.New("campaign not found")
	ErrAlreadySent = errors.New("campaign has already been sent")
)

type (
	Repository interface {
		CreateCampaign(c Campaign) (Campaign, error)
		QueryAllCampaigns() ([]Campaign, error)
		GetCampaignByID(id string) (Campaign, error)
		UpdateCampaign(c Campaign, audience *Audience) (Campaign, error)
		DeleteCampaignsByID(ids ...string) error
	}

	Service interface {
		Create(nc NewCampaign) (Campaign, error)
		QueryAll() ([]Campaign, error)
		GetByID(id string) (Campaign, error)
		Update(id string, uc UpdateCampaign) (Campaign, error)
		// Send resolves the audience and mails the campaign body to every
		// recipient. Sending a campaign twice is rejected.
		Send(id string) (Campaign, error)
		Delete(ids ...string) error
	}

	service struct {
		repo      Repository
		memberSvc member.Service
		mailSvc   core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, memberSvc member.Service, mailSvc core.EmailService) Service {
	return &service{repo: repo, memberSvc: memberSvc, mailSvc: mailSvc}
}

func (svc *service) Create(nc NewCampaign) (Campaign, error) {
	now := time.Now().UTC()
	cmp := Campaign{
		ID:        uuid.New().String(),
		ChapterID: nc.ChapterID,
		Name:      nc.Name,
		Subject:   nc.Subject,
		Body:      nc.Body,
		Audience:  nc.Audience,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCampaign(cmp)
}

func (svc *service) QueryAll() ([]Campaign, error) {
	return svc.repo.QueryAllCampaigns()
}

func (svc *service) GetByID(id string) (Campaign, error) {
	return svc.repo.GetCampaignByID(id)
}

func (svc *service) Update(id string, uc UpdateCampaign) (Campaign, error) {
	cmp := Campaign{
		ID:        id,
		Name:      uc.Name,
		Subject:   uc.Subject,
		Body:      uc.Body,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateCampaign(cmp, uc.Audience)
}

func (svc *service) Send(id string) (Campaign, error) {
	cmp, err := svc.repo.GetCampaignByID(id)
	if err != nil {
		return Campaign{}, err
	}
	if cmp.Status == StatusSent {
		return Campaign{}, core.NewValidationError(ErrAlreadySent)
	}

	recipients, err := svc.resolveAudience(cmp)
	if err != nil {
		return Campaign{}, err
	}

	msgs := make([]*core.EmailMessage, 0, len(recipients))
	for _, mbr := range recipients {
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: mbr.Name(), Address: mbr.Email}},
			Subject: cmp.Subject,
			BodyStr: cmp.Body,
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}

	now := time.Now().UTC()
	cmp.Status = StatusSent
	cmp.SentCount = len(msgs)
	cmp.SentAt = &now
	cmp.UpdatedAt = now
	return svc.repo.UpdateCampaign(cmp, nil)
}

func (svc *service) resolveAudience(cmp Campaign) ([]member.Member, error) {
	filter := member.QueryFilter{
		ChapterID:     cmp.Audience.ChapterID,
		Statuses:      cmp.Audience.Statuses,
		EngagementMin: cmp.Audience.EngagementMin,
	}
	if filter.ChapterID == "" && cmp.ChapterID != "" {
		filter.ChapterID = cmp.ChapterID
	}
	return svc.memberSvc.Query(&filter)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteCampaignsByID(ids...)
}
