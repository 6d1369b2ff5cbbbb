package chapter

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("chapter not found")
)

type (
	Repository interface {
		CreateChapter(c Chapter) (Chapter, error)
		QueryAllChapters() ([]Chapter, error)
		GetChapterByID(id string) (Chapter, error)
		// FilterChapters applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Chapter.Name, Chapter.State or Chapter.City.
		FilterChapters(filter QueryFilter) ([]Chapter, error)
		UpdateChapter(c Chapter) (Chapter, error)
		DeleteChaptersByID(ids ...string) error
	}

	// StatsSource aggregates live member/event figures for one chapter.
	StatsSource interface {
		ChapterStats(chapterID string) (Stats, error)
	}

	Service interface {
		Create(nc NewChapter) (Chapter, error)
		Query(filter *QueryFilter) ([]Chapter, error)
		GetByID(id string) (Chapter, error)
		Tree() (Tree, error)
		Children(id string) ([]Chapter, error)
		Benchmark(id string) (Benchmark, error)
		Update(id string, uc UpdateChapter) (Chapter, error)
		BulkUpdate(patch BulkPatch) (BulkResult, error)
		Delete(ids ...string) error
	}

	service struct {
		repo  Repository
		stats StatsSource
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stats StatsSource) Service {
	return &service{repo: repo, stats: stats}
}

func (svc *service) Create(nc NewChapter) (Chapter, error) {
	now := time.Now().UTC()
	chp := Chapter{
		ID:              uuid.New().String(),
		Name:            nc.Name,
		Type:            nc.Type,
		ParentChapterID: nc.ParentChapterID,
		State:           nc.State,
		City:            nc.City,
		Region:          nc.Region,
		ContactEmail:    nc.ContactEmail,
		President:       nc.President,
		WebsiteURL:      nc.WebsiteURL,
		Description:     nc.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateChapter(chp)
}

func (svc *service) Query(filter *QueryFilter) ([]Chapter, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllChapters()
	}
	return svc.repo.FilterChapters(*filter)
}

func (svc *service) GetByID(id string) (Chapter, error) {
	return svc.repo.GetChapterByID(id)
}

func (svc *service) Tree() (Tree, error) {
	chapters, err := svc.repo.QueryAllChapters()
	if err != nil {
		return Tree{}, err
	}
	return Partition(chapters), nil
}

func (svc *service) Children(id string) ([]Chapter, error) {
	if _, err := svc.repo.GetChapterByID(id); err != nil {
		return nil, err
	}
	chapters, err := svc.repo.QueryAllChapters()
	if err != nil {
		return nil, err
	}
	return ChildrenOf(chapters, id), nil
}

// Benchmark scores a chapter against all chapters of the same type.
func (svc *service) Benchmark(id string) (Benchmark, error) {
	target, err := svc.repo.GetChapterByID(id)
	if err != nil {
		return Benchmark{}, err
	}
	all, err := svc.repo.QueryAllChapters()
	if err != nil {
		return Benchmark{}, err
	}

	targetStats, err := svc.stats.ChapterStats(target.ID)
	if err != nil {
		return Benchmark{}, err
	}

	var peers []Stats
	for _, peer := range all {
		if peer.ID == target.ID || peer.Type != target.Type {
			continue
		}
		ps, err := svc.stats.ChapterStats(peer.ID)
		if err != nil {
			return Benchmark{}, err
		}
		peers = append(peers, ps)
	}
	return ComputeBenchmark(targetStats, peers), nil
}

func (svc *service) Update(id string, uc UpdateChapter) (Chapter, error) {
	chp := Chapter{
		ID:              id,
		Name:            uc.Name,
		Type:            uc.Type,
		ParentChapterID: uc.ParentChapterID,
		State:           uc.State,
		City:            uc.City,
		Region:          uc.Region,
		ContactEmail:    uc.ContactEmail,
		President:       uc.President,
		WebsiteURL:      uc.WebsiteURL,
		Description:     uc.Description,
		UpdatedAt:       time.Now().UTC(),
	}
	return svc.repo.UpdateChapter(chp)
}

// BulkUpdate applies the patch record by record; a mid-batch failure
// leaves earlier writes applied and is tallied, not rolled back.
func (svc *service) BulkUpdate(patch BulkPatch) (BulkResult, error) {
	var res BulkResult
	for _, id := range patch.IDs {
		chp, err := svc.repo.GetChapterByID(id)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, BulkItemError{ID: id, Error: err.Error()})
			continue
		}

		applyPatch(&chp, patch.Fields, patch.Strategy)
		chp.UpdatedAt = time.Now().UTC()

		if _, err = svc.repo.UpdateChapter(chp); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, BulkItemError{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

func applyPatch(chp *Chapter, fields map[string]string, strategy string) {
	for field, val := range fields {
		if strategy == BulkClear {
			val = ""
		}
		switch field {
		case "region":
			chp.Region = val
		case "contact_email":
			chp.ContactEmail = val
		case "president":
			chp.President = val
		case "website_url":
			chp.WebsiteURL = val
		case "description":
			chp.Description = val
		}
	}
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteChaptersByID(ids...)
}
