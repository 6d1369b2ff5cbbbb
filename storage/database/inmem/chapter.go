package inmemdb

import (
	"strings"

	"github.com/abelmak/chapterdesk/core/chapter"
)

type chapterRepository struct {
	db *chapterTable
}

func NewChapterRepository(db *DB) chapter.Repository {
	return &chapterRepository{db: db.chapter}
}

func (repo *chapterRepository) query() []chapter.Chapter {
	chapters := make([]chapter.Chapter, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		chapters = append(chapters, *c)
	}
	return chapters
}

func (repo *chapterRepository) CreateChapter(chp chapter.Chapter) (chapter.Chapter, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[chp.ID] = &chp
	return chp, nil
}

func (repo *chapterRepository) QueryAllChapters() ([]chapter.Chapter, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *chapterRepository) GetChapterByID(id string) (chapter.Chapter, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if chp, ok := repo.db.table[id]; ok {
		return *chp, nil
	}
	return chapter.Chapter{}, chapter.ErrNotFound
}

func (repo *chapterRepository) FilterChapters(filter chapter.QueryFilter) ([]chapter.Chapter, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	chapters := repo.query()

	// chapters with search keyword matching any Name, State or City ?
	if filter.Search != "" {
		var filtered []chapter.Chapter
		search := strings.ToLower(filter.Search)
		for _, c := range chapters {
			if strings.Contains(strings.ToLower(c.Name), search) ||
				strings.Contains(strings.ToLower(c.State), search) ||
				strings.Contains(strings.ToLower(c.City), search) {
				filtered = append(filtered, c)
			}
		}
		chapters = filtered
	}
	if chapters != nil && len(filter.Types) > 0 {
		var filtered []chapter.Chapter
		for _, c := range chapters {
			for _, t := range filter.Types {
				if c.Type == t {
					filtered = append(filtered, c)
					break
				}
			}
		}
		chapters = filtered
	}
	if chapters != nil && filter.State != "" {
		var filtered []chapter.Chapter
		for _, c := range chapters {
			if strings.EqualFold(c.State, filter.State) {
				filtered = append(filtered, c)
			}
		}
		chapters = filtered
	}
	if chapters != nil && filter.ParentID != "" {
		var filtered []chapter.Chapter
		for _, c := range chapters {
			if c.ParentChapterID == filter.ParentID {
				filtered = append(filtered, c)
			}
		}
		chapters = filtered
	}

	return chapters, nil
}

func (repo *chapterRepository) UpdateChapter(chp chapter.Chapter) (chapter.Chapter, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origChp, ok := repo.db.table[chp.ID]
	if !ok {
		return chapter.Chapter{}, chapter.ErrNotFound
	}
	if chp.Name != "" {
		origChp.Name = chp.Name
	}
	if chp.Type != "" {
		origChp.Type = chp.Type
	}
	origChp.ParentChapterID = chp.ParentChapterID
	origChp.State = chp.State
	origChp.City = chp.City
	origChp.Region = chp.Region
	origChp.ContactEmail = chp.ContactEmail
	origChp.President = chp.President
	origChp.WebsiteURL = chp.WebsiteURL
	origChp.Description = chp.Description
	origChp.UpdatedAt = chp.UpdatedAt

	repo.db.table[chp.ID] = origChp
	return *origChp, nil
}

func (repo *chapterRepository) DeleteChaptersByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
