package inmemdb

import (
	"github.com/abelmak/chapterdesk/core/campaign"
)

type campaignRepository struct {
	db *campaignTable
}

func NewCampaignRepository(db *DB) campaign.Repository {
	return &campaignRepository{db: db.campaign}
}

func (repo *campaignRepository) CreateCampaign(cmp campaign.Campaign) (campaign.Campaign, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[cmp.ID] = &cmp
	return cmp, nil
}

func (repo *campaignRepository) QueryAllCampaigns() ([]campaign.Campaign, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	campaigns := make([]campaign.Campaign, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		campaigns = append(campaigns, *c)
	}
	return campaigns, nil
}

func (repo *campaignRepository) GetCampaignByID(id string) (campaign.Campaign, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cmp, ok := repo.db.table[id]; ok {
		return *cmp, nil
	}
	return campaign.Campaign{}, campaign.ErrNotFound
}

func (repo *campaignRepository) UpdateCampaign(cmp campaign.Campaign, audience *campaign.Audience) (campaign.Campaign, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origCmp, ok := repo.db.table[cmp.ID]
	if !ok {
		return campaign.Campaign{}, campaign.ErrNotFound
	}
	if cmp.Name != "" {
		origCmp.Name = cmp.Name
	}
	if cmp.Subject != "" {
		origCmp.Subject = cmp.Subject
	}
	if cmp.Body != "" {
		origCmp.Body = cmp.Body
	}
	if cmp.Status != "" {
		origCmp.Status = cmp.Status
	}
	if cmp.SentAt != nil {
		origCmp.SentAt = cmp.SentAt
		origCmp.SentCount = cmp.SentCount
	}
	if audience != nil {
		origCmp.Audience = *audience
	}
	origCmp.UpdatedAt = cmp.UpdatedAt

	repo.db.table[cmp.ID] = origCmp
	return *origCmp, nil
}

func (repo *campaignRepository) DeleteCampaignsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
