package inmemdb

import (
	"strings"

	"github.com/abelmak/chapterdesk/core/member"
)

type memberRepository struct {
	db *memberTable
}

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) query() []member.Member {
	members := make([]member.Member, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		members = append(members, *m)
	}
	return members
}

func (repo *memberRepository) CheckMemberEmailUniqueness(email string, excludedMembers ...member.Member) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, mbr := range repo.query() {
		if mbr.Email != email {
			continue
		}
		excluded := false
		for _, excl := range excludedMembers {
			if excl.ID == mbr.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return member.ErrEmailExists
		}
	}
	return nil
}

func (repo *memberRepository) CreateMember(mbr member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *memberRepository) QueryAllMembers() ([]member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *memberRepository) GetMemberByID(id string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mbr, ok := repo.db.table[id]; ok {
		return *mbr, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByEmail(email string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, mbr := range repo.query() {
		if mbr.Email == email {
			return mbr, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) FilterMembers(filter member.QueryFilter) ([]member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.query()

	// members with search keyword matching any FirstName, LastName, Email or Company ?
	if filter.Search != "" {
		var filtered []member.Member
		search := strings.ToLower(filter.Search)
		for _, m := range members {
			if strings.Contains(strings.ToLower(m.FirstName), search) ||
				strings.Contains(strings.ToLower(m.LastName), search) ||
				strings.Contains(strings.ToLower(m.Email), search) ||
				strings.Contains(strings.ToLower(m.Company), search) {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	if members != nil && len(filter.Statuses) > 0 {
		var filtered []member.Member
		for _, m := range members {
			for _, s := range filter.Statuses {
				if m.Status == s {
					filtered = append(filtered, m)
					break
				}
			}
		}
		members = filtered
	}
	if members != nil && filter.ChapterID != "" {
		var filtered []member.Member
		for _, m := range members {
			if m.ChapterID == filter.ChapterID {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	if members != nil && filter.EngagementMin != nil {
		var filtered []member.Member
		for _, m := range members {
			if m.EngagementScore >= *filter.EngagementMin {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	if members != nil && filter.EngagementMax != nil {
		var filtered []member.Member
		for _, m := range members {
			if m.EngagementScore <= *filter.EngagementMax {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	if members != nil && !filter.RenewalFrom.IsZero() {
		var filtered []member.Member
		timeUTC := filter.RenewalFrom.UTC()
		for _, m := range members {
			if m.RenewalDate.Equal(timeUTC) || m.RenewalDate.After(timeUTC) {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}
	if members != nil && !filter.RenewalTo.IsZero() {
		var filtered []member.Member
		timeUTC := filter.RenewalTo.UTC()
		for _, m := range members {
			if m.RenewalDate.Before(timeUTC) || m.RenewalDate.Equal(timeUTC) {
				filtered = append(filtered, m)
			}
		}
		members = filtered
	}

	return members, nil
}

func (repo *memberRepository) UpdateMember(mbr member.Member, engagement *int, ceCredits *float64) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origMbr, ok := repo.db.table[mbr.ID]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	if mbr.Status != "" {
		origMbr.Status = mbr.Status
	}
	if engagement != nil {
		origMbr.EngagementScore = *engagement
	}
	if ceCredits != nil {
		origMbr.CECredits = *ceCredits
	}
	if !mbr.RenewalDate.IsZero() {
		origMbr.RenewalDate = mbr.RenewalDate
	}
	origMbr.ChapterID = mbr.ChapterID
	origMbr.FirstName = mbr.FirstName
	origMbr.LastName = mbr.LastName
	origMbr.Email = mbr.Email
	origMbr.Phone = mbr.Phone
	origMbr.AddressLine1 = mbr.AddressLine1
	origMbr.AddressLine2 = mbr.AddressLine2
	origMbr.City = mbr.City
	origMbr.State = mbr.State
	origMbr.ZipCode = mbr.ZipCode
	origMbr.Country = mbr.Country
	origMbr.Company = mbr.Company
	origMbr.JobTitle = mbr.JobTitle
	origMbr.UpdatedAt = mbr.UpdatedAt

	repo.db.table[mbr.ID] = origMbr
	return *origMbr, nil
}

func (repo *memberRepository) DeleteMembersByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
