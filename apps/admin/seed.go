package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/event"
	"github.com/abelmak/chapterdesk/core/finance"
	"github.com/abelmak/chapterdesk/core/member"
)

const seedMemberCount = 200

var (
	seedFirstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
		"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
		"Thomas", "Sarah", "Christopher", "Karen", "Daniel", "Lisa", "Matthew", "Nancy",
	}
	seedLastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Moore", "Jackson", "Lee",
		"Thompson", "White", "Harris", "Clark", "Lewis", "Walker", "Young", "King",
	}
	seedJobTitles = []string{
		"Benefits Consultant", "Insurance Broker", "Employee Benefits Advisor",
		"Account Executive", "Senior Consultant", "Benefits Manager", "Agency Owner",
		"Account Manager", "Independent Broker", "Benefits Specialist",
	}
	seedCompanyTypes = []string{
		"Insurance Agency", "Benefits Consulting Firm", "Independent Practice",
		"Brokerage House", "Insurance Services", "Advisory Services",
	}
	seedCitiesByState = map[string][]string{
		"CA": {"Los Angeles", "San Francisco", "San Diego", "Sacramento"},
		"TX": {"Houston", "Dallas", "Austin", "San Antonio"},
		"FL": {"Miami", "Tampa", "Orlando", "Jacksonville"},
		"NY": {"New York", "Buffalo", "Rochester", "Albany"},
	}
)

// seed loads a small demo dataset: a national chapter, state and local
// chapters beneath it, members with realistic status/engagement spreads,
// a few events and dues transactions.
func (cli *commandLine) seed() error {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	national := chapter.Chapter{
		ID:        uuid.New().String(),
		Name:      "National",
		Type:      chapter.TypeNational,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := cli.chapterRepo.CreateChapter(national); err != nil {
		return err
	}

	var locals []chapter.Chapter
	for state, cities := range seedCitiesByState {
		stateChp := chapter.Chapter{
			ID:              uuid.New().String(),
			Name:            state + " Association",
			Type:            chapter.TypeState,
			ParentChapterID: national.ID,
			State:           state,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := cli.chapterRepo.CreateChapter(stateChp); err != nil {
			return err
		}
		for _, city := range cities {
			local := chapter.Chapter{
				ID:              uuid.New().String(),
				Name:            city + " Chapter",
				Type:            chapter.TypeLocal,
				ParentChapterID: stateChp.ID,
				State:           state,
				City:            city,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if _, err := cli.chapterRepo.CreateChapter(local); err != nil {
				return err
			}
			locals = append(locals, local)
		}
	}

	for i := 0; i < seedMemberCount; i++ {
		chp := locals[rnd.Intn(len(locals))]
		first := seedFirstNames[rnd.Intn(len(seedFirstNames))]
		last := seedLastNames[rnd.Intn(len(seedLastNames))]
		since := now.AddDate(-rnd.Intn(15), -rnd.Intn(12), 0)
		renewal := since.AddDate(1, 0, 0)
		for renewal.Before(now) {
			renewal = renewal.AddDate(1, 0, 0)
		}

		mbr := member.Member{
			ID:              uuid.New().String(),
			ChapterID:       chp.ID,
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			City:            chp.City,
			State:           chp.State,
			Country:         "USA",
			Status:          seedStatus(rnd),
			EngagementScore: seedEngagementScore(rnd),
			CECredits:       seedCECredits(rnd, since, now),
			MemberSince:     since,
			RenewalDate:     renewal,
			Company:         last + " " + seedCompanyTypes[rnd.Intn(len(seedCompanyTypes))],
			JobTitle:        seedJobTitles[rnd.Intn(len(seedJobTitles))],
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := cli.memberRepo.CreateMember(mbr); err != nil {
			return err
		}

		if mbr.Status == member.StatusActive {
			txn := finance.Transaction{
				ID:         uuid.New().String(),
				MemberID:   mbr.ID,
				Amount:     12500, // annual dues
				Kind:       finance.KindDues,
				Status:     finance.StatusCompleted,
				OccurredAt: renewal.AddDate(-1, 0, 0),
				CreatedAt:  now,
			}
			if _, err := cli.financeRepo.CreateTransaction(txn); err != nil {
				return err
			}
		}
	}

	for _, chp := range locals {
		evt := event.Event{
			ID:          uuid.New().String(),
			ChapterID:   chp.ID,
			Name:        chp.City + " Quarterly Mixer",
			Description: "Networking and CE credit session.",
			StartsAt:    now.AddDate(0, 1, 0),
			EndsAt:      now.AddDate(0, 1, 0).Add(3 * time.Hour),
			Capacity:    50,
			Status:      event.StatusScheduled,
			TicketTypes: []event.TicketType{
				{Name: "member", PriceCents: 2500, Quota: 40},
				{Name: "guest", PriceCents: 5000, Quota: 10},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := cli.eventRepo.CreateEvent(evt); err != nil {
			return err
		}
	}

	fmt.Printf("seeded %d chapters, %d members\n", len(locals)+len(seedCitiesByState)+1, seedMemberCount)
	return nil
}

// 90% active, 5% lapsed, 3% inactive, 2% pending
func seedStatus(rnd *rand.Rand) string {
	switch r := rnd.Float64(); {
	case r < 0.90:
		return member.StatusActive
	case r < 0.95:
		return member.StatusLapsed
	case r < 0.98:
		return member.StatusInactive
	default:
		return member.StatusPending
	}
}

// 20% highly engaged (80-100), 50% moderate (50-79), 30% low (0-49)
func seedEngagementScore(rnd *rand.Rand) int {
	switch r := rnd.Float64(); {
	case r < 0.2:
		return 80 + rnd.Intn(21)
	case r < 0.7:
		return 50 + rnd.Intn(30)
	default:
		return rnd.Intn(50)
	}
}

// roughly 8-18 credits a year, capped at 150
func seedCECredits(rnd *rand.Rand, since, now time.Time) float64 {
	years := now.Sub(since).Hours() / 24 / 365
	total := years * (8 + rnd.Float64()*10)
	if total > 150 {
		total = 150
	}
	return float64(int(total*100)) / 100
}
