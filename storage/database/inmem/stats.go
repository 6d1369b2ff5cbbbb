package inmemdb

import (
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/member"
)

type chapterStats struct {
	members *memberTable
	events  *eventTable
}

// NewChapterStats aggregates live member and event figures per chapter.
func NewChapterStats(db *DB) chapter.StatsSource {
	return &chapterStats{members: db.member, events: db.event}
}

func (cs *chapterStats) ChapterStats(chapterID string) (chapter.Stats, error) {
	stats := chapter.Stats{ChapterID: chapterID}

	cs.members.RLock()
	var active, lapsed int
	var engagementSum float64
	for _, m := range cs.members.table {
		if m.ChapterID != chapterID {
			continue
		}
		stats.MemberCount++
		engagementSum += float64(m.EngagementScore)
		switch m.Status {
		case member.StatusActive:
			active++
		case member.StatusLapsed:
			lapsed++
		}
	}
	cs.members.RUnlock()

	if stats.MemberCount > 0 {
		stats.AvgEngagement = engagementSum / stats.MemberCount
	}
	if active+lapsed > 0 {
		stats.RetentionRate = float64(active) / float64(active+lapsed) * 100
	}

	cs.events.RLock()
	var capped int
	var fillSum float64
	for _, e := range cs.events.table {
		if e.ChapterID != chapterID {
			continue
		}
		if e.IsActive() {
			stats.ActiveEvents++
		}
		if e.Capacity > 0 {
			capped++
			fillSum += e.FillRate()
		}
	}
	cs.events.RUnlock()

	if capped > 0 {
		stats.EventFillRate = fillSum / float64(capped) * 100
	}
	return stats, nil
}
