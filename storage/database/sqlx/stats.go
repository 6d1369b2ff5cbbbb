package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/chapter"
)

type chapterStats struct {
	db *sqlx.DB
}

// NewChapterStats aggregates live member and event figures per chapter.
func NewChapterStats(db *sqlx.DB) chapter.StatsSource {
	return &chapterStats{db: db}
}

func (cs *chapterStats) ChapterStats(chapterID string) (chapter.Stats, error) {
	stats := chapter.Stats{ChapterID: chapterID}

	const memberQ = `
	SELECT
		COUNT(*) AS member_count,
		COALESCE(AVG(engagement_score), 0) AS avg_engagement,
		COUNT(*) FILTER (WHERE status = 'active') AS active,
		COUNT(*) FILTER (WHERE status = 'lapsed') AS lapsed
	FROM members WHERE chapter_id = $1`

	var m struct {
		MemberCount   float64 `db:"member_count"`
		AvgEngagement float64 `db:"avg_engagement"`
		Active        int     `db:"active"`
		Lapsed        int     `db:"lapsed"`
	}
	if err := cs.db.Get(&m, memberQ, chapterID); err != nil {
		return chapter.Stats{}, errors.Wrap(err, "aggregating member stats")
	}
	stats.MemberCount = m.MemberCount
	stats.AvgEngagement = m.AvgEngagement
	if m.Active+m.Lapsed > 0 {
		stats.RetentionRate = float64(m.Active) / float64(m.Active+m.Lapsed) * 100
	}

	const eventQ = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'scheduled') AS active_events,
		COALESCE(AVG(registered_count::float / capacity) FILTER (WHERE capacity > 0), 0) * 100 AS event_fill_rate
	FROM events WHERE chapter_id = $1`

	var e struct {
		ActiveEvents  float64 `db:"active_events"`
		EventFillRate float64 `db:"event_fill_rate"`
	}
	if err := cs.db.Get(&e, eventQ, chapterID); err != nil {
		return chapter.Stats{}, errors.Wrap(err, "aggregating event stats")
	}
	stats.ActiveEvents = e.ActiveEvents
	stats.EventFillRate = e.EventFillRate

	return stats, nil
}
