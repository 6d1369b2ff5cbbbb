package chapter

import "sort"

// Benchmark metrics
const (
	MetricMemberCount  = "member_count"
	MetricActiveEvents = "active_events"
	MetricEngagement   = "avg_engagement"
	MetricRetention    = "retention_rate"
	MetricEventFill    = "event_fill_rate"
)

var Metrics = []string{MetricMemberCount, MetricActiveEvents, MetricEngagement, MetricRetention, MetricEventFill}

type (
	// Stats holds the per-chapter values the benchmark compares.
	Stats struct {
		ChapterID     string  `json:"chapter_id"`
		MemberCount   float64 `json:"member_count"`
		ActiveEvents  float64 `json:"active_events"`
		AvgEngagement float64 `json:"avg_engagement"`
		RetentionRate float64 `json:"retention_rate"`
		EventFillRate float64 `json:"event_fill_rate"`
	}

	// Score ranks one metric against the peer set.
	Score struct {
		Metric      string  `json:"metric"`
		Value       float64 `json:"value"`
		PeerAverage float64 `json:"peer_average"`
		PeerMedian  float64 `json:"peer_median"`
		Percentile  float64 `json:"percentile"` // [0, 100]
	}

	Benchmark struct {
		ChapterID string  `json:"chapter_id"`
		PeerCount int     `json:"peer_count"`
		Estimated bool    `json:"estimated"` // true when the peer set was empty
		Scores    []Score `json:"scores"`
	}
)

func (s Stats) metric(name string) float64 {
	switch name {
	case MetricMemberCount:
		return s.MemberCount
	case MetricActiveEvents:
		return s.ActiveEvents
	case MetricEngagement:
		return s.AvgEngagement
	case MetricRetention:
		return s.RetentionRate
	case MetricEventFill:
		return s.EventFillRate
	}
	return 0
}

// ComputeBenchmark scores target against peers on each metric.
// Percentile rank is the share of peers with a strictly smaller value,
// scaled to [0, 100]. An empty peer set yields the 50th percentile on
// every metric with Estimated set, never a NaN.
func ComputeBenchmark(target Stats, peers []Stats) Benchmark {
	b := Benchmark{
		ChapterID: target.ChapterID,
		PeerCount: len(peers),
		Scores:    make([]Score, 0, len(Metrics)),
	}
	if len(peers) == 0 {
		b.Estimated = true
		for _, m := range Metrics {
			b.Scores = append(b.Scores, Score{
				Metric:      m,
				Value:       target.metric(m),
				PeerAverage: target.metric(m),
				PeerMedian:  target.metric(m),
				Percentile:  50,
			})
		}
		return b
	}

	for _, m := range Metrics {
		val := target.metric(m)

		var below int
		var sum float64
		vals := make([]float64, 0, len(peers))
		for _, p := range peers {
			pv := p.metric(m)
			if pv < val {
				below++
			}
			sum += pv
			vals = append(vals, pv)
		}

		b.Scores = append(b.Scores, Score{
			Metric:      m,
			Value:       val,
			PeerAverage: sum / float64(len(peers)),
			PeerMedian:  median(vals),
			Percentile:  100 * float64(below) / float64(len(peers)),
		})
	}
	return b
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
