package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBenchmark(t *testing.T) {
	target := Stats{ChapterID: "ca", MemberCount: 400, ActiveEvents: 5, AvgEngagement: 70, RetentionRate: 0.9, EventFillRate: 0.8}
	peers := []Stats{
		{ChapterID: "tx", MemberCount: 100, ActiveEvents: 2, AvgEngagement: 50, RetentionRate: 0.8, EventFillRate: 0.5},
		{ChapterID: "fl", MemberCount: 200, ActiveEvents: 8, AvgEngagement: 60, RetentionRate: 0.95, EventFillRate: 0.9},
		{ChapterID: "ny", MemberCount: 300, ActiveEvents: 5, AvgEngagement: 90, RetentionRate: 0.7, EventFillRate: 0.8},
	}

	b := ComputeBenchmark(target, peers)

	assert.Equal(t, "ca", b.ChapterID)
	assert.Equal(t, 3, b.PeerCount)
	assert.False(t, b.Estimated)
	assert.Len(t, b.Scores, len(Metrics))

	byMetric := make(map[string]Score, len(b.Scores))
	for _, s := range b.Scores {
		byMetric[s.Metric] = s
	}

	// 400 members beats all 3 peers
	assert.InDelta(t, 100, byMetric[MetricMemberCount].Percentile, 1e-9)
	assert.InDelta(t, 200, byMetric[MetricMemberCount].PeerAverage, 1e-9)
	assert.InDelta(t, 200, byMetric[MetricMemberCount].PeerMedian, 1e-9)

	// 5 active events: strictly above 1 of 3 peers (ties don't count)
	assert.InDelta(t, 100.0/3, byMetric[MetricActiveEvents].Percentile, 1e-9)

	// engagement 70 beats 50 and 60
	assert.InDelta(t, 200.0/3, byMetric[MetricEngagement].Percentile, 1e-9)
}

func TestComputeBenchmark_bounds(t *testing.T) {
	// percentile stays in [0, 100] for extreme targets
	low := Stats{ChapterID: "low"}
	high := Stats{ChapterID: "high", MemberCount: 1e9, ActiveEvents: 1e9, AvgEngagement: 100, RetentionRate: 1, EventFillRate: 1}
	peers := []Stats{
		{MemberCount: 10, ActiveEvents: 1, AvgEngagement: 40, RetentionRate: 0.5, EventFillRate: 0.3},
		{MemberCount: 20, ActiveEvents: 2, AvgEngagement: 60, RetentionRate: 0.6, EventFillRate: 0.4},
	}

	for _, target := range []Stats{low, high} {
		for _, s := range ComputeBenchmark(target, peers).Scores {
			if s.Percentile < 0 || s.Percentile > 100 {
				t.Errorf("ComputeBenchmark() %s percentile = %v; want within [0, 100]", s.Metric, s.Percentile)
			}
		}
	}
}

func TestComputeBenchmark_noPeers(t *testing.T) {
	target := Stats{ChapterID: "solo", MemberCount: 42}

	b := ComputeBenchmark(target, nil)

	assert.True(t, b.Estimated)
	assert.Equal(t, 0, b.PeerCount)
	for _, s := range b.Scores {
		assert.InDelta(t, 50, s.Percentile, 1e-9, s.Metric)
	}
}
