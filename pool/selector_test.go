package pool

import (
	"testing"
	"time"
)

func TestSelectEmptyPoolReturnsNone(t *testing.T) {
	s := newTestStore(t)
	if _, ok := s.Select(SelectOptions{}); ok {
		t.Fatalf("expected no descriptor from an empty pool")
	}
}

func TestSelectMaxRTFiltersUnmeasured(t *testing.T) {
	s := newTestStore(t)
	d := sampleDescriptor("3.3.3.3", 80, "us")
	s.Merge([]Descriptor{d}, time.Now())

	bound := int64(500)
	if _, ok := s.Select(SelectOptions{MaxRTMs: &bound}); ok {
		t.Fatalf("expected an unmeasured proxy to be excluded once a max_rt_ms bound is set")
	}
}

func TestSelectWeightFavorsLowerLatency(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.Merge([]Descriptor{
		sampleDescriptor("4.4.4.1", 80, "us"),
		sampleDescriptor("4.4.4.2", 80, "us"),
		sampleDescriptor("4.4.4.3", 80, "us"),
		sampleDescriptor("4.4.4.4", 80, "us"),
	}, now)

	s.RecordHealthResult("4.4.4.1:80", true, 100, now)
	s.RecordHealthResult("4.4.4.2:80", true, 200, now)
	s.RecordHealthResult("4.4.4.3:80", true, 400, now)
	s.RecordHealthResult("4.4.4.4:80", true, 800, now)

	counts := map[string]int{}
	const trials = 4000
	for i := 0; i < trials; i++ {
		d, ok := s.Select(SelectOptions{})
		if !ok {
			t.Fatalf("expected a selection")
		}
		counts[d.Key()]++
	}

	fast := counts["4.4.4.1:80"]
	slow := counts["4.4.4.2:80"]
	if fast == 0 || slow == 0 {
		t.Fatalf("expected both proxies to be selected at least once, got %v", counts)
	}
	ratio := float64(fast) / float64(slow)
	if ratio < 1.4 || ratio > 2.8 {
		t.Fatalf("expected the 100ms proxy to be picked roughly twice as often as the 200ms one, got ratio %.2f (%v)", ratio, counts)
	}
}

func TestSelectUniformBelowFourCandidates(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.Merge([]Descriptor{
		sampleDescriptor("6.6.6.1", 80, "us"),
		sampleDescriptor("6.6.6.2", 80, "us"),
	}, now)
	s.RecordHealthResult("6.6.6.1:80", true, 10, now)
	s.RecordHealthResult("6.6.6.2:80", true, 5000, now)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		d, _ := s.Select(SelectOptions{})
		counts[d.Key()]++
	}
	if counts["6.6.6.1:80"] == 0 || counts["6.6.6.2:80"] == 0 {
		t.Fatalf("expected both candidates to be reachable under uniform choice, got %v", counts)
	}
}
