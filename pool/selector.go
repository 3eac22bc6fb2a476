package pool

import (
	"math/rand"
	"time"
)

// unmeasuredRTSentinel is used in place of avg_response_time_ms for a
// proxy with no recorded latency when a max_rt_ms bound is in effect —
// such a proxy is excluded whenever any bound is set.
const unmeasuredRTSentinel = 999_999

// SelectOptions filters the active set before a latency-weighted draw.
type SelectOptions struct {
	Country string
	MaxRTMs *int64
}

// Select filters active_proxies by the given options and picks one
// descriptor using latency-weighted random choice. The chosen
// descriptor's last_used is updated to now as a side effect.
func (s *Store) Select(opts SelectOptions) (*Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]*Descriptor, 0, len(s.active))
	for _, d := range s.active {
		if opts.Country != "" && d.Country != opts.Country {
			continue
		}
		if opts.MaxRTMs != nil {
			rt := d.AvgResponseTimeMs
			if rt == 0 {
				rt = unmeasuredRTSentinel
			}
			if rt > *opts.MaxRTMs {
				continue
			}
		}
		candidates = append(candidates, d)
	}

	if len(candidates) == 0 {
		return nil, false
	}

	var chosen *Descriptor
	if len(candidates) <= 3 {
		chosen = candidates[rand.Intn(len(candidates))]
	} else {
		chosen = weightedChoice(candidates)
	}

	chosen.LastUsed = time.Now()
	result := *chosen
	return &result, true
}

func weightedChoice(candidates []*Descriptor) *Descriptor {
	weights := make([]int64, len(candidates))
	var total int64
	for i, d := range candidates {
		var w int64
		if d.AvgResponseTimeMs > 0 {
			w = 1000 / d.AvgResponseTimeMs
		} else {
			w = 1000
		}
		weights[i] = w
		total += w
	}

	if total <= 0 {
		return candidates[rand.Intn(len(candidates))]
	}

	r := rand.Int63n(total)
	var running int64
	for i, w := range weights {
		running += w
		if running >= r {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
