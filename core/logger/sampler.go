package logger

import (
	"strconv"
	"strings"
	"sync"
)

// sampler lets through keep events out of every consecutive window of every.
// A zero window disables sampling.
type sampler struct {
	mu    sync.Mutex
	keep  int
	every int
	seen  int
}

func newSampler(keep, every int) *sampler {
	s := &sampler{}
	s.Set(keep, every)
	return s
}

func (s *sampler) Set(keep, every int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = 0
	if keep <= 0 || every <= 0 {
		s.keep, s.every = 0, 0
		return
	}
	s.keep, s.every = min(keep, every), every
}

func (s *sampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.every == 0 {
		return true
	}
	s.seen = s.seen%s.every + 1
	return s.seen <= s.keep
}

// parseRatio accepts "keep/every" or a bare "every" (meaning 1/every).
// "0" disables sampling; unparsable input yields -1, -1.
func parseRatio(ratio string) (int, int) {
	if keepRaw, everyRaw, ok := strings.Cut(ratio, "/"); ok {
		keep, err1 := strconv.Atoi(strings.TrimSpace(keepRaw))
		every, err2 := strconv.Atoi(strings.TrimSpace(everyRaw))
		if err1 != nil || err2 != nil {
			return -1, -1
		}
		return keep, every
	}
	every, err := strconv.Atoi(strings.TrimSpace(ratio))
	switch {
	case err != nil:
		return -1, -1
	case every <= 0:
		return 0, 0
	}
	return 1, every
}
