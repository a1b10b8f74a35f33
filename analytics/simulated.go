package analytics

import (
	"math/rand/v2"
	"sync"
	"time"
)

// SimulatedCounts are made-up visitor numbers for the demo overlay. They are
// never derived from real traffic.
type SimulatedCounts struct {
	Label   string `json:"label"`
	Online  int    `json:"online"`
	Today   int    `json:"today"`
	Total   int    `json:"total"`
	Refresh int    `json:"refreshes"`
}

const simulatedLabel = "simulated demo values"

type SimulatedVisitors struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	now       func() time.Time
	total     int
	today     int
	todayDate string
	online    int
	refreshes int
}

func NewSimulatedVisitors(seed uint64) *SimulatedVisitors {
	s := &SimulatedVisitors{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
	s.total = s.rnd.IntN(500) + 100
	s.rollToday()
	s.online = s.rnd.IntN(5) + 1
	return s
}

func (s *SimulatedVisitors) rollToday() {
	day := s.now().UTC().Format(time.DateOnly)
	if day != s.todayDate {
		s.todayDate = day
		s.today = s.rnd.IntN(50) + 10
	}
}

// Refresh re-rolls the online count and starts a new day when the date changed.
func (s *SimulatedVisitors) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollToday()
	s.online = s.rnd.IntN(5) + 1
	s.refreshes++
}

// Bump adds one visit to the simulated totals.
func (s *SimulatedVisitors) Bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollToday()
	s.total++
	s.today++
}

func (s *SimulatedVisitors) Counts() SimulatedCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SimulatedCounts{
		Label:   simulatedLabel,
		Online:  s.online,
		Today:   s.today,
		Total:   s.total,
		Refresh: s.refreshes,
	}
}
