// Package costguard provides per-provider admission control over daily and
// per-minute call budgets. A denial is a normal outcome the orchestrator
// handles as a first-class branch.
package costguard

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
)

// Budget is one provider's contracted call caps.
type Budget struct {
	DailyCap int
	RPMCap   int
}

// Service implements the CostGuard interface. All counter reads and writes
// happen inside a single critical section so concurrent admissions can never
// jointly overspend a cap.
type Service struct {
	mu        sync.Mutex
	logger    arbor.ILogger
	budgets   map[string]Budget
	daily     map[string]int
	dailyDay  string // UTC day the daily counters belong to
	rpm       map[string]int
	rpmMinute int64 // unix minute the rpm counters belong to
	now       func() time.Time
	cron      *cron.Cron
}

// Option configures the Service.
type Option func(*Service)

// WithClock injects a clock, used by tests to control window rollover.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a cost guard for the given provider budgets.
func NewService(budgets map[string]Budget, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		logger:  logger,
		budgets: budgets,
		daily:   make(map[string]int),
		rpm:     make(map[string]int),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.dailyDay = s.now().UTC().Format("2006-01-02")
	s.rpmMinute = s.now().Unix() / 60

	return s
}

// Start schedules the midnight UTC daily-counter reset. Window rollover also
// happens lazily inside TryAdmit, so Start is optional for tests.
func (s *Service) Start() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New(cron.WithLocation(time.UTC))
	s.cron.AddFunc("0 0 * * *", func() {
		s.mu.Lock()
		s.daily = make(map[string]int)
		s.dailyDay = s.now().UTC().Format("2006-01-02")
		s.mu.Unlock()
		s.logger.Info().Msg("Cost guard daily counters reset")
	})
	s.cron.Start()
}

// Stop halts the reset schedule.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// TryAdmit atomically checks and, when allowed, increments both counters for
// the provider. Every denial carries a human-readable reason.
func (s *Service) TryAdmit(provider string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget, ok := s.budgets[provider]
	if !ok {
		return false, fmt.Sprintf("NoBudget (%s)", provider)
	}

	s.rollover()

	if s.daily[provider] >= budget.DailyCap {
		return false, fmt.Sprintf("DailyCap (%d/%d)", s.daily[provider], budget.DailyCap)
	}
	if s.rpm[provider] >= budget.RPMCap {
		return false, fmt.Sprintf("RPM (%d/%d)", s.rpm[provider], budget.RPMCap)
	}

	s.daily[provider]++
	s.rpm[provider]++
	return true, ""
}

// Snapshot returns current usage for all configured providers, ordered by
// provider name for stable output.
func (s *Service) Snapshot() []interfaces.CostGuardUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()

	usages := make([]interfaces.CostGuardUsage, 0, len(s.budgets))
	for name, budget := range s.budgets {
		usages = append(usages, interfaces.CostGuardUsage{
			Provider:   name,
			DailyCount: s.daily[name],
			DailyCap:   budget.DailyCap,
			RPMCount:   s.rpm[name],
			RPMCap:     budget.RPMCap,
		})
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].Provider < usages[j].Provider })
	return usages
}

// rollover resets counters whose window has passed. Caller must hold mu.
func (s *Service) rollover() {
	now := s.now()

	if day := now.UTC().Format("2006-01-02"); day != s.dailyDay {
		s.daily = make(map[string]int)
		s.dailyDay = day
	}

	if minute := now.Unix() / 60; minute != s.rpmMinute {
		s.rpm = make(map[string]int)
		s.rpmMinute = minute
	}
}

// Ensure Service implements CostGuard interface
var _ interfaces.CostGuard = (*Service)(nil)
