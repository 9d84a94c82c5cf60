package health

import (
	"context"
	"sort"
	"time"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

// Service runs the registered dependency checks for /health.
type Service struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a health service. Each check gets timeout.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{checks: make(map[string]Check), timeout: timeout}
}

// Register adds a named check, e.g. "postgres" or "redis".
func (s *Service) Register(name string, check Check) {
	s.checks[name] = check
}

// Status is the /health payload.
type Status struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check and reports "ok" or the error text per name.
func (s *Service) Status(ctx context.Context) Status {
	out := Status{OK: true}
	if len(s.checks) == 0 {
		return out
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out.Checks = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			out.OK = false
			out.Checks[name] = err.Error()
			continue
		}
		out.Checks[name] = "ok"
	}
	return out
}
