package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CheckFunc проверяет одну зависимость
type CheckFunc func(ctx context.Context) error

// CheckResult - результат последней проверки зависимости
type CheckResult struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor периодически проверяет зависимости и переключает статус сервиса
type Monitor struct {
	server   *HealthServer
	service  string
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	checks map[string]CheckFunc

	mu      sync.RWMutex
	results map[string]CheckResult
}

func NewMonitor(server *HealthServer, service string, interval time.Duration, logger zerolog.Logger) *Monitor {
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}

	return &Monitor{
		server:   server,
		service:  service,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With().Str("component", "health").Logger(),
		checks:   make(map[string]CheckFunc),
		results:  make(map[string]CheckResult),
	}
}

// AddCheck регистрирует проверку. Вызывается до Run.
func (m *Monitor) AddCheck(name string, check CheckFunc) {
	m.checks[name] = check
}

// Run выполняет проверки сразу и затем с интервалом до отмены контекста
func (m *Monitor) Run(ctx context.Context) {
	m.CheckNow(ctx)

	if m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow выполняет все проверки и возвращает true, если все зависимости доступны
func (m *Monitor) CheckNow(ctx context.Context) bool {
	healthy := true
	results := make(map[string]CheckResult, len(m.checks))

	for name, check := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := check(checkCtx)
		cancel()

		result := CheckResult{Name: name, Healthy: err == nil, CheckedAt: time.Now().UTC()}
		if err != nil {
			healthy = false
			result.Error = err.Error()
			m.logger.Warn().Err(err).Str("dependency", name).Msg("dependency check failed")
		}
		results[name] = result
	}

	m.mu.Lock()
	m.results = results
	m.mu.Unlock()

	wasServing := m.server.Serving(m.service)
	if healthy {
		m.server.SetServingStatus(m.service)
	} else {
		m.server.SetNotServingStatus(m.service)
	}
	if wasServing != healthy {
		m.logger.Info().Str("service", m.service).Bool("serving", healthy).Msg("serving status changed")
	}

	return healthy
}

// Results возвращает результаты последних проверок, отсортированные по имени
func (m *Monitor) Results() []CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CheckResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Healthy сообщает статус сервиса по последним проверкам
func (m *Monitor) Healthy() bool {
	return m.server.Serving(m.service)
}
