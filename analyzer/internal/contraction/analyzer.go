package contraction

import (
	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

// Result - итог анализа одного ряда
type Result struct {
	SampleCount             int           `json:"sample_count"`
	SamplingIntervalSeconds *float64      `json:"sampling_interval_sec"`
	Params                  Params        `json:"params"`
	Events                  []Event       `json:"events"`
	Summary                 map[Label]int `json:"summary"`
}

// Analyzer объединяет поиск, классификацию и подсчет схваток.
// После создания не изменяется и может использоваться из нескольких горутин.
type Analyzer struct {
	rules  RuleTable
	logger zerolog.Logger
}

type Option func(*Analyzer)

// WithRules заменяет таблицу правил по умолчанию
func WithRules(rules RuleTable) Option {
	return func(a *Analyzer) {
		a.rules = append(RuleTable(nil), rules...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		rules:  DefaultRules(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rules возвращает копию активной таблицы правил
func (a *Analyzer) Rules() RuleTable {
	return append(RuleTable(nil), a.rules...)
}

// Analyze выполняет полный цикл: проверка параметров, поиск, классификация, сводка
func (a *Analyzer) Analyze(s *series.Series, p Params) (*Result, error) {
	events, err := Detect(s, p)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Params: p,
	}

	if s != nil {
		result.SampleCount = s.Len()
		if dt, ok := s.SamplingInterval(); ok {
			result.SamplingIntervalSeconds = &dt
		}
	}

	if result.SampleCount < 2 {
		a.logger.Debug().
			Int("samples", result.SampleCount).
			Msg("insufficient data for contraction detection")
	}

	result.Events = Classify(events, a.rules)
	result.Summary = Summarize(result.Events)

	a.logger.Debug().
		Int("samples", result.SampleCount).
		Int("events", len(result.Events)).
		Msg("contraction analysis finished")

	return result, nil
}
