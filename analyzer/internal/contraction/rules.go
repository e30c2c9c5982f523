package contraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// Label - клиническая категория схватки
type Label string

const (
	LabelBraxtonHicks Label = "Braxton-Hicks-Wehen"
	LabelSenkwehen    Label = "Senkwehen"
	LabelEarlyLabor   Label = "Vor-/Eröffnungswehen"
	LabelActiveLabor  Label = "Aktive Eröffnungswehen"
	LabelTransition   Label = "Übergangswehen"
	LabelExpulsion    Label = "Austreibungswehen"
	LabelUnclassified Label = "unclassified"
)

// Range - полуинтервал [Low, High) в секундах. High может быть +Inf.
type Range struct {
	Low  float64
	High float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v < r.High
}

type rangeJSON struct {
	Low  float64  `json:"low" yaml:"low"`
	High *float64 `json:"high" yaml:"high"`
}

// MarshalJSON кодирует бесконечную верхнюю границу как null
func (r Range) MarshalJSON() ([]byte, error) {
	out := rangeJSON{Low: r.Low}
	if !math.IsInf(r.High, 1) {
		high := r.High
		out.High = &high
	}
	return json.Marshal(out)
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var in rangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = in.toRange()
	return nil
}

func (in rangeJSON) toRange() Range {
	if in.High == nil {
		return Range{Low: in.Low, High: math.Inf(1)}
	}
	return Range{Low: in.Low, High: *in.High}
}

// Rule - строка таблицы классификации
type Rule struct {
	Interval Range `json:"interval_sec"`
	Duration Range `json:"duration_sec"`
	Label    Label `json:"label"`
}

// Matches проверяет обе границы правила. Отсутствующий интервал (первая схватка)
// проходит проверку интервала всегда.
func (r Rule) Matches(intervalSec *float64, durationSec float64) bool {
	intervalOK := intervalSec == nil || r.Interval.Contains(*intervalSec)
	return intervalOK && r.Duration.Contains(durationSec)
}

// RuleTable - упорядоченный список правил, первое совпадение выигрывает
type RuleTable []Rule

// Match возвращает метку первого подходящего правила или LabelUnclassified
func (t RuleTable) Match(intervalSec *float64, durationSec float64) Label {
	for _, rule := range t {
		if rule.Matches(intervalSec, durationSec) {
			return rule.Label
		}
	}
	return LabelUnclassified
}

// Validate проверяет таблицу, загруженную извне
func (t RuleTable) Validate() error {
	if len(t) == 0 {
		return errors.New("rule table is empty")
	}
	for i, rule := range t {
		if rule.Label == "" {
			return fmt.Errorf("rule %d: label is empty", i)
		}
		if err := validateRange(rule.Interval); err != nil {
			return fmt.Errorf("rule %d (%s): interval %w", i, rule.Label, err)
		}
		if err := validateRange(rule.Duration); err != nil {
			return fmt.Errorf("rule %d (%s): duration %w", i, rule.Label, err)
		}
	}
	return nil
}

func validateRange(r Range) error {
	if math.IsNaN(r.Low) || math.IsInf(r.Low, 0) || math.IsNaN(r.High) {
		return fmt.Errorf("bounds must be numbers, got [%g, %g)", r.Low, r.High)
	}
	if r.Low > r.High {
		return fmt.Errorf("low %g is greater than high %g", r.Low, r.High)
	}
	return nil
}

// defaultRules - таблица по умолчанию; все границы в секундах.
// Порядок задает приоритет: широкие правила 1-2 перекрывают остальные.
var defaultRules = RuleTable{
	{Interval: Range{0, math.Inf(1)}, Duration: Range{10, 30}, Label: LabelBraxtonHicks},
	{Interval: Range{0, math.Inf(1)}, Duration: Range{0, 10}, Label: LabelSenkwehen},
	{Interval: Range{600, 1200}, Duration: Range{30, 45}, Label: LabelEarlyLabor},
	{Interval: Range{180, 300}, Duration: Range{45, 60}, Label: LabelActiveLabor},
	{Interval: Range{60, 120}, Duration: Range{60, 90}, Label: LabelTransition},
	{Interval: Range{120, 180}, Duration: Range{60, 90}, Label: LabelExpulsion},
}

// DefaultRules возвращает копию таблицы по умолчанию
func DefaultRules() RuleTable {
	out := make(RuleTable, len(defaultRules))
	copy(out, defaultRules)
	return out
}

type rulesFile struct {
	Rules []struct {
		Label    string    `yaml:"label"`
		Interval rangeJSON `yaml:"interval_sec"`
		Duration rangeJSON `yaml:"duration_sec"`
	} `yaml:"rules"`
}

// LoadRules читает таблицу правил из YAML:
//
//	rules:
//	  - label: Senkwehen
//	    interval_sec: {low: 0}
//	    duration_sec: {low: 0, high: 10}
//
// Отсутствующая верхняя граница означает +Inf.
func LoadRules(r io.Reader) (RuleTable, error) {
	var file rulesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("rule table is empty")
		}
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	table := make(RuleTable, 0, len(file.Rules))
	for _, raw := range file.Rules {
		table = append(table, Rule{
			Interval: raw.Interval.toRange(),
			Duration: raw.Duration.toRange(),
			Label:    Label(raw.Label),
		})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
