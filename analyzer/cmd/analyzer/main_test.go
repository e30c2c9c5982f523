package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestParamsFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, p contraction.Params)
		wantErr bool
	}{
		{
			name: "no flags",
			args: nil,
			check: func(t *testing.T, p contraction.Params) {
				if p.MinHeight != nil || p.MinDistanceSamples != nil || p.MinDistanceSeconds != nil {
					t.Errorf("expected empty params, got %+v", p)
				}
			},
		},
		{
			name: "explicit zero height is kept",
			args: []string{"--min-height", "0"},
			check: func(t *testing.T, p contraction.Params) {
				if p.MinHeight == nil || *p.MinHeight != 0 {
					t.Errorf("expected min height 0, got %v", p.MinHeight)
				}
			},
		},
		{
			name: "seconds",
			args: []string{"--min-height", "20", "--min-distance-sec", "60"},
			check: func(t *testing.T, p contraction.Params) {
				if p.MinDistanceSeconds == nil || *p.MinDistanceSeconds != 60 {
					t.Errorf("expected 60s, got %v", p.MinDistanceSeconds)
				}
			},
		},
		{
			name:    "both distances",
			args:    []string{"--min-distance-sec", "60", "--min-distance-samples", "120"},
			wantErr: true,
		},
		{
			name:    "distance below one sample",
			args:    []string{"--min-distance-samples", "0.5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := analyzeCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}

			p, err := paramsFromFlags(cmd)
			if tt.wantErr {
				var paramErr *contraction.ParamError
				if !errors.As(err, &paramErr) {
					t.Fatalf("expected ParamError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestSimulateThenAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uc.csv")

	_, err := execute(t, "simulate",
		"--duration", "10m",
		"--sample-interval", "500ms",
		"--min-interval", "3m",
		"--max-interval", "3m",
		"--width", "50s",
		"--noise", "0",
		"--output", path,
	)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	out, err := execute(t, "analyze", path, "--min-height", "30", "--min-distance-sec", "60", "--format", "csv")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "time_min") {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasSuffix(line, string(contraction.LabelActiveLabor)) {
			t.Errorf("expected %s, got %q", contraction.LabelActiveLabor, line)
		}
	}
}

func TestAnalyze_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uc.csv")
	if _, err := execute(t, "simulate", "--duration", "10m", "--noise", "0", "--output", path); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	out, err := execute(t, "analyze", path, "--min-height", "30", "--format", "json")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var result contraction.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(result.Events) == 0 {
		t.Error("expected contractions in simulated recording")
	}
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()
	noUC := filepath.Join(dir, "fhr.csv")
	if err := os.WriteFile(noUC, []byte("time,FHR\n0,140\n1,141\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "analyze", noUC)
	var missing *series.MissingColumnError
	if !errors.As(err, &missing) || missing.Column != "UC" {
		t.Errorf("expected missing UC column, got %v", err)
	}

	if _, err := execute(t, "analyze", noUC, "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}

	if _, err := execute(t, "analyze", filepath.Join(dir, "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := execute(t, "analyze"); err == nil {
		t.Error("expected error without arguments")
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules", "--json")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}

	var rules contraction.RuleTable
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(rules) != len(contraction.DefaultRules()) {
		t.Errorf("expected default table, got %d rules", len(rules))
	}

	out, err = execute(t, "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.Contains(out, string(contraction.LabelBraxtonHicks)) || !strings.Contains(out, "inf)") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestLoadRuleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  - label: short\n    interval_sec: {low: 0}\n    duration_sec: {low: 0, high: 30}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := loadRuleTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Label != "short" {
		t.Errorf("unexpected rules: %+v", rules)
	}

	out, err := execute(t, "rules", "--rules", path)
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.Contains(out, "short") {
		t.Errorf("expected custom label in output, got:\n%s", out)
	}

	if _, err := loadRuleTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing rules file")
	}
}
