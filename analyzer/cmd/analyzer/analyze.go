package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/logger"
	"github.com/Krimson/ctg-contractions/analyzer/internal/report"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <csv>",
		Short: "Detect and classify contractions in a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFromFlags(cmd)
			if err != nil {
				return err
			}

			formatName, _ := cmd.Flags().GetString("format")
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			rulesPath, _ := cmd.Flags().GetString("rules")
			rules, err := loadRuleTable(rulesPath)
			if err != nil {
				return err
			}

			timeColumn, _ := cmd.Flags().GetString("time-column")
			ucColumn, _ := cmd.Flags().GetString("uc-column")
			logLevel, _ := cmd.Flags().GetString("log-level")

			ucSeries, err := series.LoadFile(args[0], series.LoadOptions{
				TimeColumn:      timeColumn,
				AmplitudeColumn: ucColumn,
			})
			if err != nil {
				return err
			}

			analyzer := contraction.NewAnalyzer(
				contraction.WithRules(rules),
				contraction.WithLogger(logger.NewWithWriter(cmd.ErrOrStderr(), logLevel, "console")),
			)

			result, err := analyzer.Analyze(ucSeries, params)
			if err != nil {
				return err
			}

			return report.Write(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().Float64("min-height", 0, "Minimum peak amplitude (inclusive)")
	cmd.Flags().Float64("min-distance-samples", 0, "Minimum distance between peaks in samples")
	cmd.Flags().Float64("min-distance-sec", 0, "Minimum distance between peaks in seconds")
	cmd.Flags().String("rules", "", "YAML file with the classification table")
	cmd.Flags().String("format", string(report.FormatTable), "Output format: table, csv or json")
	cmd.Flags().String("time-column", series.DefaultTimeColumn, "Name of the time column (seconds)")
	cmd.Flags().String("uc-column", series.DefaultAmplitudeColumn, "Name of the UC column")
	cmd.Flags().String("log-level", "warn", "Log level for diagnostics on stderr")

	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active classification table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesPath, _ := cmd.Flags().GetString("rules")
			rules, err := loadRuleTable(rulesPath)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}

			out := cmd.OutOrStdout()
			for i, rule := range rules {
				fmt.Fprintf(out, "%d. %-22s interval %s s, duration %s s\n",
					i+1, rule.Label, formatRange(rule.Interval), formatRange(rule.Duration))
			}
			return nil
		},
	}

	cmd.Flags().String("rules", "", "YAML file with the classification table")
	cmd.Flags().Bool("json", false, "Print the table as JSON")

	return cmd
}

// paramsFromFlags берет только явно заданные флаги; незаданный флаг - без ограничения
func paramsFromFlags(cmd *cobra.Command) (contraction.Params, error) {
	var p contraction.Params

	fields := []struct {
		flag   string
		target **float64
	}{
		{"min-height", &p.MinHeight},
		{"min-distance-samples", &p.MinDistanceSamples},
		{"min-distance-sec", &p.MinDistanceSeconds},
	}

	for _, f := range fields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(f.flag)
		if err != nil {
			return p, err
		}
		*f.target = contraction.Float(v)
	}

	return p, p.Validate()
}

func formatRange(r contraction.Range) string {
	if math.IsInf(r.High, 1) {
		return fmt.Sprintf("[%g, inf)", r.Low)
	}
	return fmt.Sprintf("[%g, %g)", r.Low, r.High)
}
