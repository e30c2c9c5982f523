package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Krimson/ctg-contractions/analyzer/internal/synth"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write a synthetic UC recording as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			duration, _ := flags.GetDuration("duration")
			sampleInterval, _ := flags.GetDuration("sample-interval")
			minInterval, _ := flags.GetDuration("min-interval")
			maxInterval, _ := flags.GetDuration("max-interval")
			width, _ := flags.GetDuration("width")
			peak, _ := flags.GetFloat64("peak")
			baseline, _ := flags.GetFloat64("baseline")
			noise, _ := flags.GetFloat64("noise")
			seed, _ := flags.GetInt64("seed")
			output, _ := flags.GetString("output")

			if maxInterval < minInterval {
				return fmt.Errorf("--max-interval %s is shorter than --min-interval %s", maxInterval, minInterval)
			}

			bumps := synth.Plan(synth.PlanConfig{
				Duration:    duration,
				MinInterval: minInterval,
				MaxInterval: maxInterval,
				Width:       width,
				Peak:        peak,
				Seed:        seed,
			})

			samples, err := synth.Generate(synth.Config{
				Duration:       duration,
				SampleInterval: sampleInterval,
				Baseline:       baseline,
				Noise:          noise,
				Seed:           seed,
				Contractions:   bumps,
			})
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := synth.WriteCSV(w, samples); err != nil {
				return err
			}

			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d samples with %d contractions to %s\n", len(samples), len(bumps), output)
			}
			return nil
		},
	}

	cmd.Flags().Duration("duration", 30*time.Minute, "Recording length")
	cmd.Flags().Duration("sample-interval", 250*time.Millisecond, "Sampling interval")
	cmd.Flags().Duration("min-interval", 3*time.Minute, "Shortest gap between contractions")
	cmd.Flags().Duration("max-interval", 5*time.Minute, "Longest gap between contractions")
	cmd.Flags().Duration("width", 50*time.Second, "Contraction width at half height")
	cmd.Flags().Float64("peak", 45, "Contraction amplitude above baseline")
	cmd.Flags().Float64("baseline", 10, "Resting tone")
	cmd.Flags().Float64("noise", 1.5, "Standard deviation of Gaussian noise")
	cmd.Flags().Int64("seed", 1, "Random seed")
	cmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")

	return cmd
}
