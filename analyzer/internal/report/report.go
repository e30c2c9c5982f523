package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
)

// Format - формат вывода результата анализа
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat проверяет имя формата из флага командной строки
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, csv or json)", name)
	}
}

// Write выводит результат в выбранном формате
func Write(w io.Writer, result *contraction.Result, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	default:
		return WriteTable(w, result)
	}
}

var columns = []string{"#", "time_min", "interval_min", "duration_min", "amplitude", "category"}

// WriteTable печатает выровненную таблицу схваток и сводку по категориям
func WriteTable(w io.Writer, result *contraction.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "samples:\t%d\n", result.SampleCount)
	if result.SamplingIntervalSeconds != nil {
		fmt.Fprintf(tw, "sampling interval:\t%.3f s\n", *result.SamplingIntervalSeconds)
	}
	fmt.Fprintf(tw, "contractions:\t%d\n\n", len(result.Events))

	if len(result.Events) > 0 {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)

		for i, ev := range result.Events {
			fmt.Fprintf(tw, "%d\t%.2f\t%s\t%.3f\t%.1f\t%s\n",
				i+1,
				ev.TimeMinutes,
				formatInterval(ev.IntervalMinutes, "-", 2),
				ev.DurationMinutes,
				ev.Amplitude,
				ev.Category,
			)
		}
		fmt.Fprintln(tw)
	}

	for _, label := range sortedLabels(result.Summary) {
		fmt.Fprintf(tw, "%s\t%d\n", label, result.Summary[label])
	}

	return tw.Flush()
}

// WriteCSV пишет одну строку на схватку; пустая ячейка интервала у первой схватки
func WriteCSV(w io.Writer, result *contraction.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns[1:]); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, ev := range result.Events {
		record := []string{
			strconv.FormatFloat(ev.TimeMinutes, 'f', -1, 64),
			formatInterval(ev.IntervalMinutes, "", -1),
			strconv.FormatFloat(ev.DurationMinutes, 'f', -1, 64),
			strconv.FormatFloat(ev.Amplitude, 'f', -1, 64),
			string(ev.Category),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteJSON(w io.Writer, result *contraction.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func formatInterval(v *float64, empty string, prec int) string {
	if v == nil {
		return empty
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

// sortedLabels упорядочивает категории сводки: сначала по количеству, затем по имени
func sortedLabels(summary map[contraction.Label]int) []contraction.Label {
	labels := make([]contraction.Label, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if summary[labels[i]] != summary[labels[j]] {
			return summary[labels[i]] > summary[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
