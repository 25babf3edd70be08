// Package report builds spending summaries: per-category sums bucketed by
// reporting period, with optional trailing moving averages, rendered as CSV
// or JSON.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows injecting a configured logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Series is one category's worth of transactions to summarize.
type Series struct {
	Category     string
	Transactions []models.Transaction
}

// Row is the summed value of each category for a single period.
type Row struct {
	Period time.Time         `json:"period"`
	Values []decimal.Decimal `json:"values"`
}

// Summary is a period-by-category table of sums. Every period between the
// first and last transaction is present, and categories with no activity in
// a period hold zero.
type Summary struct {
	Period     string   `json:"period"`
	Categories []string `json:"categories"`
	Rows       []Row    `json:"rows"`
}

// Build bucket-sums each series by the given reporting period and aligns
// them on a contiguous period axis. If avg is greater than 1, each value is
// replaced by the trailing mean of the last avg periods; earlier periods
// average over however many are available.
func Build(series []Series, period string, avg int) (*Summary, error) {
	summary := &Summary{Period: period}

	buckets := make([]map[time.Time]decimal.Decimal, len(series))
	var first, last time.Time
	for i, s := range series {
		summary.Categories = append(summary.Categories, s.Category)
		buckets[i] = make(map[time.Time]decimal.Decimal)
		for _, tx := range s.Transactions {
			p, err := dateutils.TruncatePeriod(tx.Date, period)
			if err != nil {
				return nil, err
			}
			buckets[i][p] = buckets[i][p].Add(tx.Amount)
			if first.IsZero() || p.Before(first) {
				first = p
			}
			if last.IsZero() || p.After(last) {
				last = p
			}
		}
	}

	if first.IsZero() {
		return summary, nil
	}

	for p := first; !p.After(last); p = nextPeriod(p, period) {
		row := Row{Period: p, Values: make([]decimal.Decimal, len(series))}
		for i := range series {
			row.Values[i] = buckets[i][p]
		}
		summary.Rows = append(summary.Rows, row)
	}

	if avg > 1 {
		summary.Rows = movingAverage(summary.Rows, avg)
	}

	log.Info("Built report summary",
		logging.Field{Key: "periods", Value: len(summary.Rows)},
		logging.Field{Key: logging.FieldCount, Value: len(series)})
	return summary, nil
}

// nextPeriod advances a period start to the next one. The period string has
// already been validated by TruncatePeriod.
func nextPeriod(t time.Time, period string) time.Time {
	switch period {
	case dateutils.PeriodWeek:
		return t.AddDate(0, 0, 7)
	case dateutils.PeriodMonth:
		return t.AddDate(0, 1, 0)
	case dateutils.PeriodYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// movingAverage replaces each row's values with the trailing mean over the
// previous window rows, partial windows included.
func movingAverage(rows []Row, window int) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		n := decimal.NewFromInt(int64(i - start + 1))
		values := make([]decimal.Decimal, len(row.Values))
		for c := range row.Values {
			var sum decimal.Decimal
			for j := start; j <= i; j++ {
				sum = sum.Add(rows[j].Values[c])
			}
			values[c] = sum.Div(n).Round(2)
		}
		out[i] = Row{Period: row.Period, Values: values}
	}
	return out
}

// Total sums a category's column over all periods.
func (s *Summary) Total(category string) (decimal.Decimal, error) {
	col := -1
	for i, name := range s.Categories {
		if name == category {
			col = i
			break
		}
	}
	if col < 0 {
		return decimal.Zero, fmt.Errorf("category %q not in summary", category)
	}
	var total decimal.Decimal
	for _, row := range s.Rows {
		total = total.Add(row.Values[col])
	}
	return total, nil
}

// Generator renders a Summary in various output formats.
type Generator struct{}

// NewGenerator creates a new instance of Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the summary in the specified format (csv or json).
func (g *Generator) Generate(summary *Summary, format string) ([]byte, error) {
	switch format {
	case "csv":
		return g.generateCSV(summary)
	case "json":
		return g.generateJSON(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateCSV(summary *Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"period"}, summary.Categories...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV report: %w", err)
	}
	for _, row := range summary.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, dateutils.ToISODate(row.Period))
		for _, v := range row.Values {
			record = append(record, v.String())
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) generateJSON(summary *Summary) ([]byte, error) {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}
