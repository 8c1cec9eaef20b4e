package web

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// errNothingToChart is returned when a user has no spending to plot.
var errNothingToChart = errors.New("no expenses to chart")

const csvTimeLayout = "2006-01-02 15:04:05"

// GenerateExpensesCSV writes expenses as CSV, newest first as given. Dates
// are rendered in loc.
func GenerateExpensesCSV(expenses []models.Expense, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Date", "Title", "Category", "Amount"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range expenses {
		categoryName := ""
		if expenses[i].Category != nil {
			categoryName = expenses[i].Category.Name
		}

		row := []string{
			strconv.Itoa(expenses[i].ID),
			expenses[i].CreatedAt.In(loc).Format(csvTimeLayout),
			csvText(expenses[i].Title),
			csvText(categoryName),
			expenses[i].Amount.StringFixed(models.MoneyPlaces),
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// csvText quotes cells a spreadsheet would evaluate as a formula.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// GenerateCategoryChart renders a pie chart of spending per category as PNG.
func GenerateCategoryChart(totals []models.CategoryTotal) ([]byte, error) {
	var values []float64
	var names []string
	for _, t := range totals {
		if !t.Total.IsPositive() {
			continue
		}
		names = append(names, t.Name)
		values = append(values, t.Total.InexactFloat64())
	}
	if len(values) == 0 {
		return nil, errNothingToChart
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: "Spending by Category",
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

func exportFilename(now time.Time) string {
	return fmt.Sprintf("expenses_%s.csv", now.Format("2006-01-02"))
}
