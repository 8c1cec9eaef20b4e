package service

import (
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "gitlab.com/yelinaung/expense-web/internal/service"

// counters holds the business counters exported through OpenTelemetry.
// They are resolved against the global meter provider at construction time.
type counters struct {
	expensesCreated   metric.Int64Counter
	budgetWarnings    metric.Int64Counter
	categoriesDeleted metric.Int64Counter
	signups           metric.Int64Counter
	loginFailures     metric.Int64Counter
}

func newCounters() *counters {
	meter := otel.Meter(meterName)
	return &counters{
		expensesCreated:   int64Counter(meter, "expenses.created", "Expenses recorded"),
		budgetWarnings:    int64Counter(meter, "budget.warnings", "Expenses that pushed spending over the limit"),
		categoriesDeleted: int64Counter(meter, "categories.deleted", "Categories deleted"),
		signups:           int64Counter(meter, "users.signups", "Accounts created"),
		loginFailures:     int64Counter(meter, "auth.login_failures", "Rejected login attempts"),
	}
}

func int64Counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger.Log.Warn().Err(err).Str("counter", name).Msg("Failed to create counter, using no-op")
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter(name)
	}
	return c
}
