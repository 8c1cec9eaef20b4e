package service

import "time"

// BudgetWindow selects which expenses count against the monthly limit.
type BudgetWindow string

const (
	// BudgetAllTime compares every expense the user ever recorded.
	BudgetAllTime BudgetWindow = "all-time"
	// BudgetMonth compares expenses since the first day of the current month.
	BudgetMonth BudgetWindow = "month"
)

// Options configures time handling shared by the services.
type Options struct {
	// Now defaults to time.Now.
	Now Clock
	// Location defines calendar day boundaries. Defaults to time.Local.
	Location *time.Location
	// BudgetWindow defaults to BudgetAllTime.
	BudgetWindow BudgetWindow
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.BudgetWindow == "" {
		o.BudgetWindow = BudgetAllTime
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

// startOfDay returns local midnight of t's calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
