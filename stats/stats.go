/*
Package stats derives read-only statistics from a wash book snapshot.

PURPOSE:
  Time-windowed KPIs (today / last 7 days / this month), top-5 income
  breakdowns by car and by wash type, and small display helpers. Everything
  here is a pure function over an immutable Store plus an injectable "now";
  nothing persists, so calls are safe to repeat and to run concurrently.

MONEY:
  Sums are accumulated as decimals and rounded to 2 places half away from
  zero (standard currency rounding) before being returned as floats.

DANGLING REFERENCES:
  Washes pointing at a deleted Car or WashType are not dropped; they are
  grouped under the "Unknown Car" / "Unknown Type" placeholder labels.
*/
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/washbook/record"
)

// Placeholder labels for washes whose car or wash type was deleted.
const (
	UnknownCar  = "Unknown Car"
	UnknownType = "Unknown Type"
)

// topN bounds the income breakdowns.
const topN = 5

// =============================================================================
// WINDOW PREDICATES
// =============================================================================
// Dates are compared in now's location; callers must keep both sides under
// the same timezone convention.

// IsToday reports whether date falls on the same calendar day as now.
func IsToday(date, now time.Time) bool {
	y1, m1, d1 := date.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsLast7Days reports whether date falls within [now - 7 days, now],
// inclusive on both ends.
func IsLast7Days(date, now time.Time) bool {
	sevenDaysAgo := now.AddDate(0, 0, -7)
	return !date.Before(sevenDaysAgo) && !date.After(now)
}

// IsThisMonth reports whether date falls in the same calendar month and
// year as now.
func IsThisMonth(date, now time.Time) bool {
	d := date.In(now.Location())
	return d.Month() == now.Month() && d.Year() == now.Year()
}

// =============================================================================
// KPI WINDOWS
// =============================================================================

// PeriodStats aggregates one KPI window. All values are rounded to 2
// decimal places.
type PeriodStats struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// KPIs holds the three rolling windows.
type KPIs struct {
	Today     PeriodStats `json:"today"`
	Last7Days PeriodStats `json:"last7Days"`
	ThisMonth PeriodStats `json:"thisMonth"`
}

// CalculateKPIs aggregates income, expenses and profit per window.
func CalculateKPIs(s record.Store, now time.Time) KPIs {
	windows := []func(time.Time, time.Time) bool{IsToday, IsLast7Days, IsThisMonth}
	out := make([]PeriodStats, len(windows))

	for i, in := range windows {
		income, expenses := decimal.Zero, decimal.Zero
		for _, w := range s.Washes {
			if in(w.Date, now) {
				income = income.Add(decimal.NewFromFloat(w.Price))
			}
		}
		for _, e := range s.Expenses {
			if in(e.Date, now) {
				expenses = expenses.Add(decimal.NewFromFloat(e.Amount))
			}
		}
		out[i] = PeriodStats{
			Income:   round2(income),
			Expenses: round2(expenses),
			Profit:   round2(income.Sub(expenses)),
		}
	}
	return KPIs{Today: out[0], Last7Days: out[1], ThisMonth: out[2]}
}

// =============================================================================
// INCOME BREAKDOWNS - Top 5, all washes, no date window
// =============================================================================

// CarIncome is one row of the by-car breakdown.
type CarIncome struct {
	CarName string  `json:"carName"`
	Income  float64 `json:"income"`
}

// TypeIncome is one row of the by-wash-type breakdown.
type TypeIncome struct {
	TypeName string  `json:"typeName"`
	Income   float64 `json:"income"`
}

// IncomeByCar groups all washes by resolved car name, sums price per group,
// and returns the top 5 groups by income, descending. Ties keep the
// grouping's first-seen order.
func IncomeByCar(s record.Store) []CarIncome {
	grouped := groupIncome(s.Washes, func(w record.Wash) string {
		if car, ok := s.FindCar(w.CarID); ok {
			return car.Name
		}
		return UnknownCar
	})
	out := make([]CarIncome, len(grouped))
	for i, g := range grouped {
		out[i] = CarIncome{CarName: g.name, Income: g.income}
	}
	return out
}

// IncomeByWashType is IncomeByCar grouped by resolved wash type name.
func IncomeByWashType(s record.Store) []TypeIncome {
	grouped := groupIncome(s.Washes, func(w record.Wash) string {
		if wt, ok := s.FindWashType(w.WashTypeID); ok {
			return wt.Name
		}
		return UnknownType
	})
	out := make([]TypeIncome, len(grouped))
	for i, g := range grouped {
		out[i] = TypeIncome{TypeName: g.name, Income: g.income}
	}
	return out
}

type incomeGroup struct {
	name   string
	income float64
}

func groupIncome(washes []record.Wash, nameOf func(record.Wash) string) []incomeGroup {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, w := range washes {
		name := nameOf(w)
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(decimal.NewFromFloat(w.Price))
	}

	groups := make([]incomeGroup, len(order))
	for i, name := range order {
		groups[i] = incomeGroup{name: name, income: round2(totals[name])}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].income > groups[j].income
	})
	if len(groups) > topN {
		groups = groups[:topN]
	}
	return groups
}

// =============================================================================
// REPORT - Everything the dashboard needs in one call
// =============================================================================

// Report bundles the KPI windows and both breakdowns.
type Report struct {
	KPIs             KPIs         `json:"kpis"`
	IncomeByCar      []CarIncome  `json:"incomeByCar"`
	IncomeByWashType []TypeIncome `json:"incomeByWashType"`
}

// All computes the full report for a snapshot.
func All(s record.Store, now time.Time) Report {
	return Report{
		KPIs:             CalculateKPIs(s, now),
		IncomeByCar:      IncomeByCar(s),
		IncomeByWashType: IncomeByWashType(s),
	}
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// WashesByDateDesc returns a copy of the wash history sorted newest first,
// the display order for the history view. Insertion order breaks ties.
func WashesByDateDesc(s record.Store) []record.Wash {
	out := make([]record.Wash, len(s.Washes))
	copy(out, s.Washes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// ExpenseCategories returns the distinct non-empty categories observed
// across expenses, in first-seen order. These drive the filter dropdowns;
// there is no Category entity.
func ExpenseCategories(s record.Store) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.Expenses {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	return out
}

// CompanyBalance totals the unpaid company-billed washes for one company.
type CompanyBalance struct {
	CompanyID   record.ID `json:"companyId"`
	CompanyName string    `json:"companyName"`
	UnpaidTotal float64   `json:"unpaidTotal"`
	UnpaidCount int       `json:"unpaidCount"`
}

// UnpaidByCompany sums unpaid washes per billed company, largest total
// first. Walk-in washes (no company) are excluded; a deleted company keeps
// its rollup under the placeholder label.
func UnpaidByCompany(s record.Store) []CompanyBalance {
	totals := make(map[record.ID]decimal.Decimal)
	counts := make(map[record.ID]int)
	var order []record.ID
	for _, w := range s.Washes {
		if w.CompanyID == nil || w.IsPaid {
			continue
		}
		id := *w.CompanyID
		if _, ok := totals[id]; !ok {
			order = append(order, id)
		}
		totals[id] = totals[id].Add(decimal.NewFromFloat(w.Price))
		counts[id]++
	}

	out := make([]CompanyBalance, len(order))
	for i, id := range order {
		name := "Unknown Company"
		if c, ok := s.FindCompany(id); ok {
			name = c.Name
		}
		out[i] = CompanyBalance{
			CompanyID:   id,
			CompanyName: name,
			UnpaidTotal: round2(totals[id]),
			UnpaidCount: counts[id],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UnpaidTotal > out[j].UnpaidTotal
	})
	return out
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// FormatCurrency renders an amount with 2 decimals and the currency symbol
// appended, e.g. "5.00€".
func FormatCurrency(amount float64, currency string) string {
	return decimal.NewFromFloat(amount).StringFixed(2) + currency
}

// round2 rounds half away from zero on the cent boundary.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
