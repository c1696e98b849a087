package stats_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/washbook/record"
	"github.com/warp/washbook/stats"
)

// Fixed clock for every windowing test.
var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func wash(carID, typeID record.ID, price float64, date time.Time) record.Wash {
	return record.Wash{ID: record.NewID(), CarID: carID, WashTypeID: typeID, Price: price, Date: date}
}

func expense(amount float64, category string, date time.Time) record.Expense {
	return record.Expense{ID: record.NewID(), Name: "x", Amount: amount, Category: category, Date: date}
}

// =============================================================================
// WINDOW PREDICATES
// =============================================================================

func TestWindowPredicates(t *testing.T) {
	cases := []struct {
		name      string
		date      time.Time
		today     bool
		last7     bool
		thisMonth bool
	}{
		{"this morning", time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC), true, true, true},
		{"yesterday", time.Date(2024, time.June, 14, 23, 59, 0, 0, time.UTC), false, true, true},
		{"exactly 7 days ago", time.Date(2024, time.June, 8, 12, 0, 0, 0, time.UTC), false, true, true},
		{"just over 7 days ago", time.Date(2024, time.June, 8, 11, 59, 59, 0, time.UTC), false, false, true},
		{"start of month", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), false, false, true},
		{"last month", time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC), false, false, false},
		{"tomorrow", time.Date(2024, time.June, 16, 9, 0, 0, 0, time.UTC), false, false, true},
		{"same month last year", time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC), false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.today, stats.IsToday(tc.date, now), "IsToday")
			assert.Equal(t, tc.last7, stats.IsLast7Days(tc.date, now), "IsLast7Days")
			assert.Equal(t, tc.thisMonth, stats.IsThisMonth(tc.date, now), "IsThisMonth")
		})
	}
}

func TestIsToday_IgnoresFutureSameDay(t *testing.T) {
	// "Today" is a calendar-day test, not an upper-bounded window.
	later := time.Date(2024, time.June, 15, 23, 0, 0, 0, time.UTC)
	assert.True(t, stats.IsToday(later, now))
	assert.False(t, stats.IsLast7Days(later, now))
}

// =============================================================================
// KPI WINDOWS
// =============================================================================

func TestCalculateKPIs_PartitionsByWindow(t *testing.T) {
	// GIVEN: Washes and expenses spread over today, this week, this month
	// WHEN: KPIs are calculated
	// THEN: Each window sums exactly what falls inside it

	s := record.EmptyStore()
	today := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	thisWeek := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)

	s.Washes = []record.Wash{
		wash("c1", "t1", 10, today),
		wash("c1", "t1", 20, thisWeek),
		wash("c1", "t1", 40, thisMonth),
		wash("c1", "t1", 80, lastMonth),
	}
	s.Expenses = []record.Expense{
		expense(3, "", today),
		expense(5, "", thisMonth),
		expense(7, "", lastMonth),
	}

	k := stats.CalculateKPIs(s, now)

	assert.Equal(t, stats.PeriodStats{Income: 10, Expenses: 3, Profit: 7}, k.Today)
	assert.Equal(t, stats.PeriodStats{Income: 30, Expenses: 3, Profit: 27}, k.Last7Days)
	assert.Equal(t, stats.PeriodStats{Income: 70, Expenses: 8, Profit: 62}, k.ThisMonth)
}

func TestCalculateKPIs_DecimalAccumulation(t *testing.T) {
	// 0.1 + 0.2 must come out as 0.3, not 0.30000000000000004.
	s := record.EmptyStore()
	today := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	s.Washes = []record.Wash{
		wash("c1", "t1", 0.1, today),
		wash("c1", "t1", 0.2, today),
	}
	k := stats.CalculateKPIs(s, now)
	assert.Equal(t, 0.3, k.Today.Income)
}

func TestCalculateKPIs_ProfitRounding(t *testing.T) {
	s := record.EmptyStore()
	today := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	s.Washes = []record.Wash{wash("c1", "t1", 10, today)}
	s.Expenses = []record.Expense{expense(3.333, "", today)}

	k := stats.CalculateKPIs(s, now)
	assert.Equal(t, 3.33, k.Today.Expenses)
	assert.Equal(t, 6.67, k.Today.Profit)
}

func TestCalculateKPIs_EmptyStore(t *testing.T) {
	k := stats.CalculateKPIs(record.EmptyStore(), now)
	assert.Equal(t, stats.PeriodStats{}, k.Today)
	assert.Equal(t, stats.PeriodStats{}, k.Last7Days)
	assert.Equal(t, stats.PeriodStats{}, k.ThisMonth)
}

// =============================================================================
// INCOME BREAKDOWNS
// =============================================================================

func TestIncomeByCar_SortsAndTruncatesToTopFive(t *testing.T) {
	// GIVEN: Seven cars with distinct totals
	// WHEN: Broken down by car
	// THEN: Five rows, descending by income

	s := record.EmptyStore()
	for i := 1; i <= 7; i++ {
		id := record.ID(fmt.Sprintf("car-%d", i))
		s.Cars = append(s.Cars, record.Car{ID: id, Name: fmt.Sprintf("Car %d", i)})
		s.Washes = append(s.Washes, wash(id, "t1", float64(i*10), now))
	}

	rows := stats.IncomeByCar(s)
	require.Len(t, rows, 5)
	assert.Equal(t, stats.CarIncome{CarName: "Car 7", Income: 70}, rows[0])
	assert.Equal(t, stats.CarIncome{CarName: "Car 3", Income: 30}, rows[4])
}

func TestIncomeByCar_TiesKeepFirstSeenOrder(t *testing.T) {
	s := record.EmptyStore()
	s.Cars = []record.Car{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	}
	// Beta appears first in the wash log; same total as Alpha.
	s.Washes = []record.Wash{
		wash("b", "t1", 10, now),
		wash("a", "t1", 10, now),
	}
	rows := stats.IncomeByCar(s)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beta", rows[0].CarName)
	assert.Equal(t, "Alpha", rows[1].CarName)
}

func TestIncomeByCar_DeletedCarGroupsUnderPlaceholder(t *testing.T) {
	s := record.EmptyStore()
	s.Washes = []record.Wash{
		wash("gone-1", "t1", 5, now),
		wash("gone-2", "t1", 7, now),
	}
	rows := stats.IncomeByCar(s)
	require.Len(t, rows, 1)
	assert.Equal(t, stats.CarIncome{CarName: stats.UnknownCar, Income: 12}, rows[0])
}

func TestIncomeByWashType_DeletedTypeGroupsUnderPlaceholder(t *testing.T) {
	s := record.EmptyStore()
	s.WashTypes = []record.WashType{{ID: "t1", Name: "Full"}}
	s.Washes = []record.Wash{
		wash("c1", "t1", 10, now),
		wash("c1", "gone", 4, now),
	}
	rows := stats.IncomeByWashType(s)
	require.Len(t, rows, 2)
	assert.Equal(t, stats.TypeIncome{TypeName: "Full", Income: 10}, rows[0])
	assert.Equal(t, stats.TypeIncome{TypeName: stats.UnknownType, Income: 4}, rows[1])
}

func TestAll_SeededStoreScenario(t *testing.T) {
	// GIVEN: The seeded default store plus one wash recorded right now
	// WHEN: The full report runs
	// THEN: Today's income reflects the wash under the right names

	s := record.DefaultStore()
	s.Washes = []record.Wash{wash(s.Cars[0].ID, s.WashTypes[0].ID, 5, now)}

	r := stats.All(s, now)
	assert.Equal(t, 5.0, r.KPIs.Today.Income)
	require.Len(t, r.IncomeByCar, 1)
	assert.Equal(t, "BMW", r.IncomeByCar[0].CarName)
	require.Len(t, r.IncomeByWashType, 1)
	assert.Equal(t, "Brenda", r.IncomeByWashType[0].TypeName)
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

func TestWashesByDateDesc(t *testing.T) {
	s := record.EmptyStore()
	old := wash("c1", "t1", 1, now.AddDate(0, 0, -3))
	mid := wash("c1", "t1", 2, now.AddDate(0, 0, -1))
	new_ := wash("c1", "t1", 3, now)
	s.Washes = []record.Wash{mid, old, new_}

	sorted := stats.WashesByDateDesc(s)
	require.Len(t, sorted, 3)
	assert.Equal(t, new_.ID, sorted[0].ID)
	assert.Equal(t, mid.ID, sorted[1].ID)
	assert.Equal(t, old.ID, sorted[2].ID)

	// The snapshot's own order is untouched.
	assert.Equal(t, mid.ID, s.Washes[0].ID)
}

func TestExpenseCategories_DistinctFirstSeenNonEmpty(t *testing.T) {
	s := record.EmptyStore()
	s.Expenses = []record.Expense{
		expense(1, "supplies", now),
		expense(2, "", now),
		expense(3, "rent", now),
		expense(4, "supplies", now),
	}
	assert.Equal(t, []string{"supplies", "rent"}, stats.ExpenseCategories(s))
}

func TestUnpaidByCompany(t *testing.T) {
	// GIVEN: Paid, unpaid, walk-in, and orphaned-company washes
	// WHEN: Rolled up per company
	// THEN: Only unpaid company washes count, largest total first

	s := record.EmptyStore()
	s.Companies = []record.Company{
		{ID: "co1", Name: "Kompania ABC"},
		{ID: "co2", Name: "Biznes XYZ"},
	}
	co1, co2, gone := record.ID("co1"), record.ID("co2"), record.ID("gone")

	unpaid := func(company record.ID, price float64) record.Wash {
		w := wash("c1", "t1", price, now)
		w.CompanyID = &company
		return w
	}
	paid := unpaid(co1, 99)
	paid.IsPaid = true

	s.Washes = []record.Wash{
		unpaid(co1, 10),
		unpaid(co2, 25),
		unpaid(co2, 5),
		unpaid(gone, 2),
		paid,
		wash("c1", "t1", 50, now), // walk-in, no company
	}

	rows := stats.UnpaidByCompany(s)
	require.Len(t, rows, 3)
	assert.Equal(t, stats.CompanyBalance{CompanyID: co2, CompanyName: "Biznes XYZ", UnpaidTotal: 30, UnpaidCount: 2}, rows[0])
	assert.Equal(t, stats.CompanyBalance{CompanyID: co1, CompanyName: "Kompania ABC", UnpaidTotal: 10, UnpaidCount: 1}, rows[1])
	assert.Equal(t, stats.CompanyBalance{CompanyID: gone, CompanyName: "Unknown Company", UnpaidTotal: 2, UnpaidCount: 1}, rows[2])
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "5.00€", stats.FormatCurrency(5, "€"))
	assert.Equal(t, "7.50€", stats.FormatCurrency(7.5, "€"))
	assert.Equal(t, "3.33$", stats.FormatCurrency(3.333, "$"))
	assert.Equal(t, "0.00€", stats.FormatCurrency(0, "€"))
}
