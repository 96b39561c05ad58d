// Package Analytics folds scoped trips and expenses into dashboard figures.
package Analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
)

type Stats struct {
	TotalTrips    int     `json:"total_trips"`
	TotalEarnings float64 `json:"total_earnings"`
	Pending       float64 `json:"pending"`
	FuelCost      float64 `json:"fuel_cost"`
}

// ComputeStats counts earnings as money received, not order value.
// Pending can be negative when trips were overpaid.
func ComputeStats(trips []Models.TripLedger, fuel []Models.FuelExpense) Stats {
	earned := decimal.Zero
	pending := decimal.Zero
	for _, t := range trips {
		paid := decimal.NewFromFloat(Finance.Finite(t.Settlement.Paid))
		order := decimal.NewFromFloat(Finance.Finite(t.Settlement.OrderValue))
		earned = earned.Add(paid)
		pending = pending.Add(order.Sub(paid))
	}

	amounts := make([]float64, len(fuel))
	for i, f := range fuel {
		amounts[i] = f.Amount
	}

	return Stats{
		TotalTrips:    len(trips),
		TotalEarnings: earned.InexactFloat64(),
		Pending:       pending.InexactFloat64(),
		FuelCost:      Finance.Sum(amounts...),
	}
}

type DayBucket struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// WeeklyEarnings sums order values per local calendar day for the seven days
// ending today, oldest first. Days without trips are kept with 0.
func WeeklyEarnings(trips []Models.TripLedger, now time.Time) []DayBucket {
	today := midnight(now)
	buckets := make([]DayBucket, 7)
	sums := make([]decimal.Decimal, 7)
	for i := range buckets {
		d := today.AddDate(0, 0, i-6)
		buckets[i] = DayBucket{Date: d.Format(Models.DateLayout), Label: d.Format("Mon")}
		sums[i] = decimal.Zero
	}

	index := make(map[string]int, 7)
	for i, b := range buckets {
		index[b.Date] = i
	}

	for _, t := range trips {
		day := t.ScopeRecord().Day(now.Location())
		if day.IsZero() {
			continue
		}
		key := day.Format(Models.DateLayout)
		if i, ok := index[key]; ok {
			sums[i] = sums[i].Add(decimal.NewFromFloat(Finance.Finite(t.Settlement.OrderValue)))
		}
	}

	for i := range buckets {
		buckets[i].Amount = sums[i].InexactFloat64()
	}
	return buckets
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Breakdown bucket names, in output order.
const (
	BucketFuel        = "Fuel"
	BucketMaintenance = "Maintenance"
	BucketSalary      = "Salary"
	BucketMisc        = "Misc"
)

// ExpenseBreakdown always returns the four buckets Fuel, Maintenance, Salary, Misc.
func ExpenseBreakdown(fuel []Models.FuelExpense, expenses []Models.Expense) []Slice {
	fuelAmounts := make([]float64, len(fuel))
	for i, f := range fuel {
		fuelAmounts[i] = f.Amount
	}

	var maintenance, salary, misc []float64
	for _, e := range expenses {
		switch Bucket(e.Category) {
		case BucketMaintenance:
			maintenance = append(maintenance, e.Amount)
		case BucketSalary:
			salary = append(salary, e.Amount)
		default:
			misc = append(misc, e.Amount)
		}
	}

	return []Slice{
		{Name: BucketFuel, Value: Finance.Sum(fuelAmounts...)},
		{Name: BucketMaintenance, Value: Finance.Sum(maintenance...)},
		{Name: BucketSalary, Value: Finance.Sum(salary...)},
		{Name: BucketMisc, Value: Finance.Sum(misc...)},
	}
}

// Bucket maps an expense category to its breakdown bucket.
func Bucket(category string) string {
	switch strings.TrimSpace(category) {
	case Models.CategoryTyre, Models.CategoryRepair, Models.CategoryService:
		return BucketMaintenance
	case Models.CategorySalary:
		return BucketSalary
	default:
		return BucketMisc
	}
}
