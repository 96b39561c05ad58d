package Reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for any missing text value.
const Placeholder = "N/A"

// Dataset is everything one report renders, already scoped.
type Dataset struct {
	Trips        []Models.TripLedger
	FuelExpenses []Models.FuelExpense
	Expenses     []Models.Expense
	Payments     []Models.Payment
	Drivers      []Models.Driver
	Suppliers    []Models.Supplier
}

// Rows is the total row count across all sections.
func (d Dataset) Rows() int {
	return len(d.Trips) + len(d.FuelExpenses) + len(d.Expenses) +
		len(d.Payments) + len(d.Drivers) + len(d.Suppliers)
}

// Meta describes who the report is for and what it covers.
type Meta struct {
	OwnerName   string
	RangeLabel  string
	RangeSlug   string
	TruckLabel  string
	GeneratedAt time.Time
}

// Money marks a cell as a currency amount.
type Money float64

// Table is one report section. Cells are string, float64 or Money.
type Table struct {
	Title   string
	Sheet   string
	Headers []string
	Weights []float64
	Rows    [][]interface{}
}

// BuildTables returns the six report sections in a fixed order.
func BuildTables(d Dataset) []Table {
	return []Table{
		tripsTable(d.Trips),
		fuelTable(d.FuelExpenses),
		expensesTable(d.Expenses),
		paymentsTable(d.Payments),
		driversTable(d.Drivers),
		suppliersTable(d.Suppliers),
	}
}

func text(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return Placeholder
}

func tripsTable(trips []Models.TripLedger) Table {
	t := Table{
		Title:   "Trips",
		Sheet:   "Trips",
		Headers: []string{"Date", "Truck", "Supplier", "Client", "Material", "Location", "Amount", "Paid", "Balance", "Status"},
		Weights: []float64{24, 28, 30, 30, 28, 30, 27, 27, 27, 26},
	}
	for _, trip := range trips {
		t.Rows = append(t.Rows, []interface{}{
			text(Models.FormatDay(trip.TripDate)),
			text(trip.Truck.Number()),
			text(trip.Supplier),
			text(trip.Client),
			text(trip.Material),
			text(trip.Location),
			Money(trip.Settlement.OrderValue),
			Money(trip.Settlement.Paid),
			Money(trip.Settlement.Balance),
			strings.ToUpper(string(trip.Settlement.Status)),
		})
	}
	return t
}

func fuelTable(fuel []Models.FuelExpense) Table {
	t := Table{
		Title:   "Fuel Expenses",
		Sheet:   "Fuel Expenses",
		Headers: []string{"Date", "Truck", "Pump", "Filled By", "Liters", "Rate", "Amount"},
		Weights: []float64{35, 40, 45, 45, 35, 37, 40},
	}
	for _, f := range fuel {
		pump := "Local"
		if f.Pump != nil && strings.TrimSpace(f.Pump.Name) != "" {
			pump = f.Pump.Name
		}
		filledBy := f.FilledBy
		if f.Driver != nil {
			filledBy = text(f.Driver.Name, f.FilledBy)
		}
		t.Rows = append(t.Rows, []interface{}{
			text(Models.FormatDay(f.ExpenseDate)),
			text(f.Truck.Number()),
			pump,
			text(filledBy),
			f.Liters,
			Money(f.Rate()),
			Money(f.Amount),
		})
	}
	return t
}

func expensesTable(expenses []Models.Expense) Table {
	t := Table{
		Title:   "General Expenses",
		Sheet:   "General Expenses",
		Headers: []string{"Date", "Truck", "Category", "Description", "Amount"},
		Weights: []float64{35, 40, 45, 107, 50},
	}
	for _, e := range expenses {
		t.Rows = append(t.Rows, []interface{}{
			text(Models.FormatDay(e.ExpenseDate)),
			text(e.Truck.Number()),
			text(e.Category, Models.CategoryOther),
			text(e.Description),
			Money(e.Amount),
		})
	}
	return t
}

func paymentsTable(payments []Models.Payment) Table {
	t := Table{
		Title:   "Payments History",
		Sheet:   "Payments",
		Headers: []string{"Date", "Truck", "Client", "Mode", "Amount"},
		Weights: []float64{40, 50, 80, 47, 60},
	}
	for _, p := range payments {
		var truck, client string
		if p.Trip != nil {
			truck = p.Trip.Truck.Number()
			client = p.Trip.Client
		}
		t.Rows = append(t.Rows, []interface{}{
			text(Models.FormatDay(p.PaymentDate), p.CreatedAt.Format(Models.DateLayout)),
			text(truck),
			text(client),
			strings.ToUpper(text(p.Mode)),
			Money(p.Amount),
		})
	}
	return t
}

func driversTable(drivers []Models.Driver) Table {
	t := Table{
		Title:   "Driver Directory",
		Sheet:   "Drivers",
		Headers: []string{"Name", "Mobile", "License", "Blood Group", "Salary", "Advance"},
		Weights: []float64{60, 45, 50, 35, 45, 42},
	}
	for _, d := range drivers {
		t.Rows = append(t.Rows, []interface{}{
			text(d.Name),
			text(strings.Join(d.Mobiles(), ", ")),
			text(d.LicenseNumber),
			text(d.BloodGroup),
			Money(d.Salary),
			Money(d.Advance),
		})
	}
	return t
}

func suppliersTable(suppliers []Models.Supplier) Table {
	t := Table{
		Title:   "Suppliers List",
		Sheet:   "Suppliers",
		Headers: []string{"Name", "Mobile", "Address", "Status"},
		Weights: []float64{80, 55, 102, 40},
	}
	for _, s := range suppliers {
		t.Rows = append(t.Rows, []interface{}{
			text(s.Name),
			text(s.Mobile),
			text(s.Address),
			"Active",
		})
	}
	return t
}

var printer = message.NewPrinter(language.English)

// display renders a cell for the PDF.
func display(cell interface{}) string {
	switch v := cell.(type) {
	case Money:
		return printer.Sprintf("Rs. %.2f", float64(v))
	case float64:
		return printer.Sprintf("%.2f", v)
	case string:
		return v
	case nil:
		return Placeholder
	default:
		return fmt.Sprint(v)
	}
}
