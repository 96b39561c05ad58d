package Reports

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	truck := &Models.Truck{TruckNumber: "MH12AB1234"}
	order := 1000.0
	trip := Models.Trip{
		Truck:           truck,
		TruckID:         "t1",
		TripDate:        Models.Day(time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)),
		Supplier:        "Stone Co",
		Client:          "Acme",
		Material:        "Sand",
		TotalOrderValue: &order,
		Payments:        []Models.Payment{{Amount: 400}},
	}

	return Dataset{
		Trips:    []Models.TripLedger{Models.NewTripLedger(trip)},
		Expenses: []Models.Expense{{Truck: truck, Amount: 250}},
		Payments: []Models.Payment{{Trip: &trip, Amount: 400, Mode: "cash", PaymentDate: trip.TripDate}},
		Drivers:  []Models.Driver{{Name: "Ravi", MobilePrimary: "9000000000", Salary: 15000}},
	}
}

func TestBuildTablesPlaceholders(t *testing.T) {
	tables := BuildTables(Dataset{
		FuelExpenses: []Models.FuelExpense{{Amount: 500, Liters: 5}},
		Expenses:     []Models.Expense{{Amount: 10}},
	})
	require.Len(t, tables, 6)

	fuel := tables[1].Rows[0]
	assert.Equal(t, Placeholder, fuel[0])
	assert.Equal(t, Placeholder, fuel[1])
	assert.Equal(t, "Local", fuel[2])
	assert.Equal(t, Money(100), fuel[5])

	expense := tables[2].Rows[0]
	assert.Equal(t, "Other", expense[2])
	assert.Equal(t, Placeholder, expense[3])
}

func TestBuildTablesTrips(t *testing.T) {
	row := BuildTables(sampleDataset())[0].Rows[0]
	assert.Equal(t, "2024-03-10", row[0])
	assert.Equal(t, "MH12AB1234", row[1])
	assert.Equal(t, Placeholder, row[5])
	assert.Equal(t, Money(1000), row[6])
	assert.Equal(t, Money(400), row[7])
	assert.Equal(t, Money(600), row[8])
	assert.Equal(t, "PENDING", row[9])
}

func TestGenerateExcel(t *testing.T) {
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	report, err := Generate(FormatExcel, sampleDataset(), Meta{RangeSlug: "weekly", GeneratedAt: at}, 100)
	require.NoError(t, err)
	assert.Equal(t, "TruckManager_Report_weekly_2024-03-15.xlsx", report.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(report.Body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Trips", "Fuel Expenses", "General Expenses", "Payments", "Drivers", "Suppliers"}, f.GetSheetList())

	rows, err := f.GetRows("Trips")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Acme", rows[1][3])
	assert.Equal(t, "1000", rows[1][6])

	fuel, err := f.GetRows("Fuel Expenses")
	require.NoError(t, err)
	assert.Len(t, fuel, 1)
}

func TestGeneratePDF(t *testing.T) {
	report, err := Generate(FormatPDF, sampleDataset(), Meta{OwnerName: "Sharma Transport", RangeLabel: "WEEKLY", RangeSlug: "weekly"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Body, []byte("%PDF")))
}

func TestGenerateEmptyDataset(t *testing.T) {
	for _, f := range []Format{FormatPDF, FormatExcel} {
		report, err := Generate(f, Dataset{}, Meta{RangeSlug: "today"}, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, report.Body)
	}
}

func TestGeneratePaginatesLongTables(t *testing.T) {
	var data Dataset
	for i := 0; i < 120; i++ {
		data.Suppliers = append(data.Suppliers, Models.Supplier{Name: "Supplier", Mobile: "9000000000"})
	}
	report, err := Generate(FormatPDF, data, Meta{}, 0)
	require.NoError(t, err)

	m := regexp.MustCompile(`/Count (\d+)`).FindSubmatch(report.Body)
	require.NotNil(t, m)
	pages, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 3)
}

func TestGenerateRowLimit(t *testing.T) {
	_, err := Generate(FormatPDF, sampleDataset(), Meta{}, 2)
	assert.True(t, errors.Is(err, ErrDatasetTooLarge))
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatExcel, f)

	_, ok = ParseFormat("csv")
	assert.False(t, ok)
}
