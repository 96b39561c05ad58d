package Controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/Reports"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/gorm"
)

type ReportHandler struct {
	DB      *gorm.DB
	MaxRows int
}

func NewReportHandler(db *gorm.DB, maxRows int) *ReportHandler {
	return &ReportHandler{DB: db, MaxRows: maxRows}
}

// dataset loads and scopes everything a report renders. Drivers and
// suppliers are master lists and are never filtered.
func (h *ReportHandler) dataset(c *fiber.Ctx, ownerID string, scope Scope.Scope) (Reports.Dataset, error) {
	ctx := c.UserContext()
	var (
		data Reports.Dataset
		err  error
	)

	if data.Trips, err = Models.LoadTripLedgers(ctx, h.DB, ownerID); err != nil {
		return data, err
	}
	if data.FuelExpenses, err = Models.LoadFuelExpenses(ctx, h.DB, ownerID); err != nil {
		return data, err
	}
	if data.Expenses, err = Models.LoadExpenses(ctx, h.DB, ownerID); err != nil {
		return data, err
	}
	if data.Payments, err = Models.LoadPayments(ctx, h.DB, ownerID); err != nil {
		return data, err
	}
	if data.Drivers, err = Models.LoadDrivers(ctx, h.DB, ownerID); err != nil {
		return data, err
	}
	if data.Suppliers, err = Models.LoadSuppliers(ctx, h.DB, ownerID); err != nil {
		return data, err
	}

	data.Trips = Scope.Apply(data.Trips, scope)
	data.FuelExpenses = Scope.Apply(data.FuelExpenses, scope)
	data.Expenses = Scope.Apply(data.Expenses, scope)
	data.Payments = Scope.Apply(data.Payments, scope)
	return data, nil
}

// truckLabel names the truck filter for the report header.
func (h *ReportHandler) truckLabel(c *fiber.Ctx, ownerID string, scope Scope.Scope) string {
	if scope.TruckID() == "" {
		return "All Trucks"
	}
	truck, err := Models.FindTruck(c.UserContext(), h.DB, ownerID, scope.TruckID())
	if err != nil {
		return Reports.Placeholder
	}
	return truck.Number()
}

// GetReport streams the scoped data as a PDF or Excel download. The default range is weekly.
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	format, ok := Reports.ParseFormat(c.Query("format", string(Reports.FormatPDF)))
	if !ok {
		return badRequest(c, "format must be pdf or excel", nil)
	}

	owner := ownerOf(c)
	scope := scopeFrom(c, Scope.Weekly)
	data, err := h.dataset(c, owner.ID, scope)
	if err != nil {
		return serverError(c, "Failed to load report data", err)
	}

	meta := Reports.Meta{
		OwnerName:   owner.DisplayName(),
		RangeLabel:  scope.Label(),
		RangeSlug:   scope.Slug(),
		TruckLabel:  h.truckLabel(c, owner.ID, scope),
		GeneratedAt: scope.Now(),
	}

	report, err := Reports.Generate(format, data, meta, h.MaxRows)
	if errors.Is(err, Reports.ErrDatasetTooLarge) {
		return c.Status(http.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": "Too many rows for one report, narrow the date range or truck filter",
			"error":   err.Error(),
		})
	}
	if err != nil {
		return serverError(c, "Failed to generate report", err)
	}

	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	return c.Status(http.StatusOK).Send(report.Body)
}
