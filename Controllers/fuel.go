package Controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/gorm"
)

// FuelHandler contains handler methods for fuel expense routes
type FuelHandler struct {
	DB *gorm.DB
}

func NewFuelHandler(db *gorm.DB) *FuelHandler {
	return &FuelHandler{DB: db}
}

type FuelInput struct {
	TruckID     string         `json:"truck_id" validate:"required"`
	PumpID      *uint          `json:"pump_id"`
	ExpenseDate string         `json:"expense_date"`
	Amount      Finance.Amount `json:"amount" validate:"gt=0"`
	Liters      Finance.Amount `json:"liters" validate:"gte=0"`
	FilledBy    string         `json:"filled_by" validate:"max=100"`
	DriverID    *string        `json:"driver_id"`
	ReceiptURL  string         `json:"receipt_url"`
}

func (h *FuelHandler) GetFuelExpenses(c *fiber.Ctx) error {
	fuel, err := Models.LoadFuelExpenses(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch fuel expenses", err)
	}
	fuel = Scope.Apply(fuel, scopeFrom(c, Scope.Yearly))

	amounts := make([]float64, len(fuel))
	liters := make([]float64, len(fuel))
	for i, f := range fuel {
		amounts[i] = f.Amount
		liters[i] = f.Liters
	}

	page := pageFrom(c)
	meta := page.meta(len(fuel))
	meta["total_amount"] = Finance.Sum(amounts...)
	meta["total_liters"] = Finance.Sum(liters...)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Fuel expenses retrieved successfully",
		"data":    paginate(fuel, page),
		"meta":    meta,
	})
}

// CreateFuelExpense needs either a filled_by name or one of the owner's drivers.
func (h *FuelHandler) CreateFuelExpense(c *fiber.Ctx) error {
	var input FuelInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	owner := ownerOf(c)
	truck, err := Models.FindTruck(ctx, h.DB, owner.ID, input.TruckID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Truck")
	}
	if err != nil {
		return serverError(c, "Failed to fetch truck", err)
	}

	fuel := Models.FuelExpense{
		OwnerID:    owner.ID,
		TruckID:    truck.ID,
		Amount:     input.Amount.Float(),
		Liters:     input.Liters.Float(),
		FilledBy:   strings.TrimSpace(input.FilledBy),
		ReceiptURL: input.ReceiptURL,
	}

	if input.PumpID != nil {
		var pump Models.PetrolPump
		err := h.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", *input.PumpID, owner.ID).First(&pump).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Petrol pump")
		}
		if err != nil {
			return serverError(c, "Failed to fetch petrol pump", err)
		}
		fuel.PumpID = &pump.ID
	}

	if input.DriverID != nil && *input.DriverID != "" {
		var driver Models.Driver
		err := h.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", *input.DriverID, owner.ID).First(&driver).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Driver")
		}
		if err != nil {
			return serverError(c, "Failed to fetch driver", err)
		}
		fuel.DriverID = &driver.ID
		if fuel.FilledBy == "" {
			fuel.FilledBy = driver.Name
		}
	}
	if fuel.FilledBy == "" {
		return badRequest(c, "filled_by or driver_id is required", nil)
	}

	date, err := dayOrToday(input.ExpenseDate)
	if err != nil {
		return badRequest(c, "Invalid expense date", err)
	}
	fuel.ExpenseDate = date

	if err := h.DB.WithContext(ctx).Omit("Truck", "Pump", "Driver").Create(&fuel).Error; err != nil {
		return serverError(c, "Failed to create fuel expense", err)
	}
	fuel.Truck = &truck

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Fuel expense created successfully",
		"data":    fuel,
	})
}

func (h *FuelHandler) DeleteFuelExpense(c *fiber.Ctx) error {
	result := h.DB.WithContext(c.UserContext()).
		Where("id = ? AND owner_id = ?", c.Params("id"), ownerOf(c).ID).
		Delete(&Models.FuelExpense{})
	if result.Error != nil {
		return serverError(c, "Failed to delete fuel expense", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Fuel expense")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Fuel expense deleted successfully",
	})
}
