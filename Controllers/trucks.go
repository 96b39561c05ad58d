package Controllers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

var errTruckInUse = errors.New("truck is referenced by trips or expenses")

// TruckHandler contains handler methods for truck routes
type TruckHandler struct {
	DB *gorm.DB
}

func NewTruckHandler(db *gorm.DB) *TruckHandler {
	return &TruckHandler{DB: db}
}

type TruckInput struct {
	TruckNumber string `json:"truck_number" validate:"required,max=32"`
	Model       string `json:"model" validate:"max=64"`
	FuelType    string `json:"fuel_type" validate:"max=32"`
}

type TruckUpdate struct {
	TruckNumber *string `json:"truck_number" validate:"omitempty,min=1,max=32"`
	Model       *string `json:"model" validate:"omitempty,max=64"`
	FuelType    *string `json:"fuel_type" validate:"omitempty,max=32"`
}

func (h *TruckHandler) GetTrucks(c *fiber.Ctx) error {
	var trucks []Models.Truck
	err := h.DB.WithContext(c.UserContext()).
		Where("owner_id = ?", ownerOf(c).ID).
		Order("created_at ASC").
		Find(&trucks).Error
	if err != nil {
		return serverError(c, "Failed to fetch trucks", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Trucks retrieved successfully",
		"data":    trucks,
	})
}

func (h *TruckHandler) CreateTruck(c *fiber.Ctx) error {
	var input TruckInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	truck := Models.Truck{
		OwnerID:     ownerOf(c).ID,
		TruckNumber: input.TruckNumber,
		Model:       input.Model,
		FuelType:    input.FuelType,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&truck).Error; err != nil {
		return serverError(c, "Failed to create truck", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Truck created successfully",
		"data":    truck,
	})
}

func (h *TruckHandler) UpdateTruck(c *fiber.Ctx) error {
	ctx := c.UserContext()
	truck, err := Models.FindTruck(ctx, h.DB, ownerOf(c).ID, c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Truck")
	}
	if err != nil {
		return serverError(c, "Failed to fetch truck", err)
	}

	var input TruckUpdate
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if input.TruckNumber != nil {
		updates["truck_number"] = *input.TruckNumber
	}
	if input.Model != nil {
		updates["model"] = *input.Model
	}
	if input.FuelType != nil {
		updates["fuel_type"] = *input.FuelType
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&truck).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update truck", err)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Truck updated successfully",
		"data":    truck,
	})
}

// DeleteTruck refuses while trips or expenses still point at the truck.
// Drivers assigned to it are unassigned.
func (h *TruckHandler) DeleteTruck(c *fiber.Ctx) error {
	ctx := c.UserContext()
	truck, err := Models.FindTruck(ctx, h.DB, ownerOf(c).ID, c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Truck")
	}
	if err != nil {
		return serverError(c, "Failed to fetch truck", err)
	}

	var trips, expenses, fuel int64
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Models.Trip{}).Where("truck_id = ?", truck.ID).Count(&trips).Error; err != nil {
			return err
		}
		if err := tx.Model(&Models.Expense{}).Where("truck_id = ?", truck.ID).Count(&expenses).Error; err != nil {
			return err
		}
		// Soft-deleted fuel logs still hold the truck id.
		if err := tx.Unscoped().Model(&Models.FuelExpense{}).Where("truck_id = ?", truck.ID).Count(&fuel).Error; err != nil {
			return err
		}
		if trips+expenses+fuel > 0 {
			return errTruckInUse
		}

		if err := tx.Model(&Models.Driver{}).Where("truck_id = ?", truck.ID).Update("truck_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&truck).Error
	})
	if errors.Is(err, errTruckInUse) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"message": "Truck has trips or expenses recorded and cannot be deleted",
			"data": fiber.Map{
				"trips":         trips,
				"expenses":      expenses,
				"fuel_expenses": fuel,
			},
		})
	}
	if err != nil {
		return serverError(c, "Failed to delete truck", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Truck deleted successfully",
	})
}
