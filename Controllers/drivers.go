package Controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

// DriverHandler contains handler methods for driver and driver payment routes
type DriverHandler struct {
	DB *gorm.DB
}

func NewDriverHandler(db *gorm.DB) *DriverHandler {
	return &DriverHandler{DB: db}
}

type DriverInput struct {
	Name          string         `json:"name" validate:"required,max=100"`
	LicenseNumber string         `json:"license_number" validate:"max=40"`
	Mobiles       []string       `json:"mobiles" validate:"required,min=1,max=2,dive,max=20"`
	BloodGroup    string         `json:"blood_group" validate:"max=8"`
	Salary        Finance.Amount `json:"salary" validate:"gte=0"`
	Advance       Finance.Amount `json:"advance" validate:"gte=0"`
	TruckID       *string        `json:"truck_id"`
	PhotoURL      string         `json:"photo_url"`
	DocumentURL   string         `json:"document_url"`
}

type DriverUpdate struct {
	Name          *string         `json:"name" validate:"omitempty,min=1,max=100"`
	LicenseNumber *string         `json:"license_number" validate:"omitempty,max=40"`
	Mobiles       *[]string       `json:"mobiles" validate:"omitempty,min=1,max=2,dive,max=20"`
	BloodGroup    *string         `json:"blood_group" validate:"omitempty,max=8"`
	Salary        *Finance.Amount `json:"salary" validate:"omitempty,gte=0"`
	Advance       *Finance.Amount `json:"advance" validate:"omitempty,gte=0"`
	TruckID       *string         `json:"truck_id"`
	PhotoURL      *string         `json:"photo_url"`
	DocumentURL   *string         `json:"document_url"`
}

type DriverPaymentInput struct {
	Amount      Finance.Amount `json:"amount" validate:"gt=0"`
	PaymentDate string         `json:"payment_date"`
	PaymentType string         `json:"payment_type" validate:"required,oneof=salary advance bonus other"`
	Remark      string         `json:"remark" validate:"max=255"`
}

// truckRef resolves an optional truck id. "" clears the assignment.
func (h *DriverHandler) truckRef(ctx context.Context, ownerID string, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	truck, err := Models.FindTruck(ctx, h.DB, ownerID, strings.TrimSpace(*id))
	if err != nil {
		return nil, err
	}
	return &truck.ID, nil
}

func (h *DriverHandler) findDriver(c *fiber.Ctx) (Models.Driver, error) {
	var driver Models.Driver
	err := h.DB.WithContext(c.UserContext()).
		Preload("Truck").
		Where("id = ? AND owner_id = ?", c.Params("id"), ownerOf(c).ID).
		First(&driver).Error
	return driver, err
}

func (h *DriverHandler) GetDrivers(c *fiber.Ctx) error {
	drivers, err := Models.LoadDrivers(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch drivers", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Drivers retrieved successfully",
		"data":    drivers,
	})
}

func (h *DriverHandler) GetDriver(c *fiber.Ctx) error {
	driver, err := h.findDriver(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Driver")
	}
	if err != nil {
		return serverError(c, "Failed to fetch driver", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Driver retrieved successfully",
		"data":    driver,
	})
}

func (h *DriverHandler) CreateDriver(c *fiber.Ctx) error {
	var input DriverInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	owner := ownerOf(c)
	truckID, err := h.truckRef(c.UserContext(), owner.ID, input.TruckID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Truck")
	}
	if err != nil {
		return serverError(c, "Failed to fetch truck", err)
	}

	driver := Models.Driver{
		OwnerID:       owner.ID,
		TruckID:       truckID,
		Name:          input.Name,
		LicenseNumber: input.LicenseNumber,
		BloodGroup:    input.BloodGroup,
		Salary:        input.Salary.Float(),
		Advance:       input.Advance.Float(),
		PhotoURL:      input.PhotoURL,
		DocumentURL:   input.DocumentURL,
	}
	if err := driver.SetMobiles(input.Mobiles); err != nil {
		return badRequest(c, err.Error(), nil)
	}

	if err := h.DB.WithContext(c.UserContext()).Create(&driver).Error; err != nil {
		return serverError(c, "Failed to create driver", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Driver created successfully",
		"data":    driver,
	})
}

func (h *DriverHandler) UpdateDriver(c *fiber.Ctx) error {
	driver, err := h.findDriver(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Driver")
	}
	if err != nil {
		return serverError(c, "Failed to fetch driver", err)
	}

	var input DriverUpdate
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.LicenseNumber != nil {
		updates["license_number"] = *input.LicenseNumber
	}
	if input.Mobiles != nil {
		var m Models.Driver
		if err := m.SetMobiles(*input.Mobiles); err != nil {
			return badRequest(c, err.Error(), nil)
		}
		updates["mobile_primary"] = m.MobilePrimary
		updates["mobile_secondary"] = m.MobileSecondary
	}
	if input.BloodGroup != nil {
		updates["blood_group"] = *input.BloodGroup
	}
	if input.Salary != nil {
		updates["salary"] = input.Salary.Float()
	}
	if input.Advance != nil {
		updates["advance"] = input.Advance.Float()
	}
	if input.TruckID != nil {
		truckID, err := h.truckRef(c.UserContext(), driver.OwnerID, input.TruckID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Truck")
		}
		if err != nil {
			return serverError(c, "Failed to fetch truck", err)
		}
		updates["truck_id"] = truckID
	}
	if input.PhotoURL != nil {
		updates["photo_url"] = *input.PhotoURL
	}
	if input.DocumentURL != nil {
		updates["document_url"] = *input.DocumentURL
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(c.UserContext()).Model(&driver).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update driver", err)
		}
	}

	driver, err = h.findDriver(c)
	if err != nil {
		return serverError(c, "Failed to reload driver", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Driver updated successfully",
		"data":    driver,
	})
}

func (h *DriverHandler) DeleteDriver(c *fiber.Ctx) error {
	driver, err := h.findDriver(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Driver")
	}
	if err != nil {
		return serverError(c, "Failed to fetch driver", err)
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("driver_id = ?", driver.ID).Delete(&Models.DriverPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Models.FuelExpense{}).Where("driver_id = ?", driver.ID).Update("driver_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&driver).Error
	})
	if err != nil {
		return serverError(c, "Failed to delete driver", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Driver deleted successfully",
	})
}

func (h *DriverHandler) GetDriverPayments(c *fiber.Ctx) error {
	driver, err := h.findDriver(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Driver")
	}
	if err != nil {
		return serverError(c, "Failed to fetch driver", err)
	}

	var payments []Models.DriverPayment
	err = h.DB.WithContext(c.UserContext()).
		Where("driver_id = ? AND owner_id = ?", driver.ID, driver.OwnerID).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error
	if err != nil {
		return serverError(c, "Failed to fetch driver payments", err)
	}

	totals := map[string]float64{}
	for _, p := range payments {
		totals[p.PaymentType] = Finance.Sum(totals[p.PaymentType], p.Amount)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Driver payments retrieved successfully",
		"data":    payments,
		"meta": fiber.Map{
			"totals":  totals,
			"advance": driver.Advance,
		},
	})
}

// CreateDriverPayment records a ledger entry. An advance also raises the
// driver's advance balance in the same transaction.
func (h *DriverHandler) CreateDriverPayment(c *fiber.Ctx) error {
	driver, err := h.findDriver(c)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Driver")
	}
	if err != nil {
		return serverError(c, "Failed to fetch driver", err)
	}

	var input DriverPaymentInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}
	date, err := dayOrToday(input.PaymentDate)
	if err != nil {
		return badRequest(c, "Invalid payment date", err)
	}

	payment := Models.DriverPayment{
		OwnerID:     driver.OwnerID,
		DriverID:    driver.ID,
		Amount:      input.Amount.Float(),
		PaymentDate: date,
		PaymentType: input.PaymentType,
		Remark:      input.Remark,
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if payment.PaymentType != Models.DriverPaymentAdvance {
			return nil
		}
		return tx.Model(&Models.Driver{}).
			Where("id = ?", driver.ID).
			Update("advance", gorm.Expr("advance + ?", payment.Amount)).Error
	})
	if err != nil {
		return serverError(c, "Failed to record driver payment", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Driver payment recorded successfully",
		"data":    payment,
	})
}
