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

// PaymentHandler contains handler methods for payment routes
type PaymentHandler struct {
	DB *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{DB: db}
}

type PaymentInput struct {
	TripID      string         `json:"trip_id" validate:"required"`
	Amount      Finance.Amount `json:"amount" validate:"gt=0"`
	PaymentDate string         `json:"payment_date"`
	Mode        string         `json:"mode" validate:"omitempty,oneof=cash upi bank"`
}

// GetPayments is the per-trip settlement view: order value, paid, balance and
// status for every scoped trip, plus the totals across them.
func (h *PaymentHandler) GetPayments(c *fiber.Ctx) error {
	ledgers, err := Models.LoadTripLedgers(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch payments", err)
	}
	ledgers = Scope.Apply(ledgers, scopeFrom(c, Scope.Yearly))

	status := strings.ToLower(c.Query("status"))
	orders := make([]float64, 0, len(ledgers))
	paid := make([]float64, 0, len(ledgers))
	rows := make([]Models.TripLedger, 0, len(ledgers))
	for _, l := range ledgers {
		if status != "" && string(l.Settlement.Status) != status {
			continue
		}
		rows = append(rows, l)
		orders = append(orders, l.Settlement.OrderValue)
		paid = append(paid, l.Settlement.Paid)
	}

	page := pageFrom(c)
	meta := page.meta(len(rows))
	meta["total_order_value"] = Finance.Sum(orders...)
	meta["total_paid"] = Finance.Sum(paid...)
	meta["total_balance"] = Finance.Diff(Finance.Sum(orders...), Finance.Sum(paid...))

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Payments retrieved successfully",
		"data":    paginate(rows, page),
		"meta":    meta,
	})
}

// GetPaymentHistory lists individual payment records in scope.
func (h *PaymentHandler) GetPaymentHistory(c *fiber.Ctx) error {
	payments, err := Models.LoadPayments(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch payment history", err)
	}
	payments = Scope.Apply(payments, scopeFrom(c, Scope.Yearly))

	page := pageFrom(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Payment history retrieved successfully",
		"data":    paginate(payments, page),
		"meta":    page.meta(len(payments)),
	})
}

// CreatePayment appends a payment to an owned trip and returns the trip's new settlement.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var input PaymentInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	owner := ownerOf(c)
	trip, err := Models.FindTrip(ctx, h.DB, owner.ID, input.TripID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Trip")
	}
	if err != nil {
		return serverError(c, "Failed to fetch trip", err)
	}

	date, err := dayOrToday(input.PaymentDate)
	if err != nil {
		return badRequest(c, "Invalid payment date", err)
	}
	mode := input.Mode
	if mode == "" {
		mode = Models.PaymentModeCash
	}

	payment := Models.Payment{
		TripID:      trip.ID,
		Amount:      input.Amount.Float(),
		PaymentDate: date,
		Mode:        mode,
	}
	if err := h.DB.WithContext(ctx).Omit("Trip").Create(&payment).Error; err != nil {
		return serverError(c, "Failed to record payment", err)
	}

	trip.Payments = append(trip.Payments, payment)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"data": fiber.Map{
			"payment":    payment,
			"settlement": trip.Settlement(),
		},
	})
}

func (h *PaymentHandler) DeletePayment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var payment Models.Payment
	err := h.DB.WithContext(ctx).
		Scopes(Models.OwnedTrips(h.DB, ownerOf(c).ID)).
		Where("id = ?", c.Params("id")).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Payment")
	}
	if err != nil {
		return serverError(c, "Failed to fetch payment", err)
	}

	if err := h.DB.WithContext(ctx).Where("id = ?", payment.ID).Delete(&Models.Payment{}).Error; err != nil {
		return serverError(c, "Failed to delete payment", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Payment deleted successfully",
	})
}
