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

// TripHandler contains handler methods for trip routes
type TripHandler struct {
	DB *gorm.DB
}

// NewTripHandler creates a new trip handler
func NewTripHandler(db *gorm.DB) *TripHandler {
	return &TripHandler{
		DB: db,
	}
}

type TripInput struct {
	TruckID         string          `json:"truck_id" validate:"required"`
	TripDate        string          `json:"trip_date"`
	Supplier        string          `json:"supplier" validate:"max=120"`
	Client          string          `json:"client" validate:"max=120"`
	Location        string          `json:"location" validate:"max=160"`
	Material        string          `json:"material" validate:"max=120"`
	MaterialPrice   Finance.Amount  `json:"material_price"`
	TripsCount      Finance.Amount  `json:"trips_count"`
	TotalOrderValue *Finance.Amount `json:"total_order_value"`
	Profit          Finance.Amount  `json:"profit"`
	Remark          string          `json:"remark" validate:"max=500"`
	PaymentStatus   string          `json:"payment_status" validate:"omitempty,oneof=pending received Pending Received"`
}

type TripUpdate struct {
	TruckID         *string         `json:"truck_id"`
	TripDate        *string         `json:"trip_date"`
	Supplier        *string         `json:"supplier" validate:"omitempty,max=120"`
	Client          *string         `json:"client" validate:"omitempty,max=120"`
	Location        *string         `json:"location" validate:"omitempty,max=160"`
	Material        *string         `json:"material" validate:"omitempty,max=120"`
	MaterialPrice   *Finance.Amount `json:"material_price"`
	TripsCount      *Finance.Amount `json:"trips_count"`
	TotalOrderValue *Finance.Amount `json:"total_order_value"`
	Profit          *Finance.Amount `json:"profit"`
	Remark          *string         `json:"remark" validate:"omitempty,max=500"`
}

// DraftInput is the calculator's view of the entry form. Each field accepts a
// number or a numeric string; anything else counts as 0.
type DraftInput struct {
	MaterialPrice   Finance.Amount `json:"material_price"`
	TripsCount      Finance.Amount `json:"trips_count"`
	TotalOrderValue Finance.Amount `json:"total_order_value"`
	Profit          Finance.Amount `json:"profit"`
	TotalExpense    Finance.Amount `json:"total_expense"`
}

func (d DraftInput) draft() Finance.Draft {
	return Finance.Draft{
		MaterialPrice:   d.MaterialPrice.Float(),
		TripsCount:      d.TripsCount.Float(),
		TotalOrderValue: d.TotalOrderValue.Float(),
		Profit:          d.Profit.Float(),
		TotalExpense:    d.TotalExpense.Float(),
	}
}

type CalculateInput struct {
	Draft DraftInput `json:"draft"`
	Field string     `json:"field" validate:"required"`
	Value string     `json:"value"`
}

func matchesSearch(l Models.TripLedger, term string) bool {
	for _, v := range []string{l.Client, l.Supplier, l.Location, l.Material, l.Remark, l.Truck.Number()} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// GetTrips lists scoped trips with their settlement. status filters on the
// derived status, never on the stored column.
func (h *TripHandler) GetTrips(c *fiber.Ctx) error {
	ledgers, err := Models.LoadTripLedgers(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch trips", err)
	}

	ledgers = Scope.Apply(ledgers, scopeFrom(c, Scope.Yearly))

	status := strings.ToLower(c.Query("status"))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	if status != "" || search != "" {
		filtered := make([]Models.TripLedger, 0, len(ledgers))
		for _, l := range ledgers {
			if status != "" && string(l.Settlement.Status) != status {
				continue
			}
			if search != "" && !matchesSearch(l, search) {
				continue
			}
			filtered = append(filtered, l)
		}
		ledgers = filtered
	}

	page := pageFrom(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Trips retrieved successfully",
		"data":    paginate(ledgers, page),
		"meta":    page.meta(len(ledgers)),
	})
}

func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	ctx := c.UserContext()
	owner := ownerOf(c)
	trip, err := Models.FindTrip(ctx, h.DB, owner.ID, c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Trip")
	}
	if err != nil {
		return serverError(c, "Failed to fetch trip", err)
	}

	ledger := Models.NewTripLedger(trip)
	if err := ledger.Tag(ctx, h.DB, owner.ID); err != nil {
		return serverError(c, "Failed to fetch trip", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Trip retrieved successfully",
		"data":    ledger,
	})
}

// CreateTrip stores a trip. A trip submitted as received also gets a cash
// payment for the full order value, dated on the trip date.
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var input TripInput
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

	date, err := dayOrToday(input.TripDate)
	if err != nil {
		return badRequest(c, "Invalid trip date", err)
	}

	draft := Finance.Draft{
		MaterialPrice: input.MaterialPrice.Float(),
		TripsCount:    input.TripsCount.Float(),
		Profit:        input.Profit.Float(),
	}
	if input.TotalOrderValue != nil {
		draft.TotalOrderValue = input.TotalOrderValue.Float()
	}
	draft, err = Finance.Normalize(draft, input.TotalOrderValue != nil)
	if err != nil {
		return badRequest(c, err.Error(), nil)
	}

	status := Finance.ParseStatus(input.PaymentStatus)
	trip := Models.Trip{
		TruckID:  truck.ID,
		TripDate: date,
		Supplier: strings.TrimSpace(input.Supplier),
		Client:   strings.TrimSpace(input.Client),
		Location: strings.TrimSpace(input.Location),
		Material: strings.TrimSpace(input.Material),
		Remark:   input.Remark,
		Status:   string(status),
	}
	trip.SetDraft(draft)

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Truck", "Payments").Create(&trip).Error; err != nil {
			return err
		}
		if status != Finance.StatusReceived || draft.TotalOrderValue <= 0 {
			return nil
		}
		payment := Models.Payment{
			TripID:      trip.ID,
			Amount:      draft.TotalOrderValue,
			PaymentDate: date,
			Mode:        Models.PaymentModeCash,
		}
		if err := tx.Omit("Trip").Create(&payment).Error; err != nil {
			return err
		}
		trip.Payments = append(trip.Payments, payment)
		return nil
	})
	if err != nil {
		return serverError(c, "Failed to create trip", err)
	}

	trip.Truck = &truck
	ledger := Models.NewTripLedger(trip)
	if err := ledger.Tag(ctx, h.DB, owner.ID); err != nil {
		return serverError(c, "Failed to create trip", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Trip created successfully",
		"data":    ledger,
	})
}

// UpdateTrip edits descriptive and financial fields. Financial fields go
// through the same rules as on create; payments are left untouched.
func (h *TripHandler) UpdateTrip(c *fiber.Ctx) error {
	ctx := c.UserContext()
	owner := ownerOf(c)
	trip, err := Models.FindTrip(ctx, h.DB, owner.ID, c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Trip")
	}
	if err != nil {
		return serverError(c, "Failed to fetch trip", err)
	}

	var input TripUpdate
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if input.TruckID != nil && *input.TruckID != trip.TruckID {
		truck, err := Models.FindTruck(ctx, h.DB, owner.ID, *input.TruckID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Truck")
		}
		if err != nil {
			return serverError(c, "Failed to fetch truck", err)
		}
		updates["truck_id"] = truck.ID
	}
	if input.TripDate != nil {
		date, err := Models.ParseDay(*input.TripDate)
		if err != nil {
			return badRequest(c, "Invalid trip date", err)
		}
		updates["trip_date"] = date
	}
	for column, value := range map[string]*string{
		"supplier": input.Supplier,
		"client":   input.Client,
		"location": input.Location,
		"material": input.Material,
		"remark":   input.Remark,
	} {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}

	financial := input.MaterialPrice != nil || input.TripsCount != nil ||
		input.TotalOrderValue != nil || input.Profit != nil
	if financial {
		draft := trip.Draft()
		if input.MaterialPrice != nil {
			draft.MaterialPrice = input.MaterialPrice.Float()
		}
		if input.TripsCount != nil {
			draft.TripsCount = input.TripsCount.Float()
		}
		if input.Profit != nil {
			draft.Profit = input.Profit.Float()
		}
		orderGiven := true
		if input.TotalOrderValue != nil {
			draft.TotalOrderValue = input.TotalOrderValue.Float()
		} else if input.MaterialPrice != nil || input.TripsCount != nil {
			orderGiven = false
		}

		draft, err = Finance.Normalize(draft, orderGiven)
		if err != nil {
			return badRequest(c, err.Error(), nil)
		}
		updates["material_price"] = draft.MaterialPrice
		updates["trips_count"] = draft.TripsCount
		updates["total_order_value"] = draft.TotalOrderValue
		updates["profit"] = draft.Profit
		updates["total_expense"] = draft.TotalExpense
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&Models.Trip{}).Where("id = ?", trip.ID).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update trip", err)
		}
	}

	trip, err = Models.FindTrip(ctx, h.DB, owner.ID, trip.ID)
	if err != nil {
		return serverError(c, "Failed to reload trip", err)
	}
	ledger := Models.NewTripLedger(trip)
	if err := ledger.Tag(ctx, h.DB, owner.ID); err != nil {
		return serverError(c, "Failed to reload trip", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Trip updated successfully",
		"data":    ledger,
	})
}

// DeleteTrip removes the trip and its payments together.
func (h *TripHandler) DeleteTrip(c *fiber.Ctx) error {
	ctx := c.UserContext()
	trip, err := Models.FindTrip(ctx, h.DB, ownerOf(c).ID, c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Trip")
	}
	if err != nil {
		return serverError(c, "Failed to fetch trip", err)
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&Models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", trip.ID).Delete(&Models.Trip{}).Error
	})
	if err != nil {
		return serverError(c, "Failed to delete trip", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Trip deleted successfully",
	})
}

// Calculate applies one field edit to a draft, as the entry form does on every keystroke.
func (h *TripHandler) Calculate(c *fiber.Ctx) error {
	var input CalculateInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	field, ok := Finance.ParseField(input.Field)
	if !ok {
		return badRequest(c, "Unknown field "+input.Field, nil)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Draft recalculated",
		"data":    input.Draft.draft().Apply(field, input.Value),
	})
}
