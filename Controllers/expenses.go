package Controllers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/gorm"
)

// ExpenseHandler serves general truck expenses. There is no update route.
type ExpenseHandler struct {
	DB *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{DB: db}
}

type ExpenseInput struct {
	TruckID     string         `json:"truck_id" validate:"required"`
	Amount      Finance.Amount `json:"amount" validate:"gt=0"`
	Category    string         `json:"category" validate:"max=40"`
	Description string         `json:"description" validate:"max=500"`
	ExpenseDate string         `json:"expense_date"`
}

func (h *ExpenseHandler) GetExpenses(c *fiber.Ctx) error {
	expenses, err := Models.LoadExpenses(c.UserContext(), h.DB, ownerOf(c).ID)
	if err != nil {
		return serverError(c, "Failed to fetch expenses", err)
	}
	expenses = Scope.Apply(expenses, scopeFrom(c, Scope.Yearly))

	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}

	page := pageFrom(c)
	meta := page.meta(len(expenses))
	meta["total_amount"] = Finance.Sum(amounts...)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Expenses retrieved successfully",
		"data":    paginate(expenses, page),
		"meta":    meta,
	})
}

func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var input ExpenseInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	truck, err := Models.FindTruck(c.UserContext(), h.DB, ownerOf(c).ID, input.TruckID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Truck")
	}
	if err != nil {
		return serverError(c, "Failed to fetch truck", err)
	}

	date, err := dayOrToday(input.ExpenseDate)
	if err != nil {
		return badRequest(c, "Invalid expense date", err)
	}
	category := input.Category
	if category == "" {
		category = Models.CategoryOther
	}

	expense := Models.Expense{
		TruckID:     truck.ID,
		Amount:      input.Amount.Float(),
		Category:    category,
		Description: input.Description,
		ExpenseDate: date,
	}
	if err := h.DB.WithContext(c.UserContext()).Omit("Truck").Create(&expense).Error; err != nil {
		return serverError(c, "Failed to create expense", err)
	}
	expense.Truck = &truck

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Expense created successfully",
		"data":    expense,
	})
}

func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var expense Models.Expense
	err := h.DB.WithContext(ctx).
		Scopes(Models.OwnedTrucks(h.DB, ownerOf(c).ID)).
		Where("id = ?", c.Params("id")).
		First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Expense")
	}
	if err != nil {
		return serverError(c, "Failed to fetch expense", err)
	}

	if err := h.DB.WithContext(ctx).Where("id = ?", expense.ID).Delete(&Models.Expense{}).Error; err != nil {
		return serverError(c, "Failed to delete expense", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Expense deleted successfully",
	})
}
