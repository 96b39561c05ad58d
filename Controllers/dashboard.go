package Controllers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Analytics"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"gorm.io/gorm"
)

const recentTrips = 5

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// GetDashboard folds the scoped trips, fuel logs and expenses into the
// dashboard figures. Without a range it covers the full history.
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	owner := ownerOf(c)
	scope := scopeFrom(c, Scope.Yearly)

	trips, err := Models.LoadTripLedgers(ctx, h.DB, owner.ID)
	if err != nil {
		return serverError(c, "Failed to load dashboard", err)
	}
	fuel, err := Models.LoadFuelExpenses(ctx, h.DB, owner.ID)
	if err != nil {
		return serverError(c, "Failed to load dashboard", err)
	}
	expenses, err := Models.LoadExpenses(ctx, h.DB, owner.ID)
	if err != nil {
		return serverError(c, "Failed to load dashboard", err)
	}

	trips = Scope.Apply(trips, scope)
	fuel = Scope.Apply(fuel, scope)
	expenses = Scope.Apply(expenses, scope)

	notices, err := upcomingNotices(h.DB.WithContext(ctx), owner.ID, 5)
	if err != nil {
		return serverError(c, "Failed to load dashboard", err)
	}

	recent := trips
	if len(recent) > recentTrips {
		recent = recent[:recentTrips]
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Dashboard retrieved successfully",
		"data": fiber.Map{
			"stats":             Analytics.ComputeStats(trips, fuel),
			"weekly_earnings":   Analytics.WeeklyEarnings(trips, scope.Now()),
			"expense_breakdown": Analytics.ExpenseBreakdown(fuel, expenses),
			"recent_trips":      recent,
			"upcoming_notices":  notices,
			"trial_days_left":   owner.TrialDaysLeft(scope.Now()),
		},
		"meta": fiber.Map{
			"range": scope.Label(),
		},
	})
}
