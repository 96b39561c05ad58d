package Controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/Scope"
	"github.com/vishwajeetguru/smart-truck-manager/middleware"
	"gorm.io/datatypes"
)

// now is replaced in tests.
var now = time.Now

func ownerOf(c *fiber.Ctx) Models.Profile {
	profile, _ := middleware.CurrentProfile(c)
	return profile
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{
		"message": what + " not found",
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(http.StatusBadRequest).JSON(body)
}

func serverError(c *fiber.Ctx, message string, err error) error {
	Logger.Log.Error().Err(err).Str("path", c.Path()).Msg(message)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// scopeFrom reads truck, client, supplier, range, start_date and end_date from the query.
func scopeFrom(c *fiber.Ctx, fallback Scope.Range) Scope.Scope {
	return Scope.New(Scope.Params{
		Truck:     c.Query("truck", c.Query("truck_id")),
		Client:    c.Query("client"),
		Supplier:  c.Query("supplier"),
		Range:     c.Query("range", c.Query("date_range")),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}, now(), fallback)
}

// dayOrToday parses a submitted date, using today when it is empty.
func dayOrToday(raw string) (datatypes.Date, error) {
	if raw == "" {
		return Models.Day(now()), nil
	}
	return Models.ParseDay(raw)
}

type pagination struct {
	Page  int
	Limit int
}

// pageFrom reads page and limit. A limit of 0 means everything.
func pageFrom(c *fiber.Ctx) pagination {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	return pagination{Page: page, Limit: limit}
}

func (p pagination) meta(total int) fiber.Map {
	pages := 1
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return fiber.Map{
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
		"pages": pages,
	}
}

func paginate[T any](items []T, p pagination) []T {
	if p.Limit == 0 {
		return items
	}
	start := (p.Page - 1) * p.Limit
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
