package Controllers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

type NoticeHandler struct {
	DB *gorm.DB
}

func NewNoticeHandler(db *gorm.DB) *NoticeHandler {
	return &NoticeHandler{DB: db}
}

type NoticeInput struct {
	Content      string `json:"content" validate:"required,max=1000"`
	ScheduledFor string `json:"scheduled_for"`
}

// upcomingNotices returns notices scheduled for today or later, soonest first.
// Notices without a date are left out.
func upcomingNotices(db *gorm.DB, ownerID string, limit int) ([]Models.Notice, error) {
	var notices []Models.Notice
	q := db.Where("owner_id = ? AND scheduled_for >= ?", ownerID, Models.Day(now())).
		Order("scheduled_for ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&notices).Error
	return notices, err
}

// GetNotices lists every notice, or only upcoming ones with ?upcoming=true.
func (h *NoticeHandler) GetNotices(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext())
	owner := ownerOf(c)

	var (
		notices []Models.Notice
		err     error
	)
	if c.Query("upcoming") == "true" {
		notices, err = upcomingNotices(db, owner.ID, 0)
	} else {
		err = db.Where("owner_id = ?", owner.ID).Order("created_at DESC").Find(&notices).Error
	}
	if err != nil {
		return serverError(c, "Failed to fetch notices", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Notices retrieved successfully",
		"data":    notices,
	})
}

func (h *NoticeHandler) CreateNotice(c *fiber.Ctx) error {
	var input NoticeInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	notice := Models.Notice{OwnerID: ownerOf(c).ID, Content: input.Content}
	if input.ScheduledFor != "" {
		day, err := Models.ParseDay(input.ScheduledFor)
		if err != nil {
			return badRequest(c, "Invalid scheduled date", err)
		}
		notice.ScheduledFor = &day
	}

	if err := h.DB.WithContext(c.UserContext()).Create(&notice).Error; err != nil {
		return serverError(c, "Failed to create notice", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Notice created successfully",
		"data":    notice,
	})
}

func (h *NoticeHandler) DeleteNotice(c *fiber.Ctx) error {
	result := h.DB.WithContext(c.UserContext()).
		Where("id = ? AND owner_id = ?", c.Params("id"), ownerOf(c).ID).
		Delete(&Models.Notice{})
	if result.Error != nil {
		return serverError(c, "Failed to delete notice", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Notice")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Notice deleted successfully",
	})
}
