package Controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

// MasterHandler serves the owner's lookup lists: suppliers, materials and petrol pumps.
type MasterHandler struct {
	DB *gorm.DB
}

func NewMasterHandler(db *gorm.DB) *MasterHandler {
	return &MasterHandler{DB: db}
}

type SupplierInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
	Mobile  string `json:"mobile" validate:"required,max=20"`
}

type SupplierUpdate struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Mobile  *string `json:"mobile" validate:"omitempty,min=1,max=20"`
}

type MaterialInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

type PetrolPumpInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Location string `json:"location" validate:"max=255"`
}

func listOwned[T any](c *fiber.Ctx, db *gorm.DB, what string) error {
	var rows []T
	err := db.WithContext(c.UserContext()).
		Where("owner_id = ?", ownerOf(c).ID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return serverError(c, "Failed to fetch "+what, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": strings.ToUpper(what[:1]) + what[1:] + " retrieved successfully",
		"data":    rows,
	})
}

func deleteOwned[T any](c *fiber.Ctx, db *gorm.DB, what string) error {
	var row T
	result := db.WithContext(c.UserContext()).
		Where("id = ? AND owner_id = ?", c.Params("id"), ownerOf(c).ID).
		Delete(&row)
	if result.Error != nil {
		return serverError(c, "Failed to delete "+strings.ToLower(what), result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(c, what)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": what + " deleted successfully",
	})
}

func (h *MasterHandler) GetSuppliers(c *fiber.Ctx) error {
	return listOwned[Models.Supplier](c, h.DB, "suppliers")
}

func (h *MasterHandler) CreateSupplier(c *fiber.Ctx) error {
	var input SupplierInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	supplier := Models.Supplier{
		OwnerID: ownerOf(c).ID,
		Name:    strings.TrimSpace(input.Name),
		Address: input.Address,
		Mobile:  strings.TrimSpace(input.Mobile),
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&supplier).Error; err != nil {
		return serverError(c, "Failed to create supplier", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Supplier created successfully",
		"data":    supplier,
	})
}

func (h *MasterHandler) UpdateSupplier(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var supplier Models.Supplier
	err := h.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", c.Params("id"), ownerOf(c).ID).
		First(&supplier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, "Supplier")
	}
	if err != nil {
		return serverError(c, "Failed to fetch supplier", err)
	}

	var input SupplierUpdate
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Mobile != nil {
		updates["mobile"] = strings.TrimSpace(*input.Mobile)
	}
	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&supplier).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update supplier", err)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Supplier updated successfully",
		"data":    supplier,
	})
}

func (h *MasterHandler) DeleteSupplier(c *fiber.Ctx) error {
	return deleteOwned[Models.Supplier](c, h.DB, "Supplier")
}

func (h *MasterHandler) GetMaterials(c *fiber.Ctx) error {
	return listOwned[Models.Material](c, h.DB, "materials")
}

func (h *MasterHandler) CreateMaterial(c *fiber.Ctx) error {
	var input MaterialInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	material := Models.Material{OwnerID: ownerOf(c).ID, Name: strings.TrimSpace(input.Name)}
	if err := h.DB.WithContext(c.UserContext()).Create(&material).Error; err != nil {
		return serverError(c, "Failed to create material", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Material created successfully",
		"data":    material,
	})
}

func (h *MasterHandler) DeleteMaterial(c *fiber.Ctx) error {
	return deleteOwned[Models.Material](c, h.DB, "Material")
}

func (h *MasterHandler) GetPetrolPumps(c *fiber.Ctx) error {
	return listOwned[Models.PetrolPump](c, h.DB, "petrol pumps")
}

func (h *MasterHandler) CreatePetrolPump(c *fiber.Ctx) error {
	var input PetrolPumpInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	pump := Models.PetrolPump{
		OwnerID:  ownerOf(c).ID,
		Name:     strings.TrimSpace(input.Name),
		Location: input.Location,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&pump).Error; err != nil {
		return serverError(c, "Failed to create petrol pump", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Petrol pump created successfully",
		"data":    pump,
	})
}

func (h *MasterHandler) DeletePetrolPump(c *fiber.Ctx) error {
	return deleteOwned[Models.PetrolPump](c, h.DB, "Petrol pump")
}
