package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/api/dto"
	"github.com/spec-kit/correspondence-service/internal/service"
)

// DirectoryHandler serves the lookup lists.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// ListUsers GET /users.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// ListDepartments GET /departments.
func (h *DirectoryHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		result = append(result, dto.DepartmentResponse{ID: dept.ID, Name: dept.Name, Code: dept.Code})
	}
	return c.JSON(fiber.Map{"data": result})
}

// ListDivisions GET /divisions.
func (h *DirectoryHandler) ListDivisions(c *fiber.Ctx) error {
	divisions, err := h.service.ListDivisions(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.DivisionResponse, 0, len(divisions))
	for _, div := range divisions {
		result = append(result, dto.DivisionResponse{ID: div.ID, Name: div.Name, Code: div.Code})
	}
	return c.JSON(fiber.Map{"data": result})
}
