package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushq/student_admin_backend_go/internal/middleware"
	"github.com/campushq/student_admin_backend_go/internal/services"
	response "github.com/campushq/student_admin_backend_go/pkg/response"
)

type StudentHandler struct {
	svc *services.StudentService
}

func NewStudentHandler(s *services.StudentService) *StudentHandler {
	return &StudentHandler{svc: s}
}

// GET /api/v1/students (admin)
func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.svc.List(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{"students": students})
}

// GET /api/v1/students/:id (admin)
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	user, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{"user": user})
}

// POST /api/v1/students (admin)
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var in services.CreateStudentInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.svc.Create(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return response.Created(c, fiber.Map{
		"message": "Student created successfully",
		"user":    user,
	})
}

// PUT /api/v1/students/:id (admin)
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	var in services.UpdateStudentInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.svc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{
		"message": "Student updated successfully",
		"user":    user,
	})
}

// DELETE /api/v1/students/:id (admin)
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{"message": "Student deleted successfully"})
}

// GET /api/v1/students/dashboard/me (student)
func (h *StudentHandler) Dashboard(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}
	out, err := h.svc.Dashboard(c.Context(), p)
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, out)
}
