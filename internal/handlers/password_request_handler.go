package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/student_admin_backend_go/internal/middleware"
	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/services"
	response "github.com/campushq/student_admin_backend_go/pkg/response"
)

type PasswordRequestHandler struct {
	svc *services.PasswordRequestService
}

func NewPasswordRequestHandler(s *services.PasswordRequestService) *PasswordRequestHandler {
	return &PasswordRequestHandler{svc: s}
}

// POST /api/v1/password-requests (student)
func (h *PasswordRequestHandler) Submit(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req models.SubmitPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	requestID, err := h.svc.Submit(c.Context(), p, req)
	if err != nil {
		return mapError(c, err)
	}

	debugPrintln("PWREQ Submit: success student=", p.ID, "request=", requestID)
	return response.Created(c, fiber.Map{
		"message":   "Password change request submitted successfully. Please wait for admin approval.",
		"requestId": requestID,
	})
}

// GET /api/v1/password-requests/mine (student)
func (h *PasswordRequestHandler) ListMine(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}

	requests, err := h.svc.ListMine(c.Context(), p.ID)
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{
		"message":  "Password change requests retrieved successfully",
		"requests": requests,
	})
}

// GET /api/v1/password-requests?status= (admin)
func (h *PasswordRequestHandler) ListAll(c *fiber.Ctx) error {
	requests, err := h.svc.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return mapError(c, err)
	}
	return response.OK(c, fiber.Map{
		"message":  "Password change requests retrieved successfully",
		"requests": requests,
	})
}

// PUT /api/v1/password-requests/:requestId/approve (admin)
func (h *PasswordRequestHandler) Approve(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}

	requestID := c.Params("requestId")
	if err := h.svc.Approve(c.Context(), p, requestID); err != nil {
		return mapError(c, err)
	}

	debugPrintln("PWREQ Approve: success admin=", p.ID, "request=", requestID)
	return response.OK(c, fiber.Map{
		"message": "Password change request approved successfully",
	})
}

// PUT /api/v1/password-requests/:requestId/reject (admin)
func (h *PasswordRequestHandler) Reject(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req models.RejectPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	requestID := c.Params("requestId")
	if err := h.svc.Reject(c.Context(), p, requestID, req.Reason); err != nil {
		return mapError(c, err)
	}

	debugPrintln("PWREQ Reject: success admin=", p.ID, "request=", requestID)
	return response.OK(c, fiber.Map{
		"message": "Password change request rejected",
	})
}

// mapper error: domain error -> status; sisanya 500 generik (detail cuma di log)
func mapError(c *fiber.Ctx, err error) error {
	switch err.(type) {
	case services.ErrBadRequest:
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	case services.ErrConflict:
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	case services.ErrAlreadyProcessed:
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	case services.ErrNotFoundResource:
		return response.Error(c, fiber.StatusNotFound, err.Error())
	default:
		log.Printf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
}
