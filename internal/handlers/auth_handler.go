// internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushq/student_admin_backend_go/internal/middleware"
	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/internal/services"
	"github.com/campushq/student_admin_backend_go/pkg/authutil"
	response "github.com/campushq/student_admin_backend_go/pkg/response"
	vld "github.com/campushq/student_admin_backend_go/pkg/validator"
)

type AuthHandler struct {
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	repo       repositories.PrincipalRepo
	students   *services.StudentService
}

func NewAuthHandler(secret string, ttl time.Duration, bcryptCost int, repo repositories.PrincipalRepo, students *services.StudentService) *AuthHandler {
	return &AuthHandler{
		jwtSecret:  secret,
		tokenTTL:   ttl,
		bcryptCost: bcryptCost,
		repo:       repo,
		students:   students,
	}
}

// ------------------ helpers ------------------

// masking helper biar log aman
func maskEmail(e string) string {
	e = strings.TrimSpace(e)
	parts := strings.Split(e, "@")
	if len(parts) != 2 {
		if len(e) > 3 {
			return e[:3] + "***"
		}
		return "***"
	}
	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = local + "***"
	}
	return local + "@" + domain
}

// ------------------ handlers ------------------

// POST /api/v1/auth/student/register
func (h *AuthHandler) RegisterStudent(c *fiber.Ctx) error {
	var req models.RegisterStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	debugPrintln("AUTH RegisterStudent: body parsed for", maskEmail(req.Email))

	if fields, err := vld.ValidateStruct(req); err != nil {
		debugPrintln("AUTH RegisterStudent: validation failed", fields)
		return response.ValidationError(c, fields)
	}

	// cek email unik (hanya di tabel students; admins punya ruang email sendiri)
	exists, err := h.repo.StudentEmailExists(c.Context(), req.Email)
	if err != nil {
		debugPrintln("AUTH RegisterStudent: DB error on EXISTS:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	if exists {
		debugPrintln("AUTH RegisterStudent: email already registered", maskEmail(req.Email))
		return response.Error(c, fiber.StatusBadRequest, "Email already exists")
	}

	hash, err := authutil.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		debugPrintln("AUTH RegisterStudent: hash error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	student, err := h.repo.CreateStudent(c.Context(), repositories.CreateStudentParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Course:       req.Course,
	})
	if err != nil {
		debugPrintln("AUTH RegisterStudent: insert error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	token, err := authutil.NewAccessToken(h.jwtSecret, student.ID, models.RoleStudent, h.tokenTTL)
	if err != nil {
		debugPrintln("AUTH RegisterStudent: issue token error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	debugPrintln("AUTH RegisterStudent: success id=", student.ID, "email=", maskEmail(req.Email))
	return response.Created(c, models.AuthResponse{
		Message: "Student registered successfully",
		Token:   token,
		User:    student.Principal().ToUserDTO(),
	})
}

// POST /api/v1/auth/admin/register
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req models.RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	debugPrintln("AUTH RegisterAdmin: body parsed for", maskEmail(req.Email))

	if fields, err := vld.ValidateStruct(req); err != nil {
		debugPrintln("AUTH RegisterAdmin: validation failed", fields)
		return response.ValidationError(c, fields)
	}

	exists, err := h.repo.AdminEmailExists(c.Context(), req.Email)
	if err != nil {
		debugPrintln("AUTH RegisterAdmin: DB error on EXISTS:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	if exists {
		debugPrintln("AUTH RegisterAdmin: email already registered", maskEmail(req.Email))
		return response.Error(c, fiber.StatusBadRequest, "Email already exists")
	}

	hash, err := authutil.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		debugPrintln("AUTH RegisterAdmin: hash error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	admin, err := h.repo.CreateAdmin(c.Context(), repositories.CreateAdminParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		debugPrintln("AUTH RegisterAdmin: insert error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	token, err := authutil.NewAccessToken(h.jwtSecret, admin.ID, models.RoleAdmin, h.tokenTTL)
	if err != nil {
		debugPrintln("AUTH RegisterAdmin: issue token error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	debugPrintln("AUTH RegisterAdmin: success id=", admin.ID, "email=", maskEmail(req.Email))
	return response.Created(c, models.AuthResponse{
		Message: "Admin registered successfully",
		Token:   token,
		User:    admin.Principal().ToUserDTO(),
	})
}

// POST /api/v1/auth/student/login
func (h *AuthHandler) LoginStudent(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	debugPrintln("AUTH LoginStudent: body parsed for", maskEmail(req.Email))

	if fields, err := vld.ValidateStruct(req); err != nil {
		return response.ValidationError(c, fields)
	}

	student, err := h.repo.GetStudentByEmail(c.Context(), req.Email)
	if err != nil {
		var notFound repositories.ErrNotFound
		if errors.As(err, &notFound) {
			debugPrintln("AUTH LoginStudent: not found", maskEmail(req.Email))
			return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		debugPrintln("AUTH LoginStudent: DB error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	if authutil.CheckPassword(student.PasswordHash, req.Password) != nil {
		debugPrintln("AUTH LoginStudent: wrong password for", maskEmail(req.Email))
		return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := authutil.NewAccessToken(h.jwtSecret, student.ID, models.RoleStudent, h.tokenTTL)
	if err != nil {
		debugPrintln("AUTH LoginStudent: issue token error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	debugPrintln("AUTH LoginStudent: success id=", student.ID)
	return response.OK(c, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    student.Principal().ToUserDTO(),
	})
}

// POST /api/v1/auth/admin/login
func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	debugPrintln("AUTH LoginAdmin: body parsed for", maskEmail(req.Email))

	if fields, err := vld.ValidateStruct(req); err != nil {
		return response.ValidationError(c, fields)
	}

	admin, err := h.repo.GetAdminByEmail(c.Context(), req.Email)
	if err != nil {
		var notFound repositories.ErrNotFound
		if errors.As(err, &notFound) {
			debugPrintln("AUTH LoginAdmin: not found", maskEmail(req.Email))
			return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		debugPrintln("AUTH LoginAdmin: DB error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	if authutil.CheckPassword(admin.PasswordHash, req.Password) != nil {
		debugPrintln("AUTH LoginAdmin: wrong password for", maskEmail(req.Email))
		return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := authutil.NewAccessToken(h.jwtSecret, admin.ID, models.RoleAdmin, h.tokenTTL)
	if err != nil {
		debugPrintln("AUTH LoginAdmin: issue token error:", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	debugPrintln("AUTH LoginAdmin: success id=", admin.ID)
	return response.OK(c, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    admin.Principal().ToUserDTO(),
	})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return response.OK(c, fiber.Map{"user": p.ToUserDTO()})
}

// PUT /api/v1/auth/profile — student update profil sendiri
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.students.Update(c.Context(), p.ID, services.UpdateStudentInput{
		Name:   req.Name,
		Email:  req.Email,
		Course: req.Course,
	})
	if err != nil {
		return mapError(c, err)
	}

	debugPrintln("AUTH UpdateProfile: success id=", p.ID)
	return response.OK(c, fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ------------------ debug (dipakai beneran di atas) ------------------
func debugPrintln(a ...any) {
	if os.Getenv("APP_ENV") == "development" {
		fmt.Println(a...)
	}
}
