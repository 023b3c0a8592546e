package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/pkg/authutil"
	response "github.com/campushq/student_admin_backend_go/pkg/response"
)

const principalKey = "principal"

// PrincipalStore: lookup minimal yang dibutuhkan resolver.
type PrincipalStore interface {
	GetAdminByID(ctx context.Context, id string) (models.Admin, error)
	GetStudentByID(ctx context.Context, id string) (models.Student, error)
}

// Protect memverifikasi bearer token lalu me-resolve principal-nya dari DB.
// Urutan lookup: admins dulu, baru students. Role di token tidak divalidasi
// ulang terhadap tabel asalnya; ID dari store global-unik jadi urutannya cuma
// soal determinisme, bukan perilaku.
func Protect(secret string, store PrincipalStore) fiber.Handler {
	secret = strings.TrimSpace(secret)
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return response.Error(c, fiber.StatusUnauthorized, "No token provided")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return response.Error(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := authutil.ParseAccessToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Error(c, fiber.StatusUnauthorized, "token has expired")
			}
			return response.Error(c, fiber.StatusUnauthorized, "invalid token")
		}

		principal, err := resolvePrincipal(c.Context(), store, claims.Subject)
		if err != nil {
			var notFound repositories.ErrNotFound
			if errors.As(err, &notFound) {
				// token valid tapi principal-nya sudah tidak ada (mis. dihapus)
				return response.Error(c, fiber.StatusNotFound, "User not found")
			}
			return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func resolvePrincipal(ctx context.Context, store PrincipalStore, id string) (models.Principal, error) {
	admin, err := store.GetAdminByID(ctx, id)
	if err == nil {
		return admin.Principal(), nil
	}
	var notFound repositories.ErrNotFound
	if !errors.As(err, &notFound) {
		return models.Principal{}, err
	}

	student, err := store.GetStudentByID(ctx, id)
	if err != nil {
		return models.Principal{}, err
	}
	return student.Principal(), nil
}

// RequireRole membatasi route ke role tertentu. Predicate murni, tanpa side
// effect. Role kosong dianggap "student" (shim untuk record lama yang belum
// punya field role).
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := c.Locals(principalKey).(models.Principal)
		if !ok {
			return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
		}

		role := p.Role
		if role == "" {
			role = models.RoleStudent
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return response.Error(c, fiber.StatusForbidden, "Access denied. Insufficient permissions.")
	}
}

// PrincipalFromCtx mengambil principal hasil Protect; dipakai handler.
func PrincipalFromCtx(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}
