package response

import "github.com/gofiber/fiber/v2"

// Envelope standar biar konsisten
type Envelope map[string]any

// ---- Sukses ----
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// ---- Error umum ----
// Body error selalu flat: {"message": "..."} supaya kompatibel dengan client.
func Error(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(Envelope{"message": msg})
}

// ---- Error validasi (field-based) ----
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		"message": "validation failed",
		"fields":  fields,
	})
}
