package helper

import "github.com/gofiber/fiber/v2"

// FromFiberError maps an error coming out of a Transaction (usually a
// *fiber.Error) to the standard JSON envelope via JsonError.
// Anything else falls back to 500 with the original message.
func FromFiberError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}
