package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// preReadBody is how much of a streamed body the server reads before handlers run.
const preReadBody = 8 << 10

// LimitBody rejects requests whose declared length exceeds max before any of
// the body is read. With request streaming enabled the server no longer
// enforces BodyLimit itself, so chunked bodies of unknown length are refused.
//
// Requests whose body may still be on the wire when the handler returns are
// answered with Connection: close, so unread bytes are never parsed as the
// next request.
func LimitBody(max int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.Request().Header.ContentLength()
		switch {
		case n == -1:
			c.Context().SetConnectionClose()
			return fiber.ErrLengthRequired
		case int64(n) > max:
			c.Context().SetConnectionClose()
			return fiber.ErrRequestEntityTooLarge
		}
		if n > preReadBody || strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			c.Context().SetConnectionClose()
		}
		return c.Next()
	}
}
