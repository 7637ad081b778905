package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/txservice/internal/transaction"
)

// RegisterTransactionRoutes wires the load and authorization endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Put("/load", rateLimiter, h.Load)
		r.Put("/authorization", rateLimiter, h.Authorization)
		return
	}
	r.Put("/load", h.Load)
	r.Put("/authorization", h.Authorization)
}

// RegisterAdminRoutes wires maintenance endpoints.
func RegisterAdminRoutes(r fiber.Router, h *transaction.Handler) {
	r.Post("/admin/reset", h.Reset)
}
