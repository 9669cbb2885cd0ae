// file: internals/features/exams/pending/route/pending_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	pendingController "psq_backend/internals/features/exams/pending/controller"
	rateLimiter "psq_backend/internals/middlewares"
	authMiddleware "psq_backend/internals/middlewares/auth"
)

// PendingRoutes — intake submission & monitoring staging
func PendingRoutes(r fiber.Router, db *gorm.DB) {
	ctl := pendingController.NewPendingController(db)

	pending := r.Group("/exam-pending-requests")
	pending.Post("/", rateLimiter.IntakeRateLimiter(), ctl.Create)
	pending.Get("/",
		authMiddleware.OnlyRolesSlice(
			"Hanya admin yang boleh melihat antrian ingest",
			[]string{"admin", "owner"},
		),
		ctl.List,
	)
}
