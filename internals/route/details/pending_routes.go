package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	pendingRoute "psq_backend/internals/features/exams/pending/route"
)

func PendingRoutes(r fiber.Router, db *gorm.DB) {
	pendingRoute.PendingRoutes(r, db)
}
