// file: internals/routes/setup.go
package routes

import (
	"log"
	"time"

	authMiddleware "psq_backend/internals/middlewares/auth"
	routeDetails "psq_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// ===================== PUBLIC =====================
	// JWT opsional — video shareable tetap bisa diputar tanpa login
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public",
		authMiddleware.SecondAuthMiddleware(db),
	)

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api",
		authMiddleware.AuthMiddleware(db),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Exam routes...")
	routeDetails.ExamPublicRoutes(public, db)
	routeDetails.ExamUserRoutes(private, db)

	log.Println("[INFO] Mounting Pending routes...")
	routeDetails.PendingRoutes(private, db)
}
