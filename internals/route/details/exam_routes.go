package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	examRoute "psq_backend/internals/features/exams/exams/route"
	rateLimiter "psq_backend/internals/middlewares"
)

func ExamUserRoutes(r fiber.Router, db *gorm.DB) {
	grp := r.Group("",
		rateLimiter.GlobalRateLimiter(),
	)
	examRoute.ExamUserRoutes(grp, db)
}

func ExamPublicRoutes(r fiber.Router, db *gorm.DB) {
	grp := r.Group("",
		rateLimiter.GlobalRateLimiter(),
	)
	examRoute.ExamPublicRoutes(grp, db)
}
