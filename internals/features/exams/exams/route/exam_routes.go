// file: internals/features/exams/exams/route/exam_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	examController "psq_backend/internals/features/exams/exams/controller"
	authMiddleware "psq_backend/internals/middlewares/auth"
)

// ExamUserRoutes — route exam untuk user login (taker & evaluator)
func ExamUserRoutes(r fiber.Router, db *gorm.DB) {
	examCtl := examController.NewExamController(db)
	videoCtl := examController.NewExamVideoController(db)

	exams := r.Group("/exams")
	exams.Get("/", examCtl.List)
	exams.Get("/:id", examCtl.GetByID)
	exams.Post("/:id/evaluate",
		authMiddleware.OnlyRoles(
			"Hanya evaluator yang boleh menilai ujian",
			"evaluator", "admin", "owner",
		),
		examCtl.Evaluate,
	)

	videos := r.Group("/exam-videos")
	videos.Post("/:id/share", videoCtl.Share)
}

// ExamPublicRoutes — playback boleh anonymous (video shareable)
func ExamPublicRoutes(r fiber.Router, db *gorm.DB) {
	videoCtl := examController.NewExamVideoController(db)

	videos := r.Group("/exam-videos")
	videos.Post("/:id/play", videoCtl.Play)
}
