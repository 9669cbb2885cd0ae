package middlewares

import (
	"github.com/gofiber/fiber/v2"

	loggerMiddleware "psq_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware dasar aplikasi (urutan penting:
// recovery paling awal supaya panic handler membungkus semuanya)
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(loggerMiddleware.LoggerMiddleware())
}
