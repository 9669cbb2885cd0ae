// file: internals/features/exams/pending/controller/pending_controller.go
package controller

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	deviceModel "psq_backend/internals/features/devices/model"
	dto "psq_backend/internals/features/exams/pending/dto"
	model "psq_backend/internals/features/exams/pending/model"
	helper "psq_backend/internals/helpers"
)

type PendingController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewPendingController(db *gorm.DB) *PendingController {
	return &PendingController{
		DB:        db,
		Validator: validator.New(),
	}
}

// POST /api/exam-pending-requests — intake submission dari device perekam.
// Taker diambil dari token; device dicocokkan via MAC; file mentah harus
// sudah ada di disk sebelum baris staging dibuat (cron ingest yang memproses).
func (ctl *PendingController) Create(c *fiber.Ctx) error {
	takerID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreatePendingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, http.StatusBadRequest, "Body tidak valid")
	}
	req.DeviceMac = strings.ToUpper(strings.TrimSpace(req.DeviceMac))
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	// File mentah wajib sudah ada — pending tanpa blob hanya akan di-park scheduler.
	if fi, err := os.Stat(req.RawFilePath); err != nil || fi.IsDir() {
		return helper.Error(c, http.StatusBadRequest, "File rekaman tidak ditemukan di path yang diberikan")
	}

	var device deviceModel.DeviceModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("device_mac_address = ? AND device_is_verified = TRUE", req.DeviceMac).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, http.StatusForbidden, "Device tidak terdaftar atau belum terverifikasi")
		}
		return helper.Error(c, http.StatusInternalServerError, "Gagal memeriksa device")
	}

	meta := datatypes.JSON([]byte(`{"device_mac":"` + req.DeviceMac + `"}`))

	pending := model.ExamPendingRequestModel{
		ExamPendingRequestDurationSeconds: req.DurationSeconds,
		ExamPendingRequestTakerID:         takerID,
		ExamPendingRequestExerciseID:      req.ExerciseID,
		ExamPendingRequestDeviceID:        device.DeviceID,
		ExamPendingRequestMeta:            meta,
	}

	err = ctl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pending).Error; err != nil {
			return err
		}
		video := model.ExamPendingRequestVideoModel{
			ExamPendingRequestVideoRequestID: pending.ExamPendingRequestID,
			ExamPendingRequestVideoFilePath:  req.RawFilePath,
		}
		return tx.Create(&video).Error
	})
	if err != nil {
		log.Printf("[PENDING] gagal membuat pending request: %v", err)
		return helper.Error(c, http.StatusInternalServerError, "Gagal menyimpan submission")
	}

	return helper.SuccessWithCode(c, http.StatusCreated, "Submission diterima", dto.ToPendingResponse(&pending))
}

// GET /api/exam-pending-requests — daftar staging (monitoring), filter ?processed=
func (ctl *PendingController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).Model(&model.ExamPendingRequestModel{})
	if v := c.Query("processed"); v != "" {
		q = q.Where("exam_pending_request_is_processed = ?", v == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, http.StatusInternalServerError, "Gagal menghitung data")
	}

	var rows []model.ExamPendingRequestModel
	if err := q.Order("exam_pending_request_created_at ASC").
		Limit(paging.PerPage).Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return helper.Error(c, http.StatusInternalServerError, "Gagal mengambil data")
	}

	items := make([]dto.PendingResponse, 0, len(rows))
	for i := range rows {
		items = append(items, dto.ToPendingResponse(&rows[i]))
	}

	return helper.Success(c, "OK", fiber.Map{
		"items":      items,
		"pagination": helper.BuildPagination(paging, total),
	})
}
