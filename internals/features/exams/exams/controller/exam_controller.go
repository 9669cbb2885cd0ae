// file: internals/features/exams/exams/controller/exam_controller.go
package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "psq_backend/internals/features/exams/exams/dto"
	model "psq_backend/internals/features/exams/exams/model"
	helper "psq_backend/internals/helpers"
)

/* ========================================================
   Controller
======================================================== */
type ExamController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewExamController(db *gorm.DB) *ExamController {
	return &ExamController{
		DB:        db,
		Validator: validator.New(),
	}
}

/* ========================================================
   Handlers
======================================================== */

// GET /api/exams
// Query (opsional): approved, taker_id, page, per_page
func (ctl *ExamController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).Model(&model.ExamModel{})

	if approvedStr := strings.TrimSpace(c.Query("approved")); approvedStr != "" {
		switch approvedStr {
		case "true", "1":
			q = q.Where("exam_approved = ?", true)
		case "false", "0":
			q = q.Where("exam_approved = ?", false)
		default:
			return helper.Error(c, http.StatusBadRequest, "approved tidak valid")
		}
	}
	if takerStr := strings.TrimSpace(c.Query("taker_id")); takerStr != "" {
		takerID, err := uuid.Parse(takerStr)
		if err != nil {
			return helper.Error(c, http.StatusBadRequest, "taker_id tidak valid")
		}
		q = q.Where("exam_taker_id = ?", takerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, http.StatusInternalServerError, "Gagal menghitung exam")
	}

	var rows []model.ExamModel
	if err := q.Preload("ExamVideos").
		Order("exam_created_at DESC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return helper.Error(c, http.StatusInternalServerError, "Gagal mengambil exam")
	}

	resps := make([]dto.ExamResponse, 0, len(rows))
	for i := range rows {
		resps = append(resps, dto.ToExamResponse(&rows[i]))
	}

	return helper.Success(c, "OK", fiber.Map{
		"exams":      resps,
		"pagination": helper.BuildPagination(paging, total),
	})
}

// GET /api/exams/:id
func (ctl *ExamController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, http.StatusBadRequest, "exam_id tidak valid")
	}

	var exam model.ExamModel
	if err := ctl.DB.WithContext(c.Context()).
		Preload("ExamVideos").
		Where("exam_id = ?", id).
		First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, http.StatusNotFound, "Exam tidak ditemukan")
		}
		return helper.Error(c, http.StatusInternalServerError, "Gagal mengambil exam")
	}

	return helper.Success(c, "OK", dto.ToExamResponse(&exam))
}

// POST /api/exams/:id/evaluate
// Evaluator = user pada token. Ketiga field evaluasi terisi sekaligus.
func (ctl *ExamController) Evaluate(c *fiber.Ctx) error {
	evaluatorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, http.StatusBadRequest, "exam_id tidak valid")
	}

	var req dto.EvaluateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, http.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var exam model.ExamModel
	err = ctl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).First(&exam).Error; err != nil {
			return err
		}
		if err := exam.Evaluate(evaluatorID, *req.ExamApproved, req.ExamNotes); err != nil {
			return err
		}
		return tx.Model(&exam).Updates(map[string]interface{}{
			"exam_approved":     exam.ExamApproved,
			"exam_evaluated":    exam.ExamEvaluated,
			"exam_eval_date":    exam.ExamEvalDate,
			"exam_evaluator_id": exam.ExamEvaluatorID,
			"exam_notes":        exam.ExamNotes,
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return helper.Error(c, http.StatusNotFound, "Exam tidak ditemukan")
		case errors.Is(err, model.ErrExamAlreadyEvaluated):
			return helper.Error(c, http.StatusConflict, "Exam sudah pernah dievaluasi")
		default:
			return helper.Error(c, http.StatusInternalServerError, "Gagal menyimpan evaluasi")
		}
	}

	return helper.Success(c, "Evaluasi tersimpan", dto.ToExamResponse(&exam))
}
