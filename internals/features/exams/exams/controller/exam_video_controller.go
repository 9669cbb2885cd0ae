// file: internals/features/exams/exams/controller/exam_video_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "psq_backend/internals/features/exams/exams/dto"
	model "psq_backend/internals/features/exams/exams/model"
	helper "psq_backend/internals/helpers"
)

type ExamVideoController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewExamVideoController(db *gorm.DB) *ExamVideoController {
	return &ExamVideoController{
		DB:        db,
		Validator: validator.New(),
	}
}

// POST /api/exam-videos/:id/play — naikkan view counter, balikan URL
func (ctl *ExamVideoController) Play(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, http.StatusBadRequest, "exam_video_id tidak valid")
	}

	var video model.ExamVideoModel
	err = ctl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_video_id = ?", id).First(&video).Error; err != nil {
			return err
		}
		if err := tx.Model(&video).
			Update("exam_video_views", gorm.Expr("exam_video_views + 1")).Error; err != nil {
			return err
		}
		video.ExamVideoViews++
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, http.StatusNotFound, "Video tidak ditemukan")
		}
		return helper.Error(c, http.StatusInternalServerError, "Gagal memutar video")
	}

	return helper.Success(c, "OK", dto.ToExamVideoResponse(&video))
}

// POST /api/exam-videos/:id/share — tambah user ke daftar share
func (ctl *ExamVideoController) Share(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, http.StatusBadRequest, "exam_video_id tidak valid")
	}

	var req dto.ShareExamVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, http.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var video model.ExamVideoModel
	err = ctl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_video_id = ?", id).First(&video).Error; err != nil {
			return err
		}
		if video.IsSharedWith(req.UserID) {
			return nil // idempotent
		}
		video.ExamVideoShares = append(video.ExamVideoShares, req.UserID.String())
		return tx.Model(&video).
			Update("exam_video_shares", video.ExamVideoShares).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, http.StatusNotFound, "Video tidak ditemukan")
		}
		return helper.Error(c, http.StatusInternalServerError, "Gagal membagikan video")
	}

	return helper.Success(c, "Video dibagikan", dto.ToExamVideoResponse(&video))
}
