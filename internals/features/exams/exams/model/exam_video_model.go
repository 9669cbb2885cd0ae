// file: internals/features/exams/exams/model/exam_video_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Media type hasil transcode — tag tetap, bukan input user
const (
	ExamVideoTypeOGG  = "video/ogg"
	ExamVideoTypeWEBM = "video/webm"
	ExamVideoTypeMP4  = "video/mp4"
)

// ExamVideoModel merepresentasikan tabel `exam_videos` — satu rendition
// hasil transcode yang sudah tersimpan di blob storage permanen.
type ExamVideoModel struct {
	ExamVideoID uuid.UUID `json:"exam_video_id" gorm:"column:exam_video_id;type:uuid;default:gen_random_uuid();primaryKey"`

	ExamVideoExamID uuid.UUID `json:"exam_video_exam_id" gorm:"column:exam_video_exam_id;type:uuid;not null;index"`

	ExamVideoType string `json:"exam_video_type" gorm:"column:exam_video_type;type:varchar(32);not null"`

	// Object key di blob storage (bukan path lokal) + URL publiknya
	ExamVideoObjectKey string `json:"exam_video_object_key" gorm:"column:exam_video_object_key;type:text;not null"`
	ExamVideoURL       string `json:"exam_video_url" gorm:"column:exam_video_url;type:text;not null"`

	ExamVideoThumbnailURL *string `json:"exam_video_thumbnail_url,omitempty" gorm:"column:exam_video_thumbnail_url;type:text"`

	ExamVideoViews int `json:"exam_video_views" gorm:"column:exam_video_views;not null;default:0"`

	// Author = taker dari pending request asal
	ExamVideoAuthorID uuid.UUID `json:"exam_video_author_id" gorm:"column:exam_video_author_id;type:uuid;not null;index"`

	// Daftar user id yang diberi akses tonton
	ExamVideoShares pq.StringArray `json:"exam_video_shares" gorm:"column:exam_video_shares;type:text[];not null;default:'{}'"`

	ExamVideoCreatedAt time.Time      `json:"exam_video_created_at" gorm:"column:exam_video_created_at;type:timestamptz;autoCreateTime"`
	ExamVideoUpdatedAt time.Time      `json:"exam_video_updated_at" gorm:"column:exam_video_updated_at;type:timestamptz;autoUpdateTime"`
	ExamVideoDeletedAt gorm.DeletedAt `json:"exam_video_deleted_at" gorm:"column:exam_video_deleted_at;index"`
}

func (ExamVideoModel) TableName() string {
	return "exam_videos"
}

// IsSharedWith cek apakah user sudah ada di daftar share
func (m *ExamVideoModel) IsSharedWith(userID uuid.UUID) bool {
	s := userID.String()
	for _, id := range m.ExamVideoShares {
		if id == s {
			return true
		}
	}
	return false
}
