// file: internals/features/users/model/user_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel hanya kolom yang dibutuhkan pipeline ujian.
// Manajemen user/role penuh ada di service lain.
type UserModel struct {
	UserID    uuid.UUID `json:"user_id" gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserName  string    `json:"user_name" gorm:"column:user_name;type:varchar(100);not null"`
	UserEmail string    `json:"user_email" gorm:"column:user_email;type:varchar(160);not null;uniqueIndex"`

	UserIsActive bool `json:"user_is_active" gorm:"column:user_is_active;not null;default:true"`

	UserCreatedAt time.Time      `json:"user_created_at" gorm:"column:user_created_at;type:timestamptz;autoCreateTime"`
	UserUpdatedAt time.Time      `json:"user_updated_at" gorm:"column:user_updated_at;type:timestamptz;autoUpdateTime"`
	UserDeletedAt gorm.DeletedAt `json:"user_deleted_at" gorm:"column:user_deleted_at;index"`
}

func (UserModel) TableName() string {
	return "users"
}
