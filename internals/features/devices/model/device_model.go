// file: internals/features/devices/model/device_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceModel merepresentasikan alat perekam yang terdaftar.
// Registrasi & verifikasi device ditangani di luar pipeline ini.
type DeviceModel struct {
	DeviceID   uuid.UUID `json:"device_id" gorm:"column:device_id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeviceName string    `json:"device_name" gorm:"column:device_name;type:varchar(100);not null"`
	DeviceSlug string    `json:"device_slug" gorm:"column:device_slug;type:varchar(120);not null;uniqueIndex"`

	// MAC disimpan uppercase tanpa separator, mis. "AABBCCDDEEFF"
	DeviceMacAddress string `json:"device_mac_address" gorm:"column:device_mac_address;type:varchar(17);not null;uniqueIndex"`

	DeviceIsVerified bool `json:"device_is_verified" gorm:"column:device_is_verified;not null;default:false"`

	DeviceCreatedAt time.Time      `json:"device_created_at" gorm:"column:device_created_at;type:timestamptz;autoCreateTime"`
	DeviceUpdatedAt time.Time      `json:"device_updated_at" gorm:"column:device_updated_at;type:timestamptz;autoUpdateTime"`
	DeviceDeletedAt gorm.DeletedAt `json:"device_deleted_at" gorm:"column:device_deleted_at;index"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
