// file: internals/features/exams/pipeline/store/lease.go
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobLeaseModel merepresentasikan tabel `job_leases` — penanda non-overlap
// lintas proses. Pengganti cek PID-file lama: record owner + expiry di
// datastore yang sama dengan submission, jadi crash tidak meninggalkan
// lock yatim (lease kadaluarsa bisa direbut tick berikutnya).
type JobLeaseModel struct {
	JobLeaseName      string    `json:"job_lease_name" gorm:"column:job_lease_name;type:varchar(80);primaryKey"`
	JobLeaseOwner     uuid.UUID `json:"job_lease_owner" gorm:"column:job_lease_owner;type:uuid;not null"`
	JobLeaseExpiresAt time.Time `json:"job_lease_expires_at" gorm:"column:job_lease_expires_at;type:timestamptz;not null"`
}

func (JobLeaseModel) TableName() string {
	return "job_leases"
}

// LeaseStore — acquire/release lease per nama job.
type LeaseStore interface {
	// TryAcquire: true jika lease didapat (belum ada, atau sudah kadaluarsa).
	TryAcquire(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error)
	// Release hanya melepas lease milik owner sendiri.
	Release(ctx context.Context, name string, owner uuid.UUID) error
}

type GormLeaseStore struct {
	DB *gorm.DB
}

func NewGormLeaseStore(db *gorm.DB) *GormLeaseStore {
	return &GormLeaseStore{DB: db}
}

func (s *GormLeaseStore) TryAcquire(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error) {
	expires := time.Now().Add(ttl)
	// Upsert atomik: hanya merebut lease yang sudah lewat expiry
	res := s.DB.WithContext(ctx).Exec(`
		INSERT INTO job_leases (job_lease_name, job_lease_owner, job_lease_expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (job_lease_name) DO UPDATE
		SET job_lease_owner = EXCLUDED.job_lease_owner,
		    job_lease_expires_at = EXCLUDED.job_lease_expires_at
		WHERE job_leases.job_lease_expires_at < NOW()
		   OR job_leases.job_lease_owner = EXCLUDED.job_lease_owner`,
		name, owner, expires)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormLeaseStore) Release(ctx context.Context, name string, owner uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Where("job_lease_name = ? AND job_lease_owner = ?", name, owner).
		Delete(&JobLeaseModel{}).Error
}
