// file: internals/helpers/oss/video_blob_service.go
package helper

import (
	"bytes"
	"context"
	"errors"
)

/*
VideoBlobService adalah facade storage permanen yang dipakai finalizer.

Kontraknya sengaja berbasis object key (bukan path filesystem) supaya
finalizer tidak terikat ke backend tertentu; implementasi default Aliyun OSS,
mock untuk unit test.
*/
type VideoBlobService interface {
	// Upload file lokal, kembalikan (objectKey, publicURL)
	UploadLocalFile(ctx context.Context, dir, localPath, contentType string) (key, publicURL string, err error)
	// Upload byte slice (dipakai untuk thumbnail WebP)
	UploadBytes(ctx context.Context, dir, filename string, data []byte, contentType string) (key, publicURL string, err error)
	// Kompensasi rollback: hapus object yang terlanjur ter-upload
	DeleteByKey(ctx context.Context, key string) error
	DeleteManyByKey(ctx context.Context, keys []string) error
}

/* --------------------------------------------------
   Implementasi berbasis Aliyun OSS
-------------------------------------------------- */

type OSSVideoBlobService struct {
	svc *OSSService
}

// Buat instance dari ENV. prefix opsional (contoh: "exams/")
func NewOSSVideoBlobServiceFromEnv(prefix string) (*OSSVideoBlobService, error) {
	s, err := NewOSSServiceFromEnv(prefix)
	if err != nil {
		return nil, err
	}
	return &OSSVideoBlobService{svc: s}, nil
}

func (b *OSSVideoBlobService) UploadLocalFile(ctx context.Context, dir, localPath, contentType string) (string, string, error) {
	key, err := b.svc.UploadLocalFile(ctx, dir, localPath, contentType)
	if err != nil {
		return "", "", err
	}
	return key, b.svc.PublicURL(key), nil
}

func (b *OSSVideoBlobService) UploadBytes(ctx context.Context, dir, filename string, data []byte, contentType string) (string, string, error) {
	key := b.svc.buildObjectKey(dir, filename)
	if err := b.svc.UploadStream(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", "", err
	}
	return key, b.svc.PublicURL(key), nil
}

func (b *OSSVideoBlobService) DeleteByKey(ctx context.Context, key string) error {
	return b.svc.DeleteObject(ctx, key)
}

func (b *OSSVideoBlobService) DeleteManyByKey(ctx context.Context, keys []string) error {
	return b.svc.DeleteObjects(ctx, keys)
}

/* --------------------------------------------------
   Mock untuk unit test
-------------------------------------------------- */

type MockVideoBlobService struct {
	UploadLocalFileFn func(ctx context.Context, dir, localPath, contentType string) (string, string, error)
	UploadBytesFn     func(ctx context.Context, dir, filename string, data []byte, contentType string) (string, string, error)
	DeleteByKeyFn     func(ctx context.Context, key string) error
	DeleteManyByKeyFn func(ctx context.Context, keys []string) error
}

func (m *MockVideoBlobService) UploadLocalFile(ctx context.Context, dir, localPath, contentType string) (string, string, error) {
	if m.UploadLocalFileFn == nil {
		return "", "", errors.New("not implemented")
	}
	return m.UploadLocalFileFn(ctx, dir, localPath, contentType)
}

func (m *MockVideoBlobService) UploadBytes(ctx context.Context, dir, filename string, data []byte, contentType string) (string, string, error) {
	if m.UploadBytesFn == nil {
		return "", "", errors.New("not implemented")
	}
	return m.UploadBytesFn(ctx, dir, filename, data, contentType)
}

func (m *MockVideoBlobService) DeleteByKey(ctx context.Context, key string) error {
	if m.DeleteByKeyFn == nil {
		return errors.New("not implemented")
	}
	return m.DeleteByKeyFn(ctx, key)
}

func (m *MockVideoBlobService) DeleteManyByKey(ctx context.Context, keys []string) error {
	if m.DeleteManyByKeyFn == nil {
		return errors.New("not implemented")
	}
	return m.DeleteManyByKeyFn(ctx, keys)
}
