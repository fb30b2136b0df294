package storage

import (
	"fmt"
	"mime/multipart"

	"bookshare-backend/config"
)

// Storage 文件存储后端的统一接口。
// UploadFile 返回可供客户端访问的 URL 或相对路径
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// NewStorage 根据配置选择存储后端
func NewStorage() (Storage, error) {
	cfg := config.AppConfig
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL)
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.StorageBackend)
	}
}
