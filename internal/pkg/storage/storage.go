package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Storage 产物发布存储接口
type Storage interface {
	// Upload 上传文件，返回访问地址
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// URL 返回 key 对应的访问地址
	URL(key string) string

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeNone  StorageType = "none"  // 不发布
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// UploadFile 上传本地文件，Content-Type 按扩展名推断
func UploadFile(ctx context.Context, s Storage, key, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return s.Upload(ctx, key, file, ContentType(path))
}

// ContentType 根据文件扩展名获取Content-Type
func ContentType(filename string) string {
	switch ext := filepath.Ext(filename); ext {
	case ".mp4":
		return "video/mp4"
	case ".wav":
		return "audio/wav"
	case ".json":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
