package media

import (
	"context"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docent/internal/pkg/storage"
)

// Publisher 把产物上传到配置的存储；未配置存储时不做任何事
type Publisher struct {
	storage storage.Storage
}

// NewPublisher 创建发布器，s 可为 nil
func NewPublisher(s storage.Storage) *Publisher {
	return &Publisher{storage: s}
}

// Publish 以 {runID}/{文件名} 为 key 上传文件，返回已发布的地址
// 同一 runID 重复发布时跳过已存在的对象；上传失败只记录日志，本地文件已经存在
func (p *Publisher) Publish(ctx context.Context, runID string, files ...string) []string {
	if p == nil || p.storage == nil {
		return nil
	}

	var urls []string
	for _, file := range files {
		if file == "" {
			continue
		}
		key := path.Join(runID, filepath.Base(file))

		exists, err := p.storage.Exists(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("检查已发布产物失败，继续上传")
		}
		if exists {
			url := p.storage.URL(key)
			log.Info().Str("file", file).Str("url", url).Msg("产物已发布过，跳过上传")
			urls = append(urls, url)
			continue
		}

		url, err := storage.UploadFile(ctx, p.storage, key, file)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Str("storage", p.storage.GetStorageType()).Msg("产物发布失败")
			continue
		}
		log.Info().Str("file", file).Str("url", url).Msg("产物已发布")
		urls = append(urls, url)
	}
	return urls
}
