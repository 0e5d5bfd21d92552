package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"docent/internal/model/media"
	"docent/internal/pkg/mediatools"
)

const maxImageBytes = 32 << 20

// allowedImageExts 落盘时允许的扩展名，其他一律按 .jpg 保存
var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// Acquirer 图片采集器：按批搜索候选图片，下载、校验并落盘
type Acquirer struct {
	searcher   mediatools.ImageSearcher
	httpClient *http.Client
	userAgent  string
	dir        string
}

// NewAcquirer 创建图片采集器
//
// Args:
//   - searcher: 图片搜索提供者
//   - dir: 图片保存目录
//   - timeout: 单张图片下载超时
//   - userAgent: 下载时使用的 User-Agent
func NewAcquirer(searcher mediatools.ImageSearcher, dir string, timeout time.Duration, userAgent string) *Acquirer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Acquirer{
		searcher:   searcher,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		dir:        dir,
	}
}

// acquisitionSession 单次采集的状态，已见 URL 集合只在本次采集内有效
type acquisitionSession struct {
	attempts int
	seen     map[string]struct{}
	records  []media.ImageRecord
}

func newAcquisitionSession() *acquisitionSession {
	return &acquisitionSession{seen: make(map[string]struct{})}
}

// markSeen 返回 URL 是否首次出现
func (s *acquisitionSession) markSeen(u string) bool {
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	return true
}

// Acquire 采集图片，直到达到 targetCount 或用完 maxAttempts 批次
//
// 单个候选的任何失败都只会跳过该候选；搜索失败视为空批次。
// 批次用完仍不足时返回已采集的部分结果且 error 为 nil
func (a *Acquirer) Acquire(ctx context.Context, query string, targetCount, batchSize, maxAttempts int) ([]media.ImageRecord, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	session := newAcquisitionSession()
	prefix := ArtifactName(query)

	for len(session.records) < targetCount && session.attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return session.records, err
		}
		session.attempts++

		candidates, err := a.searcher.SearchImages(ctx, query, batchSize)
		if err != nil {
			log.Warn().Err(err).Int("attempt", session.attempts).Msg("图片搜索失败，计为空批次")
			continue
		}
		log.Info().
			Int("attempt", session.attempts).
			Int("candidates", len(candidates)).
			Int("have", len(session.records)).
			Msg("处理一批候选图片")

		for _, candidate := range candidates {
			if len(session.records) >= targetCount {
				break
			}
			if !session.markSeen(candidate) {
				continue
			}

			record, err := a.fetch(ctx, candidate, prefix, len(session.records))
			if err != nil {
				if ctx.Err() != nil {
					return session.records, ctx.Err()
				}
				log.Debug().Err(err).Str("url", candidate).Msg("跳过候选图片")
				continue
			}
			session.records = append(session.records, *record)
			log.Debug().Str("path", record.Path).Msg("图片下载成功")
		}
	}

	if len(session.records) < targetCount {
		log.Warn().
			Int("have", len(session.records)).
			Int("target", targetCount).
			Int("attempts", session.attempts).
			Msg("有效图片数量不足目标")
	}
	return session.records, nil
}

// fetch 下载并校验单张图片，成功时落盘
func (a *Acquirer) fetch(ctx context.Context, rawURL, prefix string, index int) (*media.ImageRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	filename := filepath.Join(a.dir, fmt.Sprintf("%s_%d%s", prefix, index, ImageExt(rawURL)))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	return &media.ImageRecord{
		Index:     index,
		Path:      filename,
		SourceURL: rawURL,
		Size:      int64(len(data)),
	}, nil
}

// ImageExt 根据 URL 路径后缀选择扩展名，限定为 .jpg/.jpeg/.png/.gif，默认 .jpg
func ImageExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if allowedImageExts[ext] {
		return ext
	}
	return ".jpg"
}

// ArtifactName 查询词对应的文件名前缀
func ArtifactName(query string) string {
	if name := media.SanitizeTitle(query); name != "" {
		return name
	}
	return "untitled"
}
