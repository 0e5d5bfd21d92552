package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
	"docent/internal/pkg/mediatools"
)

// ScriptService 解说词阶段：参考文本 -> 大模型 -> 章节列表
type ScriptService struct {
	generator *mediatools.ScriptGenerator
}

// NewScriptService 创建解说词服务
func NewScriptService(generator *mediatools.ScriptGenerator) *ScriptService {
	return &ScriptService{generator: generator}
}

// ScriptPath 解说词 JSON 与章节文本 JSON 同目录，_sections.json 替换为 _script.json
func ScriptPath(sectionsPath string) string {
	dir, base := filepath.Split(sectionsPath)
	if strings.HasSuffix(base, "_sections.json") {
		return filepath.Join(dir, strings.TrimSuffix(base, "_sections.json")+"_script.json")
	}
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_script.json")
}

// RawReplyPath 大模型原始回复的保存路径，可用 extract 命令离线重新切分
func RawReplyPath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, "_script.json") + "_raw.txt"
}

// Generate 读取章节文本，生成解说词并保存
//
// 未识别出任何章节时仍保存空列表，由视频阶段决定是否失败
func (s *ScriptService) Generate(ctx context.Context, sectionsPath string) (string, []media.Section, error) {
	ref, err := media.LoadReferenceText(sectionsPath)
	if err != nil {
		return "", nil, err
	}
	if ref.Len() == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrNoReferenceText, sectionsPath)
	}

	sections, raw, err := s.generator.Generate(ctx, ref)
	if err != nil {
		return "", nil, err
	}

	scriptPath := ScriptPath(sectionsPath)
	if err := media.SaveScript(scriptPath, sections); err != nil {
		return "", nil, fmt.Errorf("save script: %w", err)
	}
	if err := os.WriteFile(RawReplyPath(scriptPath), []byte(raw), 0644); err != nil {
		log.Warn().Err(err).Msg("保存大模型原始回复失败")
	}

	log.Info().Str("path", scriptPath).Int("sections", len(sections)).Msg("解说词已保存")
	return scriptPath, sections, nil
}

// ExtractFile 从保存的大模型原始回复离线切分章节
func ExtractFile(rawPath string) ([]media.Section, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("read raw reply: %w", err)
	}
	return mediatools.NewSectionExtractor().Extract(string(data)), nil
}
