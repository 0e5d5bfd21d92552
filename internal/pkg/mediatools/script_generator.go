package mediatools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
)

const docentInstruction = "你是一个博物馆解说员，你需要根据后面提供的文本生成一段中文解说词，要求如下：" +
	"1. 必须划分章节，每章必须有标题和内容。一种可能的章节划分方式为：外观、背景历史、相关事件等。" +
	"2. 每个章节标题使用 **标题** 格式标注，例如：**外观** " +
	"3. 第一个章节固定为 **开场白**，示例：我是AI文物讲解员小明，接下来向您介绍…… " +
	"4. 每章内容必须完整自然，保持完整句子，不要在中途截断或遗漏信息，每章内容尽量详尽，适当加入细节和生动描述。" +
	"5. 禁止把文本中提到的图片、参考文献、外部链接等网页内容写入解说词。" +
	"6. 禁止使用阿拉伯数字和小数点，例如禁止写 20 世纪，应写成 二十世纪；禁止写 54.5，应写成 五十四点五。" +
	"7. 禁止写“参见”“参考其他词条”等提示语。" +
	"8. 语言要求逻辑清晰，流畅自然，适合口语化朗读。请根据以下文本生成解说词：\n\n"

// ScriptPromptBuilder 组装博物馆解说词提示词
type ScriptPromptBuilder struct{}

// Build 按参考文本的章节顺序拼接提示词，每节格式为 【标题】正文
func (ScriptPromptBuilder) Build(ref *media.ReferenceText) string {
	var b strings.Builder
	b.WriteString(docentInstruction)
	if ref == nil {
		return b.String()
	}
	for pair := ref.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "【%s】%s\n\n", pair.Key, pair.Value)
	}
	return b.String()
}

// ScriptGenerator 解说词生成器
//
// 只负责组装 prompt、调用注入的 LLM 并切分章节，不负责落盘
type ScriptGenerator struct {
	llmProvider LLMProvider
	cache       ResponseCache // 可为 nil
	prompts     ScriptPromptBuilder
	extractor   *SectionExtractor
}

// NewScriptGenerator 创建解说词生成器，cache 为 nil 时不使用缓存
func NewScriptGenerator(llmProvider LLMProvider, cache ResponseCache) *ScriptGenerator {
	return &ScriptGenerator{
		llmProvider: llmProvider,
		cache:       cache,
		extractor:   NewSectionExtractor(),
	}
}

// Generate 根据参考文本生成分章节解说词
//
// Returns:
//   - sections: 切分后的章节（可能为空列表）
//   - raw: 大模型原始返回
//   - err: 错误信息
func (g *ScriptGenerator) Generate(ctx context.Context, ref *media.ReferenceText) ([]media.Section, string, error) {
	if g.llmProvider == nil {
		return nil, "", fmt.Errorf("llmProvider is required")
	}
	if ref == nil || ref.Len() == 0 {
		return nil, "", fmt.Errorf("reference text is empty")
	}

	prompt := g.prompts.Build(ref)
	key := ScriptCacheKey(prompt)

	raw, hit := g.lookup(ctx, key)
	if !hit {
		var err error
		raw, err = g.llmProvider.Generate(ctx, prompt)
		if err != nil {
			return nil, "", fmt.Errorf("generate script: %w", err)
		}
		g.store(ctx, key, raw)
	}

	sections := g.extractor.Extract(raw)
	if len(sections) == 0 {
		log.Warn().Int("raw_len", len(raw)).Msg("解说词中未识别到任何章节")
	}
	return sections, raw, nil
}

func (g *ScriptGenerator) lookup(ctx context.Context, key string) (string, bool) {
	if g.cache == nil {
		return "", false
	}
	raw, ok, err := g.cache.GetText(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("读取解说词缓存失败")
		return "", false
	}
	if ok {
		log.Info().Str("key", key).Msg("命中解说词缓存")
	}
	return raw, ok
}

func (g *ScriptGenerator) store(ctx context.Context, key, raw string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.SetText(ctx, key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("写入解说词缓存失败")
	}
}

// ScriptCacheKey 返回提示词对应的缓存键 script:{sha256(prompt)}
func ScriptCacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "script:" + hex.EncodeToString(sum[:])
}
