package mediatools

import (
	"regexp"
	"strings"
)

var (
	parenPattern      = regexp.MustCompile(`\([^)]*\)`)
	bracketPattern    = regexp.MustCompile(`\[[^\]]*\]`)
	bracePattern      = regexp.MustCompile(`\{[^}]*\}`)
	cnParenPattern    = regexp.MustCompile(`（[^）]*）`)
	markdownPattern   = regexp.MustCompile(`[*#>` + "`" + `]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// TextCleaner 文本清理器，用于清理TTS文本
type TextCleaner struct{}

// NewTextCleaner 创建文本清理器实例
func NewTextCleaner() *TextCleaner {
	return &TextCleaner{}
}

// CleanTextForTTS 清理文本用于TTS生成
// 移除括号内的注释性内容、残留的 markdown 标记和&符号，合并多余空白
func (tc *TextCleaner) CleanTextForTTS(text string) string {
	text = parenPattern.ReplaceAllString(text, "")
	text = bracketPattern.ReplaceAllString(text, "")
	text = bracePattern.ReplaceAllString(text, "")
	text = cnParenPattern.ReplaceAllString(text, "")
	text = markdownPattern.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "&", "")

	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
