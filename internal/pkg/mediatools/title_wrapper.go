package mediatools

import (
	"strings"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// TitleWrapper 标题换行器，按词边界把标题折成多行，避免词组被截断
type TitleWrapper struct {
	maxChars int                        // 每行最大字符数
	segment  func(text string) []string // 分词函数
}

// NewTitleWrapper 创建标题换行器
// gse 词典加载失败时降级为按字符切分
func NewTitleWrapper(maxChars int) *TitleWrapper {
	if maxChars <= 0 {
		maxChars = 16
	}

	w := &TitleWrapper{maxChars: maxChars, segment: splitRunes}

	seg, err := gse.New()
	if err != nil {
		log.Warn().Err(err).Msg("gse 分词器初始化失败，标题按字符换行")
		return w
	}
	w.segment = func(text string) []string {
		return seg.Cut(text, true)
	}
	return w
}

// Wrap 返回折行后的标题（以 \n 连接）
func (w *TitleWrapper) Wrap(title string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= w.maxChars {
		return title
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for _, word := range w.segment(title) {
		if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(word) > w.maxChars {
			flush()
		}
		// 单个词超过行宽时强制按字符切分
		for utf8.RuneCountInString(word) > w.maxChars {
			runes := []rune(word)
			current.WriteString(string(runes[:w.maxChars]))
			flush()
			word = string(runes[w.maxChars:])
		}
		current.WriteString(word)
	}
	flush()

	return strings.Join(lines, "\n")
}

func splitRunes(text string) []string {
	words := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		words = append(words, string(r))
	}
	return words
}

// NewPlainTitleWrapper 创建按字符换行的标题换行器，不加载分词词典
func NewPlainTitleWrapper(maxChars int) *TitleWrapper {
	if maxChars <= 0 {
		maxChars = 16
	}
	return &TitleWrapper{maxChars: maxChars, segment: splitRunes}
}
