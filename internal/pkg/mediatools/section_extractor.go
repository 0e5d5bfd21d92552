package mediatools

import (
	"strings"

	"docent/internal/model/media"
)

// 标题定界符：【标题】 与 **标题** 两种风格等价，可混用，起止风格不必一致
var (
	titleOpeners = []string{"【", "**"}
	titleClosers = []string{"】", "**"}
)

type scanState int

const (
	stateSeek    scanState = iota // 寻找标题起始定界符
	stateTitle                    // 读取标题，直到任一结束定界符（不跨行）
	stateContent                  // 读取正文，直到下一个起始定界符或文本结束
)

// SectionExtractor 从大模型生成的解说文本中切分出有序的（标题, 内容）章节
type SectionExtractor struct{}

// NewSectionExtractor 创建章节提取器实例
func NewSectionExtractor() *SectionExtractor {
	return &SectionExtractor{}
}

// Extract 按出现顺序提取章节
//
// 没有任何定界符的文本返回空列表（不是错误）；
// 同名章节不去重，各自按位置获得序号和关联键
func (e *SectionExtractor) Extract(raw string) []media.Section {
	sections := []media.Section{}

	state := stateSeek
	openAt, titleStart, contentStart := 0, 0, 0
	var title string

	emit := func(content string) {
		t := strings.TrimSpace(title)
		sections = append(sections, media.Section{
			ID:      media.SectionKey(len(sections)+1, t),
			Title:   t,
			Content: strings.TrimSpace(content),
		})
	}

	for i := 0; i < len(raw); {
		switch state {
		case stateSeek:
			if n := matchAny(raw, i, titleOpeners); n > 0 {
				openAt, titleStart = i, i+n
				i = titleStart
				state = stateTitle
				continue
			}
			i++

		case stateTitle:
			if raw[i] == '\n' {
				// 标题未闭合：放弃该起始定界符，从其后一个字节继续寻找
				i = openAt + 1
				state = stateSeek
				continue
			}
			if n := matchAny(raw, i, titleClosers); n > 0 {
				title = raw[titleStart:i]
				i += n
				contentStart = i
				state = stateContent
				continue
			}
			i++

		case stateContent:
			if matchAny(raw, i, titleOpeners) > 0 {
				emit(raw[contentStart:i])
				state = stateSeek
				continue
			}
			i++
		}
	}

	if state == stateContent {
		emit(raw[contentStart:])
	}

	return sections
}

// matchAny 若 s[i:] 以任一定界符开头，返回其字节长度，否则返回 0
func matchAny(s string, i int, delims []string) int {
	for _, d := range delims {
		if strings.HasPrefix(s[i:], d) {
			return len(d)
		}
	}
	return 0
}
