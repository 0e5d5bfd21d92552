package media

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeTitle 将标题转换为文件名安全的标记，只保留字母、数字、下划线和连字符
// 字母和数字按 Unicode 判断，中文标题会被完整保留
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SectionKey 章节关联键：{序号}-{安全标题}
func SectionKey(index int, title string) string {
	return fmt.Sprintf("%d-%s", index, SanitizeTitle(title))
}
