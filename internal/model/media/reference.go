package media

import (
	"encoding/json"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ReferenceText 检索得到的参考文本：章节标题 -> 正文，插入顺序有意义
type ReferenceText = orderedmap.OrderedMap[string, string]

// NewReferenceText 创建空的参考文本
func NewReferenceText() *ReferenceText {
	return orderedmap.New[string, string]()
}

// LoadReferenceText 读取章节文本 JSON，保持键的原始顺序
func LoadReferenceText(path string) (*ReferenceText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}

	ref := NewReferenceText()
	if err := json.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("parse sections %s: %w", path, err)
	}
	return ref, nil
}

// SaveReferenceText 保存章节文本 JSON
func SaveReferenceText(path string, ref *ReferenceText) error {
	return writeJSON(path, ref)
}
