package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Section 解说章节
// 说明：顺序即解说顺序；ID 为跨阶段关联键（{序号}-{安全标题}），由解说词阶段一次性分配
type Section struct {
	ID      string `json:"id,omitempty"` // 关联键，音频文件名即 {ID}.wav
	Title   string `json:"title"`        // 章节标题
	Content string `json:"content"`      // 章节解说内容
}

// AssignIDs 按位置为缺少 ID 的章节补齐关联键（序号从 1 开始）
// 已有 ID 的章节保持不变，保证上游分配的键不被重新推导
func AssignIDs(sections []Section) []Section {
	for i := range sections {
		if sections[i].ID == "" {
			sections[i].ID = SectionKey(i+1, sections[i].Title)
		}
	}
	return sections
}

// LoadScript 读取解说词 JSON（[{id,title,content}]）
func LoadScript(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var sections []Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return AssignIDs(sections), nil
}

// SaveScript 保存解说词 JSON，自动创建父目录
func SaveScript(path string, sections []Section) error {
	if sections == nil {
		sections = []Section{}
	}
	return writeJSON(path, sections)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
