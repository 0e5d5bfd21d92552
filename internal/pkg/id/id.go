package id

import (
	"strings"

	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// NewRunID 生成 8 位的运行编号，用于区分一次完整的生成流程
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
