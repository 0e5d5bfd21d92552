package media

import "errors"

// 致命前置条件错误，由命令层原样返回
var (
	ErrTitleBackgroundMissing = errors.New("title background image not found")
	ErrNoImages               = errors.New("no images available")
	ErrNoClips                = errors.New("no clips to assemble")
	ErrNoReferenceText        = errors.New("no reference text found")
)
