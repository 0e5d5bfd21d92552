package mediatools

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"docent/internal/model/media"
)

// mockLLMProvider 用于测试的 mock LLM 提供者
type mockLLMProvider struct {
	calls        int
	generateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return "", errors.New("mock generate function not set")
}

// memoryCache 内存版 ResponseCache
type memoryCache struct {
	data   map[string]string
	getErr error
}

func (c *memoryCache) GetText(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) SetText(_ context.Context, key, value string) error {
	c.data[key] = value
	return nil
}

func newReference() *media.ReferenceText {
	ref := media.NewReferenceText()
	ref.Set("首段", "四羊方尊是商代晚期青铜礼器。")
	ref.Set("历史", "一九三八年出土于湖南宁乡。")
	return ref
}

func TestScriptPromptBuilder_Build(t *testing.T) {
	Convey("ScriptPromptBuilder.Build 按顺序拼接参考文本", t, func() {
		prompt := ScriptPromptBuilder{}.Build(newReference())

		So(prompt, ShouldStartWith, "你是一个博物馆解说员")
		So(prompt, ShouldContainSubstring, "**开场白**")
		So(prompt, ShouldEndWith, "【首段】四羊方尊是商代晚期青铜礼器。\n\n【历史】一九三八年出土于湖南宁乡。\n\n")
		So(strings.Index(prompt, "【首段】"), ShouldBeLessThan, strings.Index(prompt, "【历史】"))
	})
}

func TestScriptGenerator_Generate(t *testing.T) {
	Convey("ScriptGenerator.Generate 调用大模型并切分章节", t, func() {
		ctx := context.Background()
		reply := "**开场白**\n我是AI文物讲解员小明。\n\n**外观**\n方尊四角各有一羊。"

		Convey("正常生成", func() {
			llm := &mockLLMProvider{generateFunc: func(_ context.Context, prompt string) (string, error) {
				So(prompt, ShouldContainSubstring, "【历史】")
				return reply, nil
			}}
			sections, raw, err := NewScriptGenerator(llm, nil).Generate(ctx, newReference())

			So(err, ShouldBeNil)
			So(raw, ShouldEqual, reply)
			So(sections, ShouldResemble, []media.Section{
				{ID: "1-开场白", Title: "开场白", Content: "我是AI文物讲解员小明。"},
				{ID: "2-外观", Title: "外观", Content: "方尊四角各有一羊。"},
			})
		})

		Convey("无章节标记时返回空列表而不是错误", func() {
			llm := &mockLLMProvider{generateFunc: func(context.Context, string) (string, error) {
				return "没有任何标题的一段话", nil
			}}
			sections, _, err := NewScriptGenerator(llm, nil).Generate(ctx, newReference())

			So(err, ShouldBeNil)
			So(sections, ShouldNotBeNil)
			So(sections, ShouldBeEmpty)
		})

		Convey("大模型错误向上返回", func() {
			llm := &mockLLMProvider{generateFunc: func(context.Context, string) (string, error) {
				return "", errors.New("boom")
			}}
			_, _, err := NewScriptGenerator(llm, nil).Generate(ctx, newReference())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "boom")
		})

		Convey("参考文本为空时报错", func() {
			_, _, err := NewScriptGenerator(&mockLLMProvider{}, nil).Generate(ctx, media.NewReferenceText())
			So(err, ShouldNotBeNil)
		})

		Convey("缓存命中时不再调用大模型", func() {
			llm := &mockLLMProvider{generateFunc: func(context.Context, string) (string, error) {
				return reply, nil
			}}
			cache := &memoryCache{data: map[string]string{}}
			gen := NewScriptGenerator(llm, cache)

			first, _, err := gen.Generate(ctx, newReference())
			So(err, ShouldBeNil)
			second, _, err := gen.Generate(ctx, newReference())
			So(err, ShouldBeNil)

			So(llm.calls, ShouldEqual, 1)
			So(second, ShouldResemble, first)
			So(cache.data, ShouldContainKey, ScriptCacheKey(ScriptPromptBuilder{}.Build(newReference())))
		})

		Convey("缓存读取失败时降级为直接调用", func() {
			llm := &mockLLMProvider{generateFunc: func(context.Context, string) (string, error) {
				return reply, nil
			}}
			cache := &memoryCache{data: map[string]string{}, getErr: errors.New("redis down")}
			sections, _, err := NewScriptGenerator(llm, cache).Generate(ctx, newReference())

			So(err, ShouldBeNil)
			So(sections, ShouldHaveLength, 2)
			So(llm.calls, ShouldEqual, 1)
		})
	})
}
