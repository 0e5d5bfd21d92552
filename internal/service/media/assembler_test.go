package media

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"docent/internal/model/media"
	"docent/internal/pkg/mediatools"
)

// mapLocator 按章节 ID 返回音频
type mapLocator map[string]string

func (m mapLocator) Locate(section media.Section) (string, bool) {
	p, ok := m[section.ID]
	return p, ok
}

func newTestAssembler(enc *fakeEncoder, background string) *Assembler {
	cfg := testRenderConfig(background)
	titles := NewTitleCardRenderer(enc, cfg, mediatools.NewPlainTitleWrapper(cfg.TitleMaxChars))
	slides := NewSlideshowSynthesizer(enc, cfg, rand.New(rand.NewPCG(1, 2)))
	return NewAssembler(enc, cfg, titles, slides)
}

func writeBackground(t *testing.T, dir string) string {
	p := filepath.Join(dir, "title_bg.jpg")
	if err := os.WriteFile(p, []byte("bg"), 0644); err != nil {
		t.Fatalf("write background: %v", err)
	}
	return p
}

func TestTitleCardRenderer_Render(t *testing.T) {
	Convey("TitleCardRenderer.Render", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		enc := newFakeEncoder()

		Convey("背景存在时按配置渲染并清理标题文本文件", func() {
			bg := writeBackground(t, dir)
			cfg := testRenderConfig(bg)
			cfg.TitleMaxChars = 4
			renderer := NewTitleCardRenderer(enc, cfg, mediatools.NewPlainTitleWrapper(4))
			out := filepath.Join(dir, "0001_title.mp4")

			clip, err := renderer.Render(ctx, "四羊方尊的铸造工艺", out)
			So(err, ShouldBeNil)
			So(clip, ShouldResemble, media.Clip{Path: out, Duration: 2})

			So(enc.titles, ShouldHaveLength, 1)
			So(enc.titles[0].Background, ShouldEqual, bg)
			So(enc.titles[0].Duration, ShouldEqual, 2)
			So(enc.titles[0].FontName, ShouldEqual, "SimHei")
			So(enc.titleTexts[0], ShouldEqual, "四羊方尊\n的铸造工\n艺")

			_, err = os.Stat(enc.titles[0].TextFile)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("背景缺失", func() {
			renderer := NewTitleCardRenderer(enc, testRenderConfig(filepath.Join(dir, "nope.jpg")), mediatools.NewPlainTitleWrapper(16))
			_, err := renderer.Render(ctx, "标题", filepath.Join(dir, "t.mp4"))
			So(errors.Is(err, ErrTitleBackgroundMissing), ShouldBeTrue)
			So(enc.titles, ShouldBeEmpty)
		})
	})
}

func TestAssembler_Assemble(t *testing.T) {
	Convey("Assembler.Assemble 按章节顺序拼接片段", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		enc := newFakeEncoder()
		bg := writeBackground(t, dir)
		out := filepath.Join(dir, "output", "final_video.mp4")

		sections := []media.Section{
			{ID: "1-开场白", Title: "开场白", Content: "你好"},
			{ID: "2-外观", Title: "外观", Content: "四羊"},
			{ID: "3-结语", Title: "结语", Content: "再见"},
		}
		images := []media.ImageRecord{{Path: "a.png"}, {Path: "b.png"}}
		enc.durations["1.wav"] = 5
		enc.durations["3.wav"] = 9

		Convey("缺少音频的章节整体跳过", func() {
			locator := mapLocator{"1-开场白": "1.wav", "3-结语": "3.wav"}
			path, err := newTestAssembler(enc, bg).Assemble(ctx, sections, images, locator, out)

			So(err, ShouldBeNil)
			So(path, ShouldEqual, out)
			So(enc.outputs, ShouldResemble, []string{
				"0001_title.mp4", "0001_slides.mp4",
				"0003_title.mp4", "0003_slides.mp4",
			})
			So(enc.titleTexts, ShouldResemble, []string{"开场白", "结语"})
			So(enc.slideshows[0].Duration, ShouldEqual, 5)
			So(enc.slideshows[1].Duration, ShouldEqual, 9)

			So(enc.concats, ShouldHaveLength, 1)
			clips := enc.concats[0].Clips
			So(clips, ShouldHaveLength, 4)
			for i, name := range enc.outputs {
				So(filepath.Base(clips[i]), ShouldEqual, name)
			}

			// 中间片段目录已清理，只留下最终视频
			entries, err := os.ReadDir(filepath.Dir(out))
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Name(), ShouldEqual, "final_video.mp4")
		})

		Convey("全部章节缺少音频", func() {
			_, err := newTestAssembler(enc, bg).Assemble(ctx, sections, images, mapLocator{}, out)
			So(errors.Is(err, ErrNoClips), ShouldBeTrue)
			So(enc.concats, ShouldBeEmpty)
		})

		Convey("图片池为空", func() {
			_, err := newTestAssembler(enc, bg).Assemble(ctx, sections, nil, mapLocator{"1-开场白": "1.wav"}, out)
			So(errors.Is(err, ErrNoImages), ShouldBeTrue)
			So(enc.outputs, ShouldBeEmpty)
		})

		Convey("标题背景缺失", func() {
			_, err := newTestAssembler(enc, filepath.Join(dir, "missing.jpg")).Assemble(ctx, sections, images, mapLocator{"1-开场白": "1.wav"}, out)
			So(errors.Is(err, ErrTitleBackgroundMissing), ShouldBeTrue)
			So(enc.outputs, ShouldBeEmpty)
		})
	})
}
