package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"docent/internal/model/media"
)

func TestAudioService_Synthesize(t *testing.T) {
	Convey("AudioService.Synthesize 逐章节生成音频", t, func() {
		ctx := context.Background()
		dir := filepath.Join(t.TempDir(), "audio")
		sections := []media.Section{
			{ID: "1-开场白", Title: "开场白", Content: "我是**小明**（AI讲解员）。"},
			{ID: "2-空", Title: "空", Content: "（注释）"},
			{ID: "3-结语", Title: "结语", Content: "谢谢 & 再见"},
		}

		Convey("清理文本并跳过空章节", func() {
			tts := &fakeTTS{}
			clips, err := NewAudioService(tts, dir, 0).Synthesize(ctx, sections)

			So(err, ShouldBeNil)
			So(tts.calls, ShouldResemble, []string{"我是小明。", "谢谢 再见"})
			So(clips, ShouldHaveLength, 2)
			So(clips[0].SectionID, ShouldEqual, "1-开场白")
			So(clips[0].Path, ShouldEqual, filepath.Join(dir, "1-开场白.wav"))
			So(clips[1].Path, ShouldEqual, filepath.Join(dir, "3-结语.wav"))

			locator := DirAudioLocator{Dir: dir}
			_, ok := locator.Locate(sections[0])
			So(ok, ShouldBeTrue)
			_, ok = locator.Locate(sections[1])
			So(ok, ShouldBeFalse)
		})

		Convey("TTS 失败直接返回", func() {
			tts := &fakeTTS{err: errors.New("engine down")}
			_, err := NewAudioService(tts, dir, 1).Synthesize(ctx, sections)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "1-开场白")
		})
	})

	Convey("DirAudioLocator 忽略空文件", t, func() {
		dir := t.TempDir()
		section := media.Section{ID: "1-a", Title: "a"}
		So(os.WriteFile(AudioPath(dir, section), nil, 0644), ShouldBeNil)

		_, ok := DirAudioLocator{Dir: dir}.Locate(section)
		So(ok, ShouldBeFalse)
	})
}
