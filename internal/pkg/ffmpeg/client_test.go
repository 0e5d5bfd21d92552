package ffmpeg

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestParseProbeDuration(t *testing.T) {
	Convey("parseProbeDuration 解析 ffprobe JSON", t, func() {
		d, err := parseProbeDuration([]byte(`{"format":{"duration":"12.480000"}}`))
		So(err, ShouldBeNil)
		So(d, ShouldAlmostEqual, 12.48)

		_, err = parseProbeDuration([]byte(`{"format":{}}`))
		So(err, ShouldNotBeNil)

		_, err = parseProbeDuration([]byte(`not json`))
		So(err, ShouldNotBeNil)
	})
}

func TestTitleCardArgs(t *testing.T) {
	Convey("titleCardArgs 生成标题帧命令", t, func() {
		spec := TitleCardSpec{
			Output:     Output{Width: 1280, Height: 720, FPS: 30},
			Background: "title_bg.jpg",
			TextFile:   "/tmp/title.txt",
			FontName:   "SimHei",
			FontSize:   70,
			FontColor:  "black",
			Duration:   2,
		}
		args := titleCardArgs(spec, "out.mp4")
		filter := argValue(args, "-filter_complex")

		So(argValue(args, "-i"), ShouldEqual, "title_bg.jpg")
		So(filter, ShouldContainSubstring, "scale=1280:720")
		So(filter, ShouldContainSubstring, "font='SimHei'")
		So(filter, ShouldContainSubstring, "textfile='/tmp/title.txt'")
		So(filter, ShouldContainSubstring, "fontsize=70:fontcolor=black")
		So(strings.Join(args, " "), ShouldContainSubstring, "anullsrc=channel_layout=stereo")
		So(argValue(args, "-c:v"), ShouldEqual, "libx264")
		So(args[len(args)-1], ShouldEqual, "out.mp4")

		Convey("指定字体文件时优先使用", func() {
			spec.FontFile = "/fonts/simhei.ttf"
			filter := argValue(titleCardArgs(spec, "out.mp4"), "-filter_complex")
			So(filter, ShouldContainSubstring, "fontfile='/fonts/simhei.ttf'")
			So(filter, ShouldNotContainSubstring, "font='SimHei'")
		})
	})
}

func TestSlideshowArgs(t *testing.T) {
	Convey("slideshowArgs 生成幻灯片命令", t, func() {
		spec := SlideshowSpec{
			Output: Output{Width: 1280, Height: 720, FPS: 30},
			Frames: []SlideFrame{
				{Image: "a.jpg", Duration: 4},
				{Image: "b.png", Duration: 1},
			},
			Fade:      0.5,
			AudioPath: "1-开场白.wav",
			Duration:  5,
		}
		args := slideshowArgs(spec, "slide.mp4")
		joined := strings.Join(args, " ")
		filter := argValue(args, "-filter_complex")

		So(joined, ShouldContainSubstring, "-t 4.000 -i a.jpg")
		So(joined, ShouldContainSubstring, "-t 1.000 -i b.png")
		So(joined, ShouldContainSubstring, "-i 1-开场白.wav")
		So(filter, ShouldContainSubstring, "fade=t=out:st=3.500:d=0.500")
		So(filter, ShouldContainSubstring, "[f0][f1]concat=n=2:v=1:a=0[v]")
		So(joined, ShouldContainSubstring, "-map 2:a")
		So(args[len(args)-3], ShouldEqual, "-t")
		So(args[len(args)-2], ShouldEqual, "5.000")
	})
}

func TestFrameFade(t *testing.T) {
	Convey("frameFade 限制在帧时长一半以内", t, func() {
		So(frameFade(0.5, 4), ShouldEqual, 0.5)
		So(frameFade(0.5, 0.6), ShouldEqual, 0.3)
		So(frameFade(0, 4), ShouldEqual, 0)
	})
}

func TestConcatList(t *testing.T) {
	Convey("concatList 使用绝对路径并转义单引号", t, func() {
		list, err := concatList([]string{"/work/0001_title.mp4", "/work/it's.mp4"})
		So(err, ShouldBeNil)
		So(list, ShouldEqual, "file '/work/0001_title.mp4'\nfile '/work/it'\\''s.mp4'\n")
	})
}
