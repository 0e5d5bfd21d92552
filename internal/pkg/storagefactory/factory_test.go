package storagefactory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"docent/internal/config"
	"docent/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	Convey("NewStorage 按类型创建存储", t, func() {
		ctx := context.Background()

		Convey("none 不创建存储", func() {
			s, err := NewStorage(ctx, &config.StorageConfig{Type: "none"})
			So(err, ShouldBeNil)
			So(s, ShouldBeNil)
		})

		Convey("缺少 local 配置", func() {
			s, err := NewStorage(ctx, &config.StorageConfig{Type: "local"})
			So(err, ShouldNotBeNil)
			So(s, ShouldBeNil)
		})

		Convey("缺少 oss 配置", func() {
			_, err := NewStorage(ctx, &config.StorageConfig{Type: "oss"})
			So(err, ShouldNotBeNil)
		})

		Convey("不支持的类型", func() {
			_, err := NewStorage(ctx, &config.StorageConfig{Type: "s3"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unsupported storage type")
		})
	})
}

func TestLocalStorage_Operations(t *testing.T) {
	Convey("本地存储上传与查询", t, func() {
		ctx := context.Background()
		baseDir := filepath.Join(t.TempDir(), "publish")

		s, err := NewStorage(ctx, &config.StorageConfig{
			Type:  "local",
			Local: &config.LocalConfig{BasePath: baseDir, BaseURL: "http://localhost:8080/videos/"},
		})
		So(err, ShouldBeNil)
		So(s.GetStorageType(), ShouldEqual, "local")

		src := filepath.Join(t.TempDir(), "final_video.mp4")
		So(os.WriteFile(src, []byte("video"), 0644), ShouldBeNil)

		url, err := storage.UploadFile(ctx, s, "ab12cd34/final_video.mp4", src)
		So(err, ShouldBeNil)
		So(url, ShouldEqual, "http://localhost:8080/videos/ab12cd34/final_video.mp4")

		exists, err := s.Exists(ctx, "ab12cd34/final_video.mp4")
		So(err, ShouldBeNil)
		So(exists, ShouldBeTrue)
		So(s.URL("ab12cd34/final_video.mp4"), ShouldEqual, url)
		So(s.URL("../escape.mp4"), ShouldBeEmpty)

		data, err := os.ReadFile(filepath.Join(baseDir, "ab12cd34", "final_video.mp4"))
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "video")

		Convey("不存在的文件", func() {
			exists, err := s.Exists(ctx, "missing.mp4")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("拒绝跳出基础目录的 key", func() {
			_, err := s.Upload(ctx, "../escape.mp4", strings.NewReader("x"), "video/mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Content-Type 推断", func() {
			So(storage.ContentType("a.mp4"), ShouldEqual, "video/mp4")
			So(storage.ContentType("a_script.json"), ShouldEqual, "application/json")
			So(storage.ContentType("a.unknownext"), ShouldEqual, "application/octet-stream")
		})
	})
}
