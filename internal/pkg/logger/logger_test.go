package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"

	"docent/internal/config"
)

func TestInit(t *testing.T) {
	Convey("Init 写入日志文件并携带 run_id", t, func() {
		path := filepath.Join(t.TempDir(), "logs", "docent.log")
		err := Init(&config.LogConfig{Level: "debug", Format: "json", Output: "file", FilePath: path})
		So(err, ShouldBeNil)

		WithRun("ab12cd34")
		log.Info().Msg("hello")

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `"run_id":"ab12cd34"`)
		So(string(data), ShouldContainSubstring, `"message":"hello"`)
	})

	Convey("auto 格式写文件时不使用 console", t, func() {
		So(useConsole(&config.LogConfig{Format: "auto", Output: "file"}, 0), ShouldBeFalse)
		So(useConsole(&config.LogConfig{Format: "console"}, 0), ShouldBeTrue)
		So(useConsole(&config.LogConfig{Format: "json"}, 0), ShouldBeFalse)
	})
}
