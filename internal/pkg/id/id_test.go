package id

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIDs(t *testing.T) {
	Convey("New 生成合法 UUID", t, func() {
		_, err := uuid.Parse(New())
		So(err, ShouldBeNil)
	})

	Convey("NewRunID 生成 8 位十六进制编号", t, func() {
		runID := NewRunID()
		So(runID, ShouldHaveLength, 8)
		So(runID, ShouldNotEqual, NewRunID())
		for _, r := range runID {
			So(r >= '0' && r <= '9' || r >= 'a' && r <= 'f', ShouldBeTrue)
		}
	})
}
