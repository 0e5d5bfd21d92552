package media

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeTitle(t *testing.T) {
	Convey("SanitizeTitle 只保留字母、数字、下划线和连字符", t, func() {
		So(SanitizeTitle("外观"), ShouldEqual, "外观")
		So(SanitizeTitle("背景 / 历史？"), ShouldEqual, "背景历史")
		So(SanitizeTitle("Bronze_Age-2"), ShouldEqual, "Bronze_Age-2")
		So(SanitizeTitle("**"), ShouldBeEmpty)
	})

	Convey("SectionKey 使用从 1 开始的序号", t, func() {
		So(SectionKey(1, "开场白"), ShouldEqual, "1-开场白")
		So(SectionKey(12, "a b"), ShouldEqual, "12-ab")
	})
}

func TestScriptRoundTrip(t *testing.T) {
	Convey("解说词 JSON 读取时补齐缺失的 ID，已有 ID 保持不变", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "demo_script.json")
		sections := []Section{
			{Title: "开场白", Content: "大家好"},
			{ID: "7-custom", Title: "外观", Content: "青铜"},
			{Title: "开场白", Content: "重复标题"},
		}
		So(SaveScript(path, sections), ShouldBeNil)

		loaded, err := LoadScript(path)
		So(err, ShouldBeNil)
		So(len(loaded), ShouldEqual, 3)
		So(loaded[0].ID, ShouldEqual, "1-开场白")
		So(loaded[1].ID, ShouldEqual, "7-custom")
		So(loaded[2].ID, ShouldEqual, "3-开场白")
	})

	Convey("空解说词保存为 []", t, func() {
		path := filepath.Join(t.TempDir(), "empty.json")
		So(SaveScript(path, nil), ShouldBeNil)
		loaded, err := LoadScript(path)
		So(err, ShouldBeNil)
		So(loaded, ShouldBeEmpty)
	})
}

func TestReferenceTextOrder(t *testing.T) {
	Convey("章节文本 JSON 保持插入顺序", t, func() {
		ref := NewReferenceText()
		ref.Set("首段", "第一段")
		ref.Set("形制", "方尊")
		ref.Set("历史", "出土")

		path := filepath.Join(t.TempDir(), "q_sections.json")
		So(SaveReferenceText(path, ref), ShouldBeNil)

		loaded, err := LoadReferenceText(path)
		So(err, ShouldBeNil)

		var keys []string
		for pair := loaded.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
		}
		So(keys, ShouldResemble, []string{"首段", "形制", "历史"})
	})
}
