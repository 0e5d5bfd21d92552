package imagesearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// newFakeDDG 模拟 DuckDuckGo：首页返回 vqd，i.js 每页返回 pageSize 条结果，共 pages 页
func newFakeDDG(pages, pageSize int) (*httptest.Server, *int) {
	vqdCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		vqdCalls++
		fmt.Fprint(w, `<html><script>vqd="4-123456789";</script></html>`)
	})
	mux.HandleFunc("/i.js", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vqd") != "4-123456789" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		page := 0
		fmt.Sscanf(r.URL.Query().Get("s"), "%d", &page)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[`)
		for i := 0; i < pageSize; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"image":"http://img.example/%d_%d.jpg"}`, page, i)
		}
		fmt.Fprint(w, `]`)
		if page+1 < pages {
			fmt.Fprintf(w, `,"next":"i.js?q=x&o=json&s=%d"`, page+1)
		}
		fmt.Fprint(w, `}`)
	})
	return httptest.NewServer(mux), &vqdCalls
}

func TestDuckDuckGo_SearchImages(t *testing.T) {
	Convey("DuckDuckGo.SearchImages 获取候选图片", t, func() {
		ctx := context.Background()

		Convey("跨页收集直到数量满足", func() {
			server, vqdCalls := newFakeDDG(3, 4)
			defer server.Close()

			ddg := NewDuckDuckGo(Config{BaseURL: server.URL})
			urls, err := ddg.SearchImages(ctx, "越王勾践剑", 6)
			So(err, ShouldBeNil)
			So(urls, ShouldHaveLength, 6)
			So(urls[0], ShouldEqual, "http://img.example/0_0.jpg")
			So(urls[4], ShouldEqual, "http://img.example/1_0.jpg")
			So(*vqdCalls, ShouldEqual, 1)

			Convey("再次调用沿分页继续", func() {
				more, err := ddg.SearchImages(ctx, "越王勾践剑", 2)
				So(err, ShouldBeNil)
				So(more[0], ShouldEqual, "http://img.example/2_0.jpg")
				So(*vqdCalls, ShouldEqual, 1)
			})
		})

		Convey("结果不足时返回全部", func() {
			server, _ := newFakeDDG(1, 3)
			defer server.Close()

			urls, err := NewDuckDuckGo(Config{BaseURL: server.URL}).SearchImages(ctx, "四羊方尊", 20)
			So(err, ShouldBeNil)
			So(urls, ShouldHaveLength, 3)
		})

		Convey("首页没有 vqd 时报错", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html></html>")
			}))
			defer server.Close()

			_, err := NewDuckDuckGo(Config{BaseURL: server.URL}).SearchImages(ctx, "四羊方尊", 5)
			So(err, ShouldNotBeNil)
		})
	})
}
