package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var vqdPattern = regexp.MustCompile(`vqd=["']?([\d-]+)["']?`)

// Config DuckDuckGo 图片搜索配置
type Config struct {
	BaseURL    string // 默认 https://duckduckgo.com
	UserAgent  string
	Region     string // 默认 wt-wt
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DuckDuckGo 图片搜索客户端
//
// 同一查询的多次调用会沿着结果分页继续向后取，翻到末尾后从头开始
type DuckDuckGo struct {
	baseURL    string
	userAgent  string
	region     string
	httpClient *http.Client

	mu      sync.Mutex
	cursors map[string]*cursor
}

type cursor struct {
	vqd  string
	next string // 下一页的相对地址，为空表示从第一页开始
}

type imageResponse struct {
	Results []struct {
		Image string `json:"image"`
	} `json:"results"`
	Next string `json:"next"`
}

// NewDuckDuckGo 创建 DuckDuckGo 图片搜索客户端
func NewDuckDuckGo(cfg Config) *DuckDuckGo {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://duckduckgo.com"
	}
	region := cfg.Region
	if region == "" {
		region = "wt-wt"
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) docent/1.0"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		userAgent:  userAgent,
		region:     region,
		httpClient: httpClient,
		cursors:    make(map[string]*cursor),
	}
}

// SearchImages 返回最多 maxResults 个候选图片 URL，顺序为搜索排序
func (d *DuckDuckGo) SearchImages(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.cursors[query]
	if !ok {
		vqd, err := d.fetchVQD(ctx, query)
		if err != nil {
			return nil, err
		}
		cur = &cursor{vqd: vqd}
		d.cursors[query] = cur
	}

	var urls []string
	restarted := cur.next == ""
	for len(urls) < maxResults {
		page, err := d.fetchPage(ctx, query, cur)
		if err != nil {
			// vqd 过期时下次重新获取
			delete(d.cursors, query)
			if len(urls) > 0 {
				log.Debug().Err(err).Str("query", query).Msg("图片搜索分页失败，返回已获取结果")
				return urls, nil
			}
			return nil, err
		}

		for _, r := range page.Results {
			if r.Image == "" {
				continue
			}
			urls = append(urls, r.Image)
			if len(urls) >= maxResults {
				break
			}
		}

		cur.next = page.Next
		if page.Next == "" {
			if restarted || len(page.Results) == 0 {
				break
			}
			restarted = true
		}
	}
	return urls, nil
}

func (d *DuckDuckGo) fetchVQD(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("iax", "images")
	params.Set("ia", "images")

	body, err := d.get(ctx, d.baseURL+"/?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("fetch vqd: %w", err)
	}
	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("vqd token not found for %q", query)
	}
	return string(m[1]), nil
}

func (d *DuckDuckGo) fetchPage(ctx context.Context, query string, cur *cursor) (*imageResponse, error) {
	var pageURL string
	if cur.next != "" {
		pageURL = d.baseURL + "/" + strings.TrimLeft(cur.next, "/") + "&vqd=" + url.QueryEscape(cur.vqd)
	} else {
		params := url.Values{}
		params.Set("l", d.region)
		params.Set("o", "json")
		params.Set("q", query)
		params.Set("vqd", cur.vqd)
		params.Set("f", ",,,,,")
		params.Set("p", "1")
		pageURL = d.baseURL + "/i.js?" + params.Encode()
	}

	body, err := d.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch image page: %w", err)
	}

	var page imageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse image page: %w", err)
	}
	return &page, nil
}

func (d *DuckDuckGo) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Referer", d.baseURL+"/")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
