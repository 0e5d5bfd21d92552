package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"docent/internal/model/media"
)

// headingPattern 匹配 exsectionformat=wiki 输出的任意级别标题行，例如 == 历史 == / === 铸造 ===
var headingPattern = regexp.MustCompile(`(?m)^(={2,6})[ \t]*(.+?)[ \t]*={2,6}[ \t]*$`)

// Config Wikipedia 客户端配置
type Config struct {
	Language   string        // 语言，默认 zh
	UserAgent  string        // 维基百科要求必须带 User-Agent
	BaseURL    string        // API 地址，默认 https://{lang}.wikipedia.org/w/api.php
	Timeout    time.Duration // 请求超时，默认 15s
	HTTPClient *http.Client
}

// Client MediaWiki 纯文本摘录客户端
type Client struct {
	language   string
	userAgent  string
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 Wikipedia 客户端
func NewClient(cfg Config) *Client {
	lang := cfg.Language
	if lang == "" {
		lang = "zh"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "docent/1.0 (video-generator)"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		language:   lang,
		userAgent:  userAgent,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// LeadKey 首段在参考文本中的键名
func LeadKey(lang string) string {
	if strings.HasPrefix(lang, "zh") {
		return "首段"
	}
	return "lead"
}

type queryResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Sections 获取词条的分章节文本
//
// 首段作为第一个章节，其后按出现顺序展开所有（含嵌套的）非空章节；
// 词条不存在时返回空的参考文本
func (c *Client) Sections(ctx context.Context, query string) (*media.ReferenceText, error) {
	extract, err := c.fetchExtract(ctx, query)
	if err != nil {
		return nil, err
	}
	return SplitExtract(extract, LeadKey(c.language)), nil
}

func (c *Client) fetchExtract(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "wiki")
	params.Set("redirects", "1")
	params.Set("titles", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create wiki request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wiki request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wiki request failed: status %d", resp.StatusCode)
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse wiki response: %w", err)
	}

	for _, page := range result.Query.Pages {
		if page.Missing {
			log.Warn().Str("query", query).Msg("Wikipedia 页面不存在")
			continue
		}
		return page.Extract, nil
	}
	return "", nil
}

// SplitExtract 把纯文本摘录切分为有序章节
func SplitExtract(extract, leadKey string) *media.ReferenceText {
	ref := media.NewReferenceText()

	matches := headingPattern.FindAllStringSubmatchIndex(extract, -1)

	leadEnd := len(extract)
	if len(matches) > 0 {
		leadEnd = matches[0][0]
	}
	if lead := firstParagraph(extract[:leadEnd]); lead != "" {
		ref.Set(leadKey, lead)
	}

	for i, m := range matches {
		title := strings.TrimSpace(extract[m[4]:m[5]])
		end := len(extract)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(extract[m[1]:end])
		if title == "" || body == "" {
			continue
		}
		ref.Set(title, body)
	}
	return ref
}

func firstParagraph(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
