package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"docent/internal/pkg/id"
)

const (
	defaultAPIURL    = "https://openspeech.bytedance.com/api/v1/tts"
	defaultCluster   = "volcano_tts"
	defaultVoiceType = "BV115_streaming"
	successCode      = 3000
)

// Config TTS 配置
type Config struct {
	APIURL      string // API 地址，默认: https://openspeech.bytedance.com/api/v1/tts
	AccessToken string // 访问令牌（必需）
	AppID       string // 应用ID（可选）
	Cluster     string // 集群名称，默认: volcano_tts
	VoiceType   string // 语音类型，默认: BV115_streaming
	SampleRate  int    // 采样率，默认: 44100
}

// Client TTS 客户端封装
// 用于调用火山引擎的 TTS API（文本转语音），输出 wav 音频
type Client struct {
	apiURL      string
	accessToken string
	appID       string
	cluster     string
	voiceType   string
	sampleRate  int
	httpClient  *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(config Config) (*Client, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("TTS access token is required")
	}

	c := &Client{
		apiURL:      config.APIURL,
		accessToken: config.AccessToken,
		appID:       config.AppID,
		cluster:     config.Cluster,
		voiceType:   config.VoiceType,
		sampleRate:  config.SampleRate,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	if c.apiURL == "" {
		c.apiURL = defaultAPIURL
	}
	if c.cluster == "" {
		c.cluster = defaultCluster
	}
	if c.voiceType == "" {
		c.voiceType = defaultVoiceType
	}
	if c.sampleRate == 0 {
		c.sampleRate = 44100
	}
	return c, nil
}

// Result TTS生成结果
type Result struct {
	AudioData []byte  // wav 音频数据
	Duration  float64 // 音频时长（秒），接口未返回时为 0
}

type apiResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Data     string `json:"data"`
	Addition struct {
		Duration json.RawMessage `json:"duration"`
	} `json:"addition"`
}

// Synthesize 合成语音，返回音频数据和时长，不保存到文件
func (c *Client) Synthesize(ctx context.Context, text string, speedRatio float64) (*Result, error) {
	if speedRatio <= 0 {
		speedRatio = 1.0
	}

	requestID := id.New()
	reqBody, err := json.Marshal(c.buildRequestConfig(text, requestID, speedRatio))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("request_id", requestID).
		Int("text_len", len([]rune(text))).
		Msg("sending TTS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed, status: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if apiResp.Code != successCode {
		message := apiResp.Message
		if message == "" {
			message = "unknown error"
		}
		return nil, fmt.Errorf("API response error: %s (code: %d)", message, apiResp.Code)
	}
	if apiResp.Data == "" {
		return nil, fmt.Errorf("audio data not found in response")
	}

	audioData, err := base64.StdEncoding.DecodeString(apiResp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}

	return &Result{
		AudioData: audioData,
		Duration:  parseDuration(apiResp.Addition.Duration),
	}, nil
}

// SynthesizeToFile 合成语音并写入 audioPath
func (c *Client) SynthesizeToFile(ctx context.Context, text, audioPath string, speedRatio float64) (*Result, error) {
	result, err := c.Synthesize(ctx, text, speedRatio)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir: %w", err)
	}
	if err := os.WriteFile(audioPath, result.AudioData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}
	return result, nil
}

// buildRequestConfig 构建请求配置
// 参考官方文档: https://openspeech.bytedance.com/api/v1/tts
func (c *Client) buildRequestConfig(text, requestID string, speedRatio float64) map[string]interface{} {
	appConfig := map[string]interface{}{
		"token":   c.accessToken,
		"cluster": c.cluster,
	}
	if c.appID != "" {
		appConfig["appid"] = c.appID
	}

	audioConfig := map[string]interface{}{
		"voice_type":   c.voiceType,
		"encoding":     "wav",
		"rate":         c.sampleRate,
		"speed_ratio":  speedRatio,
		"volume_ratio": 1.0,
		"pitch_ratio":  1.0,
		"language":     "cn",
	}

	requestConfig := map[string]interface{}{
		"reqid":     requestID,
		"text":      text,
		"text_type": "plain",
		"operation": "query",
	}

	return map[string]interface{}{
		"app":     appConfig,
		"user":    map[string]interface{}{"uid": requestID},
		"audio":   audioConfig,
		"request": requestConfig,
	}
}

// parseDuration duration 单位为毫秒，可能是字符串或数字
func parseDuration(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return ms / 1000.0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			return parsed / 1000.0
		}
	}
	return 0
}
