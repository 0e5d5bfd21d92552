package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// 所有片段统一的音频参数，保证 concat 时流参数一致
	audioSampleRate = 44100
	audioChannels   = 2
)

// Client FFmpeg 客户端
// 用于封装 FFmpeg 命令调用
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// Output 公共输出参数
type Output struct {
	Width      int
	Height     int
	FPS        int
	VideoCodec string // 默认 libx264
	AudioCodec string // 默认 aac
}

func (o Output) videoCodec() string {
	if o.VideoCodec == "" {
		return "libx264"
	}
	return o.VideoCodec
}

func (o Output) audioCodec() string {
	if o.AudioCodec == "" {
		return "aac"
	}
	return o.AudioCodec
}

// TitleCardSpec 标题帧参数
type TitleCardSpec struct {
	Output
	Background string // 背景图片
	TextFile   string // 标题文本文件（已折行）
	FontFile   string // 字体文件，为空时使用 FontName
	FontName   string // fontconfig 字体名
	FontSize   int
	FontColor  string
	Duration   float64 // 秒
}

// SlideFrame 幻灯片中的一帧
type SlideFrame struct {
	Image    string
	Duration float64
}

// SlideshowSpec 幻灯片参数
type SlideshowSpec struct {
	Output
	Frames    []SlideFrame
	Fade      float64 // 每帧首尾淡入淡出时长
	AudioPath string  // 解说音频
	Duration  float64 // 总时长，等于音频时长
}

// ConcatSpec 片段合并参数
type ConcatSpec struct {
	Output
	Clips []string
}

// ProbeDuration 获取音视频时长（秒）
func (c *Client) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(output)
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbeDuration(output []byte) (float64, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}
	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}
	return duration, nil
}

// EncodeTitleCard 渲染标题帧：背景图缩放到输出分辨率，标题居中，附带静音音轨
func (c *Client) EncodeTitleCard(ctx context.Context, spec TitleCardSpec, outputPath string) error {
	if err := c.run(ctx, titleCardArgs(spec, outputPath)); err != nil {
		return fmt.Errorf("ffmpeg title card failed: %w", err)
	}

	log.Debug().
		Str("output", outputPath).
		Float64("duration", spec.Duration).
		Msg("标题帧渲染成功")
	return nil
}

// EncodeSlideshow 渲染幻灯片：逐帧缩放居中、淡入淡出、拼接并挂载解说音频
func (c *Client) EncodeSlideshow(ctx context.Context, spec SlideshowSpec, outputPath string) error {
	if len(spec.Frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if err := c.run(ctx, slideshowArgs(spec, outputPath)); err != nil {
		return fmt.Errorf("ffmpeg slideshow failed: %w", err)
	}

	log.Debug().
		Str("output", outputPath).
		Int("frames", len(spec.Frames)).
		Float64("duration", spec.Duration).
		Msg("幻灯片渲染成功")
	return nil
}

// ConcatClips 合并片段并统一重新编码
// 使用 concat demuxer（需要创建 concat list 文件）
func (c *Client) ConcatClips(ctx context.Context, spec ConcatSpec, outputPath string) error {
	if len(spec.Clips) == 0 {
		return fmt.Errorf("no clips to concat")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	listFile, err := os.CreateTemp(filepath.Dir(spec.Clips[0]), "concat_list_*.txt")
	if err != nil {
		return fmt.Errorf("create concat list file: %w", err)
	}
	defer os.Remove(listFile.Name())

	content, err := concatList(spec.Clips)
	if err != nil {
		listFile.Close()
		return err
	}
	if _, err := listFile.WriteString(content); err != nil {
		listFile.Close()
		return fmt.Errorf("write concat list: %w", err)
	}
	listFile.Close()

	if err := c.run(ctx, concatArgs(spec, listFile.Name(), outputPath)); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	log.Info().
		Int("count", len(spec.Clips)).
		Str("output", outputPath).
		Msg("视频合并成功")
	return nil
}

func (c *Client) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, tail(stderr.String(), 800))
	}
	return nil
}

func titleCardArgs(spec TitleCardSpec, outputPath string) []string {
	dur := seconds(spec.Duration)

	font := "font=" + quote(spec.FontName)
	if spec.FontFile != "" {
		font = "fontfile=" + quote(spec.FontFile)
	}
	drawtext := fmt.Sprintf(
		"drawtext=%s:textfile=%s:fontsize=%d:fontcolor=%s:line_spacing=12:x=(w-text_w)/2:y=(h-text_h)/2",
		font, quote(spec.TextFile), spec.FontSize, spec.FontColor,
	)
	filter := fmt.Sprintf("[0:v]scale=%d:%d,setsar=1,%s,fps=%d,format=yuv420p[v]",
		spec.Width, spec.Height, drawtext, spec.FPS)

	return []string{
		"-y",
		"-loop", "1",
		"-framerate", strconv.Itoa(spec.FPS),
		"-t", dur,
		"-i", spec.Background,
		"-f", "lavfi",
		"-t", dur,
		"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", audioSampleRate),
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", spec.videoCodec(),
		"-pix_fmt", "yuv420p",
		"-c:a", spec.audioCodec(),
		"-ar", strconv.Itoa(audioSampleRate),
		"-ac", strconv.Itoa(audioChannels),
		"-t", dur,
		outputPath,
	}
}

func slideshowArgs(spec SlideshowSpec, outputPath string) []string {
	args := []string{"-y"}
	for _, frame := range spec.Frames {
		args = append(args,
			"-loop", "1",
			"-framerate", strconv.Itoa(spec.FPS),
			"-t", seconds(frame.Duration),
			"-i", frame.Image,
		)
	}
	audioIndex := len(spec.Frames)
	args = append(args, "-i", spec.AudioPath)

	var filter strings.Builder
	for i, frame := range spec.Frames {
		// 按高度等比缩放，超宽裁剪，不足补黑边居中
		fmt.Fprintf(&filter,
			"[%d:v]scale=-2:%d,crop='min(iw,%d)':%d,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=yuv420p",
			i, spec.Height, spec.Width, spec.Height, spec.Width, spec.Height, spec.FPS)
		if fade := frameFade(spec.Fade, frame.Duration); fade > 0 {
			fmt.Fprintf(&filter, ",fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s",
				seconds(fade), seconds(frame.Duration-fade), seconds(fade))
		}
		fmt.Fprintf(&filter, "[f%d];", i)
	}
	for i := range spec.Frames {
		fmt.Fprintf(&filter, "[f%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=0[v]", len(spec.Frames))

	return append(args,
		"-filter_complex", filter.String(),
		"-map", "[v]",
		"-map", fmt.Sprintf("%d:a", audioIndex),
		"-c:v", spec.videoCodec(),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(spec.FPS),
		"-c:a", spec.audioCodec(),
		"-ar", strconv.Itoa(audioSampleRate),
		"-ac", strconv.Itoa(audioChannels),
		"-t", seconds(spec.Duration),
		outputPath,
	)
}

func concatArgs(spec ConcatSpec, listFile, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-r", strconv.Itoa(spec.FPS),
		"-c:v", spec.videoCodec(),
		"-pix_fmt", "yuv420p",
		"-c:a", spec.audioCodec(),
		"-movflags", "+faststart",
		outputPath,
	}
}

func concatList(clips []string) (string, error) {
	var b strings.Builder
	for _, clip := range clips {
		absPath, err := filepath.Abs(clip)
		if err != nil {
			return "", fmt.Errorf("get absolute path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(absPath, "'", `'\''`))
	}
	return b.String(), nil
}

// frameFade 淡入淡出时长不超过帧时长的一半
func frameFade(fade, frameDuration float64) float64 {
	if fade <= 0 {
		return 0
	}
	if fade*2 > frameDuration {
		return frameDuration / 2
	}
	return fade
}

// quote 对滤镜参数值加单引号，转义其中的单引号
func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
