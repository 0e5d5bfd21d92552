package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"docent/internal/pkg/ffmpeg"
	"docent/internal/pkg/mediatools"
)

// fakeEncoder 记录调用并写出空文件，不依赖 ffmpeg
type fakeEncoder struct {
	mu         sync.Mutex
	durations  map[string]float64 // 音频路径 -> 时长
	titles     []ffmpeg.TitleCardSpec
	titleTexts []string
	slideshows []ffmpeg.SlideshowSpec
	concats    []ffmpeg.ConcatSpec
	outputs    []string
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{durations: map[string]float64{}}
}

func (f *fakeEncoder) ProbeDuration(_ context.Context, path string) (float64, error) {
	if d, ok := f.durations[path]; ok {
		return d, nil
	}
	return 0, errors.New("unknown audio " + path)
}

func (f *fakeEncoder) EncodeTitleCard(_ context.Context, spec ffmpeg.TitleCardSpec, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, _ := os.ReadFile(spec.TextFile)
	f.titles = append(f.titles, spec)
	f.titleTexts = append(f.titleTexts, string(text))
	f.outputs = append(f.outputs, filepath.Base(outputPath))
	return os.WriteFile(outputPath, nil, 0644)
}

func (f *fakeEncoder) EncodeSlideshow(_ context.Context, spec ffmpeg.SlideshowSpec, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slideshows = append(f.slideshows, spec)
	f.outputs = append(f.outputs, filepath.Base(outputPath))
	return os.WriteFile(outputPath, nil, 0644)
}

func (f *fakeEncoder) ConcatClips(_ context.Context, spec ffmpeg.ConcatSpec, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, clip := range spec.Clips {
		if _, err := os.Stat(clip); err != nil {
			return err
		}
	}
	f.concats = append(f.concats, spec)
	return os.WriteFile(outputPath, []byte("video"), 0644)
}

// fakeSearcher 用函数字段模拟图片搜索
type fakeSearcher struct {
	calls      int
	searchFunc func(ctx context.Context, query string, maxResults int) ([]string, error)
}

func (f *fakeSearcher) SearchImages(ctx context.Context, query string, maxResults int) ([]string, error) {
	f.calls++
	return f.searchFunc(ctx, query, maxResults)
}

// fakeTTS 写出非空 wav 占位文件
type fakeTTS struct {
	calls []string
	err   error
}

func (f *fakeTTS) GenerateVoice(_ context.Context, text, audioPath string, _ float64) (*mediatools.TTSResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, text)
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0644); err != nil {
		return nil, err
	}
	return &mediatools.TTSResult{AudioPath: audioPath, Duration: 5}, nil
}

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testRenderConfig(background string) RenderConfig {
	return RenderConfig{
		Width:           1280,
		Height:          720,
		FPS:             30,
		ImageInterval:   4,
		TitleDuration:   2,
		FadeDuration:    0.5,
		TitleBackground: background,
		TitleFontName:   "SimHei",
		TitleFontSize:   70,
		TitleColor:      "black",
		TitleMaxChars:   16,
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
	}
}
