package media

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"docent/internal/model/media"
	"docent/internal/pkg/ffmpeg"
)

const defaultFPS = 30

// SlideshowPlan 幻灯片编排结果
type SlideshowPlan struct {
	Frames   []ffmpeg.SlideFrame
	Duration float64 // 总时长，等于音频时长
}

// PlanSlideshow 编排幻灯片
//
// 帧数为 ceil(audioDuration/interval)，至少 1 帧；每帧从图片池中有放回地随机选取；
// 除最后一帧外每帧时长为 interval，最后一帧补足剩余时长，总和等于 audioDuration。
// 剩余时长不足一个视频帧（1/fps）时并入前一帧
func PlanSlideshow(images []string, audioDuration, interval float64, fps int, rng *rand.Rand) (SlideshowPlan, error) {
	if len(images) == 0 {
		return SlideshowPlan{}, ErrNoImages
	}
	if audioDuration <= 0 {
		return SlideshowPlan{}, fmt.Errorf("invalid audio duration %.3f", audioDuration)
	}
	if interval <= 0 {
		return SlideshowPlan{}, fmt.Errorf("invalid image interval %.3f", interval)
	}

	if fps <= 0 {
		fps = defaultFPS
	}
	minFrame := 1 / float64(fps)

	count := int(math.Ceil(audioDuration / interval))
	if count < 1 {
		count = 1
	}
	if count > 1 && audioDuration-float64(count-1)*interval < minFrame {
		count--
	}

	frames := make([]ffmpeg.SlideFrame, count)
	for i := range frames {
		d := interval
		if i == count-1 {
			d = audioDuration - float64(count-1)*interval
		}
		frames[i] = ffmpeg.SlideFrame{
			Image:    images[rng.IntN(len(images))],
			Duration: d,
		}
	}
	return SlideshowPlan{Frames: frames, Duration: audioDuration}, nil
}

// SlideshowSynthesizer 幻灯片合成器
type SlideshowSynthesizer struct {
	encoder Encoder
	cfg     RenderConfig
	rng     *rand.Rand
}

// NewSlideshowSynthesizer 创建幻灯片合成器，rng 为 nil 时按当前时间播种
func NewSlideshowSynthesizer(encoder Encoder, cfg RenderConfig, rng *rand.Rand) *SlideshowSynthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &SlideshowSynthesizer{encoder: encoder, cfg: cfg, rng: rng}
}

// Synthesize 生成与解说音频等长的幻灯片片段
// audio.Duration 为 0 时通过 Encoder 探测
func (s *SlideshowSynthesizer) Synthesize(ctx context.Context, images []media.ImageRecord, audio media.AudioClip, outputPath string) (media.Clip, error) {
	if len(images) == 0 {
		return media.Clip{}, ErrNoImages
	}

	duration := audio.Duration
	if duration <= 0 {
		probed, err := s.encoder.ProbeDuration(ctx, audio.Path)
		if err != nil {
			return media.Clip{}, fmt.Errorf("probe audio %s: %w", audio.Path, err)
		}
		duration = probed
	}

	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.Path
	}

	plan, err := PlanSlideshow(paths, duration, s.cfg.ImageInterval, s.cfg.FPS, s.rng)
	if err != nil {
		return media.Clip{}, err
	}

	spec := ffmpeg.SlideshowSpec{
		Output:    s.cfg.output(),
		Frames:    plan.Frames,
		Fade:      s.cfg.FadeDuration,
		AudioPath: audio.Path,
		Duration:  plan.Duration,
	}
	if err := s.encoder.EncodeSlideshow(ctx, spec, outputPath); err != nil {
		return media.Clip{}, err
	}

	return media.Clip{Path: outputPath, Duration: plan.Duration}, nil
}
