package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"docent/internal/ai/component"
	"docent/internal/config"
	"docent/internal/pkg/ark"
	"docent/internal/pkg/cache"
	"docent/internal/pkg/ffmpeg"
	"docent/internal/pkg/imagesearch"
	"docent/internal/pkg/mediatools"
	"docent/internal/pkg/mediatools/providers"
	"docent/internal/pkg/storagefactory"
	"docent/internal/pkg/tts"
	"docent/internal/pkg/wiki"
	"docent/internal/service/media"
)

// closers 收集需要在命令结束时释放的资源
type closers []io.Closer

func (c closers) Close() {
	for _, closer := range c {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to release resource")
		}
	}
}

func newRetrievalService(cfg *config.Config) (*media.RetrievalService, error) {
	if cfg.Search.Provider != "duckduckgo" && cfg.Search.Provider != "" {
		return nil, fmt.Errorf("unsupported image search provider: %s", cfg.Search.Provider)
	}

	source := wiki.NewClient(wiki.Config{
		Language:  cfg.Search.Language,
		UserAgent: cfg.Search.UserAgent,
	})
	searcher := imagesearch.NewDuckDuckGo(imagesearch.Config{
		UserAgent: cfg.Search.UserAgent,
	})
	acquirer := media.NewAcquirer(searcher, cfg.ResolvePath(cfg.Search.ImageDir), cfg.Search.FetchTimeout, cfg.Search.UserAgent)

	return media.NewRetrievalService(source, acquirer, media.RetrievalOptions{
		TextDir:     cfg.ResolvePath(cfg.Search.TextDir),
		NumImages:   cfg.Search.NumImages,
		BatchSize:   cfg.Search.BatchSize,
		MaxAttempts: cfg.Search.MaxAttempts,
	}), nil
}

// newLLMProvider ark-sdk 直接使用 volcengine sdk，其余 provider 走 eino ChatModel
func newLLMProvider(ctx context.Context, cfg *config.AIConfig) (mediatools.LLMProvider, error) {
	if cfg.Provider == "ark-sdk" {
		client, err := ark.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("create ark client: %w", err)
		}
		return providers.NewArkProvider(client), nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return providers.NewEinoProvider(chatModel), nil
}

func newScriptService(ctx context.Context, cfg *config.Config) (*media.ScriptService, closers, error) {
	llm, err := newLLMProvider(ctx, &cfg.AI)
	if err != nil {
		return nil, nil, err
	}

	var (
		responseCache mediatools.ResponseCache
		res           closers
	)
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Cache)
		if err != nil {
			// 缓存不可用不影响生成
			log.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("redis cache unavailable, continuing without cache")
		} else {
			responseCache = redisCache
			res = append(res, redisCache)
		}
	}

	return media.NewScriptService(mediatools.NewScriptGenerator(llm, responseCache)), res, nil
}

func newTTSProvider(cfg *config.TTSConfig) (mediatools.TTSProvider, error) {
	switch cfg.Provider {
	case "bytedance":
		client, err := tts.NewClient(tts.Config{
			AccessToken: cfg.AccessToken,
			AppID:       cfg.AppID,
			Cluster:     cfg.Cluster,
			VoiceType:   cfg.VoiceType,
			SampleRate:  cfg.SampleRate,
		})
		if err != nil {
			return nil, fmt.Errorf("create tts client: %w", err)
		}
		return providers.NewByteDanceTTSProvider(client), nil
	case "command", "":
		return providers.NewCommandTTSProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", cfg.Provider)
	}
}

func newAudioService(cfg *config.Config) (*media.AudioService, error) {
	provider, err := newTTSProvider(&cfg.TTS)
	if err != nil {
		return nil, err
	}
	return media.NewAudioService(provider, cfg.ResolvePath(cfg.TTS.AudioDir), cfg.TTS.SpeedRatio), nil
}

func newVideoService(cfg *config.Config) *media.VideoService {
	encoder := ffmpeg.NewClient()
	renderCfg := media.RenderConfigFrom(&cfg.Video)

	titles := media.NewTitleCardRenderer(encoder, renderCfg, nil)
	slides := media.NewSlideshowSynthesizer(encoder, renderCfg, nil)
	assembler := media.NewAssembler(encoder, renderCfg, titles, slides)

	return media.NewVideoService(assembler,
		media.DirAudioLocator{Dir: cfg.ResolvePath(cfg.TTS.AudioDir)},
		cfg.ResolvePath(cfg.Search.ImageDir))
}

func newPublisher(ctx context.Context, cfg *config.Config) (*media.Publisher, error) {
	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	return media.NewPublisher(store), nil
}

// newPipeline 组装完整流程
func newPipeline(ctx context.Context, cfg *config.Config) (*media.Pipeline, closers, error) {
	retrieval, err := newRetrievalService(cfg)
	if err != nil {
		return nil, nil, err
	}
	script, res, err := newScriptService(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	audio, err := newAudioService(cfg)
	if err != nil {
		res.Close()
		return nil, nil, err
	}
	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		res.Close()
		return nil, nil, err
	}

	return &media.Pipeline{
		Retrieval: retrieval,
		Script:    script,
		Audio:     audio,
		Video:     newVideoService(cfg),
		Publisher: publisher,
	}, res, nil
}
