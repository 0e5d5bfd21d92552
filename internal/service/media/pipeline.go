package media

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StageReport 单个阶段的执行摘要
type StageReport struct {
	Stage    string
	Artifact string
	Count    int
	Elapsed  time.Duration
}

// RunReport 一次完整运行的摘要
type RunReport struct {
	RunID     string
	Query     string
	Stages    []StageReport
	VideoPath string
	Published []string
}

// Pipeline 顺序执行 检索 -> 解说词 -> 语音 -> 视频
type Pipeline struct {
	Retrieval *RetrievalService
	Script    *ScriptService
	Audio     *AudioService
	Video     *VideoService
	Publisher *Publisher
}

// Run 执行完整流程，任一阶段失败即返回
func (p *Pipeline) Run(ctx context.Context, runID, query, outputPath string) (*RunReport, error) {
	report := &RunReport{RunID: runID, Query: query}
	logger := log.With().Str("query", query).Logger()

	start := time.Now()
	found, err := p.Retrieval.Search(ctx, query)
	if err != nil {
		return report, fmt.Errorf("search stage: %w", err)
	}
	report.Stages = append(report.Stages, StageReport{
		Stage: "search", Artifact: found.SectionsPath, Count: len(found.Images), Elapsed: time.Since(start),
	})
	logger.Info().Str("stage", "search").Dur("elapsed", time.Since(start)).Msg("阶段完成")

	start = time.Now()
	scriptPath, sections, err := p.Script.Generate(ctx, found.SectionsPath)
	if err != nil {
		return report, fmt.Errorf("script stage: %w", err)
	}
	report.Stages = append(report.Stages, StageReport{
		Stage: "script", Artifact: scriptPath, Count: len(sections), Elapsed: time.Since(start),
	})
	logger.Info().Str("stage", "script").Int("sections", len(sections)).Msg("阶段完成")

	start = time.Now()
	clips, err := p.Audio.Synthesize(ctx, sections)
	if err != nil {
		return report, fmt.Errorf("audio stage: %w", err)
	}
	report.Stages = append(report.Stages, StageReport{
		Stage: "audio", Artifact: p.Audio.dir, Count: len(clips), Elapsed: time.Since(start),
	})
	logger.Info().Str("stage", "audio").Int("clips", len(clips)).Msg("阶段完成")

	start = time.Now()
	videoPath, err := p.Video.Render(ctx, sections, found.Images, query, outputPath)
	if err != nil {
		return report, fmt.Errorf("video stage: %w", err)
	}
	report.VideoPath = videoPath
	report.Stages = append(report.Stages, StageReport{
		Stage: "video", Artifact: videoPath, Count: 1, Elapsed: time.Since(start),
	})
	logger.Info().Str("stage", "video").Str("output", videoPath).Msg("阶段完成")

	report.Published = p.Publisher.Publish(ctx, runID, videoPath, scriptPath)
	return report, nil
}
