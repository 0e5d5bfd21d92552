package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docent/internal/pkg/id"
	"docent/internal/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run all stages: search, script, audio and video",
	Long: `Run the full pipeline for a topic: fetch Wikipedia sections and images,
generate a museum-docent script, synthesize speech per section and assemble
the final video.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.IntP("num-images", "n", 15, "number of images to acquire")
	flags.String("output-file", "final_video.mp4", "final video file (relative to output dir)")
	flags.String("ai-provider", "openai", "AI provider (openai/azure/ark/ark-sdk)")
	flags.String("ai-model", "qwen2.5:3b", "AI model name")
	flags.String("tts-provider", "command", "TTS provider (command/bytedance)")

	_ = viper.BindPFlag("search.num_images", flags.Lookup("num-images"))
	_ = viper.BindPFlag("video.output_file", flags.Lookup("output-file"))
	_ = viper.BindPFlag("ai.provider", flags.Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", flags.Lookup("ai-model"))
	_ = viper.BindPFlag("tts.provider", flags.Lookup("tts-provider"))
}

// signalContext 收到 SIGINT/SIGTERM 时取消
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := validConfig()
	if err != nil {
		return err
	}

	unlock, err := acquireLock(cfg)
	if err != nil {
		return err
	}
	defer unlock()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	runID := id.NewRunID()
	runLog := logger.WithRun(runID)

	pipeline, res, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	query := args[0]
	runLog.Info().Str("query", query).Str("output_dir", cfg.OutputDir).Msg("starting run")

	report, err := pipeline.Run(ctx, runID, query, cfg.ResolvePath(cfg.Video.OutputFile))
	if report != nil && len(report.Stages) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "video: %s\n", report.VideoPath)
	for _, url := range report.Published {
		fmt.Fprintf(cmd.OutOrStdout(), "published: %s\n", url)
	}
	log.Info().Str("video", report.VideoPath).Msg("run finished")
	return nil
}
