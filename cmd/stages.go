package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docent/internal/model/media"
	"docent/internal/pkg/id"
	"docent/internal/pkg/logger"
	mediasvc "docent/internal/service/media"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fetch reference sections and images for a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var scriptCmd = &cobra.Command{
	Use:   "script <sections.json>",
	Short: "Generate the narration script from a sections JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

var audioCmd = &cobra.Command{
	Use:   "audio <script.json>",
	Short: "Synthesize one wav file per script section",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudio,
}

var videoCmd = &cobra.Command{
	Use:   "video <script.json>",
	Short: "Assemble the final video from a script, its audio and the image pool",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideo,
}

var extractCmd = &cobra.Command{
	Use:   "extract <raw.txt>",
	Short: "Split a saved LLM reply into script sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(searchCmd, scriptCmd, audioCmd, videoCmd, extractCmd)

	videoCmd.Flags().StringP("query", "q", "", "only use images saved for this query")
	extractCmd.Flags().String("save", "", "write the extracted sections to this script JSON file")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	retrieval, err := newRetrievalService(cfg)
	if err != nil {
		return err
	}
	result, err := retrieval.Search(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sections: %s (%d)\nimages: %d/%d\n",
		result.SectionsPath, result.Sections.Len(), len(result.Images), cfg.Search.NumImages)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
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

	script, res, err := newScriptService(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	scriptPath, sections, err := script.Generate(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "script: %s (%d sections)\n", scriptPath, len(sections))
	return nil
}

func runAudio(cmd *cobra.Command, args []string) error {
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

	sections, err := media.LoadScript(args[0])
	if err != nil {
		return err
	}
	audio, err := newAudioService(cfg)
	if err != nil {
		return err
	}

	clips, err := audio.Synthesize(ctx, sections)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "audio: %d/%d sections in %s\n",
		len(clips), len(sections), cfg.ResolvePath(cfg.TTS.AudioDir))
	return nil
}

func runVideo(cmd *cobra.Command, args []string) error {
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
	logger.WithRun(runID)

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	videoPath, err := newVideoService(cfg).RenderScript(ctx, args[0], query, cfg.ResolvePath(cfg.Video.OutputFile))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "video: %s\n", videoPath)
	for _, url := range publisher.Publish(ctx, runID, videoPath, args[0]) {
		fmt.Fprintf(cmd.OutOrStdout(), "published: %s\n", url)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	sections, err := mediasvc.ExtractFile(args[0])
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := media.SaveScript(save, sections); err != nil {
			return err
		}
		log.Info().Str("path", save).Int("sections", len(sections)).Msg("script saved")
	}

	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, []string{s.ID, s.Title, fmt.Sprintf("%d", len([]rune(s.Content)))})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Title", "Chars"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}
