package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docent/internal/config"
	"docent/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Docent - narrated museum video generator",
	Long: `Docent turns a topic into a narrated slideshow video.
It retrieves reference text and images, asks an LLM for a museum-docent
script, synthesizes speech per section and assembles the final video with ffmpeg.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "output", "directory for all generated artifacts")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// .env 中的变量不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.docent")
	}

	// 环境变量设置
	viper.SetEnvPrefix("DOCENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

// setDefaults 与 config.Default() 保持一致
func setDefaults() {
	d := config.Default()

	viper.SetDefault("output_dir", d.OutputDir)

	// Log
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("log.output", d.Log.Output)
	viper.SetDefault("log.time_format", d.Log.TimeFormat)

	// Search
	viper.SetDefault("search.provider", d.Search.Provider)
	viper.SetDefault("search.language", d.Search.Language)
	viper.SetDefault("search.user_agent", d.Search.UserAgent)
	viper.SetDefault("search.text_dir", d.Search.TextDir)
	viper.SetDefault("search.image_dir", d.Search.ImageDir)
	viper.SetDefault("search.num_images", d.Search.NumImages)
	viper.SetDefault("search.batch_size", d.Search.BatchSize)
	viper.SetDefault("search.max_attempts", d.Search.MaxAttempts)
	viper.SetDefault("search.fetch_timeout", d.Search.FetchTimeout)

	// AI
	viper.SetDefault("ai.provider", d.AI.Provider)
	viper.SetDefault("ai.model", d.AI.Model)
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.options.temperature", d.AI.Options.Temperature)
	viper.SetDefault("ai.options.max_tokens", d.AI.Options.MaxTokens)
	viper.SetDefault("ai.options.top_p", d.AI.Options.TopP)

	// TTS
	viper.SetDefault("tts.provider", d.TTS.Provider)
	viper.SetDefault("tts.command", d.TTS.Command)
	viper.SetDefault("tts.model", d.TTS.Model)
	viper.SetDefault("tts.voice", d.TTS.Voice)
	viper.SetDefault("tts.access_token", "")
	viper.SetDefault("tts.app_id", "")
	viper.SetDefault("tts.cluster", d.TTS.Cluster)
	viper.SetDefault("tts.voice_type", d.TTS.VoiceType)
	viper.SetDefault("tts.sample_rate", d.TTS.SampleRate)
	viper.SetDefault("tts.speed_ratio", d.TTS.SpeedRatio)
	viper.SetDefault("tts.audio_dir", d.TTS.AudioDir)

	// Video
	viper.SetDefault("video.fps", d.Video.FPS)
	viper.SetDefault("video.width", d.Video.Width)
	viper.SetDefault("video.height", d.Video.Height)
	viper.SetDefault("video.image_interval", d.Video.ImageInterval)
	viper.SetDefault("video.title_duration", d.Video.TitleDuration)
	viper.SetDefault("video.fade_duration", d.Video.FadeDuration)
	viper.SetDefault("video.title_background", d.Video.TitleBackground)
	viper.SetDefault("video.title_font", "")
	viper.SetDefault("video.title_font_name", d.Video.TitleFontName)
	viper.SetDefault("video.title_font_size", d.Video.TitleFontSize)
	viper.SetDefault("video.title_color", d.Video.TitleColor)
	viper.SetDefault("video.title_max_chars", d.Video.TitleMaxChars)
	viper.SetDefault("video.video_codec", d.Video.VideoCodec)
	viper.SetDefault("video.audio_codec", d.Video.AudioCodec)
	viper.SetDefault("video.output_file", d.Video.OutputFile)

	// Storage
	viper.SetDefault("storage.type", d.Storage.Type)

	// Redis
	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.addr", d.Cache.Addr)
	viper.SetDefault("cache.db", d.Cache.DB)
	viper.SetDefault("cache.ttl", d.Cache.TTL)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}

// validConfig 返回校验通过的全局配置
func validConfig() (*config.Config, error) {
	c := GetConfig()
	if c == nil {
		return nil, errors.New("configuration not loaded")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
