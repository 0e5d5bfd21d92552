package providers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"docent/internal/config"
	"docent/internal/pkg/mediatools"
	"docent/internal/pkg/tts"
)

// ByteDanceTTSProvider 字节跳动 TTS 提供者（使用 pkg/tts 的 Client）
// 实现了 mediatools.TTSProvider 接口
type ByteDanceTTSProvider struct {
	client *tts.Client
}

// NewByteDanceTTSProvider 创建基于火山引擎 TTS 的提供者
func NewByteDanceTTSProvider(client *tts.Client) *ByteDanceTTSProvider {
	return &ByteDanceTTSProvider{
		client: client,
	}
}

// GenerateVoice 合成语音并写入 audioPath
func (p *ByteDanceTTSProvider) GenerateVoice(
	ctx context.Context,
	text string,
	audioPath string,
	speedRatio float64,
) (*mediatools.TTSResult, error) {
	if p.client == nil {
		return nil, fmt.Errorf("TTS client is required")
	}

	result, err := p.client.SynthesizeToFile(ctx, text, audioPath, speedRatio)
	if err != nil {
		return nil, err
	}

	return &mediatools.TTSResult{
		AudioPath: audioPath,
		Duration:  result.Duration,
	}, nil
}

// CommandRunner 执行外部命令
type CommandRunner func(ctx context.Context, name string, args ...string) error

// CommandTTSProvider 调用本地 TTS 命令行的提供者
//
// 支持：
//   - tts（Coqui TTS）: tts --text ... --model_name ... --out_path out.wav
//   - edge-tts: edge-tts --voice ... --text ... --write-media out.wav
//   - *.py 脚本: python3 script.py --text ... --output out.wav
//   - 其他可执行文件: cmd --text ... --output out.wav
type CommandTTSProvider struct {
	command  string
	model    string
	voice    string
	attempts int
	backoff  time.Duration
	run      CommandRunner
}

// NewCommandTTSProvider 根据配置创建命令行 TTS 提供者
func NewCommandTTSProvider(cfg *config.TTSConfig) *CommandTTSProvider {
	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		command = "tts"
	}
	return &CommandTTSProvider{
		command:  command,
		model:    cfg.Model,
		voice:    cfg.Voice,
		attempts: 3,
		backoff:  2 * time.Second,
		run:      runCommand,
	}
}

// WithRunner 替换命令执行器（用于测试）
func (p *CommandTTSProvider) WithRunner(run CommandRunner) *CommandTTSProvider {
	p.run = run
	p.backoff = 0
	return p
}

// GenerateVoice 合成语音并写入 audioPath，失败时最多重试 3 次
func (p *CommandTTSProvider) GenerateVoice(
	ctx context.Context,
	text string,
	audioPath string,
	speedRatio float64,
) (*mediatools.TTSResult, error) {
	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	name, args := p.commandLine(text, audioPath)

	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = p.run(ctx, name, args...); err == nil {
			return &mediatools.TTSResult{AudioPath: audioPath}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("command", name).Msg("TTS 命令执行失败")
		if attempt < p.attempts && p.backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * p.backoff):
			}
		}
	}
	return nil, fmt.Errorf("tts command %s failed after %d attempts: %w", name, p.attempts, err)
}

// commandLine 按命令类型组装参数
func (p *CommandTTSProvider) commandLine(text, audioPath string) (string, []string) {
	base := filepath.Base(p.command)
	switch {
	case base == "tts":
		args := []string{"--text", text, "--out_path", audioPath}
		if p.model != "" {
			args = append(args, "--model_name", p.model)
		}
		return p.command, args
	case base == "edge-tts":
		args := []string{"--text", text, "--write-media", audioPath}
		if p.voice != "" {
			args = append([]string{"--voice", p.voice}, args...)
		}
		return p.command, args
	case strings.HasSuffix(p.command, ".py"):
		return "python3", []string{p.command, "--text", text, "--output", audioPath}
	default:
		return p.command, []string{"--text", text, "--output", audioPath}
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
