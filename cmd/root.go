package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"livephoto-audio/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

// OutputWriter is where commands print user-facing progress
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the output writer used in production
var DefaultOutput OutputWriter = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "livephoto-audio",
	Short: "Extract, clean, play and export audio from photos, videos and Live Photos",
	Long: `livephoto-audio pulls the audio track out of a video or a Live Photo and
lets you work with it:

  - Extract the audio track through ffmpeg
  - Clean it with a speech-oriented filter chain
  - Play it back with ffplay
  - Export it to the downloads directory or share it through Google Drive

Example:
  livephoto-audio session
  livephoto-audio extract-audio --source IMG_0042.MOV --clean`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	cfg, cfgErr = config.Load(cfgFile)
	if errors.Is(cfgErr, fs.ErrNotExist) {
		// Every setting has a default, so a missing file is not an error
		cfg, cfgErr = config.Default(), nil
	}
	if cfgErr != nil {
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or the reason it is missing
func requireConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded; run setup to create %s", config.DefaultPath)
	}
	return cfg, nil
}
