package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"livephoto-audio/infrastructure/config"
	"livephoto-audio/infrastructure/platform"
	"livephoto-audio/infrastructure/prompt"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up where audio is written, how
exports leave the app, and the optional Google Drive and transcription
settings. Anything you skip keeps its default.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter prompt.Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return cancelled(err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to livephoto-audio setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	steps := []func(prompt.Prompter, *config.Config) error{
		promptPaths,
		promptAudio,
		promptExport,
		promptPlatform,
		promptTranscription,
	}
	for _, step := range steps {
		if err := step(prompter, cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func cancelled(err error) error {
	return fmt.Errorf("prompt cancelled: %w", err)
}

func promptPaths(prompter prompt.Prompter, cfg *config.Config) error {
	audioDir, err := prompter.Input("Where should extracted audio go? (empty: next to the video)", cfg.Paths.AudioDirectory)
	if err != nil {
		return cancelled(err)
	}
	cfg.Paths.AudioDirectory = audioDir

	downloads, err := prompter.Input("Where should exported copies go? (empty: your Downloads folder)", cfg.Paths.DownloadsDirectory)
	if err != nil {
		return cancelled(err)
	}
	cfg.Paths.DownloadsDirectory = downloads
	return nil
}

func promptAudio(prompter prompt.Prompter, cfg *config.Config) error {
	bitrate, err := prompter.Input("Audio bitrate?", cfg.Audio.Bitrate)
	if err != nil {
		return cancelled(err)
	}
	if bitrate != "" {
		cfg.Audio.Bitrate = bitrate
	}
	return nil
}

func promptExport(prompter prompt.Prompter, cfg *config.Config) error {
	useDrive, err := prompter.Confirm("Share exports through Google Drive?", false)
	if err != nil {
		return cancelled(err)
	}
	if !useDrive {
		cfg.Export.Method = config.ExportDownloads
		return nil
	}

	credentials, err := prompter.Input("Path to Google OAuth credentials file?", "credentials.json")
	if err != nil {
		return cancelled(err)
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID for shared audio?", "")
	if err != nil {
		return cancelled(err)
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	confirm, err := prompter.Confirm("Ask before each upload?", true)
	if err != nil {
		return cancelled(err)
	}
	cfg.Export.Method = config.ExportShare
	cfg.Export.ConfirmShare = &confirm
	return nil
}

func promptPlatform(prompter prompt.Prompter, cfg *config.Config) error {
	mode, err := prompter.Select("Live Photo support?",
		[]string{platform.LivePhotoAuto, platform.LivePhotoEnabled, platform.LivePhotoDisabled},
		platform.LivePhotoAuto)
	if err != nil {
		return cancelled(err)
	}
	cfg.Platform.LivePhoto = mode
	return nil
}

func promptTranscription(prompter prompt.Prompter, cfg *config.Config) error {
	command, err := prompter.Input("Transcription command? (empty to disable)", "")
	if err != nil {
		return cancelled(err)
	}
	cfg.Transcription.Command = command
	return nil
}
