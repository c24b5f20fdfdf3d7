package cmd

import (
	"context"
	"fmt"
	"io"

	"livephoto-audio/application/acquisition"
	appdistribution "livephoto-audio/application/distribution"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/infrastructure/config"
	"livephoto-audio/infrastructure/drive"
	"livephoto-audio/infrastructure/ffmpeg"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/history"
	"livephoto-audio/infrastructure/imaging"
	"livephoto-audio/infrastructure/logging"
	"livephoto-audio/infrastructure/platform"
	"livephoto-audio/infrastructure/player"
	"livephoto-audio/infrastructure/prompt"

	"github.com/sirupsen/logrus"
)

// DefaultPrompter is the prompter used in production
var DefaultPrompter prompt.Prompter = prompt.NewSurveyPrompter()

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}

func newEngine(cfg *config.Config, logger logrus.FieldLogger) *ffmpeg.Engine {
	loudnorm := cfg.Cleaning.Loudnorm == nil || *cfg.Cleaning.Loudnorm

	return ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
		ffmpeg.WithOutputDir(filesystem.ExpandHome(cfg.Paths.AudioDirectory)),
		ffmpeg.WithAudioSettings(ffmpeg.AudioSettings{
			Format:     cfg.Audio.Format,
			Codec:      cfg.Audio.Codec,
			Bitrate:    cfg.Audio.Bitrate,
			SampleRate: cfg.Audio.SampleRate,
		}),
		ffmpeg.WithCleaningSettings(ffmpeg.CleaningSettings{
			HighpassHz:   cfg.Cleaning.HighpassHz,
			LowpassHz:    cfg.Cleaning.LowpassHz,
			NoiseFloorDB: cfg.Cleaning.NoiseFloorDB,
			Loudnorm:     loudnorm,
		}),
		ffmpeg.WithTranscriber(cfg.Transcription.Command, cfg.Transcription.Args...),
		ffmpeg.WithLogger(logger),
	)
}

func newPlayerProvider(cfg *config.Config, logger logrus.FieldLogger) *player.Provider {
	return player.NewProvider(
		player.WithFFplayPath(cfg.FFmpeg.FFplayPath),
		player.WithLogger(logger),
	)
}

func newGateway(cfg *config.Config, prompter prompt.Prompter, prober prompt.MetadataProber, logger logrus.FieldLogger) *acquisition.Gateway {
	caps := platform.NewDetector().Detect(cfg)
	picker := prompt.NewPicker(prompter, prober, prompt.WithDimensionReader(imaging.NewReader()))

	return acquisition.NewGateway(
		prompt.NewPermissionProvider(prompter),
		picker,
		acquisition.WithLivePhotoSupport(caps.LivePhoto),
		acquisition.WithLogger(logger),
	)
}

// newExportService builds the export service for cfg. The returned func
// closes the export ledger.
func newExportService(ctx context.Context, cfg *config.Config, prompter prompt.Prompter, output io.Writer, logger logrus.FieldLogger) (*appdistribution.ExportService, func(), error) {
	downloads, err := filesystem.DownloadsDir(cfg.Paths.DownloadsDirectory)
	if err != nil {
		return nil, nil, err
	}

	opts := []appdistribution.ExportOption{appdistribution.WithLogger(logger)}

	if platform.NewDetector().Detect(cfg).Share {
		client, err := drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
			CredentialsFile: filesystem.ExpandHome(cfg.Google.CredentialsFile),
			TokenFile:       filesystem.ExpandHome(cfg.Google.TokenFile),
			Output:          output,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Drive client: %w", err)
		}

		var sharer distribution.Sharer = appdistribution.NewDriveSharer(client, cfg.Google.FolderID, output)
		if cfg.Export.ConfirmShare == nil || *cfg.Export.ConfirmShare {
			sharer = prompt.NewConfirmingSharer(prompter, sharer, "Google Drive")
		}
		opts = append(opts, appdistribution.WithSharer(sharer))
	}

	closeLedger := func() {}
	ledger, err := history.Open(filesystem.ExpandHome(cfg.History.Database), history.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Warn("export history unavailable")
	} else {
		opts = append(opts, appdistribution.WithLedger(ledger))
		closeLedger = func() {
			if err := ledger.Close(); err != nil {
				logger.WithError(err).Debug("failed to close export history")
			}
		}
	}

	svc := appdistribution.NewExportService(filesystem.NewCopier(), filesystem.NewChecker(), downloads, opts...)
	return svc, closeLedger, nil
}
