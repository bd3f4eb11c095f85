package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ivlev/scenecast/internal/config"
	"github.com/ivlev/scenecast/internal/logging"
	"github.com/ivlev/scenecast/internal/playback"
	"github.com/ivlev/scenecast/internal/scene"
	"github.com/ivlev/scenecast/internal/system"
)

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// probeDurations fills in missing narration durations via ffprobe. The
// duration only matters when narration fails to start, so probe failures
// are logged and left at zero.
func probeDurations(scenes []scene.Scene, log *slog.Logger) {
	for i := range scenes {
		if scenes[i].AudioURL == "" {
			if scenes[i].AudioDuration > 0 {
				// Without narration the scene dwells on a fixed timer;
				// the stray duration is ignored.
				log.Warn("audio_duration set without audio",
					"scene", scenes[i].ID, "audio_duration", scenes[i].AudioDuration)
			}
			continue
		}
		if scenes[i].AudioDuration > 0 {
			continue
		}
		d, err := system.ProbeAudioDuration(scenes[i].AudioURL)
		if err != nil {
			log.Warn("audio duration probe failed", "scene", scenes[i].ID, "error", err)
			continue
		}
		scenes[i].AudioDuration = d
	}
}

// runProject is the shared body of the play and record commands.
func runProject(cmd *cobra.Command, projectPath string, configPath string, record bool) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	system.InitResourceLimits(log)

	proj, err := scene.ReadProject(projectPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.OutputDir, "scenecast.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scenecast instance is already running")
	}
	defer lock.Unlock()

	probeDurations(proj.Scenes, log)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	status := newStatusPrinter(cmd.OutOrStdout())
	if proj.Title != "" {
		status.Println(proj.Title)
	}
	if record {
		status.Println("recording")
	}

	player := playback.NewPlayer(cfg, log)
	result, err := player.Run(ctx, proj.Scenes, playback.Options{
		Record: record,
		OnScene: func(i, n int, sc scene.Scene) {
			status.Scene(i, n, sc)
		},
	})
	status.Done()
	if err != nil {
		return err
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		status.Println("stopped")
	} else {
		status.Println("finished")
	}
	if result.RecordingPath != "" {
		status.Println("saved " + result.RecordingPath)
	}
	return nil
}
