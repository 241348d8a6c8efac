// Package cli implements the command-line interface for aiedit.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chenyangcun/aiedit/internal/blobstore"
	"github.com/chenyangcun/aiedit/internal/config"
	"github.com/chenyangcun/aiedit/internal/editor"
	"github.com/chenyangcun/aiedit/internal/gemini"
	"github.com/chenyangcun/aiedit/internal/metastore"
	"github.com/chenyangcun/aiedit/internal/persist"
	"github.com/chenyangcun/aiedit/internal/session"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config   *config.Config
	Blobs    blobstore.Store
	Meta     metastore.Store
	State    *session.State
	Pipeline *persist.Pipeline
	Saver    *persist.AutoSaver
	Editor   *editor.Editor
	Logger   *slog.Logger
}

// Close flushes any pending save and releases resources
func (c *cmdContext) Close() {
	if c.Saver != nil {
		c.Saver.Flush()
		c.Saver.Stop()
	}
	if c.Blobs != nil {
		c.Blobs.Close()
	}
	if c.Meta != nil {
		c.Meta.Close()
	}
}

// initContext opens the workspace stores and rehydrates the session
// state. Commands that never call the model backend use this.
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	var blobs blobstore.Store
	switch cfg.Storage {
	case config.StorageFS:
		blobs, err = blobstore.NewFSStore(cfg.BlobsDirPath())
	default:
		blobs, err = blobstore.NewSQLiteStore(cfg.BlobsPath())
	}
	if err != nil {
		exitError("failed to open blob store: %v", err)
	}

	meta, err := metastore.NewBboltStore(cfg.MetaPath())
	if err != nil {
		blobs.Close()
		exitError("failed to open metadata store: %v", err)
	}

	pipeline := persist.NewPipeline(blobs, meta, logger)
	state := session.New()
	state.Restore(pipeline.Load(context.Background()))

	delay := time.Duration(cfg.DebounceMS) * time.Millisecond
	saver := persist.NewAutoSaver(state, pipeline, delay, logger)

	return &cmdContext{
		Config:   cfg,
		Blobs:    blobs,
		Meta:     meta,
		State:    state,
		Pipeline: pipeline,
		Saver:    saver,
		Editor:   editor.New(state, nil, logger),
		Logger:   logger,
	}
}

// initFullContext additionally wires the Gemini client for commands
// that call the model backend.
func initFullContext() *cmdContext {
	c := initContext()

	client, err := gemini.NewClient(context.Background(), gemini.Options{
		APIKey:     c.Config.APIKey(),
		EditModel:  c.Config.EditModel,
		ImageModel: c.Config.ImageModel,
		VideoModel: c.Config.VideoModel,
	})
	if err != nil {
		c.Close()
		if err == gemini.ErrMissingAPIKey {
			exitError("no API key found; set %s", c.Config.APIKeyEnv)
		}
		exitError("failed to create model client: %v", err)
	}

	c.Editor = editor.New(c.State, client, c.Logger)
	return c
}

func logLevel() slog.Level {
	if os.Getenv("AIEDIT_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

var rootCmd = &cobra.Command{
	Use:   "aiedit",
	Short: "AI image editing workspace",
	Long: `aiedit is a CLI image editor with per-image version history.
Import images, apply AI edits and pixel transforms, branch the history
with a movable cursor, and share work as self-contained draft files.
The workspace persists between invocations in a .aiedit directory.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(refCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(flipCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(cropCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(gcCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// shortID returns first 12 characters of an ID
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
