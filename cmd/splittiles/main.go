// splittiles breaks the combined tile scene into one glTF file per tile.
//
// Every node referenced by the default scene gets its own copy of the source
// document, named after the node's mesh, with all node translations zeroed.
// Per-tile write errors are reported and skipped; anything else stops the
// run with a non-zero exit status.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/tilesplit/internal/config"
	"github.com/Faultbox/tilesplit/internal/logger"
	"github.com/Faultbox/tilesplit/internal/splitter"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote config: %s\n", path)
		return
	}

	if config.SaveConfigRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved config: %s\n", config.UserConfigPath())
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

// run executes one split and returns the process exit code.
func run(cfg *config.Config) int {
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	s := splitter.New(splitter.Config{
		SourcePath: cfg.Paths.Source,
		OutputDir:  cfg.Paths.OutputDir,
		Workers:    cfg.Export.Workers,
		Logger:     logger.Log,
	})

	res, err := s.Run(context.Background())
	if err != nil {
		logger.Error("split failed", zap.Error(err))
		return 1
	}

	if len(res.Failed) > 0 {
		logger.Warn("some tiles were not written",
			zap.Int("written", len(res.Written)),
			zap.Int("failed", len(res.Failed)))
	} else {
		logger.Info("split complete", zap.Int("tiles", len(res.Written)))
	}
	return 0
}
