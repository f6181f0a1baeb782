package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serkm/effekt/internal/config"
	"github.com/serkm/effekt/internal/rts"
	"github.com/serkm/effekt/internal/trace"
)

// setup holds the per-invocation configuration assembled from
// runtime.toml and flags.
type setup struct {
	cfg    config.Config
	tracer trace.Tracer
}

// loadSetup resolves config file and flag overrides, and applies the
// runtime reservations.
func loadSetup(cmd *cobra.Command) (*setup, error) {
	setupColor(cmd)

	var cfg config.Config
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		loaded, _, err := config.Load(".")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagLevel, _ := cmd.Root().PersistentFlags().GetString("trace"); flagLevel != "" {
		cfg.Trace.Level = flagLevel
	}
	level, err := trace.ParseLevel(cfg.Trace.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace config: %w", err)
	}

	rts.SetSegmentSlots(cfg.Runtime.SegmentSlots)
	rts.SetArenaCells(cfg.Runtime.ArenaCells)

	return &setup{
		cfg:    cfg,
		tracer: trace.New(trace.Config{Level: level, Mode: trace.ModeStream, Output: os.Stderr}),
	}, nil
}
