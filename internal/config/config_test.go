package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coredbms/pagestore/internal/bufferpool"
)

func TestLoadDefaultsAndStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagestore.yaml")
	body := "page_file: data.tbl\nstrategy: CLOCK\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageFile != "data.tbl" {
		t.Fatalf("PageFile = %q, want data.tbl", cfg.PageFile)
	}
	if cfg.PoolSize != defaultPoolSize {
		t.Fatalf("PoolSize = %d, want default %d", cfg.PoolSize, defaultPoolSize)
	}

	strat, err := cfg.StrategyValue()
	if err != nil {
		t.Fatalf("StrategyValue: %v", err)
	}
	if strat != bufferpool.CLOCK {
		t.Fatalf("StrategyValue = %v, want CLOCK", strat)
	}
}

func TestStrategyValueRejectsUnknown(t *testing.T) {
	cfg := Config{Strategy: "MRU"}
	if _, err := cfg.StrategyValue(); err == nil {
		t.Fatalf("StrategyValue accepted unknown strategy")
	}
}
