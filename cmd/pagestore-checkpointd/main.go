// Command pagestore-checkpointd periodically opens a table file, forces its
// buffer pool's dirty pages to disk, and closes it again. Each tick is a
// complete open → flush → close cycle; ticks never overlap, so the table is
// never held open by more than one caller at a time — this tool is a
// maintenance process external to whatever single-threaded session is using
// the table between ticks, not a concurrent reader/writer of a live pool.
package main

import (
	"flag"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/coredbms/pagestore/internal/bufferpool"
	"github.com/coredbms/pagestore/internal/config"
	"github.com/coredbms/pagestore/internal/recordmgr"
)

func main() {
	tablePath := flag.String("table", "", "path to a table file")
	configPath := flag.String("config", "", "path to a pagestore YAML config (optional)")
	schedule := flag.String("cron", "@every 1m", "cron schedule for checkpoint ticks")
	flag.Parse()

	path := *tablePath
	poolSize := recordmgr.DefaultPoolPages
	strategyName := "LRU"

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("pagestore-checkpointd: %v", err)
		}
		if path == "" {
			path = cfg.PageFile
		}
		poolSize = cfg.PoolSize
		if cfg.Strategy != "" {
			strategyName = cfg.Strategy
		}
	}

	if path == "" {
		log.Fatalf("pagestore-checkpointd: -table is required (or set page_file in -config)")
	}

	strategy, err := config.Config{Strategy: strategyName}.StrategyValue()
	if err != nil {
		log.Fatalf("pagestore-checkpointd: %v", err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = c.AddFunc(*schedule, func() {
		checkpointOnce(path, poolSize, strategy)
	})
	if err != nil {
		log.Fatalf("pagestore-checkpointd: invalid schedule %q: %v", *schedule, err)
	}

	log.Printf("pagestore-checkpointd: checkpointing %q on schedule %q (pool %d frames, %s)",
		path, *schedule, poolSize, strategy)
	c.Run()
}

func checkpointOnce(path string, poolSize int, strategy bufferpool.Strategy) {
	tbl, err := recordmgr.OpenTableWithPool(path, poolSize, strategy)
	if err != nil {
		log.Printf("checkpoint: open %q: %v", path, err)
		return
	}
	defer func() {
		if err := recordmgr.CloseTable(tbl); err != nil {
			log.Printf("checkpoint: close %q: %v", path, err)
		}
	}()

	if err := tbl.Pool.ForceFlushPool(); err != nil {
		log.Printf("checkpoint: flush %q: %v", path, err)
		return
	}
	log.Printf("checkpoint: flushed %q pool %s (write IO total %d)", path, tbl.Pool.ID, tbl.Pool.GetNumWriteIO())
}
