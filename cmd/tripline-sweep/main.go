package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tripline/internal/core/signal"
	"tripline/internal/modkit"
	"tripline/internal/modkit/module"
	"tripline/internal/modkit/repokit"
	"tripline/internal/platform/config"
	"tripline/internal/platform/logger"
	"tripline/internal/platform/store"

	histmod "tripline/internal/services/history/module"
	incmod "tripline/internal/services/incidents/module"
	patmod "tripline/internal/services/patterns/module"
	sweepmod "tripline/internal/services/sweep/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		dormancyDays = flag.Int("dormancy-days", 0, "minimum silent days before an actor counts as dormant (overrides CORE_SWEEP_DORMANCY_DAYS)")
		asOfStr      = flag.String("as-of", "", "evaluate as of this RFC3339 time instead of now (for deterministic re-runs)")
		dryRun       = flag.Bool("dry-run", false, "detect but do not write patterns")
	)
	flag.Parse()

	now := time.Now().UTC()
	if *asOfStr != "" {
		t, err := time.Parse(time.RFC3339, *asOfStr)
		if err != nil {
			log.Fatalf("bad -as-of: %v", err)
		}
		now = t.UTC()
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	chURL := chCfg.MayString("DBURL", "")

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
			Role:    "sweep",
		},
	}, store.WithLogger(*l))
	if err != nil {
		// total inability to reach the stores is the one non-zero exit
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// the pattern store must answer before we do any work; the archive seam
	// stays best-effort and is not guarded here
	if p, ok := st.PG.(store.Pinger); ok {
		repokit.MustPing(context.Background(), "pg", p)
	}

	// Pass explicitly-set CLI flags into CORE_SWEEP_* so the module can read
	// its own config; unset flags leave the environment values in charge
	if *dormancyDays > 0 {
		mustSetEnv("CORE_SWEEP_DORMANCY_DAYS", strconv.Itoa(*dormancyDays))
	}
	if *dryRun {
		mustSetEnv("CORE_SWEEP_DRY_RUN", "1")
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Build dependency modules first
	im := incmod.New(deps)
	pm := patmod.New(deps)
	hm := histmod.New(deps)

	sm := sweepmod.New(
		deps,
		sweepmod.Options{
			DormancyDays: *dormancyDays,
			DryRun:       *dryRun,
		},
		modkit.WithPorts(sweepmod.PortsIn{
			Incidents: module.MustPortsOf[incmod.Ports](im).Reader,
			Patterns:  module.MustPortsOf[patmod.Ports](pm).Writer,
			Archiver:  module.MustPortsOf[histmod.Ports](hm).Archiver,
		}),
	)

	// Register ports
	module.Register(im.Name(), im.Ports())
	module.Register(pm.Name(), pm.Ports())
	module.Register(hm.Name(), hm.Ports())
	module.Register(sm.Name(), sm.Ports())

	runID := uuid.NewString()
	ctx := logger.WithRun(context.Background(), runID, "sweep")

	ports := sm.Ports().(sweepmod.Ports)
	sum, err := ports.Runner.Run(ctx, now)
	if err != nil {
		// partial failures are already folded into the summary; this is a
		// logic-level failure worth surfacing, but the stores were reachable
		l.Error().Err(err).Msg("sweep run failed")
		return
	}

	p := message.NewPrinter(language.English)
	p.Printf("sweep %s as of %s\n", sum.RunID, sum.RunAt.Format(time.RFC3339))
	if sum.DryRun {
		p.Printf("dry run, nothing written\n")
	}
	p.Printf("  reactivated actors: %d\n", sum.Counts[signal.TypeReactivatedActor])
	for _, a := range sum.Reactivated {
		p.Printf("    %s\n", a)
	}
	p.Printf("  dormant actors:     %d\n", sum.Counts[signal.TypeDormantActor])
	p.Printf("  activity spikes:    %d\n", sum.Counts[signal.TypeActivitySpike])
	for _, s := range sum.Spikes {
		p.Printf("    %s\n", s)
	}
	p.Printf("  persisted: %d inserted, %d updated, %d failed, %d rejected\n",
		sum.Report.Inserted, sum.Report.Updated, sum.Report.Failed, sum.Report.Rejected)
}
