package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baldhumanity/roombots/config"
	"github.com/baldhumanity/roombots/genome"
	"github.com/baldhumanity/roombots/lifecycle"
	"github.com/baldhumanity/roombots/results"
	"github.com/baldhumanity/roombots/sim"
)

var simulateOpts struct {
	world      string
	params     string
	sink       string
	out        string
	session    string
	name       string
	checkpoint string
	ticks      int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated arena of organisms",
	Long: `Runs every module of every organism in the world file in lockstep until
the world's ticks are spent, then prints what the evolver saw.

Results go to <out>/Results/<session>/<name>/<algorithm>/ unless the memory
sink is used.

Example:
  roombot simulate --world arena.yaml --sink csv --out runs
  roombot simulate --ticks 3000 --checkpoint pool.gz`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateOpts.world, "world", "", "YAML world file (default: one two-module organism)")
	f.StringVar(&simulateOpts.params, "params", "", "module parameter file, INI or YAML (overrides the world's)")
	f.StringVar(&simulateOpts.sink, "sink", "memory", "result sink: memory, csv or sqlite")
	f.StringVar(&simulateOpts.out, "out", ".", "base directory for results")
	f.StringVar(&simulateOpts.session, "session", "random", "session directory name; random uses a timestamp")
	f.StringVar(&simulateOpts.name, "name", "roombots", "experiment name")
	f.IntVar(&simulateOpts.ticks, "ticks", 0, "override the world's tick count")
	f.StringVar(&simulateOpts.checkpoint, "checkpoint", "", "save the evolver's offspring pool to this gzip file")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	wc := sim.DefaultWorld()
	if simulateOpts.world != "" {
		var err error
		if wc, err = sim.LoadWorld(simulateOpts.world); err != nil {
			return err
		}
	}
	if simulateOpts.ticks > 0 {
		wc.Ticks = simulateOpts.ticks
	}
	if cmd.Flags().Changed("seed") {
		wc.Seed = seed
	}
	if simulateOpts.params != "" {
		wc.Parameters = simulateOpts.params
	}

	base, settings, err := loadParameters(wc.Parameters)
	if err != nil {
		return err
	}

	sink, err := openSink(cmd, base.Algorithm.Type)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("closing result sink", zap.Error(err))
		}
	}()

	w, err := sim.NewWorld(wc, base,
		sim.WithLogger(logger),
		sim.WithSink(sink),
		sim.WithGenomeSettings(settings))
	if err != nil {
		return err
	}
	start := time.Now()
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info("simulation done", zap.String("world", w.ID()), zap.Duration("elapsed", time.Since(start)))
	if simulateOpts.checkpoint != "" {
		if err := w.Evolver().SavePool(simulateOpts.checkpoint); err != nil {
			return err
		}
		logger.Info("offspring pool saved", zap.String("path", simulateOpts.checkpoint))
	}

	out := cmd.OutOrStdout()
	rep := w.Evolver().Report()
	fmt.Fprintf(out, "ticks:     %d\n", w.Tick())
	for _, m := range w.Modules() {
		c := m.Controller
		fmt.Fprintf(out, "%-14s %-12s fertile=%t\n", m.Name, c.Stage(), c.Fertile())
	}
	fmt.Fprintf(out, "adults:    %v\n", rep.Adults)
	fmt.Fprintf(out, "deaths:    %v\n", rep.Deaths)
	fmt.Fprintf(out, "rebuilds:  %v\n", rep.Rebuilds)
	fmt.Fprintf(out, "couples:   %d\n", len(rep.Couples))
	fmt.Fprintf(out, "offspring: %d\n", len(rep.Offspring))
	fmt.Fprintf(out, "dropped:   %d\n", w.Ether().Dropped())
	if mem, ok := sink.(*results.MemorySink); ok {
		fmt.Fprintf(out, "records:   %d\n", len(mem.Records()))
	}
	return nil
}

// loadParameters reads the module and genome parameters from path, or
// returns the defaults when path is empty.
func loadParameters(path string) (lifecycle.Config, *genome.Settings, error) {
	if path == "" {
		return lifecycle.DefaultConfig(), genome.DefaultSettings(), nil
	}
	src, err := config.Open(path)
	if err != nil {
		return lifecycle.Config{}, nil, err
	}
	base, err := lifecycle.ConfigFromSource(src)
	if err != nil {
		return lifecycle.Config{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	settings, err := genome.LoadSettings(src)
	if err != nil {
		return lifecycle.Config{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, settings, nil
}

func openSink(cmd *cobra.Command, algorithm string) (results.Sink, error) {
	kind := strings.ToLower(simulateOpts.sink)
	if kind == "memory" || kind == "" {
		return results.NewMemorySink(), nil
	}
	dir, err := results.RunDir{
		Base:      simulateOpts.out,
		Session:   simulateOpts.session,
		Name:      simulateOpts.name,
		Algorithm: algorithm,
		Attempts:  5,
	}.Create(time.Now())
	if err != nil {
		return nil, err
	}
	file := "results.csv"
	if kind == "sqlite" {
		file = "results.db"
	}
	path := filepath.Join(dir, file)
	logger.Info("writing results", zap.String("path", path))
	return results.NewSink(cmd.Context(), kind, path)
}
