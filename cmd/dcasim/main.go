// Command dcasim runs the dynamic channel assignment simulator: an
// event-driven call-level simulation trained online by an average-reward
// TDC agent.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dcasim/internal/config"
	"dcasim/internal/dashboard"
	"dcasim/internal/environment"
	"dcasim/internal/simulation"
	"dcasim/internal/stats"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "dcasim",
		Short: "Dynamic channel assignment simulator and TDC agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "./config.yaml", "path to a YAML config file")

	def := config.Defaults()
	flags.Float64("call_dur", def.CallDur, "mean call hold time, minutes")
	flags.Float64("hoff_call_dur", def.HoffCallDur, "mean hand-off hold time, minutes")
	flags.Float64("call_rate", def.CallRate, "calls per hour per cell")
	flags.Float64("p_handoff", def.PHandoff, "probability an accepted call becomes a hand-off")
	flags.Int("n_events", def.NEvents, "number of events to process")
	flags.Int("log_iter", def.LogIter, "events between stats reports")
	flags.Float64("alpha", def.Alpha, "value network learning rate")
	flags.Float64("alpha_avg", def.AlphaAvg, "average-reward learning rate")
	flags.Float64("alpha_grad", def.AlphaGrad, "gradient-correction learning rate")
	flags.Bool("verify_grid", def.VerifyGrid, "validate the reuse constraint after every step")
	flags.Int("verbose", def.Verbose, "log verbosity")
	flags.Bool("dashboard", def.Dashboard, "serve a live read-only dashboard")
	flags.String("dashboard_addr", def.DashboardAddr, "dashboard bind address")
	flags.String("log_level", def.LogLevel, "zerolog level: debug, info, warn, error")

	return cmd
}

func run(cfg config.Config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log_level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := stats.New()
	rng := rand.New(rand.NewSource(rand.Int63()))

	envCfg := environment.Config{
		PHandoff:    cfg.PHandoff,
		VerifyGrid:  cfg.VerifyGrid,
		CallRatePH:  cfg.CallRate,
		CallDur:     cfg.CallDur,
		HoffCallDur: cfg.HoffCallDur,
	}
	simCfg := simulation.Config{
		Env:       envCfg,
		NEvents:   cfg.NEvents,
		LogIter:   cfg.LogIter,
		Alpha:     float32(cfg.Alpha),
		AlphaAvg:  float32(cfg.AlphaAvg),
		AlphaGrad: float32(cfg.AlphaGrad),
	}

	var onReady func(*environment.Env)
	if cfg.Dashboard {
		onReady = func(env *environment.Env) {
			go func() {
				srv := dashboard.New(cfg.DashboardAddr, env.Grid, st)
				if err := srv.Serve(ctx); err != nil {
					log.Error().Err(err).Msg("dashboard server exited")
				}
			}()
		}
	}

	log.Info().Int("n_events", cfg.NEvents).Float64("p_handoff", cfg.PHandoff).Msg("starting simulation")
	simulation.Run(ctx, simCfg, st, rng, onReady)
	return nil
}
