package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pbaille/focusflow/internal/api"
	"github.com/pbaille/focusflow/internal/coach"
	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/console"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/fetcher"
	"github.com/pbaille/focusflow/internal/llm"
	"github.com/pbaille/focusflow/internal/observability"
	"github.com/pbaille/focusflow/internal/recommender"
	"github.com/pbaille/focusflow/internal/report"
	"github.com/pbaille/focusflow/internal/session"
	"github.com/pbaille/focusflow/internal/store"
)

var (
	configPath string
	logLevel   string
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "focusflow",
		Short:         "Focus sessions with adaptive durations and reflections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/focusflow/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(recentCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func load() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := observability.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) store() (*store.Store, error) {
	s, err := store.Open(a.cfg, store.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return s, nil
}

// generator returns the configured backend, or nil to run offline.
func (a *app) generator(ctx context.Context) domain.TextGenerator {
	gen, err := llm.New(ctx, a.cfg.LLM)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			a.log.Info("no language model configured, using built-in rules", "provider", a.cfg.LLM.Provider)
		} else {
			a.log.Warn("language model unavailable, using built-in rules", "error", err)
		}
		return nil
	}
	return gen
}

func (a *app) recommender(ctx context.Context, history domain.SessionLog) *recommender.Recommender {
	return recommender.New(a.generator(ctx), history, recommender.WithLogger(a.log))
}

type taskFlags struct {
	name       string
	taskType   string
	difficulty int
	energy     int
	urgency    int
	deadline   string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "task", "Focus work", "task name")
	cmd.Flags().StringVar(&f.taskType, "type", "general", "task type (writing, coding, reviewing, ...)")
	cmd.Flags().IntVar(&f.difficulty, "difficulty", 3, "task difficulty 1-5")
	cmd.Flags().IntVar(&f.energy, "energy", 3, "current energy level 1-5")
	cmd.Flags().IntVar(&f.urgency, "urgency", 3, "task urgency 1-5")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline (YYYY-MM-DD or RFC 3339)")
}

func (f *taskFlags) task() (domain.TaskContext, error) {
	task := domain.DefaultTaskContext(f.name)
	task.TaskType = f.taskType
	for _, v := range []struct {
		name string
		val  int
		dst  *int
	}{
		{"difficulty", f.difficulty, &task.Difficulty},
		{"energy", f.energy, &task.EnergyLevel},
		{"urgency", f.urgency, &task.Urgency},
	} {
		if v.val < 1 || v.val > 5 {
			return task, fmt.Errorf("--%s must be between 1 and 5, got %d", v.name, v.val)
		}
		*v.dst = v.val
	}
	if f.deadline != "" {
		d, err := domain.ParseTimestamp(f.deadline)
		if err != nil {
			return task, fmt.Errorf("invalid --deadline: %w", err)
		}
		task.Deadline = &d
	}
	return task, nil
}

func startCmd() *cobra.Command {
	var (
		minutes int
		plain   bool
		tf      taskFlags
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a focus sitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			task, err := tf.task()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prompt := console.NewPrompter(os.Stdin, os.Stdout)
			if minutes <= 0 {
				if minutes, err = prompt.AvailableMinutes(ctx); err != nil {
					return err
				}
			} else if ok, err := prompt.ConfirmAvailable(ctx, minutes); err != nil {
				return err
			} else if !ok {
				fmt.Println("Session cancelled")
				return nil
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			gen := a.generator(ctx)
			var runner session.Runner = console.NewLineRunner(os.Stdout)
			if !plain && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
				runner = console.NewTUIRunner(os.Stdin, os.Stdout)
			}

			orch := session.New(
				recommender.New(gen, s, recommender.WithLogger(a.log)),
				coach.New(gen, a.log),
				s,
				prompt,
				a.cfg.Timer,
				session.WithRunner(runner),
				session.WithResolver(fetcher.New(nil, a.log)),
				session.WithLogger(a.log),
			)

			if _, err := orch.Run(ctx, minutes, task); err != nil {
				if errors.Is(err, session.ErrCancelled) || errors.Is(err, context.Canceled) {
					fmt.Println("Session cancelled")
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "available minutes (asked when omitted)")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain line countdown instead of the full-screen view")
	tf.register(cmd)
	return cmd
}

func recommendCmd() *cobra.Command {
	var tf taskFlags

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend focus and break durations for a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			task, err := tf.task()
			if err != nil {
				return err
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			rec := a.recommender(cmd.Context(), s).Recommend(cmd.Context(), task)
			console.NewRenderer(os.Stdout).Recommendation(rec)
			return nil
		},
	}

	tf.register(cmd)
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show overall statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			console.NewRenderer(os.Stdout).Stats(s.Stats())
			return nil
		},
	}
}

func recentCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent sittings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			a, err := load()
			if err != nil {
				return err
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			console.NewRenderer(os.Stdout).Recent(s.Recent(days), time.Now())
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "how many days back")
	return cmd
}

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show insights for the last seven days",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			// insights never call the backend
			rec := recommender.New(nil, s, recommender.WithLogger(a.log))
			console.NewRenderer(os.Stdout).Insights(rec.WeeklyInsights())
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a plain-text summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			path, err := report.Export(dir, s, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Session summary exported to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Addr
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.New(s, a.recommender(ctx, s), a.cfg.Timer, api.WithLogger(a.log))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
