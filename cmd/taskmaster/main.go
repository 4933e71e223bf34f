package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/app"
	"github.com/abatilo/taskmaster/internal/config"
	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/output"
	"github.com/abatilo/taskmaster/internal/server"
	"github.com/abatilo/taskmaster/internal/session"
	"github.com/abatilo/taskmaster/internal/storage"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

const shutdownTimeout = 10 * time.Second

//nolint:gochecknoglobals // CLI flags and shared state are package-level by design
var (
	jsonOutput bool
	configPath string
	formatter  output.Formatter = output.NewHumanFormatter()
	cfg        *config.Config
	logger     *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskmaster",
		Short: "A personal task manager with AI breakdowns",
		Long:  "taskmaster - A personal task manager with priorities, categories, a due-date calendar and AI task breakdowns.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			formatter = output.New(jsonOutput)

			loaded, err := config.Load(configPath)
			if err != nil {
				printError(err)
			}
			cfg = loaded

			logger, err = cfg.Log.NewLogger(os.Stderr)
			if err != nil {
				printError(err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")

	rootCmd.AddCommand(
		addCmd(),
		listCmd(),
		showCmd(),
		doneCmd(),
		rmCmd(),
		subCmd(),
		breakdownCmd(),
		statsCmd(),
		insightsCmd(),
		calendarCmd(),
		quoteCmd(),
		filterCmd(),
		exportCmd(),
		configCmd(),
		serveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above
	}
}

// getService wires the store and AI client from the loaded config. The
// returned func releases backend connections.
func getService(ctx context.Context) (*app.Service, func()) {
	kv, closeKV, err := openKV()
	if err != nil {
		printError(err)
	}

	store := storage.Open(ctx, kv,
		storage.WithKey(cfg.Storage.Key),
		storage.WithLogger(logger),
		storage.WithDefaults(cfg.DefaultPriority(), cfg.DefaultCategory()),
	)

	return app.New(store, newEnricher(ctx), logger), closeKV
}

func openKV() (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return storage.NewFileKV(cfg.DataDir), func() {}, nil
	case config.BackendRedis:
		client := storage.NewRedisClient(cfg.Storage.RedisURL)
		return storage.NewRedisKV(client, cfg.Storage.RedisPrefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, tmerrors.UnknownBackendError{Name: cfg.Storage.Backend}
	}
}

// newEnricher returns a Gemini-backed client, or one that only serves
// fallbacks when no credential is set or the SDK client cannot be built.
func newEnricher(ctx context.Context) ai.Enricher {
	gcfg := ai.GeminiConfig{
		APIKey:      cfg.AI.APIKey,
		AccessToken: cfg.AI.AccessToken,
		Model:       cfg.AI.Model,
		Endpoint:    cfg.AI.Endpoint,
		Timeout:     cfg.AI.Timeout,
	}
	if !gcfg.Configured() {
		logger.Debug("ai.disabled")
		return ai.NewClient(nil, logger)
	}
	gen, err := ai.NewGemini(ctx, gcfg)
	if err != nil {
		logger.WithError(err).Warn("ai.client.failed")
		return ai.NewClient(nil, logger)
	}
	return ai.NewClient(gen, logger)
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

// resolveTask maps a full ID or unique prefix to a task ID.
func resolveTask(store *storage.Store, ref string) string {
	id, err := store.Resolve(ref)
	if err != nil {
		printError(err)
	}
	return id
}

// addCmd implements 'taskmaster add'.
func addCmd() *cobra.Command {
	var description, priority, category, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			in := task.Input{Title: args[0], Description: description, DueDate: due}
			if priority != "" {
				p, ok := task.ParsePriority(priority)
				if !ok {
					printError(tmerrors.InvalidPriorityError{Value: priority})
				}
				in.Priority = p
			}
			if category != "" {
				c, ok := task.ParseCategory(category)
				if !ok {
					printError(tmerrors.InvalidCategoryError{Value: category})
				}
				in.Category = c
			}

			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			t, err := svc.Store().Create(in)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (personal, work, shopping, health, finance, other)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

// listCmd implements 'taskmaster list'.
func listCmd() *cobra.Command {
	var category, priority, search string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first, using the saved filter",
		Run: func(cmd *cobra.Command, _ []string) {
			criteria := session.LoadOrDefault(cfg.DataDir).Criteria()
			if all {
				criteria = view.DefaultCriteria()
			}
			criteria = applyCriteriaFlags(cmd, criteria, category, priority, search)

			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			printOutput(formatter.FormatTaskList(view.Filter(svc.Store().Tasks(), criteria)))
		},
	}
	addCriteriaFlags(cmd, &category, &priority, &search)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Ignore the saved filter")
	return cmd
}

// showCmd implements 'taskmaster show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			t, _ := svc.Store().Get(resolveTask(svc.Store(), args[0]))
			printOutput(formatter.FormatTask(t))
		},
	}
}

// doneCmd implements 'taskmaster done'.
func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			id := resolveTask(svc.Store(), args[0])
			if !svc.Store().ToggleComplete(id) {
				printError(tmerrors.TaskNotFoundError{ID: id})
			}
			t, _ := svc.Store().Get(id)
			printOutput(formatter.FormatTask(t))
		},
	}
}

// rmCmd implements 'taskmaster rm'.
func rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Permanently delete a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			id := resolveTask(svc.Store(), args[0])
			t, _ := svc.Store().Get(id)

			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete task %q?", t.Title)) {
				printError(tmerrors.DeleteNotConfirmedError{ID: id})
			}
			if !svc.Store().Delete(id) {
				printError(tmerrors.TaskNotFoundError{ID: id})
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %s", id)))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// subCmd implements 'taskmaster sub'.
func subCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sub <id> <step>",
		Short: "Toggle a sub-task by its 1-based number or ID prefix",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			id := resolveTask(svc.Store(), args[0])
			subID, err := svc.Store().ResolveSubTask(id, args[1])
			if err != nil {
				printError(err)
			}
			if !svc.Store().ToggleSubTask(id, subID) {
				printError(tmerrors.SubTaskNotFoundError{TaskID: id, Ref: args[1]})
			}
			t, _ := svc.Store().Get(id)
			printOutput(formatter.FormatTask(t))
		},
	}
}

// breakdownCmd implements 'taskmaster breakdown'.
func breakdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown <id>",
		Short: "Split a task into 3-5 AI-generated sub-tasks",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			id := resolveTask(svc.Store(), args[0])
			call, err := svc.Breakdown(cmd.Context(), id)
			if err != nil {
				printError(err)
			}
			if !jsonOutput {
				fmt.Fprintln(cmd.ErrOrStderr(), "Thinking...")
			}
			if _, err = call.Wait(cmd.Context()); err != nil {
				printError(err)
			}
			t, _ := svc.Store().Get(id)
			printOutput(formatter.FormatTask(t))
		},
	}
}

// statsCmd implements 'taskmaster stats'.
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Run: func(cmd *cobra.Command, _ []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			printOutput(formatter.FormatStats(view.Stats(svc.Store().Tasks())))
		},
	}
}

// insightsCmd implements 'taskmaster insights'.
func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show productivity insights",
		Run: func(cmd *cobra.Command, _ []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			printOutput(formatter.FormatInsights(view.Insights(view.Stats(svc.Store().Tasks()))))
		},
	}
}

// exportCmd implements 'taskmaster export'.
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every task as a markdown file with YAML frontmatter",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			n, err := storage.ExportMarkdown(args[0], svc.Store().Tasks())
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Exported %d task(s) to %s", n, args[0])))
		},
	}
}

// configCmd implements 'taskmaster config'.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Run: func(_ *cobra.Command, _ []string) {
				out, err := cfg.YAML()
				if err != nil {
					printError(err)
				}
				printOutput(out)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the default config file location",
			Run: func(_ *cobra.Command, _ []string) {
				printOutput(formatter.FormatMessage(config.DefaultPath()))
			},
		},
	)
	return cmd
}

// serveCmd implements 'taskmaster serve'.
func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Run: func(cmd *cobra.Command, _ []string) {
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()
			svc, closeFn := getService(ctx)
			defer closeFn()

			e := server.New(svc, logger, cfg.WeekStart())
			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", addr).Info("server.start")
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					printError(err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					logger.WithError(err).Error("server.shutdown.failed")
				}
				logger.Info("server.stopped")
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
