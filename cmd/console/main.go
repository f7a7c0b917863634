package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/gateway"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/persistence"
	"github.com/spec-kit/ticket-console/internal/service"
	"github.com/spec-kit/ticket-console/internal/worker"
)

// console carries what every subcommand needs once the root command has run.
type console struct {
	cfg    *config.Config
	logger *zap.Logger
	redis  *persistence.Redis

	tickets   *service.TicketStore
	templates *service.TemplateStore
	assist    *service.AssistStore
	transfers *service.TransferStore
	tokens    auth.TokenProvider
	activity  *worker.CacheActivity
}

func main() {
	app := &console{}
	root := &cobra.Command{
		Use:           "console",
		Short:         "Work the ticket queue from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context())
		},
	}
	root.AddCommand(
		app.ticketsCommand(),
		app.templatesCommand(),
		app.assistCommand(),
		app.transferCommand(),
		app.whoamiCommand(),
	)

	if err := run(root, app); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes root and releases what setup acquired, whether or not the command failed.
func run(root *cobra.Command, app *console) error {
	defer app.close()
	return root.ExecuteContext(context.Background())
}

func (a *console) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger

	switch cfg.Auth.TokenSource {
	case config.TokenSourceFile:
		a.tokens = auth.NewFileProvider(cfg.Auth.TokenFile, logger)
	case config.TokenSourceRedis:
		a.redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		a.tokens = auth.NewRedisProvider(a.redis.Client, cfg.Auth.RedisTokenKey, logger)
	default:
		a.tokens = auth.NewStaticProvider(cfg.Auth.AccessToken)
	}

	client, err := gateway.New(gateway.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.RequestTimeout(),
		Tokens:  a.tokens,
		Logger:  logger,
		Metrics: observability.NewMetrics("gateway"),
	})
	if err != nil {
		return err
	}

	dispatcher := events.NewInMemoryDispatcher()
	a.activity = worker.StartCacheActivityWorker(dispatcher, logger)
	a.tickets = service.NewTicketStore(service.TicketStoreDependencies{
		Gateway:    client,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	a.templates = service.NewTemplateStore(client, logger)
	a.assist = service.NewAssistStore(client, logger)
	a.transfers = service.NewTransferStore(client, logger)
	return nil
}

func (a *console) close() {
	if a.activity != nil && a.logger != nil {
		a.logger.Debug("cache activity", zap.Any("events", a.activity.Counts()))
	}
	a.redis.Close()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *console) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the agent named by the current credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, ok := a.tokens.AccessToken(cmd.Context())
			if !ok {
				return fmt.Errorf("no credential available from %s source", a.cfg.Auth.TokenSource)
			}
			identity, err := auth.ParseIdentity(token)
			if err != nil {
				return fmt.Errorf("unreadable credential: %w", err)
			}
			return printJSON(identity)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
