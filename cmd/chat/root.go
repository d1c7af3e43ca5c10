package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/config"
	chatService "github.com/zhouzirui/mnchat/internal/service/chat"
	"github.com/zhouzirui/mnchat/internal/service/exchange"
	"github.com/zhouzirui/mnchat/internal/ui/repl"
	"github.com/zhouzirui/mnchat/internal/ui/tui"
)

// app carries the state shared by the root command and its subcommands.
type app struct {
	configPath string
	endpoint   string
	locale     string
	timeout    time.Duration
	logFile    string
	verbose    bool
	plain      bool

	cfg    config.ClientConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mnchat",
		Short: "Chat with a Mongolian assistant over HTTP or WebSocket",
		Long: `mnchat keeps a conversation with a chat backend. Each message is sent
together with the previous turns to the configured endpoint and the reply is
appended to the conversation.

Inside a session: /clear, /endpoint [url], /help, /quit. Start a message
with \/ to send a literal leading slash.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runInteractive,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultClientConfigPath()+")")
	flags.StringVarP(&a.endpoint, "endpoint", "e", "", "chat endpoint (http(s):// or ws(s)://)")
	flags.StringVarP(&a.locale, "locale", "l", "", "interface language (mn, en)")
	flags.DurationVar(&a.timeout, "timeout", 0, "per-request timeout, 0 waits indefinitely")
	flags.StringVar(&a.logFile, "log-file", "", "write structured logs to this file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug level logging")
	root.Flags().BoolVar(&a.plain, "plain", false, "line-mode interface instead of the full-screen one")

	root.AddCommand(newAskCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// .env is optional
	_ = godotenv.Load()

	path, required := a.configPath, true
	if path == "" {
		path, required = config.DefaultClientConfigPath(), false
	}
	cfg, err := config.LoadClient(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
	}
	if flags.Changed("locale") {
		cfg.Locale = a.locale
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = a.timeout
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("plain") {
		cfg.Plain = a.plain
	}
	cfg.Verbose = a.verbose
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// newLogger discards logs unless a log file is set; the terminal belongs to
// the interface.
func newLogger(cfg config.ClientConfig) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.LogFile}
	zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func (a *app) newService() *chatService.Service {
	return chatService.NewService(
		exchange.NewMux(a.logger.Named("exchange")),
		chatService.WithEndpoint(a.cfg.Endpoint),
		chatService.WithLocale(a.cfg.Locale),
		chatService.WithTimeout(a.cfg.RequestTimeout),
		chatService.WithLogger(a.logger.Named("session")),
	)
}

func (a *app) runInteractive(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New("unexpected arguments; use `mnchat ask <text>` for a one-shot question")
	}
	svc := a.newService()
	a.logger.Info("session started",
		zap.String("session", svc.ID()),
		zap.String("endpoint", a.cfg.Endpoint),
		zap.Bool("plain", a.cfg.Plain),
	)

	if a.cfg.Plain {
		return repl.Run(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), nil, nil)
	}
	return tui.Run(cmd.Context(), svc)
}
