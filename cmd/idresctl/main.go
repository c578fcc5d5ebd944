package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"idres/internal/events"
	"idres/internal/identity/service"
	"idres/internal/identity/store"
	"idres/internal/platform/logger"
)

// app carries flag values and the lazily opened session for one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	storePath  string
	envFile    string
	output     string

	cfg      cliConfig
	logger   *slog.Logger
	recorder *events.Recorder
	session  *service.Session
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:               "idresctl <command>",
		Short:             "Inspect and edit the identity resolution configuration",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.closeSession(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "path to the idresctl TOML config")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "identity config file (overrides store_path)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "workspace .env file (overrides env_file)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "", "output format: table, json or yaml")

	root.AddGroup(
		&cobra.Group{ID: "identity", Title: "Identity configuration:"},
		&cobra.Group{ID: "workspace", Title: "Workspace:"},
	)
	root.AddCommand(a.fieldsCmd())
	root.AddCommand(a.deletedCmd())
	root.AddCommand(a.defaultsCmd())
	root.AddCommand(a.catalogCmd())
	root.AddCommand(a.workspaceCmd())
	root.AddCommand(a.tokenCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.storePath != "" {
		cfg.StorePath = a.storePath
	}
	if a.envFile != "" {
		cfg.EnvFile = a.envFile
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput(a.out)
	}
	switch cfg.Output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (must be table, json or yaml)", cfg.Output)
	}
	a.cfg = cfg
	a.logger = logger.NewWithWriter(a.errOut, cfg.LogLevel, "text")
	return nil
}

// openSession loads the identity config from the file store once. An
// unreadable store fails the command instead of starting from the catalog.
func (a *app) openSession(ctx context.Context) (*service.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	rec := events.NewRecorder()
	sess, err := service.Open(ctx, store.NewFile(a.cfg.StorePath),
		service.WithLogger(a.logger),
		service.WithPublisher(rec),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.StorePath, err)
	}
	a.recorder, a.session = rec, sess
	return sess, nil
}

func (a *app) closeSession(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	err := a.session.Close(ctx)
	a.session = nil
	return err
}

// unsaved reports whether any change in this invocation failed to persist.
func (a *app) unsaved() error {
	if a.recorder == nil {
		return nil
	}
	for _, p := range a.recorder.Events() {
		if evt, ok := p.Event.(events.ConfigChanged); ok && !evt.Persisted {
			return errors.New("change applied but could not be saved to " + a.cfg.StorePath)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
