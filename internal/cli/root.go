// Package cli implements the dabdemo command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/dab-demo/dab-demo/internal/config"
	"github.com/dab-demo/dab-demo/internal/logging"
	"github.com/dab-demo/dab-demo/internal/paths"
	"github.com/dab-demo/dab-demo/internal/registry"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	cfg   *config.Config
	paths paths.ProjectPaths
	log   logr.Logger

	getenv    func(string) string
	dotenv    bool
	newClient func(kubeconfig string) (client.Client, error)
	registry  registry.Client
}

// Option customizes the command tree, mostly for tests.
type Option func(*app)

// WithKubeClient replaces the Kubernetes client factory used by publish.
func WithKubeClient(newClient func(kubeconfig string) (client.Client, error)) Option {
	return func(a *app) { a.newClient = newClient }
}

// WithRegistry replaces the OCI registry client used by sync.
func WithRegistry(c registry.Client) Option {
	return func(a *app) { a.registry = c }
}

// WithEnv replaces the environment lookup and disables .env loading.
func WithEnv(getenv func(string) string) Option {
	return func(a *app) {
		a.getenv = getenv
		a.dotenv = false
	}
}

// NewRootCommand returns the dabdemo command with all subcommands attached.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		getenv:    os.Getenv,
		dotenv:    true,
		newClient: newKubeClient,
		registry:  registry.NewOCIClient(),
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:           "dabdemo",
		Short:         "Tooling for the dab_demo Databricks Asset Bundle",
		Long:          "Resolves project paths, validates and publishes the shared framework config, and runs smoke queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newPathsCmd(a),
		newParseBarCmd(a),
		newValidateCmd(a),
		newVarsCmd(a),
		newConfigMapCmd(a),
		newPublishCmd(a),
		newSyncCmd(a),
		newCountCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.dotenv {
		if wd, err := os.Getwd(); err == nil {
			if _, err := config.LoadDotEnv(wd); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(cmd.Flags(), a.getenv)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	ctrllog.SetLogger(log)

	p, err := cfg.Paths()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.paths = p
	a.log = log.WithName("dabdemo")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logr.NewContext(ctx, a.log))

	a.log.V(1).Info("resolved project", "root", p.Root(), "config", cfg.ConfigFile)
	return nil
}
