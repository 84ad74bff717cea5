package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/spf13/cobra"

	"github.com/dab-demo/dab-demo/internal/foo"
	"github.com/dab-demo/dab-demo/internal/publish"
	"github.com/dab-demo/dab-demo/internal/registry"
	"github.com/dab-demo/dab-demo/internal/session"
	"github.com/dab-demo/dab-demo/internal/validate"
	"github.com/dab-demo/dab-demo/internal/values"
)

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved project directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "root\t%s\n", a.paths.Root())
			fmt.Fprintf(w, "resources\t%s\n", a.paths.Resources())
			fmt.Fprintf(w, "tests\t%s\n", a.paths.Tests())
			fmt.Fprintf(w, "config\t%s\n", a.paths.Config())
			fmt.Fprintf(w, "common_framework\t%s\n", a.paths.CommonFramework())
			fmt.Fprintf(w, "shared_config\t%s\n", a.paths.SharedConfig())
			return w.Flush()
		},
	}
}

func newParseBarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-bar",
		Short: "Print the parsed shared bar.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := foo.ParseBar(a.paths)
			if err != nil {
				return err
			}
			out, err := values.MarshalYAML(doc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the shared framework config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := validate.SharedConfig(cmd.Context(), a.paths)
			out := cmd.OutOrStdout()
			for _, err := range errs {
				fmt.Fprintf(out, "FAIL %v\n", err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d validation check(s) failed", len(errs))
			}
			fmt.Fprintf(out, "OK %s\n", a.paths.SharedConfig())
			return nil
		},
	}
}

func newVarsCmd(a *app) *cobra.Command {
	var files, sets []string

	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Print bundle --var arguments merged from the shared and project config",
		Long: "Merges the shared bar.yml, the project's config/vars.yml (when present), any --values " +
			"files and any --set snippets, in that order, and prints them as bundle CLI --var arguments.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := []values.Source{
				{Path: foo.BarPath(a.paths)},
				{Path: filepath.Join(a.paths.Config(), "vars.yml"), Optional: true},
			}
			for _, f := range files {
				sources = append(sources, values.Source{Path: f})
			}
			for _, s := range sets {
				sources = append(sources, values.Source{Inline: s})
			}

			vars, err := values.NewResolver().ResolveVars(cmd.Context(), sources)
			if err != nil {
				return fmt.Errorf("failed to resolve bundle variables: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), values.QuoteArgs(values.GenerateVarFlags(vars)))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&files, "values", nil, "additional YAML file to merge (repeatable)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "inline YAML mapping to merge last, e.g. 'schema: other' (repeatable)")
	return cmd
}

func newConfigMapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configmap",
		Short: "Print the shared config as a ConfigMap manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := publish.BuildConfigMap(cmd.Context(), a.paths, a.cfg.Namespace, a.cfg.ConfigMapName)
			if err != nil {
				return err
			}
			out, err := publish.RenderYAML(cm)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newPublishCmd(a *app) *cobra.Command {
	var createNamespace bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Create or update the shared config ConfigMap in the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := publish.BuildConfigMap(cmd.Context(), a.paths, a.cfg.Namespace, a.cfg.ConfigMapName)
			if err != nil {
				return err
			}

			c, err := a.newClient(a.cfg.Kubeconfig)
			if err != nil {
				return fmt.Errorf("failed to create Kubernetes client: %w", err)
			}

			if createNamespace {
				created, err := publish.EnsureNamespace(cmd.Context(), c, cm.Namespace)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "namespace/%s created\n", cm.Namespace)
				}
			}

			result, err := publish.Apply(cmd.Context(), c, cm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configmap/%s %s\n", cm.Name, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&createNamespace, "create-namespace", false, "create the namespace when it does not exist")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var retries int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the shared framework from an OCI registry into common_framework",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.RegistryRepo == "" {
				return errors.New("no registry repository configured (--registry-repo or DAB_REGISTRY_REPO)")
			}

			repo, err := name.NewRepository(a.cfg.RegistryRepo)
			if err != nil {
				return fmt.Errorf("invalid registry repository: %w", err)
			}
			auth, err := authn.DefaultKeychain.Resolve(repo)
			if err != nil {
				return fmt.Errorf("failed to resolve registry credentials: %w", err)
			}

			res, err := registry.SyncWithRetry(cmd.Context(), a.registry, registry.SyncOptions{
				RepoURL: a.cfg.RegistryRepo,
				Tag:     a.cfg.RegistryTag,
				DestDir: a.paths.CommonFramework(),
				Auth:    auth,
			}, retries)

			var notModified *registry.NotModifiedError
			switch {
			case errors.As(err, &notModified):
				fmt.Fprintf(cmd.OutOrStdout(), "up to date %s\n", notModified.Digest)
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %s@%s (%d files)\n", res.Tag, res.Digest, res.Files)
			return nil
		},
	}

	cmd.Flags().IntVar(&retries, "retries", 0, "retry transient registry failures this many times")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <table>",
		Short: "Print the row count of a table",
		Long:  "Counts rows remotely when Databricks host, token and warehouse are configured, otherwise from local JSON tables.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.New(cmd.Context(), session.Config{
				Host:        a.cfg.DatabricksHost,
				Token:       a.cfg.DatabricksToken,
				WarehouseID: a.cfg.WarehouseID,
				TablesDir:   a.cfg.TablesDir(a.paths),
			})
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			defer s.Close()

			n, err := s.Table(args[0]).Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
