package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/dataset"
	"github.com/agentic-research/appseeds/internal/datasource"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}

	root := &cobra.Command{
		Use:   "appseeds",
		Short: "Resolve layered application seed data",
		Long: `appseeds loads a named dataset from a tree of YAML seed files, assigns
stable identifiers to every labelled record and resolves references between them.

Configuration sources (in order of precedence):
  1. Command line flags
  2. Environment variables (APPSEEDS_*)
  3. Configuration file (--config, ./appseeds.yaml or ~/.appseeds/appseeds.yaml)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.readConfig(); err != nil {
				return err
			}
			a.logger = initLogging(cmd.ErrOrStderr(), a.v.GetString("log_level"))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Configuration file (YAML)")
	flags.String("data-dir", "", "Directory containing the seed data")
	flags.String("data-package", "", "Name of a bundled seed data package (default "+datasource.DefaultPackage+")")
	flags.StringSlice("package-path", nil, "Directories searched for data packages")
	flags.StringP("dataset", "d", "", "Dataset to load")
	flags.String("id-type", "", "Identifier form: integer or uuid")
	flags.StringToString("id-types", nil, "Per seed type identifier form, e.g. companies=uuid")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")

	bindFlags(a.v, flags, map[string]string{
		"config":       "config",
		"data_dir":     "data-dir",
		"data_package": "data-package",
		"package_path": "package-path",
		"dataset":      "dataset",
		"id_type":      "id-type",
		"id_types":     "id-types",
		"log_level":    "log-level",
	})
	a.v.SetEnvPrefix("APPSEEDS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.datasetsCmd(),
		a.showCmd(),
		a.configValueCmd(),
		a.labelCmd(),
		a.selectCmd(),
		a.exportCmd(),
		a.genCmd(),
		a.serveCmd(),
	)
	return root
}

// bindFlags binds each config key to the flag of the given name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func (a *app) readConfig() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read config %s: %v", api.ErrInvalidConfiguration, path, err)
		}
		return nil
	}
	a.v.SetConfigName("appseeds")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")
	a.v.AddConfigPath("$HOME/.appseeds")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%w: read config: %v", api.ErrInvalidConfiguration, err)
		}
	}
	return nil
}

// source resolves the search root: an explicit data_dir wins over a package.
func (a *app) source() (datasource.Source, error) {
	if dir := a.v.GetString("data_dir"); dir != "" {
		return datasource.Directory(dir)
	}
	paths := a.v.GetStringSlice("package_path")
	if len(paths) == 0 {
		paths = datasource.DefaultSearchPaths()
	}
	return datasource.Package(a.v.GetString("data_package"), paths...)
}

// policy combines id_type, the id_types map and any top-level
// "<type>_id_type" keys of the config file.
func (a *app) policy() (api.IDPolicy, error) {
	perType := map[string]string{}
	for _, key := range a.v.AllKeys() {
		if key != "id_type" && !strings.Contains(key, ".") && strings.HasSuffix(key, "_id_type") {
			perType[key] = a.v.GetString(key)
		}
	}
	for k, t := range a.v.GetStringMapString("id_types") {
		perType[k] = t
	}
	return api.ParseIDPolicy(a.v.GetString("id_type"), perType)
}

// load opens the configured source and builds the configured dataset.
func (a *app) load() (*dataset.Dataset, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	p, err := a.policy()
	if err != nil {
		return nil, err
	}
	d := dataset.New(src, dataset.WithPolicy(p), dataset.WithLogger(a.logger))
	if err := d.Load(a.v.GetString("dataset")); err != nil {
		return nil, err
	}
	return d, nil
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
