package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oshokin/tool-packager/internal/config"
	"github.com/oshokin/tool-packager/internal/logger"
	"github.com/oshokin/tool-packager/internal/service/packager"
	"github.com/oshokin/tool-packager/internal/service/selector"
	"github.com/oshokin/tool-packager/internal/version"
)

// envPrefix namespaces environment overrides, e.g. TOOL_PACKAGER_ROOT.
const envPrefix = "TOOL_PACKAGER"

var (
	// settings merges flags with TOOL_PACKAGER_* environment variables.
	//nolint:gochecknoglobals // Shared by the Cobra commands below.
	settings = viper.New()

	// errConfigExists is returned by init-config when it would overwrite a file.
	errConfigExists = errors.New("configuration file already exists, use --force to overwrite")

	// rootCmd builds one project.
	rootCmd = &cobra.Command{
		Use:   "tool-packager [project]",
		Short: "Package a project into a distributable archive",
		Long: `Reads the build_infos.txt manifest of a project, stages the listed files
into a build folder, writes install instructions and zips everything into
<projects root>/HoudiniToolsBuilds/builds/<name>[_vX_Y_Z].zip.

The project can be given by name or ID. Without it, the list of projects is
shown and the ID is read from the terminal (or picked in a dialog with --dialog).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := baseOptions()

			switch {
			case len(args) == 1:
				options.Selector = selector.Fixed{Ref: args[0]}
			case settings.GetBool("dialog"):
				options.Selector = &selector.Dialog{}
			default:
				options.Selector = selector.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			if settings.GetBool("progress") {
				options.Progress = cmd.ErrOrStderr()
			}

			_, err := packager.Run(ctx, options)

			return err
		},
	}

	// listCmd prints the projects that can be built.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List buildable projects with their IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := packager.List(cmd.Context(), baseOptions())
			if err != nil {
				return err
			}

			for i, name := range projects {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, name)
			}

			return nil
		},
	}

	// initConfigCmd writes a settings file with default values.
	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := settings.GetString("config")

			if _, err := os.Stat(path); err == nil && !settings.GetBool("force") {
				return fmt.Errorf("%s: %w", path, errConfigExists)
			}

			cfg := config.Default()
			cfg.ProjectsRoot = settings.GetString("root")

			if err := config.Save(path, cfg); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Configuration written", "path", path)

			return nil
		},
	}
)

// Execute runs the tool-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.ErrorKV(ctx, "tool-packager failed", "error", err)
		os.Exit(1)
	}
}

// baseOptions collects the settings shared by every command.
func baseOptions() *packager.Options {
	return &packager.Options{
		ConfigPath:   settings.GetString("config"),
		ProjectsRoot: settings.GetString("root"),
		LogLevel:     settings.GetString("log-level"),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	persistent := rootCmd.PersistentFlags()
	persistent.StringP("config", "c", config.DefaultConfigFilename, "path to configuration file")
	persistent.StringP("root", "r", "", "projects root (default: parent of the working directory)")
	persistent.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.Flags().Bool("dialog", false, "pick the project in an interactive dialog")
	rootCmd.Flags().Bool("progress", false, "show a progress bar while staging files")
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing configuration file")

	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	_ = settings.BindPFlags(persistent)
	_ = settings.BindPFlags(rootCmd.Flags())
	_ = settings.BindPFlags(initConfigCmd.Flags())

	rootCmd.AddCommand(listCmd, initConfigCmd)
}
