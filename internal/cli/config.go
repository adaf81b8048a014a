package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/tareas/internal/model"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:              %s\n", a.ConfigPath)
			fmt.Fprintf(out, "api.base_url:      %s\n", cfg.API.BaseURL)
			fmt.Fprintf(out, "api.timeout_sec:   %d\n", cfg.API.TimeoutSec)
			fmt.Fprintf(out, "session.backend:   %s\n", cfg.Session.Backend)
			fmt.Fprintf(out, "session.db_path:   %s\n", cfg.Session.DBPath)
			fmt.Fprintf(out, "display.language:  %s\n", cfg.Display.Language)
			fmt.Fprintf(out, "log.file:          %s\n", cfg.Log.File)
			return nil
		},
	}
	cmd.AddCommand(newConfigInitCmd(a))
	return cmd
}

func newConfigInitCmd(a *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: "Writes the defaults, merged with any TAREAS_* environment overrides, " +
			"to the --config path so they can be edited.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.ConfigPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", a.ConfigPath, err)
			}

			cfg, err := a.config()
			if err != nil {
				return err
			}
			if err := model.SaveConfig(a.ConfigPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s.\n", a.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
