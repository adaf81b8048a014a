package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/tareas/internal/session"
)

func newThemeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(session.ModeLight), string(session.ModeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), sess.Theme(cmd.Context()))
				return nil
			}

			mode, err := session.ParseMode(args[0])
			if err != nil {
				return err
			}
			if err := sess.SetTheme(cmd.Context(), mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", mode)
			return nil
		},
	}
}
