package cli

import (
	"github.com/spf13/cobra"

	"github.com/cessadesk/cessadesk/internal/console"
)

func (c *CLI) newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive intake form and review dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := Build(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Setup(ctx); err != nil {
				return err
			}
			return console.New(console.Services{
				Intake:      app.Intake,
				Auth:        app.Auth,
				Lawyers:     app.Lawyers,
				Submissions: app.Submissions,
			}, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}
}
