package cli

import (
	"github.com/spf13/cobra"

	"github.com/somnolab/somno/internal/app"
)

func newWatchCmd() *cobra.Command {
	var pollSeconds int

	cmd := &cobra.Command{
		Use:   "watch [session]",
		Short: "Live terminal view of a session's prediction",
		Long: "Polls the named session (default \"default\") and shows its status and\n" +
			"streaming prediction log in a terminal UI until the job finishes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionName := ""
			if len(args) == 1 {
				sessionName = args[0]
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := resolveToken(cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), app.Options{
				ConfigPath:  cfgFile,
				ServerURL:   serverFlag,
				Token:       token,
				SessionName: sessionName,
				PollEvery:   pollSeconds,
			})
		},
	}

	cmd.Flags().IntVar(&pollSeconds, "poll", 0, "refresh interval in seconds (default from config)")

	return cmd
}
