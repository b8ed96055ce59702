package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	var (
		deleteName string
		deleteAll  bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete the account's scoring sessions",
		Long: "Lists the account's active sessions. Deleting a session releases its\n" +
			"uploaded file, job artifacts, and logs server-side. Accounts have a\n" +
			"small fixed cap on concurrent sessions, so abandoned sessions are\n" +
			"worth cleaning up.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			switch {
			case deleteAll:
				if err := client.DeleteAllSessions(ctx); err != nil {
					return err
				}
				fmt.Println("all sessions deleted")
				return nil
			case deleteName != "":
				if err := client.NewSession(deleteName).Delete(ctx); err != nil {
					return err
				}
				fmt.Printf("session %q deleted\n", deleteName)
				return nil
			}

			names, err := client.SessionNames(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no active sessions")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&deleteName, "delete", "", "delete the named session")
	cmd.Flags().BoolVar(&deleteAll, "delete-all", false, "delete every active session")
	cmd.MarkFlagsMutuallyExclusive("delete", "delete-all")

	return cmd
}
