package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the scoring models the server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			models, err := client.ModelNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, model := range models {
				fmt.Println(model)
			}
			return nil
		},
	}
}
