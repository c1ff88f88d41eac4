package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/flight-deals/internal/secret"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate a FLIGHTDEALS_SECRET_KEY value (base64)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secret.NewKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export FLIGHTDEALS_SECRET_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}
