package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/flight-deals/internal/config"
	"github.com/example/flight-deals/internal/secret"
)

func newSealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal [value]",
		Short: "Seal a credential with FLIGHTDEALS_SECRET_KEY for use in the environment",
		Long: "Prints an enc: value that can replace SHEET_AUTH, FLIGHT_API_KEY or SMTP_PASSWORD.\n" +
			"Reads the value from stdin when no argument is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			key, err := config.SecretKeyFromEnv()
			if err != nil {
				return err
			}
			if key == nil {
				return errors.New("FLIGHTDEALS_SECRET_KEY is not set (generate one with `flightdeals keys`)")
			}
			box, err := secret.NewBox(key)
			if err != nil {
				return err
			}

			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					value = sc.Text()
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("nothing to seal")
			}

			sealed, err := box.Seal(value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}
