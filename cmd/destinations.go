package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/flight-deals/internal/destinations"
)

func newDestinationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destinations",
		Short: "List or add watched destinations",
	}
	cmd.AddCommand(newDestinationsListCmd())
	cmd.AddCommand(newDestinationsAddCmd())
	return cmd
}

func newDestinationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the destination rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			store, err := openStore(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, d := range rows {
				iata := d.IATACode
				if iata == "" {
					iata = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id=%d city=%q iata=%s lowest_price=%d\n", d.ID, d.City, iata, d.LowestPrice)
			}
			return nil
		},
	}
}

func newDestinationsAddCmd() *cobra.Command {
	var (
		city        string
		iata        string
		lowestPrice int
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a destination (postgres and sqlite stores)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			store, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer store.Close()

			adder, ok := store.(destinations.Adder)
			if !ok {
				return fmt.Errorf("the %s store does not support adding rows; edit the sheet instead", cfg.Store)
			}
			d := destinations.Destination{
				City:        strings.TrimSpace(city),
				IATACode:    strings.ToUpper(strings.TrimSpace(iata)),
				LowestPrice: lowestPrice,
			}
			id, err := adder.Add(ctx, d)
			if err != nil {
				return err
			}
			log.Debug("destination added", "id", id, "city", d.City)
			fmt.Fprintf(cmd.OutOrStdout(), "added destination id=%d\n", id)
			return nil
		},
	}

	c.Flags().StringVar(&city, "city", "", "city name as the flight provider spells it")
	c.Flags().StringVar(&iata, "iata", "", "IATA city code (resolved on the next run when empty)")
	c.Flags().IntVar(&lowestPrice, "lowest-price", 0, "alert when a round trip costs less than this")
	_ = c.MarkFlagRequired("city")
	_ = c.MarkFlagRequired("lowest-price")
	return c
}
