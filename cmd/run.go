package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/flight-deals/internal/config"
	"github.com/example/flight-deals/internal/deals"
	"github.com/example/flight-deals/internal/flightsearch"
	"github.com/example/flight-deals/internal/notify"
)

func newRunCmd() *cobra.Command {
	var (
		dryRun    bool
		migrateUp bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every destination once and email an alert for each deal found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if migrateUp && cfg.Store != config.StorePostgres {
				return errors.New("--migrate only applies to DESTINATION_STORE=postgres; the sqlite store migrates itself on open")
			}
			validate := cfg.ValidateRun
			if dryRun {
				validate = cfg.ValidateSearch
			}
			if err := validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store, err := openStore(ctx, cfg, migrateUp)
			if err != nil {
				return err
			}
			defer store.Close()

			search := flightsearch.New(cfg.FlightAPIURL, cfg.FlightAPIKey)
			e := &deals.Evaluator{
				Store:    store,
				Resolver: search,
				Searcher: search,
				Base:     searchParams(cfg, time.Now()),
				Log:      log,
			}

			log.Info("run started", "store", cfg.Store, "origin", cfg.OriginCode, "currency", cfg.Currency,
				"date_from", e.Base.DateFrom, "date_to", e.Base.DateTo)
			found, err := e.Run(ctx)
			if err != nil {
				return err
			}

			if dryRun {
				for _, it := range found {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n\n", notify.Subject(it), it)
				}
				log.Info("run finished", "deals", len(found), "sent", 0, "dry_run", true)
				return nil
			}

			n := &notify.Notifier{
				Sender: &notify.SMTPSender{
					Host:     cfg.SMTPHost,
					Port:     cfg.SMTPPort,
					Username: cfg.SMTPUsername,
					Password: cfg.SMTPPassword,
				},
				From: cfg.MailSender,
				To:   cfg.MailRecipients,
				Log:  log,
			}
			sent, err := n.Notify(ctx, found)
			log.Info("run finished", "deals", len(found), "sent", sent)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the alerts instead of emailing them")
	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply postgres migrations before running")
	return cmd
}

// searchParams is the search shared by every destination of a run.
func searchParams(cfg config.Config, now time.Time) flightsearch.Params {
	from, to := flightsearch.DateWindow(now, cfg.SearchStartDays, cfg.SearchEndDays)
	return flightsearch.Params{
		FlyFrom:      cfg.OriginCode,
		DateFrom:     from,
		DateTo:       to,
		Currency:     cfg.Currency,
		NightsFrom:   cfg.NightsFrom,
		NightsTo:     cfg.NightsTo,
		MaxStopovers: cfg.MaxStopovers,
	}.WithDefaults()
}
