package cmd

import (
	"fmt"
	"os"

	"marketing-ops/internal/services"
	"marketing-ops/internal/store"
	"marketing-ops/migrations"
	"marketing-ops/security"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := store.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer s.Close()

		applied, err := migrations.Apply(cmd.Context(), s.DB())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return nil
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load events, team members and content history from a YAML or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := services.LoadSeedFile(seedFile)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := services.NewSeedService(a.store).Seed(cmd.Context(), seed)
		if err != nil {
			return err
		}
		for table, res := range report.Tables {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s inserted=%d skipped=%d\n", table, res.Inserted, res.Skipped)
		}
		return nil
	},
}

var dedupeDryRun bool

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove events sharing a date and title, keeping the earliest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := services.NewDedupeService(a.store, a.notifier).Run(cmd.Context(), dedupeDryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, g := range report.Groups {
			fmt.Fprintf(out, "%s %q keep=%s remove=%v\n", g.Date, g.Title, g.KeptID, g.RemovedIDs)
		}
		verb := "deleted"
		if report.DryRun {
			verb = "would delete"
		}
		fmt.Fprintf(out, "%d groups, %s %d events, %d failed\n", len(report.Groups), verb, report.TotalDeleted, report.TotalFailed)
		return nil
	},
}

var icsFile string

var importICSCmd = &cobra.Command{
	Use:   "import-ics",
	Short: "Import events from an iCalendar file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(icsFile)
		if err != nil {
			return fmt.Errorf("error reading calendar file: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := services.NewCalendarService(a.store, cfg.VenueName).Import(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parsed=%d imported=%d skipped=%d\n", report.Parsed, report.Imported, report.Skipped)
		return nil
	},
}

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token <token>",
	Short: "Print the bcrypt hash to use as ADMIN_TOKEN_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := security.HashAdminToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed document (YAML or JSON)")
	_ = seedCmd.MarkFlagRequired("file")

	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Only report the duplicates")

	importICSCmd.Flags().StringVarP(&icsFile, "file", "f", "", "iCalendar (.ics) file")
	_ = importICSCmd.MarkFlagRequired("file")
}
