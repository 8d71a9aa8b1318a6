package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hirewire/loadgen/internal/application"
	"github.com/hirewire/loadgen/internal/fabricate"
)

func newSeedCmd(app *app) *cobra.Command {
	var (
		dsn         string
		params      application.SeedParams
		jsonSummary bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision seeded accounts, reference data and baseline offers",
		Long:  "seed is an additive, idempotent batch job: reference rows, account pools and baseline job offers are get-or-created by natural key, so reruns converge instead of duplicating. Account pool files are written for the run command to consume.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("no database configured: pass --dsn or set DATABASE_URL")
			}

			store, closeStore, err := app.openStore(dsn)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					log.Warnf("closing seed store: %v", err)
				}
			}()

			seeder := application.NewSeeder(store, fabricate.New(params.Seed))
			summary, err := seeder.Seed(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeding complete.\n")
			fmt.Fprintf(out, "Output dir: %s (files: c2_accounts.*, e2_accounts.*)\n", summary.OutputDir)
			fmt.Fprintf(out, "Pools: C2=%d (expected users %d, buffer %dx), E2=%d (expected users %d, buffer %dx)\n",
				summary.C2PoolSize, summary.ExpectedC2, params.PoolBuffer,
				summary.E2PoolSize, summary.ExpectedE2, params.PoolBuffer)
			fmt.Fprintf(out, "Accounts: C2 created=%d reused=%d; E2 created=%d reused=%d\n",
				summary.C2Created, summary.C2Reused, summary.E2Created, summary.E2Reused)
			fmt.Fprintf(out, "Offers: created=%d existing=%d (target %d)\n",
				summary.OffersCreated, summary.OffersExisting, params.JobsTarget)

			if jsonSummary {
				encoded, err := json.Marshal(summary)
				if err != nil {
					return fmt.Errorf("encode summary: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "target database connection string (defaults to DATABASE_URL)")

	cmd.Flags().Int64Var(&params.Seed, "seed", 12345, "random seed for stable fabricated data")
	cmd.Flags().IntVar(&params.TotalUsers, "total-users", 50, "expected total concurrent users for the run")
	cmd.Flags().StringVar(&params.Weights, "weights", "80/10/8/2", `persona weights in canonical order c2/c1/e2/e1`)
	cmd.Flags().IntVar(&params.PoolBuffer, "pool-buffer", 2, "pool sizing buffer multiplier")
	cmd.Flags().IntVar(&params.C2Users, "c2-users", 0, "override expected seeded-candidate user count")
	cmd.Flags().IntVar(&params.E2Users, "e2-users", 0, "override expected seeded-employer user count")
	cmd.Flags().IntVar(&params.C2PoolSize, "c2-pool-size", 0, "override seeded-candidate pool size")
	cmd.Flags().IntVar(&params.E2PoolSize, "e2-pool-size", 0, "override seeded-employer pool size")
	cmd.Flags().StringVar(&params.DefaultPassword, "default-password", "LoadTestPassword123!", "password for newly created seeded accounts")
	cmd.Flags().IntVar(&params.Countries, "countries", 5, "namespaced reference countries")
	cmd.Flags().IntVar(&params.Cities, "cities", 25, "namespaced reference cities")
	cmd.Flags().IntVar(&params.Industries, "industries", 15, "namespaced reference industries")
	cmd.Flags().IntVar(&params.Skills, "skills", 40, "namespaced reference skills")
	cmd.Flags().IntVar(&params.Benefits, "benefits", 15, "namespaced reference benefits")
	cmd.Flags().IntVar(&params.JobsTarget, "jobs-target", 120, "target count of baseline seeded job offers")
	cmd.Flags().StringVar(&params.OutputDir, "output-dir", "data", "directory for the account pool files")
	cmd.Flags().StringVar(&params.Format, "format", "json", "account pool output format: json, csv or both")
	cmd.Flags().BoolVar(&jsonSummary, "json-summary", false, "print a JSON summary (no secrets)")

	return cmd
}
