package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "loadgen",
		Short:         "Job-marketplace load generator and data seeder",
		Long:          "loadgen drives synthetic candidate and employer traffic against a job-marketplace API and seeds the deterministic accounts, reference data and baseline offers that seeded personas depend on.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app := wireApp()

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newSeedCmd(app),
		newPoolCmd(app),
	)

	return rootCmd
}
