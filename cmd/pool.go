package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hirewire/loadgen/internal/accounts"
)

func newPoolCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect seeded account pool files",
	}

	cmd.AddCommand(newPoolInspectCmd(app))

	return cmd
}

func newPoolInspectCmd(_ *app) *cobra.Command {
	var (
		workerIndex int
		workerCount int
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "inspect <pool-file>",
		Short: "Show a pool file's size and this worker's allocation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workerCount < 1 {
				return fmt.Errorf("--worker-count must be >= 1 (got %d)", workerCount)
			}
			if workerIndex < 0 || workerIndex >= workerCount {
				return fmt.Errorf("--worker-index must be in range [0, %d) (got %d)", workerCount, workerIndex)
			}

			pool, err := accounts.NewCache().Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pool: %s (%d accounts)\n", args[0], len(pool))
			fmt.Fprintf(out, "Worker %d/%d draws:\n", workerIndex, workerCount)
			shown := 0
			for local := 0; ; local++ {
				poolIndex := local*workerCount + workerIndex
				if poolIndex >= len(pool) {
					fmt.Fprintf(out, "  (pool exhausted after %d users)\n", local)
					break
				}
				if shown >= limit {
					fmt.Fprintf(out, "  ...\n")
					break
				}
				fmt.Fprintf(out, "  #%d -> %s\n", local, pool[poolIndex].Email)
				shown++
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workerIndex, "worker-index", 0, "worker index to preview")
	cmd.Flags().IntVar(&workerCount, "worker-count", 1, "total worker count")
	cmd.Flags().IntVar(&limit, "limit", 10, "how many allocations to print")

	return cmd
}
