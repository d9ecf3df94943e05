// Command heedctl is a small operational tool over a heed environment:
// stat, backup copy, and stale-reader reaping, the operations spec.md
// §4.2 marks as user-serialized maintenance rather than part of the
// transactional API.
package main

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	heed "github.com/meilisearch/heed-sub001"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var path string
	var mapSizeMB int

	root := &cobra.Command{
		Use:   "heedctl",
		Short: "Inspect and maintain a heed storage environment",
	}
	root.PersistentFlags().StringVar(&path, "path", "", "environment directory")
	root.PersistentFlags().IntVar(&mapSizeMB, "map-size-mb", 1024, "map size in MiB to use when opening")
	root.MarkPersistentFlagRequired("path")

	openEnv := func() (*heed.Env, error) {
		opts := heed.NewOptions().WithMapSize(datasize.MB * datasize.ByteSize(mapSizeMB))
		return heed.Open(path, *opts)
	}

	root.AddCommand(newStatCmd(openEnv))
	root.AddCommand(newCopyCmd(openEnv))
	root.AddCommand(newClearStaleReadersCmd(openEnv))
	return root
}

func newStatCmd(openEnv func() (*heed.Env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Print environment info",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			info, err := env.Info()
			if err != nil {
				return err
			}
			fmt.Printf("map_size=%d last_page=%d last_txn_id=%d max_readers=%d num_readers=%d\n",
				info.MapSize, info.LastPageNo, info.LastTxnID, info.MaxReaders, info.NumReaders)
			return nil
		},
	}
}

func newCopyCmd(openEnv func() (*heed.Env, error)) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "copy <destination>",
		Short: "Write a consistent backup of the environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			return env.CopyToFile(args[0], compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "omit free pages from the copy")
	return cmd
}

func newClearStaleReadersCmd(openEnv func() (*heed.Env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-stale-readers",
		Short: "Remove reader-table entries for processes that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.Close()

			n, err := env.ClearStaleReaders()
			if err != nil {
				return err
			}
			fmt.Printf("cleared %d stale reader slots\n", n)
			return nil
		},
	}
}
