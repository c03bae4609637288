package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached parse results",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <file>...",
	Short: "Drop the cache entries of files so they are parsed in full next time",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(GetRootDir())
		if err != nil {
			return err
		}
		defer sess.Close()

		for _, arg := range args {
			path, err := absPath(arg)
			if err != nil {
				return err
			}
			if err := sess.reparser.Invalidate(path); err != nil {
				return fmt.Errorf("invalidate %s: %w", arg, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", path)
		}
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(GetRootDir())
		if err != nil {
			return err
		}
		defer sess.Close()

		ids, err := sess.store.IDs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			entry, err := sess.store.Get(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d chunks\t%s\n",
				id, entry.Language, len(entry.Result.Chunks), entry.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd, cacheListCmd)
}
