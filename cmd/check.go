package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/keketsolithane/keketso/internal/logging"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and reach the store",
	Long: `Load and validate the configuration, open the configured store and
ping it. Stores that can count their rows also report how many messages and
quote requests they hold. Exits non-zero when the store URL or key is missing or the store
cannot be reached.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Duration("timeout", 5*time.Second, "how long to wait for the store")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	return reportStore(ctx, cmd.OutOrStdout(), cfg.Store.Driver, st)
}

func reportStore(ctx context.Context, w io.Writer, driver string, st store.Store) error {
	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("store %s unreachable: %w", driver, err)
	}
	fmt.Fprintf(w, "store %s: ok\n", driver)

	counter, ok := st.(store.Counter)
	if !ok {
		return nil
	}
	for _, table := range []string{store.MessagesTable, store.QuotesTable} {
		n, err := counter.Count(ctx, table)
		if err != nil {
			return fmt.Errorf("store %s: %w", driver, err)
		}
		fmt.Fprintf(w, "  %s: %d\n", table, n)
	}
	return nil
}
