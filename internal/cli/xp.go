package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/logger"
)

var xpTop int

var xpCmd = &cobra.Command{
	Use:   "xp [uid...]",
	Short: "Show crumbs for users",
	Long:  "Show the decay-adjusted crumbs, tier and status for each uid. With no uid, shows the top users of the SQLite ledger.",
	RunE:  runXP,
}

func init() {
	xpCmd.Flags().IntVarP(&xpTop, "top", "n", 10, "number of users listed when no uid is given")
}

func runXP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ledger, closeLedger, err := openLedger(cfg, db, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uids := args
	if len(uids) == 0 {
		if uids, err = db.TopUsers(ctx, xpTop); err != nil {
			return fmt.Errorf("top users: %w", err)
		}
		if len(uids) == 0 {
			fmt.Println("No users have earned crumbs yet.")
			return nil
		}
	}

	// Reading consumes owed decay, the same as the xp endpoint.
	svc := crumbs.NewService(ledger, nil, log)
	for _, uid := range uids {
		st, err := svc.Read(ctx, uid)
		if err != nil {
			return fmt.Errorf("read %s: %w", uid, err)
		}
		fmt.Printf("%-28s %6d  %-12s %s\n", uid, st.Score, st.Tier, st.Status)
	}
	return nil
}
