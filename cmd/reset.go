package cmd

import (
	"context"
	"fmt"
)

// Reset erases every persisted lock key: unlock flag, attempts and lockout
func Reset(_ context.Context, configPath string, force bool) {
	cfg, db, err := OpenDB(configPath)
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	if !force && !Confirm(fmt.Sprintf("Erase all lock state in %s?", cfg.StatePath)) {
		fmt.Println("Cancelled")
		return
	}

	removed, err := db.Reset()
	if err != nil {
		db.Close()
		HandleError(err)
	}
	fmt.Printf("✓ Reset (%d keys removed)\n", removed)
}
