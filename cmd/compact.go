package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the state database to reclaim unused space
func Compact(_ context.Context, configPath string) {
	cfg, db, err := OpenDB(configPath)
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	info, err := os.Stat(cfg.StatePath)
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := db.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(cfg.StatePath)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
