package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellymatch/internal/cachestore"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent result cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheCleanupCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheBackupCmd())
	cmd.AddCommand(newCacheRestoreCmd())

	return cmd
}

func openStore() (*cachestore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := cachestore.Open(cfg.Cache.Path, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return store, nil
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Cache: %s\n", stats.Path)
			fmt.Printf("  Total entries:   %d\n", stats.TotalEntries)
			fmt.Printf("  Expired entries: %d\n", stats.ExpiredEntries)
			return nil
		},
	}
}

func newCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Cleanup()
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d expired entries\n", removed)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		},
	}
}

func newCacheBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Write a consistent copy of the cache database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Backup(args[0]); err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", args[0])
			return nil
		},
	}
}

func newCacheRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <src>",
		Short: "Merge entries from a cache backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Restore(args[0]); err != nil {
				return err
			}
			fmt.Printf("Restored entries from %s\n", args[0])
			return nil
		},
	}
}
