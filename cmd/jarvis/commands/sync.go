// ABOUTME: Sync command group manages the Charm cloud mirror of preferences
// ABOUTME: Provides status, manual sync, push, pull, and wipe
package commands

import (
	"errors"
	"fmt"

	"github.com/harper/jarvis/internal/app"
	"github.com/harper/jarvis/internal/charm"
	"github.com/harper/jarvis/internal/config"
	"github.com/spf13/cobra"
)

var syncConfirm bool

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud sync",
		Long: `Manage the Charm cloud mirror of preferences.

When charm_enabled is set, every preference write is mirrored to
Charm KV. These commands inspect and repair that mirror by hand.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		RunE:  runSyncStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Sync with the Charm server",
		Args:  cobra.NoArgs,
		RunE:  runSyncNow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Mirror every local preference to Charm",
		Args:  cobra.NoArgs,
		RunE:  runSyncPush,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Copy mirrored preferences into the local database",
		Args:  cobra.NoArgs,
		RunE:  runSyncPull,
	})

	wipe := &cobra.Command{
		Use:   "wipe",
		Short: "Delete the local Charm copy and resync",
		Args:  cobra.NoArgs,
		RunE:  runSyncWipe,
	}
	wipe.Flags().BoolVar(&syncConfirm, "confirm", false, "Confirm the wipe")
	cmd.AddCommand(wipe)

	return cmd
}

func openCharm(cmd *cobra.Command) (*charm.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := setupLogging(cmd, cfg); err != nil {
		return nil, nil, err
	}
	client, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	client, cfg, err := openCharm(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	keys, err := client.ListKeys(charm.PreferencePrefix)
	if err != nil {
		return err
	}
	id, err := client.ID()
	if err != nil {
		id = "(unavailable)"
	}

	status := map[string]any{
		"enabled":     cfg.CharmEnabled,
		"host":        client.Host(),
		"database":    cfg.CharmDBName,
		"auto_sync":   client.AutoSync(),
		"user_id":     id,
		"preferences": len(keys),
	}
	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, status)
	}

	fmt.Fprintf(out, "Enabled:     %t\n", cfg.CharmEnabled)
	fmt.Fprintf(out, "Host:        %s\n", client.Host())
	fmt.Fprintf(out, "Database:    %s\n", cfg.CharmDBName)
	fmt.Fprintf(out, "Auto-sync:   %t\n", client.AutoSync())
	fmt.Fprintf(out, "User ID:     %s\n", id)
	fmt.Fprintf(out, "Preferences: %d\n", len(keys))
	return nil
}

func runSyncNow(cmd *cobra.Command, args []string) error {
	client, _, err := openCharm(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Sync(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Sync complete.")
	}
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	prefs, err := a.Store.Durable().Preferences.ListByCategory("")
	if err != nil {
		return err
	}

	client, _, err := openCharm(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	n, err := client.PushPreferences(prefs)
	if err != nil {
		return fmt.Errorf("pushed %d of %d preferences: %w", n, len(prefs), err)
	}
	if err := client.Sync(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d preferences.\n", n)
	}
	return nil
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	client, _, err := openCharm(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Sync(); err != nil {
		return err
	}
	prefs, err := client.Preferences()
	if err != nil {
		return err
	}

	a, err := openApp(cmd, app.Options{SkipCharm: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	for _, p := range prefs {
		if err := a.Store.SetPreference(p.Key, p.Category, p.Value); err != nil {
			return fmt.Errorf("pulling %s/%s: %w", p.Category, p.Key, err)
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d preferences.\n", len(prefs))
	}
	return nil
}

func runSyncWipe(cmd *cobra.Command, args []string) error {
	if !syncConfirm {
		return errors.New("wipe deletes the local Charm copy; rerun with --confirm")
	}

	client, _, err := openCharm(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Reset(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Local Charm data wiped and resynced.")
	}
	return nil
}
