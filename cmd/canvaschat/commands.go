package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"canvaschat/application/queries"
	"canvaschat/domain/core/aggregates"
	"canvaschat/infrastructure/config"
	"canvaschat/infrastructure/di"
	"canvaschat/infrastructure/persistence/relational"
	"canvaschat/infrastructure/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// --- Global Command Variables ---
var (
	configFile   string
	snapshotPath string
	nodeID       string
	nodeRef      string
	ownerID      string
	message      string
	seedPath     string

	rootCmd = &cobra.Command{
		Use:   "canvaschat",
		Short: "Build LLM prompt context for nodes of a chat canvas",
		Long: `canvaschat resolves the ancestors of a canvas node, collects the
messages of the nodes the caller owns, and prints the resulting context as JSON.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configFile != "" {
				os.Setenv("CONFIG_FILE", configFile)
			}
		},
	}

	chainCmd = &cobra.Command{
		Use:   "chain",
		Short: "Print the context chain of a node",
		RunE:  runChain,
	}

	assembleCmd = &cobra.Command{
		Use:   "assemble",
		Short: "Print the prompt context for a new message on a node",
		RunE:  runAssemble,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Reprint the context chain of a node whenever the snapshot file changes",
		RunE:  runWatch,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the chat tables in the configured SQL database",
		RunE:  runMigrate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	for _, cmd := range []*cobra.Command{chainCmd, assembleCmd, watchCmd} {
		cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "canvas snapshot JSON file")
		cmd.Flags().StringVar(&nodeID, "node-id", "", "persisted id of the current node")
		cmd.Flags().StringVar(&nodeRef, "node-ref", "", "canvas ref of the current node")
		cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file of nodes and messages loaded into the store first")
		_ = cmd.MarkFlagRequired("snapshot")
		cmd.MarkFlagsMutuallyExclusive("node-id", "node-ref")
		cmd.MarkFlagsOneRequired("node-id", "node-ref")
	}

	assembleCmd.Flags().StringVar(&ownerID, "owner", "", "user the context is assembled for")
	assembleCmd.Flags().StringVar(&message, "message", "", "new user message")
	_ = assembleCmd.MarkFlagRequired("owner")
	_ = assembleCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(chainCmd, assembleCmd, watchCmd, migrateCmd)
}

// withContainer wires the application, optionally seeds the store, runs fn,
// then flushes metrics and releases resources
func withContainer(ctx context.Context, fn func(*di.Container) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	if seedPath != "" {
		nodes, messages, err := snapshot.Seed(ctx, seedPath, container.Backend)
		if err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		container.Logger.Info("Store seeded",
			zap.String("path", seedPath),
			zap.Int("nodes", nodes),
			zap.Int("messages", messages),
		)
	}

	runErr := fn(container)
	if err := container.FlushMetrics(); err != nil {
		container.Logger.Warn("Failed to write metrics textfile", zap.Error(err))
	}
	return runErr
}

func runChain(cmd *cobra.Command, args []string) error {
	return withContainer(cmd.Context(), func(c *di.Container) error {
		snap, err := snapshot.LoadFile(snapshotPath)
		if err != nil {
			return err
		}
		return printChain(cmd.Context(), c, snap, cmd.OutOrStdout())
	})
}

func runAssemble(cmd *cobra.Command, args []string) error {
	return withContainer(cmd.Context(), func(c *di.Container) error {
		snap, err := snapshot.LoadFile(snapshotPath)
		if err != nil {
			return err
		}

		result, err := c.QueryBus.Ask(cmd.Context(), queries.AssembleContextQuery{
			Snapshot: snap,
			NodeID:   nodeID,
			NodeRef:  nodeRef,
			OwnerID:  ownerID,
			Message:  message,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withContainer(ctx, func(c *di.Container) error {
		watcher, err := snapshot.NewWatcher(snapshotPath, c.Logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		watcher.OnChange(func(snap *aggregates.Snapshot) {
			if err := printChain(ctx, c, snap, out); err != nil {
				c.Logger.Error("Failed to build chain", zap.Error(err))
			}
		})

		if err := printChain(ctx, c, watcher.Current(), out); err != nil {
			return err
		}

		watcher.Start()
		<-ctx.Done()
		watcher.Stop()
		return nil
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Store.Driver != config.DriverSQLite && cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate needs a sqlite or postgres store, got %q", cfg.Store.Driver)
	}

	db, err := relational.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := relational.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.Store.Driver)
	return nil
}

func printChain(ctx context.Context, c *di.Container, snap *aggregates.Snapshot, out io.Writer) error {
	result, err := c.QueryBus.Ask(ctx, queries.GetChainQuery{
		Snapshot: snap,
		NodeID:   nodeID,
		NodeRef:  nodeRef,
	})
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
