package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/wardwatch/internal/driver"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var opts clusterOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run contact detection and write the contact graph to Memgraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, cfg, log, err := runPipeline(ctx, root, &opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log)
			if err != nil {
				return err
			}
			defer d.Close(context.Background())

			if err := d.BuildIndices(ctx); err != nil {
				return err
			}

			runID := uuid.New().String()
			if err := driver.SaveDocument(ctx, d, runID, res.Document()); err != nil {
				return err
			}
			log.Info("exported contact graph",
				zap.String("run_id", runID),
				zap.Int("contact_pairs", len(res.Pairs)),
				zap.Int("clusters", len(res.Clusters)),
			)
			fmt.Fprintf(cmd.ErrOrStderr(), "run_id: %s\n", runID)
			return writeOutputs(cmd, &opts, res)
		},
	}
	bindClusterFlags(cmd, &opts)
	return cmd
}
