package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/wardwatch/internal/config"
	"github.com/agenthands/wardwatch/internal/core"
	"github.com/agenthands/wardwatch/internal/ingest"
	"github.com/agenthands/wardwatch/internal/logger"
)

type clusterOptions struct {
	transfers  string
	micro      string
	windowDays int
	out        string
	pairsOut   string
	summary    bool
}

func newClusterCmd(root *rootOptions) *cobra.Command {
	var opts clusterOptions

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Run contact detection on transfer and microbiology tables and write the graph JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, log, err := runPipeline(cmd.Context(), root, &opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return writeOutputs(cmd, &opts, res)
		},
	}
	bindClusterFlags(cmd, &opts)
	return cmd
}

func bindClusterFlags(cmd *cobra.Command, opts *clusterOptions) {
	cmd.Flags().StringVar(&opts.transfers, "transfers", "", "transfers table (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.micro, "micro", "", "microbiology table (.csv or .xlsx)")
	cmd.Flags().IntVar(&opts.windowDays, "window-days", 0, "risk window in days (overrides config)")
	cmd.Flags().StringVar(&opts.out, "out", "", "write graph JSON here instead of stdout")
	cmd.Flags().StringVar(&opts.pairsOut, "pairs", "", "also write contact pairs as CSV")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print the cluster summary to stderr")
}

func runPipeline(ctx context.Context, root *rootOptions, opts *clusterOptions) (*core.Result, *config.Config, *zap.Logger, error) {
	if opts.transfers == "" || opts.micro == "" {
		return nil, nil, nil, errNoInput
	}

	cfg, err := config.Load(root.configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// Zero leaves the configured window in place.
	if opts.windowDays != 0 {
		if err := config.CheckWindowDays(opts.windowDays); err != nil {
			return nil, nil, nil, fmt.Errorf("--window-days: %w", err)
		}
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "wardwatch")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rd := ingest.NewReader()
	transfers, err := rd.LoadTransfers(opts.transfers)
	if err != nil {
		return nil, nil, nil, err
	}
	micro, err := rd.LoadMicrobiology(opts.micro)
	if err != nil {
		return nil, nil, nil, err
	}

	coreOpts := cfg.Core()
	if opts.windowDays != 0 {
		coreOpts.Window = config.Days(opts.windowDays)
	}

	res, err := core.NewPipeline(coreOpts, log).Run(ctx, transfers, micro)
	if err != nil {
		return nil, nil, nil, err
	}
	return res, cfg, log, nil
}

func writeOutputs(cmd *cobra.Command, opts *clusterOptions, res *core.Result) error {
	doc := res.Document()

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output file '%s': %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write graph JSON: %w", err)
	}

	if opts.pairsOut != "" {
		if err := writePairs(opts.pairsOut, res); err != nil {
			return err
		}
	}

	if opts.summary {
		for _, warn := range res.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warn.Message)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), doc.Summary)
	}
	return nil
}

func writePairs(path string, res *core.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pairs file '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"patient_id_1", "patient_id_2", "organism", "location"})
	for _, p := range res.Pairs {
		_ = w.Write([]string{p.PatientID1, p.PatientID2, p.Organism, p.Location})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write pairs: %w", err)
	}
	return nil
}
