package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/wardwatch/internal/core/cluster"
	"github.com/agenthands/wardwatch/internal/core/contact"
	"github.com/agenthands/wardwatch/internal/core/culture"
	"github.com/agenthands/wardwatch/internal/core/exposure"
	"github.com/agenthands/wardwatch/internal/core/model"
	"github.com/agenthands/wardwatch/internal/core/visit"
)

const DefaultWindow = 14 * 24 * time.Hour

// Options carries everything a run depends on. There is no package-level
// state; two pipelines with different options can run side by side.
type Options struct {
	Window         time.Duration
	PositiveMarker string
	Workers        int
}

func DefaultOptions() Options {
	return Options{
		Window:         DefaultWindow,
		PositiveMarker: model.DefaultPositiveMarker,
		Workers:        4,
	}
}

type Result struct {
	Stays     []model.WardStay
	Cultures  []model.PositiveCulture
	Exposures []model.ExposureRecord
	Pairs     []model.ContactPair
	Graph     *cluster.Graph
	Clusters  []cluster.Cluster
	Warnings  []model.Warning
}

// Document is the serialized form of the result's graph.
func (r *Result) Document() cluster.Document {
	return cluster.ToDocument(r.Graph)
}

type Pipeline struct {
	Options Options
	Logger  *zap.Logger
}

func NewPipeline(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Options: opts,
		Logger:  logger,
	}
}

// Run derives ward stays and positive cultures, joins them into exposures,
// detects contacts and clusters them. Structural problems in the input are
// returned as *model.MalformedInputError; empty intermediate results are
// reported as warnings.
func (p *Pipeline) Run(ctx context.Context, transfers []model.TransferRow, micro []model.MicroRow) (*Result, error) {
	if p.Options.Window < 0 {
		return nil, fmt.Errorf("risk window must not be negative, got %s", p.Options.Window)
	}

	stays, err := visit.BuildStays(transfers)
	if err != nil {
		return nil, err
	}

	cultures, err := culture.Index(micro, p.Options.PositiveMarker)
	if err != nil {
		return nil, err
	}

	res := &Result{Stays: stays, Cultures: cultures}
	if len(cultures) == 0 {
		res.warn(model.WarnNoPositiveCultures, "no microbiology result matched the positive marker %q", p.Options.PositiveMarker)
	}

	res.Exposures = exposure.Join(cultures, stays, p.Options.Window)
	if len(cultures) > 0 && len(res.Exposures) == 0 {
		res.warn(model.WarnNoExposures, "no ward stay overlaps the risk window of any positive culture")
	}

	pairs, err := contact.NewDetector(p.Options.Window, p.Options.Workers).Detect(ctx, res.Exposures)
	if err != nil {
		return nil, fmt.Errorf("failed to detect contacts: %w", err)
	}
	res.Pairs = pairs
	if len(res.Exposures) > 0 && len(pairs) == 0 {
		res.warn(model.WarnNoContacts, "no contact pairs found")
	}

	res.Graph = cluster.Build(pairs)
	res.Clusters = res.Graph.Clusters()

	p.Logger.Debug("pipeline finished",
		zap.Int("stays", len(stays)),
		zap.Int("positive_cultures", len(cultures)),
		zap.Int("exposures", len(res.Exposures)),
		zap.Int("contact_pairs", len(pairs)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Duration("window", p.Options.Window),
	)
	for _, w := range res.Warnings {
		p.Logger.Warn(w.Message, zap.String("code", string(w.Code)))
	}

	return res, nil
}

func (r *Result) warn(code model.WarningCode, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, model.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}
