package abstraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/handbucket/internal/fileutil"
)

// Trainer produces a centroid store: for each street it samples deals,
// extracts features, normalises them, clusters with k-means, and persists
// the result. GenerateCentroids is idempotent given the same configuration.
type Trainer struct {
	cfg   Config
	log   *log.Logger
	clock quartz.Clock
}

// TrainerOption customises a Trainer.
type TrainerOption func(*Trainer)

// WithLogger routes trainer diagnostics to the given logger.
func WithLogger(logger *log.Logger) TrainerOption {
	return func(t *Trainer) { t.log = logger }
}

// WithClock substitutes the clock used for run timing.
func WithClock(clock quartz.Clock) TrainerOption {
	return func(t *Trainer) { t.clock = clock }
}

// NewTrainer validates the configuration and builds a trainer.
func NewTrainer(cfg Config, opts ...TrainerOption) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer config: %w", err)
	}
	t := &Trainer{cfg: cfg, log: log.Default(), clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// GenerateCentroids runs the full offline pipeline and writes the centroid
// store plus the k-means and data-distribution reports.
func (t *Trainer) GenerateCentroids(ctx context.Context) error {
	start := t.clock.Now()

	for _, dir := range []string{t.cfg.DataDir(), t.cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output tree: %w", err)
		}
	}

	sampler := NewSampler(t.cfg.Seed, t.cfg.Workers)
	store := &Store{}
	var kmeansLog, report bytes.Buffer

	for street := Flop; street <= River; street++ {
		streetStart := t.clock.Now()

		t.log.Info("sampling street", "street", street, "samples", t.cfg.Samples[street], "workers", t.cfg.Workers)
		data, err := sampler.Sample(ctx, street, t.cfg.Samples[street])
		if err != nil {
			return fmt.Errorf("sample %s: %w", street, err)
		}

		stats := ComputeStats(data, street.FeatureDim())
		writeDistributionReport(&report, street, data, stats)
		stats.ApplyAll(data)

		k := t.cfg.Buckets[street]
		if k > len(data) {
			t.log.Warn("clamping bucket count to sample count", "street", street, "k", k, "samples", len(data))
			k = len(data)
		}

		result, err := KMeans(ctx, data, k, KMeansOptions{
			MaxIters: t.cfg.MaxIters,
			Epsilon:  t.cfg.Epsilon,
			Seed:     t.cfg.KMeansSeed,
			Workers:  t.cfg.Workers,
		})
		if err != nil {
			return fmt.Errorf("cluster %s: %w", street, err)
		}

		store.Streets[street] = StreetModel{Stats: stats, Centroids: result.Centroids}

		elapsed := t.clock.Now().Sub(streetStart)
		t.log.Info("street clustered",
			"street", street,
			"k", k,
			"iterations", result.Iterations,
			"reseeds", result.Reseeds,
			"inertia", result.Inertia[len(result.Inertia)-1],
			"elapsed", elapsed)

		fmt.Fprintf(&kmeansLog, "street=%s samples=%d k=%d iterations=%d reseeds=%d elapsed=%s\n",
			street, len(data), k, result.Iterations, result.Reseeds, elapsed)
		for i, inertia := range result.Inertia {
			fmt.Fprintf(&kmeansLog, "street=%s iter=%d inertia=%.6f\n", street, i, inertia)
		}
	}

	if err := store.Save(t.cfg.StorePath()); err != nil {
		return fmt.Errorf("persist centroids: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(t.cfg.LogsDir(), "kmeans_log.txt"), kmeansLog.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write kmeans log: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(t.cfg.LogsDir(), "data_distribution_report.txt"), report.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write distribution report: %w", err)
	}

	t.log.Info("training complete", "store", t.cfg.StorePath(), "elapsed", t.clock.Now().Sub(start))
	return nil
}

// featureNames labels the report columns per street.
func featureNames(street Street) []string {
	if street == River {
		return []string{"equity_total", "equity_vs_strong", "equity_vs_weak", "blocker_index"}
	}
	return []string{"ehs", "asymmetry", "nut_potential"}
}

// writeDistributionReport appends per-feature summary statistics of the raw
// (pre-normalisation) training data for one street.
func writeDistributionReport(w *bytes.Buffer, street Street, data [][]float32, stats Stats) {
	fmt.Fprintf(w, "[%s] samples=%d\n", street, len(data))
	names := featureNames(street)
	for f, name := range names {
		lo, hi := data[0][f], data[0][f]
		for _, point := range data {
			if point[f] < lo {
				lo = point[f]
			}
			if point[f] > hi {
				hi = point[f]
			}
		}
		fmt.Fprintf(w, "  %-18s min=%+.4f mean=%+.4f max=%+.4f std=%.4f\n",
			name, lo, stats.Mean[f], hi, stats.Std[f])
	}
}
