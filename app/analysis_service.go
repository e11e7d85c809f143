package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"anastat/adapters/stats/bootstrap"
	"anastat/adapters/stats/correlation"
	"anastat/adapters/stats/descriptive"
	"anastat/adapters/stats/hypotest"
	"anastat/adapters/stats/outlier"
	"anastat/adapters/stats/qc"
	"anastat/adapters/stats/reliability"
	"anastat/adapters/stats/sanitize"
	"anastat/adapters/stats/timeseries"
	"anastat/adapters/stats/uncertainty"
	"anastat/adapters/stats/viz"
	"anastat/domain/core"
	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/ports"
)

// AnalysisService orchestrates a full statistical run: sanitize once, then
// fan the enabled analyses out concurrently. Per-analysis failures are
// recorded, not fatal; only input validation and sanitization abort the run.
type AnalysisService struct {
	rngPort     ports.RNGPort
	outliers    *outlier.Engine
	timeSeries  *timeseries.Engine
	hypothesis  *hypotest.Engine
	qualityCtl  *qc.Engine
	reliability *reliability.Engine
}

// NewAnalysisService wires the analysis engines around one RNG port.
func NewAnalysisService(rngPort ports.RNGPort) *AnalysisService {
	return &AnalysisService{
		rngPort:     rngPort,
		outliers:    outlier.NewEngine(rngPort),
		timeSeries:  timeseries.NewEngine(),
		hypothesis:  hypotest.NewEngine(),
		qualityCtl:  qc.NewEngine(),
		reliability: reliability.NewEngine(),
	}
}

// Analyze validates, sanitizes and runs every enabled analysis over the
// datasets. Progress is reported best-effort and unordered.
func (s *AnalysisService) Analyze(ctx context.Context, datasets [][]float64, opts stats.AnalysisOptions, progress ports.ProgressReporter) (*stats.AnalysisResults, error) {
	start := time.Now()
	if len(datasets) == 0 {
		return nil, errors.InvalidInput("at least one dataset is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = ports.NopProgress{}
	}

	sanitizer := sanitize.New(opts.NaNPolicy, opts.Paired)
	clean, report, err := sanitizer.Clean(datasets)
	if err != nil {
		return nil, fmt.Errorf("sanitization failed: %w", err)
	}

	uncertainties, confidences := sanitize.ExpandUncertainties(opts.Uncertainty, clean)

	runID := core.NewRunID()
	results := &stats.AnalysisResults{
		RunID:        runID,
		Sanitization: report,
		Failures:     make(map[stats.AnalysisKind]string),
		StartedAt:    core.Now(),
	}
	log.Printf("[AnalysisService] Run %s started: %d datasets, policy %s", runID, len(clean), opts.NaNPolicy)

	var mu sync.Mutex
	fail := func(kind stats.AnalysisKind, err error) {
		mu.Lock()
		results.Failures[kind] = err.Error()
		mu.Unlock()
		log.Printf("[AnalysisService] Run %s: %s failed: %v", runID, kind, err)
	}

	tasks := s.buildTasks(clean, uncertainties, confidences, opts, results, &mu, fail)

	maxParallel := int64(opts.MaxParallel)
	if maxParallel < 1 {
		maxParallel = 4
	}
	sem := semaphore.NewWeighted(maxParallel)
	group, groupCtx := errgroup.WithContext(ctx)

	total := len(tasks)
	completed := 0
	for _, task := range tasks {
		task := task
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			defer func() {
				if r := recover(); r != nil {
					fail(task.kind, fmt.Errorf("panic: %v", r))
				}
				mu.Lock()
				completed++
				done := completed
				mu.Unlock()
				progress.Report(done, total, string(task.kind))
			}()

			if err := task.run(groupCtx); err != nil {
				fail(task.kind, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if opts.Wants(stats.KindVisualization) {
		s.Visualize(len(clean), results)
	}

	results.Elapsed = time.Since(start).Seconds()
	log.Printf("[AnalysisService] Run %s finished in %.2fs with %d failures", runID, results.Elapsed, len(results.Failures))
	return results, nil
}

type analysisTask struct {
	kind stats.AnalysisKind
	run  func(ctx context.Context) error
}

// buildTasks assembles one task per enabled analysis. Multi-dataset analyses
// are silently skipped, not failed, below their dataset threshold:
// correlation needs 2, reliability needs 3.
func (s *AnalysisService) buildTasks(clean, uncertainties, confidences [][]float64, opts stats.AnalysisOptions, results *stats.AnalysisResults, mu *sync.Mutex, fail func(stats.AnalysisKind, error)) []analysisTask {
	var tasks []analysisTask
	add := func(kind stats.AnalysisKind, run func(ctx context.Context) error) {
		if opts.Wants(kind) {
			tasks = append(tasks, analysisTask{kind: kind, run: run})
		}
	}
	rowFor := func(rows [][]float64, i int) []float64 {
		if i < len(rows) {
			return rows[i]
		}
		return nil
	}

	add(stats.KindDescriptive, func(ctx context.Context) error {
		boot := bootstrap.NewEngine(s.rngPort, opts.BootstrapSamples)
		out := make([]stats.DescriptiveStats, 0, len(clean))
		intervals := make([][]stats.BootstrapResult, len(clean))
		for i, data := range clean {
			d, err := descriptive.Compute(data)
			if err != nil {
				return err
			}
			out = append(out, d)
			if len(data) < 2 {
				continue
			}
			for _, st := range []struct {
				name string
				fn   bootstrap.Statistic
			}{{"mean", bootstrap.Mean}, {"median", bootstrap.Median}} {
				ci, err := boot.CI(ctx, data, st.fn, st.name, opts.ConfidenceLevel, opts.RandomSeed+int64(i))
				if err != nil {
					return err
				}
				intervals[i] = append(intervals[i], ci)
			}
		}
		mu.Lock()
		results.Descriptive = out
		results.Bootstrap = intervals
		mu.Unlock()
		return nil
	})

	add(stats.KindDistribution, func(ctx context.Context) error {
		dist, err := descriptive.AnalyzeDistribution(clean[0])
		if err != nil {
			return err
		}
		mu.Lock()
		results.Distribution = dist
		mu.Unlock()
		return nil
	})

	add(stats.KindOutliers, func(ctx context.Context) error {
		out := make([]stats.OutlierAnalysis, 0, len(clean))
		for i, data := range clean {
			o, err := s.outliers.Detect(ctx, data, rowFor(uncertainties, i), rowFor(confidences, i), opts)
			if err != nil {
				return err
			}
			out = append(out, *o)
		}
		mu.Lock()
		results.Outliers = out
		mu.Unlock()
		return nil
	})

	if len(uncertainties) > 0 {
		add(stats.KindUncertainty, func(ctx context.Context) error {
			budgets := make([]stats.UncertaintyBudget, 0, len(clean))
			for i, data := range clean {
				u := rowFor(uncertainties, i)
				if len(u) == 0 {
					continue
				}
				b, err := uncertainty.DatasetBudget(fmt.Sprintf("mean(dataset %d)", i), data, u)
				if err != nil {
					return err
				}
				budgets = append(budgets, *b)
			}
			mu.Lock()
			results.Uncertainty = budgets
			mu.Unlock()
			return nil
		})
	}

	if len(clean) >= 2 {
		add(stats.KindCorrelation, func(ctx context.Context) error {
			boot := bootstrap.NewEngine(s.rngPort, opts.BootstrapSamples)
			corr, err := correlation.NewEngine(s.rngPort, boot).Analyze(ctx, clean, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results.Correlation = corr
			mu.Unlock()
			return nil
		})
	}
	if len(clean) >= 3 {
		add(stats.KindReliability, func(ctx context.Context) error {
			rel, err := s.reliability.Analyze(clean)
			if err != nil {
				return err
			}
			mu.Lock()
			results.Reliability = rel
			mu.Unlock()
			return nil
		})
	}

	add(stats.KindTimeSeries, func(ctx context.Context) error {
		out := make([]stats.TimeSeriesAnalysis, 0, len(clean))
		for _, data := range clean {
			ts, err := s.timeSeries.Analyze(data, opts)
			if err != nil {
				return err
			}
			out = append(out, *ts)
		}
		mu.Lock()
		results.TimeSeries = out
		mu.Unlock()
		return nil
	})

	add(stats.KindQualityCtl, func(ctx context.Context) error {
		out := make([]stats.QualityControlAnalysis, 0, len(clean))
		for _, data := range clean {
			q, err := s.qualityCtl.Analyze(data, opts.SpecLimits)
			if err != nil {
				return err
			}
			out = append(out, *q)
		}
		mu.Lock()
		results.QualityCtl = out
		mu.Unlock()
		return nil
	})

	add(stats.KindHypothesis, func(ctx context.Context) error {
		tests, err := s.hypothesis.Tests(clean, opts)
		if err != nil {
			return err
		}
		mu.Lock()
		results.Hypothesis = tests
		mu.Unlock()
		return nil
	})

	add(stats.KindPower, func(ctx context.Context) error {
		power, err := s.hypothesis.Power(clean, opts)
		if err != nil {
			return err
		}
		mu.Lock()
		results.Power = power
		mu.Unlock()
		return nil
	})

	// Visualization reads the other slots, so it runs after everything else
	// in a dependent task appended last; ordering is enforced by a direct
	// synchronous pass in Analyze when the slot is enabled.
	return tasks
}

// Visualize fills the visualization slot from already-computed results.
func (s *AnalysisService) Visualize(numDatasets int, results *stats.AnalysisResults) {
	results.Visualization = viz.Suggest(numDatasets, results.Descriptive, results.Distribution, results.Outliers)
}
