package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/internal"
	"aquacheck/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"
)

// BatchService scores many samples against the shared classifier
type BatchService struct {
	analysis    *AnalysisService
	concurrency int64
	logger      *internal.Logger
}

// BatchItem is the outcome for one source row
type BatchItem struct {
	Line   int             `json:"line"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchSummary aggregates a batch
type BatchSummary struct {
	Total            int                     `json:"total"`
	Scored           int                     `json:"scored"`
	Failed           int                     `json:"failed"`
	Potable          int                     `json:"potable"`
	NotPotable       int                     `json:"not_potable"`
	MeanConfidence   float64                 `json:"mean_confidence"`
	MedianConfidence float64                 `json:"median_confidence"`
	MinConfidence    float64                 `json:"min_confidence"`
	MaxConfidence    float64                 `json:"max_confidence"`
	OutOfBand        map[water.Parameter]int `json:"out_of_band"`
}

// BatchReport is the full result of a batch run, items in source order
type BatchReport struct {
	ID       core.BatchID  `json:"id"`
	Items    []BatchItem   `json:"items"`
	Summary  BatchSummary  `json:"summary"`
	Duration time.Duration `json:"duration_ns"`
}

// NewBatchService creates a batch service running at most concurrency
// predictions at once.
func NewBatchService(analysis *AnalysisService, concurrency int, logger *internal.Logger) *BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		analysis:    analysis,
		concurrency: int64(concurrency),
		logger:      logger.With("Batch"),
	}
}

// ScoreReader reads all rows from reader and scores them.
func (b *BatchService) ScoreReader(ctx context.Context, reader ports.SampleReader) (*BatchReport, error) {
	rows, err := reader.ReadSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return b.Score(ctx, rows)
}

// Score validates and analyzes every row. Row failures are reported per item;
// only cancellation of ctx fails the whole batch.
func (b *BatchService) Score(ctx context.Context, rows []ports.SampleRow) (*BatchReport, error) {
	start := time.Now()
	report := &BatchReport{
		ID:    core.NewBatchID(),
		Items: make([]BatchItem, len(rows)),
	}
	b.logger.Info("batch %s: scoring %d rows with concurrency %d", report.ID, len(rows), b.concurrency)

	sem := semaphore.NewWeighted(b.concurrency)
	var wg sync.WaitGroup

	for i, row := range rows {
		report.Items[i].Line = row.Line
		if row.Err != nil {
			report.Items[i].Error = row.Err.Error()
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, row ports.SampleRow) {
			defer sem.Release(1)
			defer wg.Done()
			result, err := b.analysis.HandleSubmission(ctx, row.Values)
			if err != nil {
				report.Items[i].Error = err.Error()
				return
			}
			report.Items[i].Result = result
		}(i, row)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Summary = summarize(report.Items)
	report.Duration = time.Since(start)
	b.logger.Info("batch %s: %d scored, %d failed in %s",
		report.ID, report.Summary.Scored, report.Summary.Failed, report.Duration)
	return report, nil
}

func summarize(items []BatchItem) BatchSummary {
	summary := BatchSummary{
		Total:     len(items),
		OutOfBand: make(map[water.Parameter]int),
	}

	confidences := make([]float64, 0, len(items))
	for _, item := range items {
		if item.Result == nil {
			summary.Failed++
			continue
		}
		summary.Scored++
		v := item.Result.Verdict
		if v.Potable {
			summary.Potable++
		} else {
			summary.NotPotable++
		}
		confidences = append(confidences, v.Confidence)
		for _, p := range v.OutOfBand() {
			summary.OutOfBand[p]++
		}
	}

	if len(confidences) == 0 {
		return summary
	}
	// stats only errors on empty input, which is excluded above.
	summary.MeanConfidence, _ = stats.Mean(confidences)
	summary.MedianConfidence, _ = stats.Median(confidences)
	summary.MinConfidence, _ = stats.Min(confidences)
	summary.MaxConfidence, _ = stats.Max(confidences)
	return summary
}
