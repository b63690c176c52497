package jobs

import (
	"context"
	"fmt"

	"github.com/SaChIn5419/stock-screener/internal/pipeline"
	"github.com/SaChIn5419/stock-screener/internal/report"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// ScreenJob runs the full screening pipeline on a schedule and writes
// the CSV report.
type ScreenJob struct {
	screener *pipeline.Screener
	writer   *report.Writer
	mode     string
	workers  int
	schedule string
	logger   *logger.Logger
}

// NewScreenJob creates a scheduled screen job
func NewScreenJob(screener *pipeline.Screener, writer *report.Writer, mode string, workers int, schedule string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		screener: screener,
		writer:   writer,
		mode:     mode,
		workers:  workers,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "screen"
}

// Schedule returns the cron expression
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes one screening run and persists the report
func (j *ScreenJob) Run(ctx context.Context) error {
	table, err := j.screener.Screen(ctx, j.mode, j.workers)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if len(table) == 0 {
		j.logger.Warn("Scheduled screen produced no results, skipping report")
		return nil
	}

	path, err := j.writer.WriteCSV(table)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"rows": len(table),
		"path": path,
	}).Info("Scheduled screen report written")

	return nil
}
