package services

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/models"
	"couple-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	scanPageSize = 100
	// LowScoreThreshold is the score below which both members are notified
	LowScoreThreshold = 40
)

// ScoreComputer computes the score of a couple
type ScoreComputer interface {
	ComputeScore(ctx context.Context, coupleID string) (int, error)
}

// LowScoreNotifier notifies a user about a low score
type LowScoreNotifier interface {
	NotifyLowScore(ctx context.Context, uid string, score int) (bool, error)
}

// Report summarizes one scan run
type Report struct {
	RunID    string
	Scanned  int
	Skipped  int
	Notified int
	Failed   int
}

// HealthScanJob checks every couple's score and nudges couples that drift apart
type HealthScanJob struct {
	couples  *repository.CoupleRepository
	scores   ScoreComputer
	notifier LowScoreNotifier
}

// NewHealthScanJob creates a new health scan job
func NewHealthScanJob(couples *repository.CoupleRepository, scores ScoreComputer, notifier LowScoreNotifier) *HealthScanJob {
	return &HealthScanJob{
		couples:  couples,
		scores:   scores,
		notifier: notifier,
	}
}

// Run scans all couples one at a time. A failing couple is logged and counted,
// never stopping the rest of the scan.
func (j *HealthScanJob) Run(ctx context.Context) Report {
	report := Report{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", report.RunID).Logger()
	logger.Info().Msg("Starting relationship health scan")

	startAfter := ""
	for {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Msg("Health scan interrupted")
			break
		}

		page, err := j.couples.List(ctx, startAfter, scanPageSize)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list couples")
			break
		}

		for _, couple := range page {
			report.Scanned++
			if err := j.scanCouple(ctx, logger, couple, &report); err != nil {
				report.Failed++
				logger.Error().Err(err).Str("couple_id", couple.ID).Msg("Failed to process couple")
			}
		}

		if len(page) < scanPageSize {
			break
		}
		startAfter = page[len(page)-1].ID
	}

	logger.Info().
		Int("scanned", report.Scanned).
		Int("skipped", report.Skipped).
		Int("notified", report.Notified).
		Int("failed", report.Failed).
		Msg("Relationship health scan finished")
	return report
}

func (j *HealthScanJob) scanCouple(ctx context.Context, logger zerolog.Logger, couple *models.Couple, report *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if !couple.HasMembers() {
		logger.Warn().Str("couple_id", couple.ID).Msg("Couple is missing a member, skipping")
		report.Skipped++
		return nil
	}

	score, err := j.scores.ComputeScore(ctx, couple.ID)
	if err != nil {
		return fmt.Errorf("failed to compute score: %w", err)
	}
	logger.Debug().Str("couple_id", couple.ID).Int("score", score).Msg("Score computed")

	if score >= LowScoreThreshold {
		return nil
	}

	// one member failing must not cost the other their notification
	var errs []error
	for _, uid := range []string{couple.User1ID, couple.User2ID} {
		sent, err := j.notifier.NotifyLowScore(ctx, uid, score)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to notify %s: %w", uid, err))
			continue
		}
		if sent {
			report.Notified++
		}
	}
	return errors.Join(errs...)
}
