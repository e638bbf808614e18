package service

import (
	"context"
	"fmt"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/repository"
	metrics "github.com/qrtrail/qrtrail/internal/infra/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupResult reports one cleanup pass.
type CleanupResult struct {
	DeletedQRCodes int64 `json:"deletedQRCodes"`
	DeletedScans   int64 `json:"deletedScans"`
}

// CleanupService deletes time-expired guest codes and their scan events in
// bounded batches. Re-running a pass over an already-cleaned set is a no-op,
// so retries after a failed commit are safe.
type CleanupService struct {
	logger    *zap.Logger
	codes     repository.QRCodeRepository
	events    repository.ScanEventRepository
	batchSize int
}

// NewCleanupService creates a cleanup service. batchSize caps how many codes
// one pass touches; values outside (0, BatchLimit] fall back to BatchLimit.
func NewCleanupService(logger *zap.Logger, codes repository.QRCodeRepository, events repository.ScanEventRepository, batchSize int) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 || batchSize > repository.BatchLimit {
		batchSize = repository.BatchLimit
	}
	return &CleanupService{logger: logger, codes: codes, events: events, batchSize: batchSize}
}

// Run performs one cleanup pass. Unlike scan recording, failures here
// propagate to the trigger so the scheduling layer can retry.
func (s *CleanupService) Run(ctx context.Context) (*CleanupResult, error) {
	now := time.Now().UTC()

	expired, err := s.codes.FindExpiredGuest(ctx, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("find expired guest codes: %w", err)
	}
	if len(expired) == 0 {
		return &CleanupResult{}, nil
	}

	codeIDs := make([]string, 0, len(expired))
	var scanIDs []string
	for _, code := range expired {
		codeIDs = append(codeIDs, code.ID)
		ids, err := s.events.IDsByQRCode(ctx, code.ID)
		if err != nil {
			return nil, fmt.Errorf("collect scan events for code %s: %w", code.ID, err)
		}
		scanIDs = append(scanIDs, ids...)
	}

	result := &CleanupResult{}

	// Codes first, then their scans; each commit is chunked at the store's
	// batch limit.
	result.DeletedQRCodes, err = s.codes.DeleteByIDs(ctx, codeIDs)
	if err != nil {
		return result, fmt.Errorf("delete expired codes: %w", err)
	}
	result.DeletedScans, err = s.events.DeleteByIDs(ctx, scanIDs)
	if err != nil {
		return result, fmt.Errorf("delete scan events: %w", err)
	}

	metrics.CleanupDeletedCodes.Add(float64(result.DeletedQRCodes))
	metrics.CleanupDeletedScans.Add(float64(result.DeletedScans))

	s.logger.Info("cleanup pass finished",
		zap.Int64("deleted_codes", result.DeletedQRCodes),
		zap.Int64("deleted_scans", result.DeletedScans),
	)

	return result, nil
}

// CleanupScheduler runs the cleanup routine on a cron schedule in UTC. The
// HTTP trigger is a second entry point into the same routine.
type CleanupScheduler struct {
	logger  *zap.Logger
	service *CleanupService
	cron    *cron.Cron
}

// NewCleanupScheduler creates a scheduler for the given cron expression.
func NewCleanupScheduler(logger *zap.Logger, service *CleanupService, schedule string) (*CleanupScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &CleanupScheduler{
		logger:  logger,
		service: service,
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}

	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins scheduled execution.
func (s *CleanupScheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running pass to finish.
func (s *CleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cleanup scheduler stopped")
}

func (s *CleanupScheduler) runOnce() {
	result, err := s.service.Run(context.Background())
	if err != nil {
		// Left to the next tick; the routine is idempotent on retry.
		s.logger.Error("scheduled cleanup failed", zap.Error(err))
		return
	}
	if result.DeletedQRCodes > 0 || result.DeletedScans > 0 {
		s.logger.Info("scheduled cleanup deleted expired guest codes",
			zap.Int64("deleted_codes", result.DeletedQRCodes),
			zap.Int64("deleted_scans", result.DeletedScans),
		)
	}
}
