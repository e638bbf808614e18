package repository

import (
	"context"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"gorm.io/gorm"
)

// ScanEventRepository defines the data access contract for scan events.
type ScanEventRepository interface {
	Create(ctx context.Context, event *model.ScanEvent) error
	ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error)
	IDsByQRCode(ctx context.Context, qrCodeID string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type scanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository returns a GORM-backed ScanEventRepository.
func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &scanEventRepository{db: db}
}

func (r *scanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByQRCode fetches events without a server-side order; callers sort in
// memory so no composite index is required on (qr_code_id, scanned_at).
func (r *scanEventRepository) ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error) {
	if limit <= 0 {
		limit = 1000
	}

	var result []model.ScanEvent
	if err := r.db.WithContext(ctx).
		Where("qr_code_id = ?", qrCodeID).
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *scanEventRepository) IDsByQRCode(ctx context.Context, qrCodeID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.ScanEvent{}).
		Where("qr_code_id = ?", qrCodeID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *scanEventRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	for _, chunk := range chunkIDs(ids, BatchLimit) {
		result := r.db.WithContext(ctx).Where("id IN ?", chunk).Delete(&model.ScanEvent{})
		if result.Error != nil {
			return deleted, result.Error
		}
		deleted += result.RowsAffected
	}
	return deleted, nil
}
