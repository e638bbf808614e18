package repository

import (
	"context"
	"errors"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrCodeNotFound signals that the requested QR code does not exist.
	ErrCodeNotFound = errors.New("qr code not found")
)

// Chunk limit for batched mutations, matching the store's single-transaction cap.
const BatchLimit = 500

// QRCodeRepository defines the data access contract for QR codes.
type QRCodeRepository interface {
	GetByID(ctx context.Context, id string) (*model.QRCode, error)
	GetByShortID(ctx context.Context, shortID string) (*model.QRCode, error)
	RecordScan(ctx context.Context, id string, at time.Time) error
	FindExpiredGuest(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository returns a GORM-backed QRCodeRepository.
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) GetByShortID(ctx context.Context, shortID string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("short_id = ?", shortID).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// RecordScan bumps scan_count via an in-database increment so concurrent scans
// never lose an update, and stamps last_scanned_at/updated_at in the same write.
func (r *qrCodeRepository) RecordScan(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"scan_count":      gorm.Expr("scan_count + ?", 1),
			"last_scanned_at": at,
			"updated_at":      at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *qrCodeRepository) FindExpiredGuest(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
	if limit <= 0 || limit > BatchLimit {
		limit = BatchLimit
	}

	var result []model.QRCode
	if err := r.db.WithContext(ctx).
		Where("is_guest = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, before).
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *qrCodeRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	for _, chunk := range chunkIDs(ids, BatchLimit) {
		result := r.db.WithContext(ctx).Where("id IN ?", chunk).Delete(&model.QRCode{})
		if result.Error != nil {
			return deleted, result.Error
		}
		deleted += result.RowsAffected
	}
	return deleted, nil
}

func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]string
	for size < len(ids) {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
