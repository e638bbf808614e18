package service

import (
	"context"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"github.com/qrtrail/qrtrail/internal/app/repository"
)

type mockQRCodeRepository struct {
	getByIDFn          func(ctx context.Context, id string) (*model.QRCode, error)
	getByShortIDFn     func(ctx context.Context, shortID string) (*model.QRCode, error)
	recordScanFn       func(ctx context.Context, id string, at time.Time) error
	findExpiredGuestFn func(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error)
	deleteByIDsFn      func(ctx context.Context, ids []string) (int64, error)
}

func (m *mockQRCodeRepository) GetByID(ctx context.Context, id string) (*model.QRCode, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrCodeNotFound
}

func (m *mockQRCodeRepository) GetByShortID(ctx context.Context, shortID string) (*model.QRCode, error) {
	if m.getByShortIDFn != nil {
		return m.getByShortIDFn(ctx, shortID)
	}
	return nil, repository.ErrCodeNotFound
}

func (m *mockQRCodeRepository) RecordScan(ctx context.Context, id string, at time.Time) error {
	if m.recordScanFn != nil {
		return m.recordScanFn(ctx, id, at)
	}
	return nil
}

func (m *mockQRCodeRepository) FindExpiredGuest(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
	if m.findExpiredGuestFn != nil {
		return m.findExpiredGuestFn(ctx, before, limit)
	}
	return nil, nil
}

func (m *mockQRCodeRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if m.deleteByIDsFn != nil {
		return m.deleteByIDsFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

type mockScanEventRepository struct {
	createFn       func(ctx context.Context, event *model.ScanEvent) error
	listByQRCodeFn func(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error)
	idsByQRCodeFn  func(ctx context.Context, qrCodeID string) ([]string, error)
	deleteByIDsFn  func(ctx context.Context, ids []string) (int64, error)
}

func (m *mockScanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockScanEventRepository) ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error) {
	if m.listByQRCodeFn != nil {
		return m.listByQRCodeFn(ctx, qrCodeID, limit)
	}
	return nil, nil
}

func (m *mockScanEventRepository) IDsByQRCode(ctx context.Context, qrCodeID string) ([]string, error) {
	if m.idsByQRCodeFn != nil {
		return m.idsByQRCodeFn(ctx, qrCodeID)
	}
	return nil, nil
}

func (m *mockScanEventRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if m.deleteByIDsFn != nil {
		return m.deleteByIDsFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

type mockCodeCache struct {
	getFn func(ctx context.Context, identifier string) (*model.QRCode, error)
	setFn func(ctx context.Context, identifier string, code *model.QRCode) error
}

func (m *mockCodeCache) Get(ctx context.Context, identifier string) (*model.QRCode, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identifier)
	}
	return nil, nil
}

func (m *mockCodeCache) Set(ctx context.Context, identifier string, code *model.QRCode) error {
	if m.setFn != nil {
		return m.setFn(ctx, identifier, code)
	}
	return nil
}
