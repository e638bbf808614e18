package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
)

func expiredGuest(id string) model.QRCode {
	expired := time.Now().Add(-time.Hour)
	return model.QRCode{ID: id, IsGuest: true, ExpiresAt: &expired}
}

func TestCleanup_NoExpiredIsNoop(t *testing.T) {
	deletes := 0
	codes := &mockQRCodeRepository{
		deleteByIDsFn: func(ctx context.Context, ids []string) (int64, error) {
			deletes++
			return int64(len(ids)), nil
		},
	}

	svc := NewCleanupService(nil, codes, &mockScanEventRepository{}, 500)
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.DeletedQRCodes != 0 || result.DeletedScans != 0 {
		t.Fatalf("expected zero counts, got %+v", result)
	}
	if deletes != 0 {
		t.Fatalf("expected no delete batch, got %d", deletes)
	}
}

func TestCleanup_DeletesCodesAndScans(t *testing.T) {
	// Mutable fake state so a second pass observes the first pass's deletions.
	state := map[string][]string{
		"code-1": {"scan-1", "scan-2"},
		"code-2": {"scan-3"},
	}

	codes := &mockQRCodeRepository{
		findExpiredGuestFn: func(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
			var out []model.QRCode
			for id := range state {
				out = append(out, expiredGuest(id))
			}
			return out, nil
		},
		deleteByIDsFn: func(ctx context.Context, ids []string) (int64, error) {
			var deleted int64
			for _, id := range ids {
				if _, ok := state[id]; ok {
					deleted++
				}
			}
			return deleted, nil
		},
	}

	scanStore := map[string]string{
		"scan-1": "code-1", "scan-2": "code-1", "scan-3": "code-2",
	}
	events := &mockScanEventRepository{
		idsByQRCodeFn: func(ctx context.Context, qrCodeID string) ([]string, error) {
			return state[qrCodeID], nil
		},
		deleteByIDsFn: func(ctx context.Context, ids []string) (int64, error) {
			var deleted int64
			for _, id := range ids {
				if _, ok := scanStore[id]; ok {
					delete(scanStore, id)
					deleted++
				}
			}
			// Scans removed, codes last so idsByQRCode stays consistent above.
			for code := range state {
				delete(state, code)
			}
			return deleted, nil
		},
	}

	svc := NewCleanupService(nil, codes, events, 500)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	if result.DeletedQRCodes != 2 || result.DeletedScans != 3 {
		t.Fatalf("unexpected first-pass counts: %+v", result)
	}
	if len(scanStore) != 0 {
		t.Fatalf("expected no orphaned scans, got %v", scanStore)
	}

	// Idempotent on retry: the same pass over a cleaned set is a no-op.
	again, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if again.DeletedQRCodes != 0 || again.DeletedScans != 0 {
		t.Fatalf("expected second pass to be a no-op, got %+v", again)
	}
}

func TestCleanup_BatchSizeCapsQuery(t *testing.T) {
	var seenLimit int
	codes := &mockQRCodeRepository{
		findExpiredGuestFn: func(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
			seenLimit = limit
			return nil, nil
		},
	}

	svc := NewCleanupService(nil, codes, &mockScanEventRepository{}, 9999)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if seenLimit != 500 {
		t.Fatalf("expected limit clamped to 500, got %d", seenLimit)
	}
}

func TestCleanup_CommitFailurePropagates(t *testing.T) {
	codes := &mockQRCodeRepository{
		findExpiredGuestFn: func(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
			return []model.QRCode{expiredGuest("code-1")}, nil
		},
		deleteByIDsFn: func(ctx context.Context, ids []string) (int64, error) {
			return 0, fmt.Errorf("store unavailable")
		},
	}

	svc := NewCleanupService(nil, codes, &mockScanEventRepository{}, 500)
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected batch commit failure to propagate")
	}
}

func TestCleanup_ScanQueryFailurePropagates(t *testing.T) {
	codes := &mockQRCodeRepository{
		findExpiredGuestFn: func(ctx context.Context, before time.Time, limit int) ([]model.QRCode, error) {
			return []model.QRCode{expiredGuest("code-1")}, nil
		},
	}
	events := &mockScanEventRepository{
		idsByQRCodeFn: func(ctx context.Context, qrCodeID string) ([]string, error) {
			return nil, errors.New("store unavailable")
		},
	}

	svc := NewCleanupService(nil, codes, events, 500)
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected scan collection failure to propagate")
	}
}

func TestNewCleanupScheduler_RejectsBadSchedule(t *testing.T) {
	svc := NewCleanupService(nil, &mockQRCodeRepository{}, &mockScanEventRepository{}, 500)
	if _, err := NewCleanupScheduler(nil, svc, "not a cron expr"); err == nil {
		t.Fatal("expected invalid schedule to be rejected")
	}
	if _, err := NewCleanupScheduler(nil, svc, "0 * * * *"); err != nil {
		t.Fatalf("expected hourly schedule to be accepted, got %v", err)
	}
}
