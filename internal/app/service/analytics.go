package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"github.com/qrtrail/qrtrail/internal/app/repository"
	"go.uber.org/zap"
)

const (
	// Cap on events fetched per query, to bound memory.
	maxAnalyticsEvents = 1000
	// Size of the recent-scans window used for country/device tables.
	recentScanWindow = 50
)

// Analytics is the ownership-checked summary for one QR code.
type Analytics struct {
	TotalScans int `json:"totalScans"`
	// UniqueScans counts distinct IP addresses. A heuristic: shared-NAT
	// visitors undercount, rotating-IP visitors overcount.
	UniqueScans   int               `json:"uniqueScans"`
	RecentScans   []model.ScanEvent `json:"recentScans"`
	CountryStats  map[string]int    `json:"countryStats"`
	DeviceStats   map[string]int    `json:"deviceStats"`
	DateStats     map[string]int    `json:"dateStats"`
	LastScannedAt *time.Time        `json:"lastScannedAt,omitempty"`
}

// AnalyticsAggregator answers analytics queries by reading and summarizing
// scan events for a code.
type AnalyticsAggregator struct {
	logger *zap.Logger
	codes  repository.QRCodeRepository
	events repository.ScanEventRepository
}

// NewAnalyticsAggregator creates an aggregator backed by the given repositories.
func NewAnalyticsAggregator(logger *zap.Logger, codes repository.QRCodeRepository, events repository.ScanEventRepository) *AnalyticsAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsAggregator{logger: logger, codes: codes, events: events}
}

// Aggregate resolves the code (primary id first, alias as fallback), verifies
// ownership, and computes the summary over at most maxAnalyticsEvents events.
func (a *AnalyticsAggregator) Aggregate(ctx context.Context, qrCodeID, userID string) (*Analytics, error) {
	if qrCodeID == "" || userID == "" {
		return nil, ErrInvalidRequest
	}

	code, err := a.loadCode(ctx, qrCodeID)
	if err != nil {
		return nil, err
	}
	if code.UserID != userID {
		return nil, ErrForbidden
	}

	events, err := a.events.ListByQRCode(ctx, code.ID, maxAnalyticsEvents)
	if err != nil {
		return nil, fmt.Errorf("list scan events: %w", err)
	}

	// The query path avoids a server-side composite sort so no extra index is
	// needed; order here instead.
	sort.Slice(events, func(i, j int) bool {
		return events[i].ScannedAt.After(events[j].ScannedAt)
	})

	return summarize(events), nil
}

func (a *AnalyticsAggregator) loadCode(ctx context.Context, qrCodeID string) (*model.QRCode, error) {
	code, err := a.codes.GetByID(ctx, qrCodeID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, repository.ErrCodeNotFound) {
		return nil, fmt.Errorf("load code by id: %w", err)
	}

	code, err = a.codes.GetByShortID(ctx, qrCodeID)
	if err == nil {
		return code, nil
	}
	if errors.Is(err, repository.ErrCodeNotFound) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("load code by short id: %w", err)
}

func summarize(sorted []model.ScanEvent) *Analytics {
	result := &Analytics{
		TotalScans:   len(sorted),
		RecentScans:  []model.ScanEvent{},
		CountryStats: map[string]int{},
		DeviceStats:  map[string]int{},
		DateStats:    map[string]int{},
	}

	uniqueIPs := make(map[string]struct{}, len(sorted))
	for _, ev := range sorted {
		uniqueIPs[ev.IPAddress] = struct{}{}
		day := ev.ScannedAt.UTC().Format("2006-01-02")
		result.DateStats[day]++
	}
	result.UniqueScans = len(uniqueIPs)

	recent := sorted
	if len(recent) > recentScanWindow {
		recent = recent[:recentScanWindow]
	}
	for _, ev := range recent {
		normalized := normalizeEvent(ev)
		result.RecentScans = append(result.RecentScans, normalized)
		result.CountryStats[normalized.Location.Country]++
		result.DeviceStats[normalized.DeviceInfo.Type]++
	}

	if len(sorted) > 0 {
		at := sorted[0].ScannedAt
		result.LastScannedAt = &at
	}

	return result
}

// normalizeEvent fills default location and device sub-objects so absent
// fields never surface as empty to API consumers.
func normalizeEvent(ev model.ScanEvent) model.ScanEvent {
	if ev.Location.Country == "" {
		ev.Location.Country = model.UnknownPlace
	}
	if ev.Location.City == "" {
		ev.Location.City = model.UnknownPlace
	}
	if ev.DeviceInfo.Type == "" {
		ev.DeviceInfo.Type = model.DeviceUnknown
	}
	return ev
}
