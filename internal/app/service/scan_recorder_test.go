package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
)

func sampleEvent() *model.ScanEvent {
	return &model.ScanEvent{
		ID:        "ev-1",
		QRCodeID:  "code-1",
		ScannedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		IPAddress: "203.0.113.7",
	}
}

func TestScanRecorder_RecordPersistsEventAndCounters(t *testing.T) {
	var storedEvent *model.ScanEvent
	var bumpedID string
	var bumpedAt time.Time

	events := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			storedEvent = event
			return nil
		},
	}
	codes := &mockQRCodeRepository{
		recordScanFn: func(ctx context.Context, id string, at time.Time) error {
			bumpedID = id
			bumpedAt = at
			return nil
		},
	}

	r := NewScanRecorder(nil, nil, events, codes)
	ev := sampleEvent()
	r.Record(context.Background(), ev)

	if storedEvent == nil || storedEvent.ID != "ev-1" {
		t.Fatalf("expected event to be stored, got %+v", storedEvent)
	}
	if bumpedID != "code-1" {
		t.Fatalf("expected counter bump for code-1, got %q", bumpedID)
	}
	if !bumpedAt.Equal(ev.ScannedAt) {
		t.Fatalf("expected last-scanned stamp %v, got %v", ev.ScannedAt, bumpedAt)
	}
}

func TestScanRecorder_EventWriteFailureStillBumpsCounter(t *testing.T) {
	bumps := 0

	events := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			return errors.New("store unavailable")
		},
	}
	codes := &mockQRCodeRepository{
		recordScanFn: func(ctx context.Context, id string, at time.Time) error {
			bumps++
			return nil
		},
	}

	r := NewScanRecorder(nil, nil, events, codes)
	r.Record(context.Background(), sampleEvent())

	// The two writes are independent; a failed event append must not block
	// the counter update, and the counter moves exactly once.
	if bumps != 1 {
		t.Fatalf("expected exactly one counter bump, got %d", bumps)
	}
}

func TestScanRecorder_CounterFailureIsSwallowed(t *testing.T) {
	created := 0

	events := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			created++
			return nil
		},
	}
	codes := &mockQRCodeRepository{
		recordScanFn: func(ctx context.Context, id string, at time.Time) error {
			return errors.New("store unavailable")
		},
	}

	// Record never returns or panics on partial failure.
	r := NewScanRecorder(nil, nil, events, codes)
	r.Record(context.Background(), sampleEvent())

	if created != 1 {
		t.Fatalf("expected event stored despite counter failure, got %d", created)
	}
}
