package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/qrtrail/qrtrail/internal/app/model"
	metrics "github.com/qrtrail/qrtrail/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ScanCapture is the request-scoped raw material for one scan: everything the
// redirect handler can gather without blocking the response.
type ScanCapture struct {
	QRCodeID  string
	IPAddress string
	UserAgent string
	Referrer  string
	Device    model.DeviceInfo
}

// ScanPublisher composes scan events and publishes them to JetStream. It runs
// after the redirect has been sent, so nothing here may surface a failure.
type ScanPublisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	geo    *GeoEnricher
}

// NewScanPublisher creates a publisher for composed scan events.
func NewScanPublisher(js nats.JetStreamContext, logger *zap.Logger, geo *GeoEnricher) *ScanPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanPublisher{js: js, logger: logger, geo: geo}
}

// Dispatch geolocates the capture and publishes the composed event. Intended
// to run on a detached goroutine; failures are logged and counted, never
// returned.
func (p *ScanPublisher) Dispatch(capture ScanCapture) {
	ctx := context.Background()

	location := model.UnknownLocation()
	if p.geo != nil {
		location = p.geo.Lookup(ctx, capture.IPAddress)
	}

	event := model.ScanEvent{
		ID:         uuid.New().String(),
		QRCodeID:   capture.QRCodeID,
		ScannedAt:  time.Now().UTC(),
		IPAddress:  capture.IPAddress,
		UserAgent:  capture.UserAgent,
		Referrer:   capture.Referrer,
		DeviceInfo: capture.Device,
		Location:   location,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal scan event", zap.Error(err), zap.String("qr_code_id", capture.QRCodeID))
		metrics.ScanPublishFailures.Inc()
		return
	}

	if _, err := p.js.Publish(model.ScanStreamSubject, data); err != nil {
		p.logger.Error("failed to publish scan event", zap.Error(err), zap.String("qr_code_id", capture.QRCodeID))
		metrics.ScanPublishFailures.Inc()
		return
	}

	metrics.ScansPublished.Inc()
}
