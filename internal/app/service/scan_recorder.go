package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/qrtrail/qrtrail/internal/app/model"
	"github.com/qrtrail/qrtrail/internal/app/repository"
	metrics "github.com/qrtrail/qrtrail/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ScanRecorder consumes scan events from JetStream and persists them: one
// append of the event plus one atomic counter bump on the code. The two writes
// complete independently; partial failure is a logged inconsistency.
type ScanRecorder struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	events repository.ScanEventRepository
	codes  repository.QRCodeRepository
}

// NewScanRecorder creates a recorder backed by the given repositories.
func NewScanRecorder(js nats.JetStreamContext, logger *zap.Logger, events repository.ScanEventRepository, codes repository.QRCodeRepository) *ScanRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanRecorder{js: js, logger: logger, events: events, codes: codes}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (r *ScanRecorder) Start() error {
	_, err := r.js.StreamInfo(model.ScanStreamName)
	if err != nil {
		_, err = r.js.AddStream(&nats.StreamConfig{
			Name:     model.ScanStreamName,
			Subjects: []string{model.ScanStreamSubject},
			MaxBytes: model.ScanStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = r.js.ConsumerInfo(model.ScanStreamName, model.ScanConsumerName)
	if err != nil {
		_, err = r.js.AddConsumer(model.ScanStreamName, &nats.ConsumerConfig{
			Durable:   model.ScanConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := r.js.PullSubscribe(model.ScanStreamSubject, model.ScanConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go r.consume(sub)
	return nil
}

func (r *ScanRecorder) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			r.logger.Error("failed to fetch scan messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ScanEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				r.logger.Error("failed to unmarshal scan event", zap.Error(err))
				// Poison message; redelivery would not help.
				msg.Ack()
				continue
			}

			r.Record(ctx, &event)

			// Always ack: a redelivered message would bump scan_count a second
			// time, and over-counting is worse than dropping one event.
			msg.Ack()
		}
	}
}

// Record persists one scan event and increments its code's counters. The two
// operations are independent; each failure is logged on its own and neither is
// retried.
func (r *ScanRecorder) Record(ctx context.Context, event *model.ScanEvent) {
	if err := r.events.Create(ctx, event); err != nil {
		r.logger.Error("failed to store scan event",
			zap.String("id", event.ID),
			zap.String("qr_code_id", event.QRCodeID),
			zap.Error(err))
		metrics.ScanRecordFailures.WithLabelValues("event_write").Inc()
	}

	if err := r.codes.RecordScan(ctx, event.QRCodeID, event.ScannedAt); err != nil {
		r.logger.Error("failed to update scan counters",
			zap.String("qr_code_id", event.QRCodeID),
			zap.Error(err))
		metrics.ScanRecordFailures.WithLabelValues("counter_update").Inc()
		return
	}

	metrics.ScansRecorded.Inc()

	r.logger.Debug("scan event recorded",
		zap.String("id", event.ID),
		zap.String("qr_code_id", event.QRCodeID),
		zap.String("ip", event.IPAddress),
		zap.Time("scanned_at", event.ScannedAt),
	)
}
