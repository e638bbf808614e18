package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"github.com/qrtrail/qrtrail/internal/app/repository"
	"go.uber.org/zap"
)

// CodeCache is an optional read-through cache in front of the code store.
// Get returns (nil, nil) on a miss; failures are treated as misses.
type CodeCache interface {
	Get(ctx context.Context, identifier string) (*model.QRCode, error)
	Set(ctx context.Context, identifier string, code *model.QRCode) error
}

// Resolver looks up a short identifier against the code store, applying the
// alias-before-primary-id fallback order, and validates activation state.
type Resolver struct {
	logger *zap.Logger
	codes  repository.QRCodeRepository
	cache  CodeCache
}

// NewResolver creates a resolver. cache may be nil to disable caching.
func NewResolver(logger *zap.Logger, codes repository.QRCodeRepository, cache CodeCache) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger, codes: codes, cache: cache}
}

// Resolve returns the QR code for an identifier or one of ErrInvalidRequest,
// ErrNotFound, ErrGone. Guest-code expiry is not checked here; the cleanup
// job removes expired guest codes outright.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*model.QRCode, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrInvalidRequest
	}

	code, cached := r.fromCache(ctx, identifier)
	if code == nil {
		var err error
		code, err = r.lookup(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}

	if !code.HasPayload() {
		// Data-integrity case: the record exists but has nothing to resolve to.
		r.logger.Warn("qr code has no content payload",
			zap.String("identifier", identifier),
			zap.String("id", code.ID))
		return nil, ErrNotFound
	}
	if !code.IsActive {
		return nil, ErrGone
	}

	if !cached && r.cache != nil {
		if err := r.cache.Set(ctx, identifier, code); err != nil {
			r.logger.Debug("code cache write failed", zap.String("identifier", identifier), zap.Error(err))
		}
	}

	return code, nil
}

// lookup tries the short alias first, then the primary id.
func (r *Resolver) lookup(ctx context.Context, identifier string) (*model.QRCode, error) {
	code, err := r.codes.GetByShortID(ctx, identifier)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, repository.ErrCodeNotFound) {
		return nil, fmt.Errorf("lookup by short id: %w", err)
	}

	code, err = r.codes.GetByID(ctx, identifier)
	if err == nil {
		return code, nil
	}
	if errors.Is(err, repository.ErrCodeNotFound) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("lookup by id: %w", err)
}

func (r *Resolver) fromCache(ctx context.Context, identifier string) (*model.QRCode, bool) {
	if r.cache == nil {
		return nil, false
	}
	code, err := r.cache.Get(ctx, identifier)
	if err != nil {
		r.logger.Debug("code cache read failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, false
	}
	if code == nil {
		return nil, false
	}
	return code, true
}

// Destination returns the URI the scan should redirect to. A precomputed
// destination wins; otherwise the codec derives one from the content map.
func (r *Resolver) Destination(code *model.QRCode) (string, error) {
	if code.DestinationURL != "" {
		return code.DestinationURL, nil
	}

	dest := EncodeDestination(code.ContentType, code.Content)
	if !KnownContentType(code.ContentType) {
		// The codec output is a diagnostic serialization, not a redirect target.
		r.logger.Error("unknown content type on qr code",
			zap.String("id", code.ID),
			zap.String("content_type", code.ContentType),
			zap.String("content", dest))
		return "", ErrUnprocessable
	}
	if dest == "" {
		return "", ErrUnprocessable
	}
	return dest, nil
}
