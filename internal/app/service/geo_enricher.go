package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"go.uber.org/zap"
)

const defaultGeoTimeout = 1500 * time.Millisecond

// GeoEnricher performs best-effort, time-bounded IP geolocation against an
// ip-api style JSON endpoint. It never returns an error: any failure maps to
// the Unknown location.
type GeoEnricher struct {
	logger   *zap.Logger
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewGeoEnricher creates an enricher for the given endpoint. The timeout is a
// hard budget per lookup, enforced independently of any caller deadline.
func NewGeoEnricher(logger *zap.Logger, endpoint string, timeout time.Duration) *GeoEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGeoTimeout
	}
	return &GeoEnricher{
		logger:   logger,
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

type geoResponse struct {
	Status  string   `json:"status"`
	Country string   `json:"country"`
	City    string   `json:"city"`
	Region  string   `json:"regionName"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Lookup resolves an IP to an approximate location. Private, loopback,
// reserved, zero, IPv6, and unparseable addresses short-circuit without a
// network call.
func (g *GeoEnricher) Lookup(ctx context.Context, ip string) model.Location {
	if !isPublicIPv4(ip) {
		return model.UnknownLocation()
	}

	// Own deadline, detached from the enclosing request's cancellation: the
	// redirect has usually been sent by the time this runs.
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s?fields=status,country,city,regionName,lat,lon", g.endpoint, ip)
	req, err := http.NewRequestWithContext(lookupCtx, http.MethodGet, url, nil)
	if err != nil {
		g.logger.Warn("geo lookup request build failed", zap.String("ip", ip), zap.Error(err))
		return model.UnknownLocation()
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("geo lookup failed", zap.String("ip", ip), zap.Error(err))
		return model.UnknownLocation()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Debug("geo lookup non-2xx", zap.String("ip", ip), zap.Int("status", resp.StatusCode))
		return model.UnknownLocation()
	}

	var payload geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.logger.Debug("geo lookup decode failed", zap.String("ip", ip), zap.Error(err))
		return model.UnknownLocation()
	}
	if payload.Status != "" && payload.Status != "success" {
		return model.UnknownLocation()
	}

	loc := model.Location{
		Country: payload.Country,
		City:    payload.City,
		Region:  payload.Region,
		Lat:     payload.Lat,
		Lng:     payload.Lon,
	}
	if loc.Country == "" {
		loc.Country = model.UnknownPlace
	}
	if loc.City == "" {
		loc.City = model.UnknownPlace
	}
	return loc
}

// isPublicIPv4 reports whether the address is a routable IPv4 address worth a
// lookup. IPv6 is deliberately excluded.
func isPublicIPv4(ip string) bool {
	if ip == "" {
		return false
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	v4 := parsed.To4()
	if v4 == nil {
		return false
	}
	if v4.IsUnspecified() || v4.IsLoopback() || v4.IsPrivate() {
		return false
	}
	return true
}
