package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
)

func TestGeoEnricher_PrivateRangesShortCircuit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, time.Second)

	for _, ip := range []string{
		"192.168.1.1",
		"10.0.0.5",
		"172.16.3.4",
		"127.0.0.1",
		"0.0.0.0",
		"::1",
		"2001:db8::1",
		"not-an-ip",
		"",
	} {
		loc := geo.Lookup(context.Background(), ip)
		if loc.Country != model.UnknownPlace || loc.City != model.UnknownPlace || loc.Region != "" {
			t.Fatalf("ip %q: expected unknown triple, got %+v", ip, loc)
		}
	}

	if n := calls.Load(); n != 0 {
		t.Fatalf("expected zero outbound calls, got %d", n)
	}
}

func TestGeoEnricher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin","lat":52.52,"lon":13.405}`))
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, time.Second)
	loc := geo.Lookup(context.Background(), "93.184.216.34")

	if loc.Country != "Germany" || loc.City != "Berlin" || loc.Region != "Berlin" {
		t.Fatalf("unexpected location: %+v", loc)
	}
	if loc.Lat == nil || *loc.Lat != 52.52 {
		t.Fatalf("expected lat 52.52, got %v", loc.Lat)
	}
	if loc.Lng == nil || *loc.Lng != 13.405 {
		t.Fatalf("expected lng 13.405, got %v", loc.Lng)
	}
}

func TestGeoEnricher_MissingFieldsDefaultToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","regionName":"Somewhere"}`))
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, time.Second)
	loc := geo.Lookup(context.Background(), "93.184.216.34")

	if loc.Country != model.UnknownPlace || loc.City != model.UnknownPlace {
		t.Fatalf("expected unknown country/city defaults, got %+v", loc)
	}
	if loc.Region != "Somewhere" {
		t.Fatalf("expected region preserved, got %q", loc.Region)
	}
	if loc.Lat != nil || loc.Lng != nil {
		t.Fatalf("expected coordinates omitted, got %+v", loc)
	}
}

func TestGeoEnricher_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, time.Second)
	if loc := geo.Lookup(context.Background(), "93.184.216.34"); loc.Country != model.UnknownPlace {
		t.Fatalf("expected unknown on provider failure, got %+v", loc)
	}
}

func TestGeoEnricher_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, time.Second)
	if loc := geo.Lookup(context.Background(), "93.184.216.34"); loc.Country != model.UnknownPlace {
		t.Fatalf("expected unknown on non-2xx, got %+v", loc)
	}
}

func TestGeoEnricher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	geo := NewGeoEnricher(nil, srv.URL, 50*time.Millisecond)

	start := time.Now()
	loc := geo.Lookup(context.Background(), "93.184.216.34")
	if loc.Country != model.UnknownPlace {
		t.Fatalf("expected unknown on timeout, got %+v", loc)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Fatalf("lookup did not honor its timeout, took %v", elapsed)
	}
}

func TestGeoEnricher_IgnoresCancelledCallerContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The enricher runs after the redirect response; a dead request context
	// must not abort the lookup.
	geo := NewGeoEnricher(nil, srv.URL, time.Second)
	if loc := geo.Lookup(ctx, "93.184.216.34"); loc.Country != "Germany" {
		t.Fatalf("expected lookup to survive cancelled caller context, got %+v", loc)
	}
}
