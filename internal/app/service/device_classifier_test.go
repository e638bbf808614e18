package service

import (
	"testing"

	"github.com/qrtrail/qrtrail/internal/app/model"
)

const (
	uaIPhone = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1"
	uaIPad   = "Mozilla/5.0 (iPad; CPU OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1"
	uaChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

func TestClassifyDevice_EmptyUA(t *testing.T) {
	info := ClassifyDevice("")
	if info.Type != model.DeviceUnknown {
		t.Fatalf("expected unknown type for empty UA, got %q", info.Type)
	}
	if info.OS != "" || info.Browser != "" || info.Version != "" {
		t.Fatalf("expected empty fields for empty UA, got %+v", info)
	}

	if got := ClassifyDevice("   "); got.Type != model.DeviceUnknown {
		t.Fatalf("expected unknown type for blank UA, got %q", got.Type)
	}
}

func TestClassifyDevice_Mobile(t *testing.T) {
	info := ClassifyDevice(uaIPhone)
	if info.Type != model.DeviceMobile {
		t.Fatalf("expected mobile, got %q", info.Type)
	}
	if info.Browser == "" || info.OS == "" {
		t.Fatalf("expected browser and OS to be parsed, got %+v", info)
	}
}

func TestClassifyDevice_Tablet(t *testing.T) {
	info := ClassifyDevice(uaIPad)
	if info.Type != model.DeviceTablet {
		t.Fatalf("expected tablet, got %q", info.Type)
	}
}

func TestClassifyDevice_Desktop(t *testing.T) {
	info := ClassifyDevice(uaChrome)
	if info.Type != model.DeviceDesktop {
		t.Fatalf("expected desktop, got %q", info.Type)
	}
	if info.Browser != "Chrome" {
		t.Fatalf("expected Chrome, got %q", info.Browser)
	}
}

func TestClassifyDevice_MalformedUA(t *testing.T) {
	// A non-empty string with no recognizable signal stays desktop and must
	// not panic.
	info := ClassifyDevice("definitely not a user agent")
	if info.Type != model.DeviceDesktop {
		t.Fatalf("expected desktop default for unrecognized UA, got %q", info.Type)
	}
}
