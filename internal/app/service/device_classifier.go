package service

import (
	"strings"

	"github.com/mileusna/useragent"
	"github.com/qrtrail/qrtrail/internal/app/model"
)

// ClassifyDevice parses a raw user-agent string into a normalized device
// descriptor. It runs synchronously, never touches the network, and never
// fails: malformed input degrades to empty fields.
//
// Device type only reports unknown when the UA itself is absent; a non-empty
// UA without an explicit mobile/tablet signal counts as desktop.
func ClassifyDevice(rawUA string) model.DeviceInfo {
	if strings.TrimSpace(rawUA) == "" {
		return model.DeviceInfo{Type: model.DeviceUnknown}
	}

	parsed := useragent.Parse(rawUA)

	info := model.DeviceInfo{
		Type:    model.DeviceDesktop,
		OS:      parsed.OS,
		Browser: parsed.Name,
		Version: parsed.Version,
	}

	switch {
	case parsed.Mobile:
		info.Type = model.DeviceMobile
	case parsed.Tablet:
		info.Type = model.DeviceTablet
	}

	return info
}
