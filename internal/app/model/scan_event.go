package model

import "time"

// Device type buckets reported by the classifier.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// UnknownPlace is the placeholder used when geolocation yields nothing.
const UnknownPlace = "Unknown"

// DeviceInfo is the normalized device descriptor parsed from a user agent.
type DeviceInfo struct {
	Type    string `gorm:"column:device_type;size:16" json:"type"`
	OS      string `gorm:"column:device_os;size:64" json:"os"`
	Browser string `gorm:"column:device_browser;size:64" json:"browser"`
	Version string `gorm:"column:device_version;size:32" json:"version"`
}

// Location is the approximate, best-effort place a scan originated from.
type Location struct {
	Country string   `gorm:"column:country;size:100" json:"country"`
	City    string   `gorm:"column:city;size:100" json:"city"`
	Region  string   `gorm:"column:region;size:100" json:"region"`
	Lat     *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lng     *float64 `gorm:"column:lng" json:"lng,omitempty"`
}

// UnknownLocation returns the placeholder triple used when lookup is skipped
// or fails.
func UnknownLocation() Location {
	return Location{Country: UnknownPlace, City: UnknownPlace, Region: ""}
}

// ScanEvent is an immutable record of one resolved scan. Written once by the
// scan recorder, deleted only when its parent code expires.
type ScanEvent struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	QRCodeID   string     `gorm:"size:36;index;not null" json:"qrCodeId"`
	ScannedAt  time.Time  `gorm:"not null" json:"scannedAt"`
	IPAddress  string     `gorm:"size:45" json:"ipAddress"`
	UserAgent  string     `gorm:"type:text" json:"userAgent"`
	Referrer   string     `gorm:"type:text" json:"referrer,omitempty"`
	DeviceInfo DeviceInfo `gorm:"embedded" json:"deviceInfo"`
	Location   Location   `gorm:"embedded" json:"location"`
}

// TableName returns the table name for ScanEvent.
func (ScanEvent) TableName() string { return "scan_events" }

const (
	ScanStreamName     = "SCANS"
	ScanStreamSubject  = "scans.recorded"
	ScanConsumerName   = "scan-recorder"
	ScanStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
