package model

import "time"

// Content types a QR code can carry. The content map shape depends on the tag.
const (
	ContentTypeURL      = "url"
	ContentTypeText     = "text"
	ContentTypeEmail    = "email"
	ContentTypeSMS      = "sms"
	ContentTypeWiFi     = "wifi"
	ContentTypeLocation = "location"
	ContentTypeVCard    = "vcard"
	ContentTypeSocial   = "social"
)

// Content holds the structured payload of a QR code, keyed by field name.
type Content map[string]string

// QRCode describes the core QR code entity stored in Postgres.
type QRCode struct {
	ID             string     `db:"id" gorm:"primaryKey;size:36" json:"id"`
	ShortID        *string    `db:"short_id" gorm:"uniqueIndex;size:32" json:"shortId,omitempty"`
	UserID         string     `db:"user_id" gorm:"size:64;index" json:"userId,omitempty"`
	ContentType    string     `db:"content_type" gorm:"size:24;not null" json:"contentType"`
	Content        Content    `db:"content" gorm:"serializer:json" json:"content"`
	DestinationURL string     `db:"destination_url" gorm:"type:text" json:"destinationUrl,omitempty"`
	IsActive       bool       `db:"is_active" gorm:"not null;default:true" json:"isActive"`
	IsGuest        bool       `db:"is_guest" gorm:"not null;default:false" json:"isGuest"`
	ExpiresAt      *time.Time `db:"expires_at" gorm:"index" json:"expiresAt,omitempty"`
	ScanCount      int64      `db:"scan_count" gorm:"not null;default:0" json:"scanCount"`
	CreatedAt      time.Time  `db:"created_at" gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" gorm:"autoUpdateTime" json:"updatedAt"`
	LastScannedAt  *time.Time `db:"last_scanned_at" json:"lastScannedAt,omitempty"`
}

// TableName returns the table name for QRCode.
func (QRCode) TableName() string { return "qr_codes" }

// HasPayload reports whether the record carries anything a destination can be
// derived from. Records without a payload are treated as missing data.
func (c *QRCode) HasPayload() bool {
	return c.DestinationURL != "" || len(c.Content) > 0
}
