package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/qrtrail/qrtrail/internal/app/model"
)

// Fixed platform → profile URL prefix table. Platforms not listed here fall
// back to https://<platform>.com/<user>.
var socialProfilePrefixes = map[string]string{
	"instagram": "https://instagram.com/",
	"facebook":  "https://facebook.com/",
	"twitter":   "https://twitter.com/",
	"linkedin":  "https://linkedin.com/in/",
	"youtube":   "https://youtube.com/@",
	"tiktok":    "https://tiktok.com/@",
	"whatsapp":  "https://wa.me/",
	"telegram":  "https://t.me/",
}

// EncodeDestination derives the destination URI for a content type and its
// content map. It is a pure function: same input, same output, no I/O.
//
// An empty result is valid output for location/social content with missing
// required fields; callers treat it as an unresolvable destination. An unknown
// content type yields the content serialized as a diagnostic string, never a
// real redirect target.
func EncodeDestination(contentType string, content model.Content) string {
	switch contentType {
	case model.ContentTypeURL:
		return content["url"]

	case model.ContentTypeText:
		return "data:text/plain;charset=utf-8," + encodeComponent(content["text"])

	case model.ContentTypeEmail:
		return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
			content["email"],
			encodeComponent(content["subject"]),
			encodeComponent(content["body"]))

	case model.ContentTypeSMS:
		dest := "sms:" + content["phone"]
		if msg := content["message"]; msg != "" {
			dest += "?body=" + encodeComponent(msg)
		}
		return dest

	case model.ContentTypeWiFi:
		encryption := content["encryption"]
		if encryption == "" {
			encryption = "WPA"
		}
		return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;;",
			encryption, content["ssid"], content["password"])

	case model.ContentTypeLocation:
		if content["lat"] != "" && content["lng"] != "" {
			return fmt.Sprintf("geo:%s,%s", content["lat"], content["lng"])
		}
		return content["address"]

	case model.ContentTypeVCard:
		return encodeVCard(content)

	case model.ContentTypeSocial:
		platform := content["platform"]
		user := strings.TrimPrefix(content["username"], "@")
		if platform == "" || user == "" {
			return ""
		}
		if prefix, ok := socialProfilePrefixes[platform]; ok {
			return prefix + user
		}
		return fmt.Sprintf("https://%s.com/%s", platform, user)

	default:
		diag, err := json.Marshal(content)
		if err != nil {
			return fmt.Sprintf("%v", content)
		}
		return string(diag)
	}
}

// KnownContentType reports whether the tag is part of the closed codec table.
func KnownContentType(contentType string) bool {
	switch contentType {
	case model.ContentTypeURL, model.ContentTypeText, model.ContentTypeEmail,
		model.ContentTypeSMS, model.ContentTypeWiFi, model.ContentTypeLocation,
		model.ContentTypeVCard, model.ContentTypeSocial:
		return true
	}
	return false
}

// encodeComponent percent-encodes a URI component, using %20 rather than +
// for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func encodeVCard(content model.Content) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + content["name"],
		"ORG:" + content["organization"],
		"TITLE:" + content["title"],
		"EMAIL:" + content["email"],
		"TEL:" + content["phone"],
		"URL:" + content["url"],
		"END:VCARD",
	}
	return strings.Join(lines, "\n")
}
