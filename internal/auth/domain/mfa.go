package domain

// MFASetup is returned when enrollment starts. QRCode is a PNG data URI.
type MFASetup struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}
