// Package qrcode renders checkout links as QR codes.
package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Encoder produces PNG QR codes as data URLs that can be embedded in an email.
type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// NewEncoder creates an encoder producing size x size pixel images.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = 256
	}
	return &Encoder{size: size, level: goqrcode.Medium}
}

// Encode returns url as a base64 PNG data URL.
func (e *Encoder) Encode(url string) (string, error) {
	png, err := goqrcode.Encode(url, e.level, e.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
