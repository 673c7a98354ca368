// Package id generates compact, URL-safe identifiers.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a 26-character lowercase base32 encoding of a random UUIDv4.
func NewID() string {
	value := uuid.New()
	return strings.ToLower(encoding.EncodeToString(value[:]))
}
