// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package objectid generates and validates the 24-character hexadecimal
// identifiers used as primary keys across Inkwell. The format is a 4-byte
// big-endian Unix timestamp followed by 8 random bytes, so identifiers sort
// roughly by creation time while staying unguessable.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"
)

// Length is the fixed length of an encoded identifier.
const Length = 24

// pattern matches a well-formed identifier. Lookups use this to decide
// between an id lookup and a slug lookup.
var pattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// New returns a fresh 24-character hex identifier.
func New() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	// crypto/rand.Read never returns an error on supported platforms.
	rand.Read(b[4:])
	return hex.EncodeToString(b[:])
}

// IsValid reports whether key has the shape of a stable identifier.
// Anything else is treated as a slug by the resolve operations.
func IsValid(key string) bool {
	return pattern.MatchString(key)
}
