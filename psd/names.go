// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// decodeUTF16 decodes big-endian UTF-16 and drops the trailing NUL that
// Photoshop writes after most strings.
func decodeUTF16(b []byte) string {
	s, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(s), "\x00")
}

// decodeMacRoman decodes a legacy Pascal layer name.
func decodeMacRoman(b []byte) string {
	s, err := charmap.Macintosh.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
