// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package main

import "testing"

func TestParseReaderPair(t *testing.T) {
	tests := []struct {
		in      string
		wantA   int64
		wantB   int64
		wantErr bool
	}{
		{"42:97", 42, 97, false},
		{"1:1", 1, 1, false},
		{"42", 0, 0, true},
		{"42:", 0, 0, true},
		{":97", 0, 0, true},
		{"a:97", 0, 0, true},
		{"42:b", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		a, b, err := parseReaderPair(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseReaderPair(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (a != tt.wantA || b != tt.wantB) {
			t.Errorf("parseReaderPair(%q) = (%d, %d), want (%d, %d)", tt.in, a, b, tt.wantA, tt.wantB)
		}
	}
}
