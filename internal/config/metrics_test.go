package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassifyConfigLoadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: "none"},
		{name: "missing database url", err: errors.New("validate config: DATABASE_URL is required"), want: "validation"},
		{name: "bcrypt cost out of range", err: errors.New("validate config: BCRYPT_COST must be within [8, 15], got 99"), want: "validation"},
		{name: "bad duration", err: fmt.Errorf("parse JWT_REFRESH_TTL: %w", errors.New("invalid duration")), want: "parse"},
		{name: "dotenv failure", err: errors.New("read .env: permission denied"), want: "load"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConfigLoadError(tc.err); got != tc.want {
				t.Fatalf("classifyConfigLoadError() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeConfigProfile(t *testing.T) {
	if got := normalizeConfigProfile(" Production "); got != "production" {
		t.Fatalf("got %q, want production", got)
	}
	if got := normalizeConfigProfile("\t\n"); got != "unknown" {
		t.Fatalf("got %q, whitespace-only input must map to unknown", got)
	}
}

func FuzzNormalizeConfigProfile(f *testing.F) {
	f.Add(" Production ")
	f.Add("")
	f.Add("tEsT")
	f.Add("dev\x00elopment")
	f.Add(strings.Repeat("env-", 2048))

	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 8192 {
			raw = raw[:8192]
		}

		got := normalizeConfigProfile(raw)
		if got == "" {
			t.Fatal("normalized profile must never be empty")
		}
		if strings.TrimSpace(raw) == "" && got != "unknown" {
			t.Fatalf("blank input normalized to %q, want unknown", got)
		}
		if utf8.ValidString(raw) && !utf8.ValidString(got) {
			t.Fatalf("normalization broke UTF-8: %q", got)
		}
		if got != normalizeConfigProfile(raw) {
			t.Fatal("normalization must be deterministic")
		}
	})
}
