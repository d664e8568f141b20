package loadgen

import (
	"context"
	"testing"
)

func TestClassifyStatusClass(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{status: 200, want: "2xx"},
		{status: 201, want: "2xx"},
		{status: 302, want: "3xx"},
		{status: 404, want: "4xx"},
		{status: 409, want: "4xx"},
		{status: 503, want: "5xx"},
		{status: 100, want: "other"},
		{status: 0, want: "other"},
	}
	for _, tc := range cases {
		if got := classifyStatusClass(tc.status); got != tc.want {
			t.Fatalf("classifyStatusClass(%d) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestNormalizeProfile(t *testing.T) {
	if got := normalizeProfile(""); got != ProfileMixed {
		t.Fatalf("empty profile = %q, want %q", got, ProfileMixed)
	}
	if got := normalizeProfile("  AUTH  "); got != ProfileAuth {
		t.Fatalf("padded profile = %q, want %q", got, ProfileAuth)
	}
	if got := normalizeProfile("Content"); got != ProfileContent {
		t.Fatalf("mixed-case profile = %q, want %q", got, ProfileContent)
	}
}

func TestRunRejectsUnknownProfile(t *testing.T) {
	_, err := Run(context.Background(), Config{BaseURL: "http://localhost:8080", Profile: "chaos"})
	if err == nil {
		t.Fatal("expected an error for an unknown profile")
	}
}

func TestRunRequiresBaseURL(t *testing.T) {
	_, err := Run(context.Background(), Config{Profile: ProfileContent})
	if err == nil {
		t.Fatal("expected an error without a base URL")
	}
}
