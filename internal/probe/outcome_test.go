package probe

import (
	"errors"
	"testing"
	"time"
)

func TestOutcomeSuccessWindow(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, false},
		{199, false},
		{200, true},
		{204, true},
		{302, true},
		{399, true},
		{400, false},
		{404, false},
		{429, false},
		{500, false},
	}
	for _, tt := range tests {
		out := Outcome{Status: tt.status}
		if got := out.Succeeded(); got != tt.want {
			t.Errorf("Outcome{Status: %d}.Succeeded() = %v, want %v", tt.status, got, tt.want)
		}
		if out.Failed() == out.Succeeded() {
			t.Errorf("Failed() must be the complement of Succeeded() for status %d", tt.status)
		}
	}
}

func TestFailureOutcomeInvariant(t *testing.T) {
	out := failureOutcome(ProtocolHTTP11, "GET", "http://localhost:8080/", 5*time.Millisecond, errors.New("connection refused"))

	if out.Status != 0 {
		t.Errorf("failure outcome Status = %d, want 0", out.Status)
	}
	if out.Error == "" {
		t.Error("failure outcome must carry an error message")
	}
	if out.Succeeded() {
		t.Error("failure outcome must not be classified as success")
	}
	if out.LatencyMs != 5.0 {
		t.Errorf("LatencyMs = %g, want 5.0", out.LatencyMs)
	}
}

func TestFailureOutcomeNilError(t *testing.T) {
	out := failureOutcome(ProtocolHTTP3, "GET", "https://localhost:8443/", 0, nil)
	if out.Error == "" {
		t.Error("failure outcome with nil error must still carry a message")
	}
}

func TestBodyPreview(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    string
	}{
		{"empty", nil, ""},
		{"short text", []byte("hello"), "hello"},
		{"binary", []byte{0xff, 0xfe, 0x00, 0x01}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bodyPreview(tt.payload); got != tt.want {
				t.Errorf("bodyPreview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBodyPreviewTruncation(t *testing.T) {
	long := make([]byte, maxBodyPreviewBytes*2)
	for i := range long {
		long[i] = 'a'
	}
	got := bodyPreview(long)
	if len(got) != maxBodyPreviewBytes {
		t.Errorf("preview length = %d, want %d", len(got), maxBodyPreviewBytes)
	}
}

func TestBodyPreviewSplitRune(t *testing.T) {
	// Fill with 'a' then place a multi-byte rune across the cut point.
	payload := make([]byte, 0, maxBodyPreviewBytes+4)
	for len(payload) < maxBodyPreviewBytes-1 {
		payload = append(payload, 'a')
	}
	payload = append(payload, []byte("世界")...)

	got := bodyPreview(payload)
	if got == "" {
		t.Fatal("expected non-empty preview for text payload")
	}
	if len(got) > maxBodyPreviewBytes {
		t.Errorf("preview length = %d, exceeds cap %d", len(got), maxBodyPreviewBytes)
	}
	for _, r := range got {
		if r == '�' {
			t.Error("preview contains replacement rune, rune was split at the cut")
		}
	}
}
