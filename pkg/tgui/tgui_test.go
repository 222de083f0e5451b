package tgui

import (
	"strings"
	"testing"
)

func TestDataRoundTrip(t *testing.T) {
	d, err := Data("del", "42")
	if err != nil || d != "del:42" {
		t.Fatalf("Data = %q, %v", d, err)
	}
	action, payload := Split(d)
	if action != "del" || payload != "42" {
		t.Fatalf("Split = %q, %q", action, payload)
	}

	if d, err = Data("noop", ""); err != nil || d != "noop" {
		t.Fatalf("empty payload: %q, %v", d, err)
	}
	if _, err = Data("del", strings.Repeat("9", 80)); err != ErrCallbackDataTooLong {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestSplitKeepsPayloadColons(t *testing.T) {
	action, payload := Split("set:18:00")
	if action != "set" || payload != "18:00" {
		t.Fatalf("Split = %q, %q", action, payload)
	}
}

func TestTruncRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hell…"},
		{"héllo", 2, "hé…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncRunes(tt.in, tt.n); got != tt.want {
			t.Fatalf("TruncRunes(%q,%d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
