package utils

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-11-02 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 11 || d.Day() != 2 {
		t.Fatalf("got %v", d)
	}
	for _, bad := range []string{"", "2026-13-01", "02-11-2026", "2026-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLogEventFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	LogEvent(" req-1 ", "dispatch", "run_requested", "actor=operator")
	got := buf.String()
	if !strings.Contains(got, "[DISPATCH] action=run_requested request_id=req-1 msg=actor=operator") {
		t.Fatalf("unexpected log line %q", got)
	}
}
