package clock

import (
	"testing"
	"time"
)

func TestNewZoned(t *testing.T) {
	clk, err := NewZoned("UTC")
	if err != nil {
		t.Fatalf("NewZoned(UTC): %v", err)
	}
	if got := clk.Now().Location().String(); got != "UTC" {
		t.Errorf("location = %s, want UTC", got)
	}

	if _, err := NewZoned("Mars/Olympus"); err == nil {
		t.Error("unknown zone accepted")
	}
}

func TestNewZoned_DefaultZone(t *testing.T) {
	clk, err := NewZoned("")
	if err != nil {
		t.Fatalf("NewZoned(\"\"): %v", err)
	}
	if got := clk.Location().String(); got != DefaultZone {
		t.Errorf("location = %s, want %s", got, DefaultZone)
	}
}

func TestFixed(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	clk := &Fixed{T: start}

	if !clk.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clk.Now(), start)
	}

	moved := clk.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !moved.Equal(want) || !clk.Now().Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", clk.Now(), want)
	}
}
