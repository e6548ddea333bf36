package config

import (
	"errors"
	"testing"
	"time"

	"booking-api/internal/apperrors"
	"booking-api/internal/timewindow"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CALENDAR_ID", "primary")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/creds.json")
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("SLOT_TIMES", "08:00,10:00,14:00")
	t.Setenv("SLOT_DURATION_MIN", "60")
	t.Setenv("TZ_STD_OFFSET_MIN", "60")
}

func TestFromEnv_FixedTimes(t *testing.T) {
	setBaseEnv(t)

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slots := c.Policy().Slots()
	if len(slots) != 3 || slots[1].Label() != "10:00" {
		t.Fatalf("unexpected slots: %v", slots)
	}
	if off := c.Rule().OffsetMinutes(timewindow.Date{Year: 2025, Month: time.July, Day: 1}); off != 60 {
		t.Fatalf("fixed rule offset = %d", off)
	}
	if c.CalendarTimeout != 10*time.Second {
		t.Fatalf("default timeout = %s", c.CalendarTimeout)
	}
}

func TestFromEnv_Grid(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SLOT_TIMES", "")
	t.Setenv("SLOT_GRID", "9-17")
	t.Setenv("SLOT_DURATION_MIN", "30")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(c.Policy().Slots()); got != 16 {
		t.Fatalf("expected 16 grid slots, got %d", got)
	}
}

func TestFromEnv_DSTRule(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TZ_DST_OFFSET_MIN", "120")
	t.Setenv("TZ_DST_MONTHS", "4-9")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := c.Rule()
	if off := rule.OffsetMinutes(timewindow.Date{Year: 2025, Month: time.July, Day: 1}); off != 120 {
		t.Fatalf("July offset = %d, want 120", off)
	}
	if off := rule.OffsetMinutes(timewindow.Date{Year: 2025, Month: time.January, Day: 1}); off != 60 {
		t.Fatalf("January offset = %d, want 60", off)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	cases := []struct {
		name string
		mod  func(t *testing.T)
	}{
		{"missing calendar id", func(t *testing.T) { t.Setenv("CALENDAR_ID", "") }},
		{"missing slot policy", func(t *testing.T) { t.Setenv("SLOT_TIMES", "") }},
		{"both policies", func(t *testing.T) { t.Setenv("SLOT_GRID", "9-17") }},
		{"bad slot time", func(t *testing.T) { t.Setenv("SLOT_TIMES", "8am,10am") }},
		{"dst months without offset", func(t *testing.T) { t.Setenv("TZ_DST_MONTHS", "4-9") }},
		{"bad dst months", func(t *testing.T) {
			t.Setenv("TZ_DST_MONTHS", "0-13")
			t.Setenv("TZ_DST_OFFSET_MIN", "120")
		}},
		{"bad duration", func(t *testing.T) { t.Setenv("SLOT_DURATION_MIN", "sixty") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			tc.mod(t)
			_, err := FromEnv()
			var ce *apperrors.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}
