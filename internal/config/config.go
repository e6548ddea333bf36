package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"booking-api/internal/apperrors"
	"booking-api/internal/slotpolicy"
	"booking-api/internal/timewindow"
)

// Config carries everything the service reads from the environment. Slot
// policy or timezone problems surface as ConfigError and are fatal at
// startup, never per-request.
type Config struct {
	Port string

	CalendarID      string
	CredentialsFile string
	CalendarTimeout time.Duration

	OwnerEmail string
	MailFrom   string
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string

	DatabaseURL string

	rule   timewindow.Rule
	policy slotpolicy.Policy
}

func (c *Config) Rule() timewindow.Rule     { return c.rule }
func (c *Config) Policy() slotpolicy.Policy { return c.policy }

// FromEnv builds the config from environment variables.
//
// Slot policy is either SLOT_TIMES ("08:00,10:00,14:00") or SLOT_GRID
// ("9-17"), with SLOT_DURATION_MIN for both. The timezone rule is
// TZ_STD_OFFSET_MIN, optionally with TZ_DST_OFFSET_MIN and TZ_DST_MONTHS
// ("4-9") for the month-range DST approximation.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:            getenv("PORT", "8080"),
		CalendarID:      os.Getenv("CALENDAR_ID"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		OwnerEmail:      os.Getenv("OWNER_EMAIL"),
		MailFrom:        getenv("MAIL_FROM", "no-reply@localhost"),
		SMTPHost:        getenv("SMTP_HOST", "localhost"),
		SMTPPort:        getenv("SMTP_PORT", "25"),
		SMTPUser:        os.Getenv("SMTP_USERNAME"),
		SMTPPass:        os.Getenv("SMTP_PASSWORD"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
	}
	if c.CalendarID == "" {
		return nil, apperrors.Configf("CALENDAR_ID required")
	}
	if c.CredentialsFile == "" {
		return nil, apperrors.Configf("GOOGLE_CREDENTIALS_FILE required")
	}
	if c.OwnerEmail == "" {
		return nil, apperrors.Configf("OWNER_EMAIL required")
	}

	timeoutSec, err := intEnv("CALENDAR_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 {
		return nil, apperrors.Configf("CALENDAR_TIMEOUT_SECONDS must be positive")
	}
	c.CalendarTimeout = time.Duration(timeoutSec) * time.Second

	c.rule, err = ruleFromEnv()
	if err != nil {
		return nil, err
	}
	c.policy, err = policyFromEnv()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ruleFromEnv() (timewindow.Rule, error) {
	std, err := intEnv("TZ_STD_OFFSET_MIN", 0)
	if err != nil {
		return timewindow.Rule{}, err
	}

	dstMonths := os.Getenv("TZ_DST_MONTHS")
	dstOffset := os.Getenv("TZ_DST_OFFSET_MIN")
	if dstMonths == "" && dstOffset == "" {
		return timewindow.Fixed(std), nil
	}
	if dstMonths == "" || dstOffset == "" {
		return timewindow.Rule{}, apperrors.Configf("TZ_DST_MONTHS and TZ_DST_OFFSET_MIN must be set together")
	}

	dst, err := strconv.Atoi(dstOffset)
	if err != nil {
		return timewindow.Rule{}, apperrors.Configf("TZ_DST_OFFSET_MIN: %v", err)
	}
	startMonth, endMonth, err := parseMonthRange(dstMonths)
	if err != nil {
		return timewindow.Rule{}, err
	}
	return timewindow.MonthDST(std, dst, startMonth, endMonth), nil
}

func parseMonthRange(s string) (time.Month, time.Month, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, apperrors.Configf("TZ_DST_MONTHS %q, expected like 4-9", s)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || start < 1 || start > 12 || end < 1 || end > 12 {
		return 0, 0, apperrors.Configf("TZ_DST_MONTHS %q, months must be 1-12", s)
	}
	return time.Month(start), time.Month(end), nil
}

func policyFromEnv() (slotpolicy.Policy, error) {
	duration, err := intEnv("SLOT_DURATION_MIN", 60)
	if err != nil {
		return slotpolicy.Policy{}, err
	}

	timesStr := os.Getenv("SLOT_TIMES")
	gridStr := os.Getenv("SLOT_GRID")
	switch {
	case timesStr != "" && gridStr != "":
		return slotpolicy.Policy{}, apperrors.Configf("SLOT_TIMES and SLOT_GRID are mutually exclusive")
	case timesStr != "":
		var times []slotpolicy.TimeOfDay
		for _, part := range strings.Split(timesStr, ",") {
			tod, err := slotpolicy.ParseTimeOfDay(strings.TrimSpace(part))
			if err != nil {
				return slotpolicy.Policy{}, apperrors.Configf("SLOT_TIMES: %v", err)
			}
			times = append(times, tod)
		}
		return slotpolicy.Fixed(times, duration)
	case gridStr != "":
		parts := strings.SplitN(gridStr, "-", 2)
		if len(parts) != 2 {
			return slotpolicy.Policy{}, apperrors.Configf("SLOT_GRID %q, expected like 9-17", gridStr)
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return slotpolicy.Policy{}, apperrors.Configf("SLOT_GRID %q, expected like 9-17", gridStr)
		}
		return slotpolicy.Grid(start, end, duration)
	default:
		return slotpolicy.Policy{}, apperrors.Configf("either SLOT_TIMES or SLOT_GRID required")
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.Configf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
