package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("FPSMON_TEST_STR", "value")

	if got := GetEnvOrDefault("FPSMON_TEST_STR", "fallback"); got != "value" {
		t.Errorf("GetEnvOrDefault() = %q, want %q", got, "value")
	}
	if got := GetEnvOrDefault("FPSMON_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault() = %q, want %q", got, "fallback")
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"invalid", "not-a-number", 7},
		{"empty", "", 7},
		{"negative", "-3", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FPSMON_TEST_INT", tt.value)
			if got := ParseIntEnv("FPSMON_TEST_INT", 7); got != tt.want {
				t.Errorf("ParseIntEnv(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"off", false},
		{"garbage", true}, // falls back to default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FPSMON_TEST_BOOL", tt.value)
			if got := ParseBoolEnv("FPSMON_TEST_BOOL", true); got != tt.want {
				t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("FPSMON_TEST_DUR", "9")
	if got := ParseDurationEnv("FPSMON_TEST_DUR", 2); got != 9*time.Second {
		t.Errorf("ParseDurationEnv() = %v, want 9s", got)
	}
	if got := ParseDurationEnv("FPSMON_TEST_DUR_UNSET", 2); got != 2*time.Second {
		t.Errorf("ParseDurationEnv() default = %v, want 2s", got)
	}
}
