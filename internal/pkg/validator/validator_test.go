package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-28"); !ok {
		t.Error("IsValidDate(2025-02-28) = false, want true")
	}
	for _, s := range []string{"2025-13-01", "2025-02-30", "28-02-2025", "not-a-date", ""} {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:00", "23:59"}
	invalid := []string{"24:00", "9:60", "0900", "midnight", ""}
	for _, s := range valid {
		if _, ok := IsValidClock(s); !ok {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidClock(s); ok {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"active", "completed"}
	if !IsInSlice("active", slice) {
		t.Error("IsInSlice(active) = false, want true")
	}
	if IsInSlice("pending", slice) {
		t.Error("IsInSlice(pending) = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "page", Message: "page must be a positive number"},
		{Field: "status", Message: "status must be one of: active, completed"},
	}

	if errs.Error() != "page: page must be a positive number; status: status must be one of: active, completed" {
		t.Errorf("unexpected Error() output: %q", errs.Error())
	}

	m := errs.ToMap()
	if len(m) != 2 || m["page"] == "" || m["status"] == "" {
		t.Errorf("unexpected ToMap() output: %v", m)
	}
}
