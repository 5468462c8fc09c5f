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

func TestServiceHost(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://Weather.Example.COM/api/notifications", "weather.example.com", false},
		{"http://localhost:3000/api/notifications?page=2", "localhost:3000", false},
		{"https://example.com", "example.com", false},
		{"  https://example.com/x  ", "example.com", false},
		{"ftp://example.com/x", "", true},
		{"example.com/api", "", true},
		{"https://", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ServiceHost(c.input)
		if c.wantErr {
			if err == nil {
				t.Errorf("ServiceHost(%q) expected error, got %q", c.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ServiceHost(%q) unexpected error: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ServiceHost(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestBaseURL(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://Weather.Example.COM/api/notifications", "https://weather.example.com"},
		{"http://localhost:3000/deep/path", "http://localhost:3000"},
	}
	for _, c := range cases {
		got, err := BaseURL(c.input)
		if err != nil {
			t.Errorf("BaseURL(%q) unexpected error: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("BaseURL(%q) = %q, want %q", c.input, got, c.want)
		}
	}

	if _, err := BaseURL("not a url"); err == nil {
		t.Error("BaseURL accepted a plain string")
	}
}

func TestIsValidNotifyID(t *testing.T) {
	valid := []string{"abcd-ef01-2345", "0000-0000-0000"}
	invalid := []string{"", "abcd-ef01", "ABCD-EF01-2345", "abcd-ef01-23456", "ghij-klmn-opqr"}
	for _, id := range valid {
		if !IsValidNotifyID(id) {
			t.Errorf("IsValidNotifyID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidNotifyID(id) {
			t.Errorf("IsValidNotifyID(%q) = true, want false", id)
		}
	}
}

func TestIsValidThirdPartyURL(t *testing.T) {
	if !IsValidThirdPartyURL("https://example.com/anything") {
		t.Error("expected https URL to be valid")
	}
	if IsValidThirdPartyURL("javascript:alert(1)") {
		t.Error("expected non-http scheme to be invalid")
	}
}
