package credentials

import (
	"errors"
	"regexp"
	"testing"
)

func TestBaseUsername(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"Ada", "Lovelace", "ada.lovelace"},
		{"  José ", "Núñez", "jose.nunez"},
		{"Mary-Jane", "Smith", "mary.jane.smith"},
		{"", "", "student"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := BaseUsername(tt.first, tt.last); got != tt.want {
				t.Errorf("BaseUsername(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
			}
		})
	}
}

func TestGenerateUsername(t *testing.T) {
	taken := map[string]bool{"ada.lovelace": true, "ada.lovelace2": true}

	got, err := GenerateUsername("Ada", "Lovelace", func(u string) (bool, error) {
		return taken[u], nil
	})
	if err != nil {
		t.Fatalf("GenerateUsername() error = %v", err)
	}
	if got != "ada.lovelace3" {
		t.Errorf("GenerateUsername() = %q, want ada.lovelace3", got)
	}

	boom := errors.New("db down")
	if _, err := GenerateUsername("Ada", "Lovelace", func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("GenerateUsername() error = %v, want %v", err, boom)
	}
}

func TestGeneratePassword(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+-[1-9][0-9]$`)
	for i := 0; i < 100; i++ {
		password, err := GeneratePassword()
		if err != nil {
			t.Fatalf("GeneratePassword() error = %v", err)
		}
		if !pattern.MatchString(password) {
			t.Errorf("GeneratePassword() = %q, does not match %s", password, pattern)
		}
	}
}

func TestGenerateInvitationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^HILL-[A-HJ-NP-Z2-9]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateInvitationCode("hillside-primary")
		if err != nil {
			t.Fatalf("GenerateInvitationCode() error = %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("GenerateInvitationCode() = %q", code)
		}
		if seen[code] {
			t.Errorf("duplicate code %q", code)
		}
		seen[code] = true
	}

	code, _ := GenerateInvitationCode("")
	if len(code) != len("BEE-")+6 {
		t.Errorf("GenerateInvitationCode(\"\") = %q", code)
	}
}
