package application

import (
	"errors"
	"testing"

	"deckvault/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	t.Run("accepts non-empty values", func(t *testing.T) {
		if err := ValidateRequired("projectID", "talks"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects empty and whitespace", func(t *testing.T) {
		for _, value := range []string{"", "   ", "\t\n"} {
			err := ValidateRequired("projectID", value)
			if err == nil {
				t.Errorf("ValidateRequired(%q) accepted", value)
				continue
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %T, want *ValidationError", err)
			}
		}
	})

	t.Run("formats known field names", func(t *testing.T) {
		err := ValidateRequired("srcProjectID", "")
		if err == nil || !contains(err.Error(), "source project ID") {
			t.Errorf("error = %v, want readable field name", err)
		}
	})
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple name", "talks", false},
		{"with dashes", "my-talks-2026", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"forward slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"hidden", ".git", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProjectName) {
				t.Errorf("err = %v, want ErrInvalidProjectName", err)
			}
		})
	}
}

func TestValidateAssetKey(t *testing.T) {
	t.Run("normalizes", func(t *testing.T) {
		key, err := ValidateAssetKey("./img//fig.png")
		if err != nil || key != "img/fig.png" {
			t.Errorf("got %q, %v", key, err)
		}
	})

	t.Run("rejects keys that normalize away", func(t *testing.T) {
		for _, value := range []string{"", "..", "../.."} {
			if _, err := ValidateAssetKey(value); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ValidateAssetKey(%q) = %v, want ErrInvalidKey", value, err)
			}
		}
	})
}

func TestValidateAssetKind(t *testing.T) {
	if k, err := ValidateAssetKind("resources"); err != nil || k != domain.KindResource {
		t.Errorf("resources = %v, %v", k, err)
	}
	if k, err := ValidateAssetKind("attachments"); err != nil || k != domain.KindAttachment {
		t.Errorf("attachments = %v, %v", k, err)
	}
	if _, err := ValidateAssetKind("images"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchSubstring(s, substr)
}

func searchSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
