package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupFieldValidators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field   string
		check   func(string) error
		input   string
		wantErr string
	}{
		{"password", ValidatePassword, "Kickflip2024!", ""},
		{"password", ValidatePassword, "Ollie" + strings.Repeat("x", 120) + "9!", ""},
		{"password", ValidatePassword, "Ünderflip12#", ""},
		{"password", ValidatePassword, "Short1!", "at least 12"},
		{"password", ValidatePassword, "Ollie" + strings.Repeat("x", 122) + "9!", "exceed 128"},
		{"password", ValidatePassword, "kickflip2024!", "uppercase"},
		{"password", ValidatePassword, "KICKFLIP2024!", "lowercase"},
		{"password", ValidatePassword, "Kickflipping!", "digit"},
		{"password", ValidatePassword, "Kickflip20245", "special"},

		{"username", ValidateUsername, "sk8_clips-99", ""},
		{"username", ValidateUsername, "ab", "at least 3"},
		{"username", ValidateUsername, strings.Repeat("u", 31), "exceed 30"},
		{"username", ValidateUsername, "sk8 clips", "only contain"},
		{"username", ValidateUsername, "_clips", "start or end"},
		{"username", ValidateUsername, "clips-", "start or end"},

		{"email", ValidateEmail, "rider@highlights.dev", ""},
		{"email", ValidateEmail, strings.Repeat("r", 64) + "@" + strings.Repeat("h", 185) + ".com", ""},
		{"email", ValidateEmail, "rider@", "invalid email"},
		{"email", ValidateEmail, "rider@@highlights.dev", "invalid email"},
		{"email", ValidateEmail, "rider@highlights.dev.", "invalid email"},
		{"email", ValidateEmail, strings.Repeat("r", 64) + "@" + strings.Repeat("h", 186) + ".com", "exceed 254"},
	}

	for _, tc := range cases {
		t.Run(tc.field+"/"+tc.input[:min(len(tc.input), 16)], func(t *testing.T) {
			err := tc.check(tc.input)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
