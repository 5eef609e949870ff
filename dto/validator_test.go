package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"SecurePass123!", true},
		{"Aa1!aaaa", true},
		{"short1A!", true},
		{"Aa1!aaa", false},        // too short
		{"alllowercase1!", false}, // no upper
		{"ALLUPPERCASE1!", false}, // no lower
		{"NoNumbers!!", false},
		{"NoSpecial123", false},
		{"", false},
	}

	for _, tt := range tests {
		req := RegisterRequest{
			Email:    "user@example.com",
			Username: "johndoe",
			Password: tt.password,
		}
		err := req.Validate()
		if tt.valid {
			assert.NoError(t, err, "password %q should be accepted", tt.password)
		} else {
			assert.Error(t, err, "password %q should be rejected", tt.password)
		}
	}
}

func TestRegisterRequestValidation(t *testing.T) {
	valid := RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	}
	require.NoError(t, valid.Validate())

	t.Run("bad email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("short username", func(t *testing.T) {
		req := valid
		req.Username = "ab"
		assert.Error(t, req.Validate())
	})

	t.Run("username with symbols", func(t *testing.T) {
		req := valid
		req.Username = "john.doe!"
		assert.Error(t, req.Validate())
	})
}

func TestSubmitScoreRequestValidation(t *testing.T) {
	valid := SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "hard",
		Score:      100,
		TimeTaken:  30,
		Accuracy:   90,
	}
	require.NoError(t, valid.Validate())

	t.Run("negative score", func(t *testing.T) {
		req := valid
		req.Score = -1
		assert.Error(t, req.Validate())
	})

	t.Run("accuracy over 100", func(t *testing.T) {
		req := valid
		req.Accuracy = 100.5
		assert.Error(t, req.Validate())
	})

	t.Run("missing game type", func(t *testing.T) {
		req := valid
		req.GameType = ""
		assert.Error(t, req.Validate())
	})

	t.Run("zero score allowed", func(t *testing.T) {
		req := valid
		req.Score = 0
		assert.NoError(t, req.Validate())
	})
}

func TestFormatValidationErrors(t *testing.T) {
	req := RegisterRequest{Email: "bad", Username: "x", Password: "weak"}
	err := req.Validate()
	require.Error(t, err)

	resp := CreateValidationErrorResponse(err)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.NotEmpty(t, resp.Errors)

	fields := map[string]bool{}
	for _, e := range resp.Errors {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Message)
	}
	assert.True(t, fields["Email"])
	assert.True(t, fields["Username"])
	assert.True(t, fields["Password"])
}
