package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,password_strength"`
	OTP      string `json:"otp" validate:"omitempty,otp"`
}

func TestValidateStruct_Valid(t *testing.T) {
	details := ValidateStruct(signupInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "Test123!@#",
		OTP:      "012345",
	})
	assert.Empty(t, details)
}

func TestValidateStruct_UsesJSONFieldNames(t *testing.T) {
	details := ValidateStruct(signupInput{})

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "password")
	assert.Equal(t, "email is required", fields["email"])
}

func TestValidateStruct_CustomTags(t *testing.T) {
	details := ValidateStruct(signupInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "weakpass",
		OTP:      "12ab56",
	})

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields["password"], "uppercase")
	assert.Equal(t, "otp must be a 6 digit code", fields["otp"])
}
