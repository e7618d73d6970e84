package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Phone  string `json:"phone" validate:"required,phone10"`
	CIN    string `json:"cin" validate:"required,cin"`
	Email  string `json:"email" validate:"omitempty,simpleemail"`
	Amount string `json:"amount" validate:"omitempty,amount"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidatorAccepts(t *testing.T) {
	v := New()
	err := v.Struct(&form{Phone: "0612345678", CIN: "AB12345", Email: "a@b.ma", Amount: "250.50", Date: "2024-06-03"})
	assert.NoError(t, err)

	err = v.Struct(&form{Phone: "0612345678", CIN: "x1"})
	assert.NoError(t, err, "email is optional")
}

func TestValidatorRejects(t *testing.T) {
	v := New()
	err := v.Struct(&form{Phone: "061234567", CIN: "AB-12", Email: "nope@", Amount: "-3", Date: "03/06/2024"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgPhone, verr.Fields["phone"])
	assert.Equal(t, MsgCIN, verr.Fields["cin"])
	assert.Equal(t, MsgEmail, verr.Fields["email"])
	assert.Equal(t, MsgAmount, verr.Fields["amount"])
	assert.Contains(t, verr.Fields["date"], "2006-01-02")
}

func TestValidatorRequired(t *testing.T) {
	err := New().Struct(&form{})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Ce champ est obligatoire", verr.Fields["phone"])
	assert.Equal(t, "Ce champ est obligatoire", verr.Fields["cin"])
	assert.NotContains(t, verr.Fields, "email")
}

func TestRegexes(t *testing.T) {
	assert.True(t, IsPhone("0612345678"))
	assert.False(t, IsPhone("061234567"))
	assert.False(t, IsPhone("06123456789"))
	assert.False(t, IsPhone("06 1234567"))

	assert.True(t, IsCIN("BE123456"))
	assert.False(t, IsCIN(""))
	assert.False(t, IsCIN("BE 123"))

	assert.True(t, IsEmail("sara@clinic.ma"))
	assert.False(t, IsEmail("sara@clinic"))
	assert.False(t, IsEmail("sa ra@clinic.ma"))
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "061", SanitizePhone("06", "06-1"))
	assert.Equal(t, "0612345678", SanitizePhone("061234567", "0612345678"))
	assert.Equal(t, "0612345678", SanitizePhone("0612345678", "06123456789"))
	assert.Equal(t, "", SanitizePhone("0", "a"))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "invalid input: a: one; b: two", err.Error())
	assert.ErrorIs(t, NewError("time", "x"), ErrInvalid)
}
