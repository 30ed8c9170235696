package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,address"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	v := New()
	assert.NoError(t, v.Struct(signup{Name: "Jo", Email: "jo@example.com", Password: "secret1"}))
}

func TestStruct_TranslatesFailures(t *testing.T) {
	t.Parallel()

	v := New()
	err := v.Struct(signup{Email: "jo at example", Password: "abc"})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, verrs, "name is a required field")
	assert.Contains(t, verrs, "email must be a valid email address")
	assert.Contains(t, verrs, "password must be at least 6 characters in length")
}

func TestStruct_RejectsBlankName(t *testing.T) {
	t.Parallel()

	type named struct {
		Name string `json:"name" validate:"required,notblank"`
	}

	v := New()
	require.NoError(t, v.Struct(named{Name: " Jo "}))

	err := v.Struct(named{Name: "   "})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, Errors{"name must not be blank"}, verrs)
}

func TestAddressPattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"a@b.c", true},
		{"first.last@sub.example.org", true},
		{"no-at.example.com", false},
		{"two words@example.com", false},
		{"a@b", false},
	} {
		assert.Equal(t, tc.want, addressPattern.MatchString(tc.in), tc.in)
	}
}
