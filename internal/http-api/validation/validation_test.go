package validation

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("reader_01"))
	assert.NoError(t, Username("a.b@c+d-e"))
	assert.ErrorIs(t, Username("me"), ErrUsernameReserved)
	assert.ErrorIs(t, Username("Me"), ErrUsernameReserved)
	assert.ErrorIs(t, Username("with space"), ErrUsernamePattern)
	assert.ErrorIs(t, Username("semi;colon"), ErrUsernamePattern)
	assert.ErrorIs(t, Username(""), ErrUsernamePattern)

	long := make([]byte, MaxUsernameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, Username(string(long)), ErrUsernameLength)
}

func TestSlug(t *testing.T) {
	assert.NoError(t, Slug("sci-fi_2"))
	assert.ErrorIs(t, Slug("sci fi"), ErrSlugPattern)
	assert.ErrorIs(t, Slug("фантастика"), ErrSlugPattern)
}

func TestYear(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, Year(1965, now))
	assert.NoError(t, Year(2026, now))
	assert.ErrorIs(t, Year(2027, now), ErrYearInFuture)
}

type signup struct {
	Username string `json:"username" binding:"required,max=150,username,notme"`
	Slug     string `json:"slug" binding:"omitempty,slug"`
	Year     int    `json:"year" binding:"omitempty,notfuture"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterOn(v))
	return v
}

func TestRegisteredTags(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(signup{Username: "reader", Slug: "drama", Year: 1999}))

	err := v.Struct(signup{Username: "ME", Slug: "bad slug", Year: time.Now().Year() + 1})
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{ErrUsernameReserved.Error()}, fields["username"])
	assert.Equal(t, []string{ErrSlugPattern.Error()}, fields["slug"])
	assert.Equal(t, []string{ErrYearInFuture.Error()}, fields["year"])
}

func TestFieldErrors_NotValidation(t *testing.T) {
	_, ok := FieldErrors(assert.AnError)
	assert.False(t, ok)
}
