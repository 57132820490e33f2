package timestamp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ColonlessAndColonOffsetsAgree(t *testing.T) {
	a, err := Normalize("2024-01-01T10:00:00.000+0000")
	require.NoError(t, err)
	b, err := Normalize("2024-01-01T10:00:00.000+00:00")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a, b)
	assert.Equal(t, time.UTC, a.Location())
}

func TestNormalize_Encodings(t *testing.T) {
	want := time.Date(2024, 3, 5, 8, 30, 15, 123000000, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"zulu", "2024-03-05T08:30:15.123Z"},
		{"colon offset", "2024-03-05T08:30:15.123+00:00"},
		{"colonless offset", "2024-03-05T08:30:15.123+0000"},
		{"no offset", "2024-03-05T08:30:15.123"},
		{"positive offset", "2024-03-05T10:30:15.123+02:00"},
		{"positive colonless offset", "2024-03-05T10:30:15.123+0200"},
		{"negative colonless offset", "2024-03-05T03:30:15.123-0500"},
		{"surrounding space", "  2024-03-05T08:30:15.123Z "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalize_WithoutFraction(t *testing.T) {
	got, err := Normalize("2024-03-05T08:30:15+0000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 30, 15, 0, time.UTC), got)
}

func TestNormalize_MicrosecondPrecision(t *testing.T) {
	got, err := Normalize("2024-03-05T08:30:15.123456+0000")
	require.NoError(t, err)
	assert.Equal(t, 123456000, got.Nanosecond())
}

func TestNormalize_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"yesterday",
		"2024-03-05",
		"2024-03-05 08:30:15",
		"2024-13-05T08:30:15.123Z",
		"2024-03-05T08:30:15.123+000",
		"2024-03-05T08:30:15.123+0000 trailing",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			require.Error(t, err)

			var tsErr *Error
			assert.True(t, errors.As(err, &tsErr))
			assert.Equal(t, in, tsErr.Input)
		})
	}
}

func TestMustNormalize_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNormalize("nope") })
	assert.NotPanics(t, func() { MustNormalize("2050-01-01T23:59:59.123Z") })
}
