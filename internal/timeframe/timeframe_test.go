package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  Spec
	}{
		{"15m:60:60", Spec{Interval: 15 * time.Minute, Unit: "m", N: 15, PrimaryCount: 60, SecondaryCount: 60}},
		{"1h:24:12", Spec{Interval: time.Hour, Unit: "h", N: 1, PrimaryCount: 24, SecondaryCount: 12}},
		{"3d:30:10", Spec{Interval: 72 * time.Hour, Unit: "d", N: 3, PrimaryCount: 30, SecondaryCount: 10}},
		{"4H:10:5", Spec{Interval: 4 * time.Hour, Unit: "h", N: 4, PrimaryCount: 10, SecondaryCount: 5}},
		{" 5m:1:1 ", Spec{Interval: 5 * time.Minute, Unit: "m", N: 5, PrimaryCount: 1, SecondaryCount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		input string
		want  error
	}{
		{"15m:60", ErrMalformedSpec},
		{"15m", ErrMalformedSpec},
		{"15m:60:60:1", ErrMalformedSpec},
		{"", ErrMalformedSpec},
		{"15x:60:60", ErrInvalidInterval},
		{"m:60:60", ErrInvalidInterval},
		{"0m:60:60", ErrInvalidInterval},
		{"-5m:60:60", ErrInvalidInterval},
		{"15:60:60", ErrInvalidInterval},
		{"15m:0:60", ErrInvalidCount},
		{"15m:60:0", ErrInvalidCount},
		{"15m:abc:60", ErrInvalidCount},
		{"15m::60", ErrInvalidCount},
		{"15m:60:-3", ErrInvalidCount},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := Parse(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseErrorEchoesInput(t *testing.T) {
	_, err := Parse("15x:60:60")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "15x")
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range []string{"15m:60:60", "1h:24:12", "30M:7:3", "2d:5:5"} {
		spec, err := Parse(input)
		require.NoError(t, err)
		again, err := Parse(spec.String())
		require.NoError(t, err)
		assert.Equal(t, spec, again)
		assert.Equal(t, spec.String(), again.String())
	}
}

func TestCoarseFactor(t *testing.T) {
	cases := []struct {
		spec string
		want int
	}{
		{"15m:60:60", 1},
		{"15m:60:20", 3},
		{"15m:60:7", 9},
		{"1h:100:1", 100},
	}
	for _, tc := range cases {
		spec, err := Parse(tc.spec)
		require.NoError(t, err)
		assert.Equal(t, tc.want, spec.CoarseFactor(), tc.spec)
	}
}
