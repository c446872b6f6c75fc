package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	cases := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{25, "degC", "K", 298.15},
		{298.15, "K", "degC", 25},
		{32, "degF", "degC", 0},
		{100, "bar", "Pa", 1e7},
		{1, "atm", "kPa", 101.325},
		{2, "L", "m3", 2e-3},
		{1, "kcal", "kJ", 4.184},
		{5, "mmol", "mol", 5e-3},
		{1, "", "1", 1},
	}
	for _, c := range cases {
		got, err := Convert(c.value, c.from, c.to)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-9*max(1, c.want), "%v %s -> %s", c.value, c.from, c.to)
	}
}

func TestToSI(t *testing.T) {
	v, err := ToSI(60, "degC")
	require.NoError(t, err)
	assert.InDelta(t, 333.15, v, 1e-12)

	_, err = ToSI(1, "furlong")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestIncompatible(t *testing.T) {
	_, err := Convert(1, "K", "Pa")
	assert.ErrorIs(t, err, ErrIncompatible)

	d, err := Lookup("kJ")
	require.NoError(t, err)
	assert.Equal(t, Energy, d)
}
