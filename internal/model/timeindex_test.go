package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionSlots(t *testing.T) {
	cases := map[Resolution]int{
		Res1Y:    1,
		Res1M:    12,
		Res1W:    52,
		Res1D:    365,
		Res1H:    8760,
		Res15Min: 35040,
		Res1Min:  525600,
	}
	for res, want := range cases {
		got, err := res.Slots()
		require.NoError(t, err, res)
		assert.Equal(t, want, got, res)
	}

	_, err := Resolution("2h").Slots()
	assert.Error(t, err)
}

func TestSlotOfHour(t *testing.T) {
	assert.Equal(t, 0, Res1M.SlotOfHour(0))
	assert.Equal(t, 0, Res1M.SlotOfHour(31*24-1))
	assert.Equal(t, 1, Res1M.SlotOfHour(31*24))
	assert.Equal(t, 11, Res1M.SlotOfHour(HoursPerYear-1))

	assert.Equal(t, 51, Res1W.SlotOfHour(HoursPerYear-1))
	assert.Equal(t, 364, Res1D.SlotOfHour(HoursPerYear-1))
}

func TestTimeIndexCheck(t *testing.T) {
	idx, err := NewTimeIndex(24)
	require.NoError(t, err)
	assert.NoError(t, idx.Check("demand", make([]float64, 24)))
	assert.Error(t, idx.Check("demand", make([]float64, 23)))

	_, err = NewTimeIndex(0)
	assert.Error(t, err)
	assert.Equal(t, HoursPerYear, Year().Len())
}

func TestEnergyUnitFactor(t *testing.T) {
	f, err := MWh.KWhFactor()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f)

	f, err = EnergyUnit("wh").KWhFactor()
	require.NoError(t, err)
	assert.Equal(t, 1e-3, f)

	_, err = EnergyUnit("J").KWhFactor()
	assert.Error(t, err)
}

func TestParseEnergyType(t *testing.T) {
	et, err := ParseEnergyType("thermal")
	require.NoError(t, err)
	assert.Equal(t, Thermal, et)
	assert.Equal(t, "thermal_demand", et.DemandTitle())

	_, err = ParseEnergyType("steam")
	assert.Error(t, err)
}
