package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoAddPosDist(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "GEOADD", "g",
		"13.361389", "38.115556", "Palermo",
		"15.087269", "37.502669", "Catania",
	)
	assert.Equal(t, int64(2), r.Value.Int)

	r = exec(t, d, cs, "GEOPOS", "g", "Palermo", "missing")
	require.Len(t, r.Value.Elems, 2)
	require.Len(t, r.Value.Elems[0].Elems, 2)
	assert.True(t, r.Value.Elems[1].IsNil())

	r = exec(t, d, cs, "GEODIST", "g", "Palermo", "Catania")
	require.Equal(t, KindValue, r.Kind)
	assert.NotEmpty(t, string(r.Value.Bulk))

	r = exec(t, d, cs, "GEODIST", "g", "Palermo", "Catania", "km")
	assert.NotEmpty(t, string(r.Value.Bulk))
}

func TestGeoDistMissingMemberIsNil(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "GEOADD", "g", "13.361389", "38.115556", "Palermo")
	r := exec(t, d, cs, "GEODIST", "g", "Palermo", "missing")
	assert.True(t, r.Value.IsNil())
}

func TestGeoSearch(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "GEOADD", "g",
		"13.361389", "38.115556", "Palermo",
		"15.087269", "37.502669", "Catania",
	)

	r := exec(t, d, cs, "GEOSEARCH", "g", "15", "37", "200000")
	require.Equal(t, KindValue, r.Kind)
	assert.NotEmpty(t, r.Value.Elems)
}
