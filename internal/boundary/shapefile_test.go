package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// writeSquareShapefile writes a one-record polygon shapefile with a NAME
// attribute and returns its path.
func writeSquareShapefile(t *testing.T, label string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zones.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 25)}))

	ring := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	w.Write(&poly)
	require.NoError(t, w.WriteAttribute(0, 0, label))
	w.Close()

	// go-shp v0.1.1's Create strips the ".shp" extension including the dot
	// and SetFields appends "dbf", so the attributes land at "zonesdbf"
	// where the reader expects "zones.dbf".
	dir := filepath.Dir(path)
	require.NoError(t, os.Rename(filepath.Join(dir, "zonesdbf"), filepath.Join(dir, "zones.dbf")))

	return path
}

func TestLoadShapefile(t *testing.T) {
	path := writeSquareShapefile(t, "Testville")

	res := NewLoader().LoadShapefile(path, "NAME")
	require.Equal(t, SourceShapefile, res.Source)
	require.Len(t, res.Regions, 1)

	// DBF string fields come back NUL-padded to their declared width; the
	// label must be the bare value.
	assert.Equal(t, "Testville", res.Regions[0].Label)

	ix, err := region.NewIndex(res.Regions)
	require.NoError(t, err)
	assert.True(t, ix.Contains(0.5, 0.5))
	assert.False(t, ix.Contains(2, 2))
}

func TestLoadShapefile_MissingFileUsesFallback(t *testing.T) {
	res := NewLoader().LoadShapefile(filepath.Join(t.TempDir(), "absent.shp"), "NAME")
	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Regions, 5)
}

func TestLoadShapefile_MissingLabelFieldUsesFallback(t *testing.T) {
	path := writeSquareShapefile(t, "Testville")

	res := NewLoader().LoadShapefile(path, "BOROUGH")
	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Regions, 5)
}

func TestLoadShapefile_BlankLabelRecordSkipped(t *testing.T) {
	path := writeSquareShapefile(t, "   ")

	// The only record has no usable label, so nothing survives and the
	// fallback set is substituted.
	res := NewLoader().LoadShapefile(path, "NAME")
	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Regions, 5)
}
