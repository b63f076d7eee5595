package submatch

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleCostMap() CostMap {
	return CostMap{
		1: {10: 0.5, 20: 1.25},
		2: {30: 0},
	}
}

func TestCostMap_ExportImportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleCostMap().Export(&buf))

	got, err := ImportCostMap(&buf)
	require.NoError(t, err)
	require.Equal(t, sampleCostMap(), got)
}

func TestImportCostMap_RejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	_, err := binaryWrite(&buf, 999)
	require.NoError(t, err)

	_, err = ImportCostMap(&buf)
	require.Error(t, err)
}

func TestSavedCostMap_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.bin")

	saved, err := LoadSavedCostMap(path)
	require.NoError(t, err)
	require.Empty(t, saved.Costs)

	saved.Costs = sampleCostMap()
	require.NoError(t, saved.Save())

	reloaded, err := LoadSavedCostMap(path)
	require.NoError(t, err)
	require.Equal(t, sampleCostMap(), reloaded.Costs)
}

func TestCostMapFromCosts(t *testing.T) {
	costs := map[candidateKey]float64{
		{1, 10}: 0.5,
		{1, 20}: 1.25,
		{2, 30}: 0,
	}
	require.Equal(t, sampleCostMap(), costMapFromCosts(costs))
}
