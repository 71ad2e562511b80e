package hog

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomImage(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	return fillDense(rows, cols, func(_, _ int) float64 { return float64(rng.Intn(256)) })
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero bins", Config{Bins: 0, CellSize: 8, BlockSize: 2}, true},
		{"negative cell", Config{Bins: 9, CellSize: -8, BlockSize: 2}, true},
		{"zero block", Config{Bins: 9, CellSize: 8, BlockSize: 0}, true},
		{"all bad", Config{}, true},
		{"odd but valid", Config{Bins: 12, CellSize: 6, BlockSize: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidate_ReportsEveryField(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bins")
	assert.Contains(t, err.Error(), "cell size")
	assert.Contains(t, err.Error(), "block size")
}

func TestConfigChannels(t *testing.T) {
	assert.Equal(t, 36, DefaultConfig().Channels())
	assert.Equal(t, 108, Config{Bins: 12, CellSize: 6, BlockSize: 3}.Channels())
}

func TestNewExtractor_InvalidConfig(t *testing.T) {
	_, err := NewExtractor(Config{Bins: 9, CellSize: 0, BlockSize: 2})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPad(t *testing.T) {
	tests := []struct {
		rows, cols, cell   int
		wantRows, wantCols int
	}{
		{10, 13, 8, 16, 16},
		{16, 16, 8, 16, 16},
		{17, 8, 8, 24, 8},
		{5, 7, 3, 6, 9},
		{1, 1, 1, 1, 1},
	}

	for _, tt := range tests {
		im := fillDense(tt.rows, tt.cols, func(r, c int) float64 { return float64(r*100 + c + 1) })
		padded := Pad(im, tt.cell)
		rows, cols := padded.Dims()
		assert.Equal(t, tt.wantRows, rows)
		assert.Equal(t, tt.wantCols, cols)

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if r < tt.rows && c < tt.cols {
					assert.Equal(t, im.At(r, c), padded.At(r, c))
				} else {
					assert.Zero(t, padded.At(r, c))
				}
			}
		}
	}
}

func TestBinIndex(t *testing.T) {
	const bins = 9
	interval := 2 * math.Pi / bins

	assert.Equal(t, 0, BinIndex(math.Pi, bins))
	assert.Equal(t, 0, BinIndex(math.Pi-0.01, bins))
	assert.Equal(t, 5, BinIndex(0, bins))
	assert.Equal(t, 1, BinIndex(-math.Pi+0.01, bins))

	// the centre of each interval maps to a distinct bin
	seen := make(map[int]bool)
	for k := 0; k < bins; k++ {
		angle := -math.Pi + (float64(k)+0.5)*interval
		idx := BinIndex(angle, bins)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, bins)
		seen[idx] = true
	}
	assert.Len(t, seen, bins)
}

func TestBinIndex_AlwaysInRange(t *testing.T) {
	for _, bins := range []int{1, 2, 4, 9, 18} {
		for i := -1000; i <= 1000; i++ {
			angle := math.Pi * float64(i) / 1000
			idx := BinIndex(angle, bins)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, bins)
		}
		assert.Less(t, BinIndex(math.Nextafter(-math.Pi, 0), bins), bins)
		assert.Less(t, BinIndex(math.Nextafter(math.Pi, 4), bins), bins)
	}
}

func TestCellHistograms_MassConservation(t *testing.T) {
	im := randomImage(24, 32, 7)
	field, err := ComputeGradients(im)
	require.NoError(t, err)

	cells := CellHistograms(field, 8, 9)
	assert.Equal(t, 3, cells.Rows)
	assert.Equal(t, 4, cells.Cols)
	assert.Equal(t, 9, cells.Channels)

	for cr := 0; cr < cells.Rows; cr++ {
		for cc := 0; cc < cells.Cols; cc++ {
			var want float64
			for r := cr * 8; r < (cr+1)*8; r++ {
				for c := cc * 8; c < (cc+1)*8; c++ {
					want += field.Magnitude.At(r, c)
				}
			}
			var got float64
			for _, v := range cells.Vector(cr, cc) {
				assert.GreaterOrEqual(t, v, 0.0)
				got += v
			}
			assert.InDelta(t, want, got, 1e-9)
		}
	}
}

func TestBlockDescriptors_ConcatenationOrder(t *testing.T) {
	cells := NewFeatureMap(2, 2, 2)
	// each cell carries a single unit of mass in a distinct (cell, bin) slot
	cells.Set(0, 0, 0, 1) // top-left
	cells.Set(0, 1, 1, 1) // top-right
	cells.Set(1, 0, 0, 1) // bottom-left
	cells.Set(1, 1, 1, 1) // bottom-right

	blocks := BlockDescriptors(cells, 2)
	require.Equal(t, 1, blocks.Rows)
	require.Equal(t, 1, blocks.Cols)
	require.Equal(t, 8, blocks.Channels)

	want := math.Sqrt(1 / (4 + Epsilon))
	expected := []float64{want, 0, 0, want, want, 0, 0, want}
	assert.InDeltaSlice(t, expected, blocks.Vector(0, 0), 1e-12)
}

func TestExtractHOG_Dimensions(t *testing.T) {
	ext, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		rows, cols         int
		wantRows, wantCols int
	}{
		{256, 256, 31, 31},
		{37, 50, 4, 6},
		{16, 16, 1, 1},
		{128, 64, 15, 7},
		{9, 17, 1, 2},
	}

	for _, tt := range tests {
		features, err := ext.ExtractHOG(randomImage(tt.rows, tt.cols, 1))
		require.NoError(t, err)
		assert.Equal(t, tt.wantRows, features.Rows, "rows for %dx%d", tt.rows, tt.cols)
		assert.Equal(t, tt.wantCols, features.Cols, "cols for %dx%d", tt.rows, tt.cols)
		assert.Equal(t, 36, features.Channels)
	}
}

func TestExtractHOG_BlockNormalization(t *testing.T) {
	ext, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	features, err := ext.ExtractHOG(randomImage(64, 48, 42))
	require.NoError(t, err)

	for r := 0; r < features.Rows; r++ {
		for c := 0; c < features.Cols; c++ {
			var sumSq float64
			for _, v := range features.Vector(r, c) {
				sumSq += v * v
			}
			assert.InDelta(t, 1.0, sumSq, 1e-6, "block (%d,%d)", r, c)
		}
	}
}

func TestExtractHOG_ZeroImage(t *testing.T) {
	ext, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	features, err := ext.ExtractHOG(mat.NewDense(256, 256, nil))
	require.NoError(t, err)

	for _, v := range features.Data {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		require.Zero(t, v)
	}
}

func TestExtractHOG_Deterministic(t *testing.T) {
	ext, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	im := randomImage(40, 40, 3)
	a, err := ext.ExtractHOG(im)
	require.NoError(t, err)
	b, err := ext.ExtractHOG(im)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestExtractHOG_InputErrors(t *testing.T) {
	ext, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	_, err = ext.ExtractHOG(nil)
	assert.ErrorIs(t, err, ErrInput)

	// 8 rows pad to a single cell, one short of a block
	_, err = ext.ExtractHOG(randomImage(8, 64, 1))
	assert.ErrorIs(t, err, ErrInput)

	big, err := NewExtractor(Config{Bins: 9, CellSize: 8, BlockSize: 3})
	require.NoError(t, err)
	_, err = big.ExtractHOG(randomImage(16, 64, 1))
	assert.ErrorIs(t, err, ErrInput)
}

func TestFeatureMap_ChannelAndFlatten(t *testing.T) {
	f := NewFeatureMap(2, 3, 4)
	for i := range f.Data {
		f.Data[i] = float64(i)
	}

	ch := f.Channel(2)
	r, c := ch.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, f.At(1, 2, 2), ch.At(1, 2))

	flat := f.Flatten()
	flat[0] = -1
	assert.Equal(t, 0.0, f.Data[0])
	assert.Equal(t, "2x3x4", f.String())
}
