package settings

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := New()
	st := s.Style()
	assert.Equal(t, DefaultColor, st.Color)
	assert.Equal(t, DefaultLineWidth, st.Width)
	assert.False(t, st.Dashed)
	require.NoError(t, st.Validate())
}

func TestLineWidthClamped(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.SetLineWidth(0))
	assert.Equal(t, 1, s.SetLineWidth(-7))
	assert.Equal(t, 20, s.SetLineWidth(99))
	assert.Equal(t, 7, s.SetLineWidth(7))
	assert.Equal(t, 7, s.Style().Width)
	assert.Equal(t, 1, New(WithLineWidth(0)).LineWidth())
}

func TestStyleReflectsChanges(t *testing.T) {
	s := New()
	s.SetColor(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	s.SetDashed(true)
	st := s.Style()
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, st.Color)
	assert.True(t, st.Dashed)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{255, 0, 0, 255}},
		{"Navy", color.RGBA{0, 0, 128, 255}},
		{"cornflowerblue", color.RGBA{100, 149, 237, 255}},
		{"#102030", color.RGBA{16, 32, 48, 255}},
		{" #10203040 ", color.RGBA{16, 32, 48, 64}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"", "#12", "#zzzzzz", "notacolor"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnsureWidthKeepsOrder(t *testing.T) {
	idx := EnsureWidth(3)
	w := WidthOptions()
	assert.Equal(t, 3, w[idx])
	assert.IsIncreasing(t, w)
	assert.Equal(t, idx, EnsureWidth(3))
}

func TestEnsurePaletteColor(t *testing.T) {
	black := EnsurePaletteColor(color.RGBA{0, 0, 0, 255}, "")
	assert.Equal(t, 0, black)
	c := color.RGBA{1, 2, 3, 255}
	idx := EnsurePaletteColor(c, "Custom")
	assert.Equal(t, c, Palette()[idx].Color)
	got, err := ParseColor("custom")
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Equal(t, "#010203", HexString(c))
}
