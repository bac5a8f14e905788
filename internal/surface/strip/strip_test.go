package strip

import (
	"bytes"
	"image"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
)

func gradient(t *testing.T) *pixel.Framebuffer {
	fb, err := pixel.NewStride(8, 3, 9)
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		for x := 0; x < 8; x++ {
			fb.Set(x, y, pixel.RGB(uint8(x*20), uint8(y*100), 0xC8))
		}
	}
	return fb
}

var TestSampleRows = []struct {
	Row        int
	Brightness float64
	Expect     []pixel.Color
}{
	{0, 1, []pixel.Color{pixel.RGB(20, 0, 200), pixel.RGB(60, 0, 200), pixel.RGB(100, 0, 200), pixel.RGB(140, 0, 200)}},
	{2, 1, []pixel.Color{pixel.RGB(20, 200, 200), pixel.RGB(60, 200, 200), pixel.RGB(100, 200, 200), pixel.RGB(140, 200, 200)}},
	{-1, 0.5, []pixel.Color{pixel.RGB(10, 50, 100), pixel.RGB(30, 50, 100), pixel.RGB(50, 50, 100), pixel.RGB(70, 50, 100)}},
	{99, 1, []pixel.Color{pixel.RGB(20, 100, 200), pixel.RGB(60, 100, 200), pixel.RGB(100, 100, 200), pixel.RGB(140, 100, 200)}},
}

func TestSample(t *testing.T) {
	fb := gradient(t)
	for k, v := range TestSampleRows {
		t.Run("Given row"+strconv.Itoa(k), func(t *testing.T) {
			dst := image.NewNRGBA(image.Rect(0, 0, 4, 1))
			Sample(dst, fb, v.Row, v.Brightness)
			for x, want := range v.Expect {
				assert.Equal(t, want, pixel.FromColor(dst.NRGBAAt(x, 0)), "led %d", x)
			}
		})
	}
}

func TestSPIRecordsFrames(t *testing.T) {
	buf := bytes.Buffer{}
	s, err := NewOnPort(spitest.NewRecordRaw(&buf), Options{Pixels: 4, Row: 1})
	require.NoError(t, err)
	assert.False(t, s.Console())

	halted := buf.Len()
	require.NoError(t, s.Present(gradient(t)))
	first := buf.Len() - halted
	assert.Greater(t, first, 4*3, "NRZ encoding expands every channel byte")

	fb := gradient(t)
	fb.Fill(0)
	require.NoError(t, s.Present(fb))
	assert.Equal(t, first, buf.Len()-halted-first, "fixed size frames")

	require.NoError(t, s.Close())
}

func TestOptionDefaults(t *testing.T) {
	o := Options{Brightness: 3}
	o.defaults()
	assert.Equal(t, 100, o.Pixels)
	assert.Equal(t, DefaultFreqKHz, o.FreqKHz)
	assert.Equal(t, 1.0, o.Brightness)
}
