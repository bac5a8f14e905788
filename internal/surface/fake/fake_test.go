package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func TestFakeKeepsLastFrame(t *testing.T) {
	s := New()
	fb, err := pixel.New(4, 2)
	require.NoError(t, err)

	fb.Fill(0x102030)
	require.NoError(t, s.Present(fb))
	fb.Fill(0x405060)
	require.NoError(t, s.Present(fb))

	assert.Equal(t, 2, s.Frames())
	assert.Equal(t, pixel.Color(0x405060), s.Last.At(3, 1))

	fb.Fill(0)
	assert.Equal(t, pixel.Color(0x405060), s.Last.At(3, 1), "last frame is a copy")

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
}

func TestAverage(t *testing.T) {
	fb, _ := pixel.NewStride(2, 1, 3)
	fb.Set(0, 0, pixel.RGB(0, 100, 200))
	fb.Set(1, 0, pixel.RGB(100, 100, 0))
	fb.Pix[2] = 0xFFFFFF
	assert.Equal(t, pixel.RGB(50, 100, 100), Average(fb))
}

func TestMultiPointerAndReady(t *testing.T) {
	a, b := New(), New()
	m := surface.Multi{a, b}

	_, ok := m.Pointer()
	assert.False(t, ok)

	b.MovePointer(vmath.V2(3, 4))
	p, ok := m.Pointer()
	require.True(t, ok)
	assert.Equal(t, vmath.V2(3, 4), p)
	assert.True(t, m.Ready())
	assert.Empty(t, surface.EventsOf(m))

	fb, _ := pixel.New(1, 1)
	require.NoError(t, m.Present(fb))
	assert.Equal(t, 1, a.Frames())
	assert.Equal(t, 1, b.Frames())
	require.NoError(t, m.Close())
	assert.True(t, a.Closed() && b.Closed())
}

func TestSignalsDoNotBlock(t *testing.T) {
	s := surface.NewSignals()
	s.RequestDump()
	s.RequestDump()
	s.RequestQuit()

	select {
	case <-s.Dump():
	default:
		t.Fatal("dump not delivered")
	}
	select {
	case <-s.Dump():
		t.Fatal("repeated dump should collapse")
	default:
	}
	select {
	case <-s.Quit():
	default:
		t.Fatal("quit not delivered")
	}
}
