package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func openSim(t *testing.T, cols, rows int) (*Surface, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s, err := Open(sim)
	require.NoError(t, err)
	sim.SetSize(cols, rows)
	t.Cleanup(func() { _ = s.Close() })
	return s, sim
}

func cellColors(sim tcell.SimulationScreen, x, y int) (rune, pixel.Color, pixel.Color) {
	r, _, st, _ := sim.GetContent(x, y)
	fg, bg, _ := st.Decompose()
	conv := func(c tcell.Color) pixel.Color {
		r, g, b := c.RGB()
		return pixel.RGB(uint8(r), uint8(g), uint8(b))
	}
	return r, conv(fg), conv(bg)
}

func TestPresentHalfBlocks(t *testing.T) {
	s, sim := openSim(t, 4, 3)
	w, h := s.Cells()
	require.Equal(t, 4, w)
	require.Equal(t, 6, h)

	fb, err := pixel.NewStride(4, 6, 5)
	require.NoError(t, err)
	for y := 0; y < 6; y++ {
		for x := 0; x < 4; x++ {
			fb.Set(x, y, pixel.RGB(uint8(x*10), uint8(y*10), 0x80))
		}
	}
	require.NoError(t, s.Present(fb))

	for cy := 0; cy < 3; cy++ {
		for cx := 0; cx < 4; cx++ {
			r, fg, bg := cellColors(sim, cx, cy)
			assert.Equal(t, halfBlock, r)
			assert.Equal(t, fb.At(cx, cy*2), fg, "top of cell (%d,%d)", cx, cy)
			assert.Equal(t, fb.At(cx, cy*2+1), bg, "bottom of cell (%d,%d)", cx, cy)
		}
	}
}

func TestPresentScalesToTerminal(t *testing.T) {
	s, sim := openSim(t, 8, 4)
	fb, err := pixel.New(80, 40)
	require.NoError(t, err)
	fb.Fill(0xEEEE22)
	require.NoError(t, s.Present(fb))

	_, fg, bg := cellColors(sim, 7, 3)
	assert.Equal(t, pixel.Color(0xEEEE22), fg)
	assert.Equal(t, pixel.Color(0xEEEE22), bg)
}

func TestKeysRaiseSignals(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		ch   rune
		dump bool
	}{
		{"q", tcell.KeyRune, 'q', false},
		{"esc", tcell.KeyEscape, 0, false},
		{"ctrl-c", tcell.KeyCtrlC, 0, false},
		{"p", tcell.KeyRune, 'p', true},
	}
	for _, tt := range tests {
		t.Run("Given key "+tt.name, func(t *testing.T) {
			s, sim := openSim(t, 4, 2)
			sim.InjectKey(tt.key, tt.ch, tcell.ModNone)
			want := s.Quit()
			if tt.dump {
				want = s.Dump()
			}
			select {
			case <-want:
			case <-time.After(2 * time.Second):
				t.Fatal("signal not raised")
			}
		})
	}
}

func TestMouseMovesPointer(t *testing.T) {
	s, sim := openSim(t, 4, 3)
	_, ok := s.Pointer()
	assert.False(t, ok)

	fb, _ := pixel.New(8, 12)
	require.NoError(t, s.Present(fb))
	sim.InjectMouse(1, 2, tcell.ButtonNone, tcell.ModNone)

	assert.Eventually(t, func() bool {
		p, ok := s.Pointer()
		return ok && p == vmath.V2(3, 10)
	}, 2*time.Second, 5*time.Millisecond)
}
