package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/bmpfile"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/fake"
)

func TestOpenSurfaces(t *testing.T) {
	cfg := smallConfig()

	cfg.Surface = "fake"
	s, err := OpenSurfaces(cfg)
	require.NoError(t, err)
	assert.IsType(t, &fake.Surface{}, s)

	cfg.Surface = ""
	s, err = OpenSurfaces(cfg)
	require.NoError(t, err)
	assert.IsType(t, &fake.Surface{}, s)

	cfg.Surface = " fake , bmp "
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "out", "frame.bmp")
	s, err = OpenSurfaces(cfg)
	require.NoError(t, err)
	m, ok := s.(surface.Multi)
	require.True(t, ok)
	require.Len(t, m, 2)
	assert.IsType(t, &bmpfile.Surface{}, m[1])
	assert.NoError(t, s.Close())

	cfg.Surface = "fake,hologram"
	_, err = OpenSurfaces(cfg)
	assert.ErrorIs(t, err, errUnknownSurface)
}

func TestOpenSurfacesFallsBack(t *testing.T) {
	cfg := smallConfig()
	cfg.Surface = "bmp"
	cfg.Snapshot.Path = ""
	s, err := OpenSurfaces(cfg)
	require.NoError(t, err)
	assert.IsType(t, &fake.Surface{}, s)
}
