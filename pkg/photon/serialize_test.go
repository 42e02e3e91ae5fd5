package photon

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	photons := randomPhotons(64, 11)
	photons[3].HasNormal = true

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, photons))

	m, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, len(photons), m.Len())

	// The rebuilt index must answer queries over the loaded photons.
	g := m.Gather(photons[0].Position, 1, 1e-6)
	require.NotEmpty(t, g.Photons)
}

func TestLoad_RejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(999)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(0)))

	_, err := LoadPhotons(&buf)
	require.Error(t, err)
}

func TestLoad_EmptyMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, nil))
	m, err := Load(&buf)
	require.NoError(t, err)
	require.Zero(t, m.Len())
}
