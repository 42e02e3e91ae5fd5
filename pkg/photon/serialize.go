package photon

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/yafaray-go/renderer/pkg/core"
)

// fileVersion gates the on-disk photon-map format: bumping it
// invalidates any cached map written by an older build rather than risking
// a silent misread.
const fileVersion uint32 = 1

// Save writes photons in the {version, photon_count, photons...}
// layout. The k-d tree itself is not persisted: it is cheap to
// rebuild from the flat photon array and a stored tree risks drifting out
// of sync with a gonum version change, so Load rebuilds it via NewMap.
func Save(w io.Writer, photons []Photon) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, fileVersion); err != nil {
		return errors.Wrap(err, "write photon file version")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(photons))); err != nil {
		return errors.Wrap(err, "write photon count")
	}
	for i := range photons {
		if err := writePhoton(bw, &photons[i]); err != nil {
			return errors.Wrapf(err, "write photon %d", i)
		}
	}
	return bw.Flush()
}

func writePhoton(w io.Writer, p *Photon) error {
	fields := []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Direction.X, p.Direction.Y, p.Direction.Z,
		p.Power.X, p.Power.Y, p.Power.Z,
		p.Normal.X, p.Normal.Y, p.Normal.Z,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	var hasNormal uint8
	if p.HasNormal {
		hasNormal = 1
	}
	return binary.Write(w, binary.LittleEndian, hasNormal)
}

// Load reads a photon file written by Save and rebuilds the k-d index.
func Load(r io.Reader) (*Map, error) {
	photons, err := LoadPhotons(r)
	if err != nil {
		return nil, err
	}
	return NewMap(photons), nil
}

// LoadPhotons reads just the flat photon array, without building an index
// -- used when concatenating multiple saved chunks before one NewMap call.
func LoadPhotons(r io.Reader) ([]Photon, error) {
	br := bufio.NewReader(r)
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "read photon file version")
	}
	if version != fileVersion {
		return nil, errors.Errorf("photon file version %d unsupported (want %d)", version, fileVersion)
	}
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "read photon count")
	}
	photons := make([]Photon, count)
	for i := range photons {
		if err := readPhoton(br, &photons[i]); err != nil {
			return nil, errors.Wrapf(err, "read photon %d", i)
		}
	}
	return photons, nil
}

func readPhoton(r io.Reader, p *Photon) error {
	fields := make([]float64, 12)
	for i := range fields {
		if err := binary.Read(r, binary.LittleEndian, &fields[i]); err != nil {
			return err
		}
	}
	p.Position = core.NewVec3(fields[0], fields[1], fields[2])
	p.Direction = core.NewVec3(fields[3], fields[4], fields[5])
	p.Power = core.NewVec3(fields[6], fields[7], fields[8])
	p.Normal = core.NewVec3(fields[9], fields[10], fields[11])
	var hasNormal uint8
	if err := binary.Read(r, binary.LittleEndian, &hasNormal); err != nil {
		return err
	}
	p.HasNormal = hasNormal != 0
	return nil
}
