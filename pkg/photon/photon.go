// Package photon implements the photon-mapping storage structures
//: the Photon record itself, a balanced k-d photon
// map built on gonum's spatial k-d tree for k-NN radiance estimates, a
// uniform hash-grid alternative index for progressive photon mapping, and
// disk serialization.
package photon

import "github.com/yafaray-go/renderer/pkg/core"

// Photon is one stored light-transport sample: position,
// incoming direction, RGB power, and an optional surface normal used by
// normal-aware gather filtering.
type Photon struct {
	Position  core.Vec3
	Direction core.Vec3 // incoming direction (points back toward the source)
	Power     core.Vec3
	Normal    core.Vec3
	HasNormal bool
}
