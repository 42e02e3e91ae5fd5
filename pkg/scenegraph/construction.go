package scenegraph

import (
	"math"

	"github.com/yafaray-go/renderer/pkg/bsdf"
	"github.com/yafaray-go/renderer/pkg/core"
	"github.com/yafaray-go/renderer/pkg/light"
	"github.com/yafaray-go/renderer/pkg/primitive"
	"github.com/yafaray-go/renderer/pkg/volume"
)

// This file is the scene-construction API consumed by the external
// front end: vertices, UVs, faces, normals, smoothing, named objects,
// instances, lights, materials, textures, volume regions, backgrounds
// and cameras.

// ObjectType tags a named object as a mesh or a curve. The tag is only
// recorded: EndObject builds triangles from the object's faces for either
// type.
type ObjectType int

const (
	ObjectMesh ObjectType = iota
	ObjectCurve
)

// meshObject is an object under construction (and, after EndObject, the
// instancing base). Primitives hold indices into these arrays while
// building; the finished triangles are self-contained.
type meshObject struct {
	name string
	typ  ObjectType

	vertices []core.Vec3
	orco     []core.Vec3
	normals  []core.Vec3
	uvs      []core.Vec2
	faces    [][3]int
	faceUVs  [][3]int

	material    core.Material
	smoothAngle float64       // degrees; < 0 means no smoothing
	smoothed    [][3]core.Vec3 // per-face corner normals after smoothing

	triangles []*primitive.Triangle
}

// CreateObject opens a new named object; subsequent AddVertex/AddFace
// calls apply to it until EndObject.
func (s *Scene) CreateObject(name string, typ ObjectType, mat core.Material) error {
	if s.building != nil {
		return core.NewError(core.KindConfigInvalid, nil, "CreateObject while another object is open")
	}
	s.building = &meshObject{name: name, typ: typ, material: mat, smoothAngle: -1}
	return nil
}

// AddVertex appends a vertex to the open object and returns its index.
func (s *Scene) AddVertex(p core.Vec3) int {
	if s.building == nil {
		return -1
	}
	s.building.vertices = append(s.building.vertices, p)
	return len(s.building.vertices) - 1
}

// AddVertexWithOrco appends a vertex together with its original-space
// coordinates.
func (s *Scene) AddVertexWithOrco(p, orco core.Vec3) int {
	if s.building == nil {
		return -1
	}
	for len(s.building.orco) < len(s.building.vertices) {
		s.building.orco = append(s.building.orco, core.Vec3{})
	}
	s.building.vertices = append(s.building.vertices, p)
	s.building.orco = append(s.building.orco, orco)
	return len(s.building.vertices) - 1
}

// AddNormal appends a per-vertex shading normal, parallel to the vertex
// array.
func (s *Scene) AddNormal(n core.Vec3) {
	if s.building == nil {
		return
	}
	s.building.normals = append(s.building.normals, n.Normalize())
}

// AddUV appends a texture coordinate and returns its index.
func (s *Scene) AddUV(uv core.Vec2) int {
	if s.building == nil {
		return -1
	}
	s.building.uvs = append(s.building.uvs, uv)
	return len(s.building.uvs) - 1
}

// AddFace records one triangle by vertex indices, with optional UV
// indices (pass nil for none).
func (s *Scene) AddFace(v [3]int, uv []int) error {
	if s.building == nil {
		return core.NewError(core.KindConfigInvalid, nil, "AddFace outside an open object")
	}
	for _, i := range v {
		if i < 0 || i >= len(s.building.vertices) {
			return core.NewError(core.KindConfigInvalid, nil, "face vertex index out of range")
		}
	}
	s.building.faces = append(s.building.faces, v)
	if len(uv) == 3 {
		s.building.faceUVs = append(s.building.faceUVs, [3]int{uv[0], uv[1], uv[2]})
	} else {
		s.building.faceUVs = append(s.building.faceUVs, [3]int{-1, -1, -1})
	}
	return nil
}

// SmoothNormals requests angle-based normal smoothing for the open
// object: vertices shared by faces whose normals differ by less than
// angleDeg get an area-weighted averaged shading normal.
func (s *Scene) SmoothNormals(angleDeg float64) {
	if s.building == nil {
		return
	}
	s.building.smoothAngle = angleDeg
}

// EndObject tessellates the open object into triangles, registers it as
// an instancing base, and adds its primitives to the scene.
func (s *Scene) EndObject() error {
	obj := s.building
	if obj == nil {
		return core.NewError(core.KindConfigInvalid, nil, "EndObject without CreateObject")
	}
	s.building = nil

	if obj.smoothAngle >= 0 {
		obj.smoothed = smoothCornerNormals(obj, obj.smoothAngle)
	}

	for fi, f := range obj.faces {
		tri := primitive.NewTriangle(obj.vertices[f[0]], obj.vertices[f[1]], obj.vertices[f[2]], obj.material)
		if n, ok := obj.faceNormals(fi); ok {
			tri = tri.WithShadingNormals(n[0], n[1], n[2])
		}
		if uvIdx := obj.faceUVs[fi]; uvIdx[0] >= 0 {
			tri = tri.WithUVs(obj.uvs[uvIdx[0]], obj.uvs[uvIdx[1]], obj.uvs[uvIdx[2]])
		}
		if len(obj.orco) == len(obj.vertices) {
			tri = tri.WithOrco(obj.orco[f[0]], obj.orco[f[1]], obj.orco[f[2]])
		}
		obj.triangles = append(obj.triangles, tri)
		s.prims = append(s.prims, tri)
	}
	s.objects[obj.name] = obj
	s.mutate()
	return nil
}

// faceNormals returns the three shading normals for face fi: explicit
// AddNormal values win, then angle-smoothed normals, else none.
func (o *meshObject) faceNormals(fi int) ([3]core.Vec3, bool) {
	f := o.faces[fi]
	if len(o.normals) == len(o.vertices) {
		return [3]core.Vec3{o.normals[f[0]], o.normals[f[1]], o.normals[f[2]]}, true
	}
	if o.smoothed != nil {
		return o.smoothed[fi], true
	}
	return [3]core.Vec3{}, false
}

// smoothCornerNormals computes per-face corner normals: each corner
// averages the area-weighted normals of the adjacent faces whose
// geometric normal lies within angleDeg of this face's, so edges sharper
// than the angle stay hard.
func smoothCornerNormals(o *meshObject, angleDeg float64) [][3]core.Vec3 {
	faceN := make([]core.Vec3, len(o.faces))
	adjacent := make([][]int, len(o.vertices))
	for fi, f := range o.faces {
		e1 := o.vertices[f[1]].Subtract(o.vertices[f[0]])
		e2 := o.vertices[f[2]].Subtract(o.vertices[f[0]])
		faceN[fi] = e1.Cross(e2) // length = 2*area, weighting large faces more
		for _, vi := range f {
			adjacent[vi] = append(adjacent[vi], fi)
		}
	}
	cosLimit := math.Cos(angleDeg * math.Pi / 180)
	out := make([][3]core.Vec3, len(o.faces))
	for fi, f := range o.faces {
		own := faceN[fi].Normalize()
		for c, vi := range f {
			sum := core.Vec3{}
			for _, nfi := range adjacent[vi] {
				if faceN[nfi].Normalize().Dot(own) >= cosLimit {
					sum = sum.Add(faceN[nfi])
				}
			}
			n := sum.Normalize()
			if n.IsZero() {
				n = own
			}
			out[fi][c] = n
		}
	}
	return out
}

// AddInstance wraps a finished object's primitives in a transformed
// instance. The matrix is row-major
// 4x4 object-to-world.
func (s *Scene) AddInstance(baseName string, objectToWorld [16]float64) error {
	base, ok := s.objects[baseName]
	if !ok {
		return core.NewError(core.KindSceneBuildFailed, nil, "instance base object not found: "+baseName)
	}
	for _, tri := range base.triangles {
		inst, err := primitive.NewInstance(tri, objectToWorld)
		if err != nil {
			return core.NewError(core.KindSceneBuildFailed, err, "instance transform not invertible")
		}
		s.prims = append(s.prims, inst)
	}
	s.mutate()
	return nil
}

// AddPrimitive registers a standalone primitive (sphere, instance, or an
// already-built triangle such as one of a Curve's Triangles).
func (s *Scene) AddPrimitive(p core.Primitive) {
	s.prims = append(s.prims, p)
	s.mutate()
}

// AddLight registers a light. Area lights that can be intersected should
// also have their geometry added via AddPrimitive with the light
// back-pointer set so BSDF-sampled rays can identify them.
func (s *Scene) AddLight(l core.Light) {
	s.lights = append(s.lights, l)
	s.mutate()
}

// AddAreaLightQuad is the common emissive-quad case: registers the light
// and its two backing triangles in one call.
func (s *Scene) AddAreaLightQuad(corner, u, v core.Vec3, mat core.Material) *light.Quad {
	q := light.NewQuad(corner, u, v, mat)
	t0 := primitive.NewTriangle(corner, corner.Add(u), corner.Add(u).Add(v), mat)
	t1 := primitive.NewTriangle(corner, corner.Add(u).Add(v), corner.Add(v), mat)
	t0.Light = q
	t1.Light = q
	s.prims = append(s.prims, t0, t1)
	s.lights = append(s.lights, q)
	s.mutate()
	return q
}

// AddMaterial registers a named material for later lookup.
func (s *Scene) AddMaterial(name string, m core.Material) {
	s.materials[name] = m
	s.mutate()
}

// Material looks up a registered material by name.
func (s *Scene) Material(name string) (core.Material, bool) {
	m, ok := s.materials[name]
	return m, ok
}

// AddTexture registers a named shader node.
func (s *Scene) AddTexture(name string, n bsdf.Node) {
	s.textures[name] = n
	s.mutate()
}

// Texture looks up a registered texture node by name.
func (s *Scene) Texture(name string) (bsdf.Node, bool) {
	n, ok := s.textures[name]
	return n, ok
}

// AddVolumeRegion registers a participating-medium region.
func (s *Scene) AddVolumeRegion(r volume.Region) {
	s.regions = append(s.regions, r)
	s.mutate()
}

// SetBackground sets the flat background colour returned by escaped
// rays.
func (s *Scene) SetBackground(c core.Vec3) {
	s.background = c
	s.mutate()
}

// SetBackgroundLight installs an environment light (IBL) as the
// background; it supersedes the flat colour and participates in direct
// lighting.
func (s *Scene) SetBackgroundLight(l core.Light) {
	s.backgroundLight = l
	if l != nil {
		s.lights = append(s.lights, l)
	}
	s.mutate()
}

// AddCamera registers a named camera; the first one registered becomes
// the render camera unless the configuration names another.
func (s *Scene) AddCamera(name string, cam core.Camera) {
	s.cameras[name] = cam
	s.mutate()
}

// Camera looks up a registered camera, falling back to any camera when
// name is empty and exactly one exists.
func (s *Scene) Camera(name string) (core.Camera, bool) {
	if name != "" {
		c, ok := s.cameras[name]
		return c, ok
	}
	for _, c := range s.cameras {
		return c, true
	}
	return nil, false
}
