package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// primitive is one triangle primitive with every attribute the vertex
// table needs. Normals, tangents and UVs are always populated; colors,
// joints and weights are nil when absent.
type primitive struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3
	tangents  [][4]float64
	uvs       []math3d.Vec2
	colors    [][4]uint8
	joints    [][4]uint16
	weights   [][4]float32
	tris      []blocks.Triangle
}

// readPrimitive extracts geometry from a GLTF primitive.
func (im *importer) readPrimitive(prim *gltf.Primitive) (*primitive, error) {
	doc := im.doc
	acr, err := im.accessor(prim.Attributes[gltf.POSITION])
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if len(positions) > maxVertices {
		return nil, fmt.Errorf("%d vertices, at most %d can be indexed", len(positions), maxVertices)
	}

	p := &primitive{positions: make([]math3d.Vec3, len(positions))}
	for i, v := range positions {
		p.positions[i] = math3d.V3FromFloat32(v)
	}
	n := len(p.positions)

	if err := im.readTriangles(prim, p); err != nil {
		return nil, err
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := readAttr(im, idx, modeler.ReadNormal)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		p.normals = make([]math3d.Vec3, n)
		for i := range normals[:min(n, len(normals))] {
			p.normals[i] = math3d.V3FromFloat32(normals[i])
		}
	} else {
		p.normals = smoothNormals(p.positions, p.tris)
	}

	p.tangents = make([][4]float64, n)
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		tangents, err := readAttr(im, idx, modeler.ReadTangent)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		for i := range tangents[:min(n, len(tangents))] {
			t := tangents[i]
			p.tangents[i] = [4]float64{float64(t[0]), float64(t[1]), float64(t[2]), float64(t[3])}
		}
	} else {
		for i, nrm := range p.normals {
			p.tangents[i] = orthogonal(nrm)
		}
	}

	p.uvs = make([]math3d.Vec2, n)
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := readAttr(im, idx, modeler.ReadTextureCoord)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		for i := range uvs[:min(n, len(uvs))] {
			p.uvs[i] = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		colors, err := readAttr(im, idx, modeler.ReadColor)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		p.colors = padded(colors, n, [4]uint8{255, 255, 255, 255})
	}

	jIdx, hasJoints := prim.Attributes[gltf.JOINTS_0]
	wIdx, hasWeights := prim.Attributes[gltf.WEIGHTS_0]
	if hasJoints && hasWeights {
		joints, err := readAttr(im, jIdx, modeler.ReadJoints)
		if err != nil {
			return nil, fmt.Errorf("read joints: %w", err)
		}
		weights, err := readAttr(im, wIdx, modeler.ReadWeights)
		if err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
		p.joints = padded(joints, n, [4]uint16{})
		p.weights = padded(weights, n, [4]float32{})
	}
	return p, nil
}

// readTriangles reads the index list, or assumes sequential triangles
// when there is none. Triangles that reference missing vertices are
// dropped with a warning.
func (im *importer) readTriangles(prim *gltf.Primitive, p *primitive) error {
	n := len(p.positions)
	var indices []uint32
	if prim.Indices != nil {
		acr, err := im.accessor(*prim.Indices)
		if err != nil {
			return err
		}
		indices, err = modeler.ReadIndices(im.doc, acr, nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	bad := 0
	p.tris = make([]blocks.Triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= n || int(b) >= n || int(c) >= n {
			bad++
			continue
		}
		p.tris = append(p.tris, blocks.Triangle{uint16(a), uint16(b), uint16(c)})
	}
	if bad > 0 {
		im.warn("dropped %d triangles with out of range indices", bad)
	}
	return nil
}

// readAttr resolves an accessor index and reads it with one of the
// modeler readers.
func readAttr[T any](im *importer, idx int, read func(*gltf.Document, *gltf.Accessor, []T) ([]T, error)) ([]T, error) {
	acr, err := im.accessor(idx)
	if err != nil {
		return nil, err
	}
	return read(im.doc, acr, nil)
}

// padded returns s resized to n, filling missing entries with fill.
func padded[T any](s []T, n int, fill T) []T {
	out := make([]T, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = fill
	}
	return out
}
