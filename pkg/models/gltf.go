package models

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/scene"
)

// DefaultPartitionBones is the number of bones one skin partition may
// reference before triangles spill into the next partition.
const DefaultPartitionBones = 80

// maxVertices is the largest vertex count a 16 bit triangle can index.
const maxVertices = math.MaxUint16 + 1

// Packed vertex sizes, used for the Data Size and Vertex Size fields.
const (
	vertexSizeBase   = 16 + 4 + 4 + 4 // position with bitangent X, uv, normal, tangent
	vertexSizeColors = 4
	vertexSizeSkin   = 8 + 4 // four half weights, four byte indices
)

// ErrNoGeometry is returned when a document has no triangle primitives.
var ErrNoGeometry = errors.New("no triangle geometry")

// GLTFLoader loads GLTF/GLB files into a block graph.
type GLTFLoader struct {
	// Version selects the skin block family and, for VersionSSE, moves
	// skinned vertex data onto a skin partition.
	Version blocks.Version
	// MaxPartitionBones caps the bones referenced by one partition.
	MaxPartitionBones int
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		Version:           blocks.VersionFO4,
		MaxPartitionBones: DefaultPartitionBones,
	}
}

// LoadGLB loads a GLTF or GLB file with the default loader.
func LoadGLB(path string) (*Model, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Model.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// importer holds the state of one document conversion.
type importer struct {
	l     *GLTFLoader
	doc   *gltf.Document
	g     *blocks.Graph
	model *Model
	nodes map[int]blocks.Ref
}

// FromDocument converts an already parsed document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Model, error) {
	g := blocks.NewGraph(l.Version)
	m := &Model{Name: name, Graph: g, parents: make(map[blocks.Ref]blocks.Ref)}
	im := &importer{l: l, doc: doc, g: g, model: m, nodes: make(map[int]blocks.Ref)}

	m.Root = g.AddBlock(blocks.KindNiNode)
	g.Set(m.Root, blocks.FieldName, "Scene Root")
	g.SetTransform(m.Root, math3d.IdentityTransform())

	for _, idx := range im.sceneRoots() {
		if err := im.addNode(idx, m.Root); err != nil {
			return nil, err
		}
	}

	// Shapes come after every node so joints always resolve.
	for idx := range doc.Nodes {
		if _, ok := im.nodes[idx]; !ok || doc.Nodes[idx].Mesh == nil {
			continue
		}
		if err := im.addMesh(idx); err != nil {
			return nil, fmt.Errorf("node %q: %w", doc.Nodes[idx].Name, err)
		}
	}
	if len(m.Shapes) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoGeometry)
	}

	skel, err := scene.FromSource(g, m.Root)
	if err != nil {
		return nil, fmt.Errorf("build skeleton: %w", err)
	}
	m.Skeleton = skel
	return m, nil
}

func (im *importer) warn(format string, args ...any) {
	im.model.Warnings = append(im.model.Warnings, fmt.Sprintf(format, args...))
}

// sceneRoots returns the root nodes of the default scene, or every
// parentless node when the document has no scenes.
func (im *importer) sceneRoots() []int {
	doc := im.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (im *importer) addNode(idx int, parent blocks.Ref) error {
	if idx < 0 || idx >= len(im.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	}
	if _, seen := im.nodes[idx]; seen {
		return fmt.Errorf("node %d has more than one parent", idx)
	}
	n := im.doc.Nodes[idx]

	ref := im.g.AddBlock(blocks.KindNiNode)
	im.nodes[idx] = ref
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("Node %d", idx)
	}
	im.g.Set(ref, blocks.FieldName, name)
	im.g.SetTransform(ref, im.nodeTransform(n))
	im.appendChild(parent, ref)

	for _, c := range n.Children {
		if err := im.addNode(c, ref); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform converts a node's TRS or matrix. Non-uniform scale is
// averaged since node transforms carry a single scale factor.
func (im *importer) nodeTransform(n *gltf.Node) math3d.Transform {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return math3d.TransformFromMat4(math3d.Mat4(m))
	}

	r := n.RotationOrDefault()
	tr := n.TranslationOrDefault()
	s := n.ScaleOrDefault()
	if s[0] != s[1] || s[1] != s[2] {
		im.warn("node %q: non-uniform scale %v averaged", n.Name, s)
	}
	return math3d.NewTransform(
		math3d.QuatToMat3(r[0], r[1], r[2], r[3]),
		math3d.V3(tr[0], tr[1], tr[2]),
		(s[0]+s[1]+s[2])/3,
	)
}

func (im *importer) appendChild(parent, child blocks.Ref) {
	children, _ := im.g.LinkArray(parent, blocks.FieldChildren)
	im.g.Set(parent, blocks.FieldChildren, append(children, child))
}

func (im *importer) addMesh(nodeIdx int) error {
	n := im.doc.Nodes[nodeIdx]
	if *n.Mesh < 0 || *n.Mesh >= len(im.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", *n.Mesh)
	}
	mesh := im.doc.Meshes[*n.Mesh]

	for i, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		if _, ok := prim.Attributes[gltf.POSITION]; !ok {
			continue
		}

		p, err := im.readPrimitive(prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		name := mesh.Name
		if len(mesh.Primitives) > 1 {
			name = fmt.Sprintf("%s:%d", mesh.Name, i)
		}
		if err := im.addShape(nodeIdx, name, p, n.Skin); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
	}
	return nil
}

// addShape writes one shape block and, when skinned, its skin blocks.
func (im *importer) addShape(nodeIdx int, name string, p *primitive, skinIdx *int) error {
	g := im.g
	ref := g.AddBlock(blocks.KindBSTriShape)
	parent := im.nodes[nodeIdx]
	im.appendChild(parent, ref)
	im.model.parents[ref] = parent
	im.model.Shapes = append(im.model.Shapes, ref)

	g.Set(ref, blocks.FieldName, name)
	g.SetTransform(ref, math3d.IdentityTransform())
	g.Set(ref, blocks.FieldNumVertices, len(p.positions))
	g.Set(ref, blocks.FieldNumTriangles, len(p.tris))
	g.SetSphere(ref, blocks.FieldBoundingSphere, math3d.SphereFromPoints(p.positions))

	prop := g.AddBlock(blocks.KindBSLightingShaderProperty)
	flags2 := 0
	if p.colors != nil {
		flags2 |= blocks.ShaderFlag2VertexColors
	}
	g.Set(prop, blocks.FieldShaderFlags2, flags2)
	g.Set(ref, blocks.FieldShaderProperty, prop)

	skinned := skinIdx != nil && p.joints != nil && p.weights != nil
	if skinIdx != nil && !skinned {
		im.warn("shape %q: node has a skin but the primitive has no joints or weights", name)
	}

	size := vertexSizeBase
	if p.colors != nil {
		size += vertexSizeColors
	}
	if !skinned {
		g.Set(ref, blocks.FieldVertexFlags, 0)
		g.Set(ref, blocks.FieldDataSize, size*len(p.positions))
		g.Set(ref, blocks.FieldTriangles, p.tris)
		im.writeVertices(ref, p, nil, nil)
		return nil
	}

	size += vertexSizeSkin
	g.Set(ref, blocks.FieldVertexFlags, blocks.VertexFlagSkinned)
	slots, err := im.bindSkin(ref, name, *skinIdx, p)
	if err != nil {
		return err
	}

	if im.l.Version != blocks.VersionSSE {
		g.Set(ref, blocks.FieldDataSize, size*len(p.positions))
		g.Set(ref, blocks.FieldTriangles, p.tris)
		im.writeVertices(ref, p, slots.indices, slots.weights)
		return nil
	}

	// Skinned geometry of this version lives on the skin partition.
	inst, _ := g.Link(ref, blocks.FieldSkin, blocks.KindNone)
	part := g.AddBlock(blocks.KindNiSkinPartition)
	g.Set(inst, blocks.FieldSkinPartition, part)
	g.Set(ref, blocks.FieldDataSize, 0)
	g.Set(part, blocks.FieldVertexSize, size)
	g.Set(part, blocks.FieldDataSize, size*len(p.positions))
	im.writeVertices(part, p, slots.indices, slots.weights)

	groups := splitPartitions(p.tris, slots.indices, slots.weights, im.l.MaxPartitionBones)
	rows := g.AddRows(part, blocks.FieldPartition, len(groups))
	for i, tris := range groups {
		g.Set(rows[i], blocks.FieldTriangles, tris)
	}
	return nil
}

// writeVertices stores the quantized vertex table on owner.
func (im *importer) writeVertices(owner blocks.Ref, p *primitive, indices [][4]uint8, weights [][4]float64) {
	g := im.g
	rows := g.AddRows(owner, blocks.FieldVertexData, len(p.positions))
	for i, row := range rows {
		n := p.normals[i]
		t := p.tangents[i]
		bt := bitangent(n, t)

		g.Set(row, blocks.FieldVertex, p.positions[i])
		g.Set(row, blocks.FieldUV, blocks.EncodeHalf2(p.uvs[i]))
		g.Set(row, blocks.FieldNormal, blocks.EncodeByteVector3(n))
		g.Set(row, blocks.FieldTangent, blocks.EncodeByteVector3(math3d.V3(t[0], t[1], t[2])))
		g.Set(row, blocks.FieldBitangentX, bt.X)
		g.Set(row, blocks.FieldBitangentY, int(blocks.EncodeUnitByte(bt.Y)))
		g.Set(row, blocks.FieldBitangentZ, int(blocks.EncodeUnitByte(bt.Z)))
		if p.colors != nil {
			g.Set(row, blocks.FieldVertexColors, p.colors[i])
		}
		if indices != nil {
			w := weights[i]
			g.Set(row, blocks.FieldBoneWeights, []float64{w[0], w[1], w[2], w[3]})
			idx := indices[i]
			g.Set(row, blocks.FieldBoneIndices, []uint8{idx[0], idx[1], idx[2], idx[3]})
		}
	}
}

// skinSlots are the per-vertex bone slots after remapping and dropping
// influences the format cannot hold.
type skinSlots struct {
	indices [][4]uint8
	weights [][4]float64
}

// bindSkin writes the skin instance and skin data for a shape.
func (im *importer) bindSkin(ref blocks.Ref, name string, skinIdx int, p *primitive) (skinSlots, error) {
	if skinIdx < 0 || skinIdx >= len(im.doc.Skins) {
		return skinSlots{}, fmt.Errorf("skin index %d out of range", skinIdx)
	}
	skin := im.doc.Skins[skinIdx]
	g := im.g

	bones := make([]blocks.Ref, len(skin.Joints))
	for i, j := range skin.Joints {
		bone, ok := im.nodes[j]
		if !ok {
			return skinSlots{}, fmt.Errorf("joint %d is not in the scene", j)
		}
		bones[i] = bone
	}

	binds, err := im.inverseBinds(skin, len(bones))
	if err != nil {
		return skinSlots{}, err
	}

	slots := skinSlots{
		indices: make([][4]uint8, len(p.positions)),
		weights: make([][4]float64, len(p.positions)),
	}
	dropped := 0
	boneVerts := make([][]math3d.Vec3, len(bones))
	for v := range p.positions {
		for k := 0; k < 4; k++ {
			j, w := int(p.joints[v][k]), float64(p.weights[v][k])
			if w <= 0 {
				continue
			}
			if j >= len(bones) || j > math.MaxUint8 {
				dropped++
				continue
			}
			slots.indices[v][k] = uint8(j)
			slots.weights[v][k] = w
			boneVerts[j] = append(boneVerts[j], binds[j].Apply(p.positions[v]))
		}
	}
	if dropped > 0 {
		im.warn("shape %q: dropped %d influences on joints the format cannot index", name, dropped)
	}

	instKind, dataKind := blocks.SkinKinds(im.l.Version)
	inst := g.AddBlock(instKind)
	data := g.AddBlock(dataKind)
	g.Set(ref, blocks.FieldSkin, inst)
	g.Set(inst, blocks.FieldData, data)
	g.Set(inst, blocks.FieldBones, bones)
	g.Set(inst, blocks.FieldSkeletonRoot, im.model.Root)

	list := g.AddRows(data, blocks.FieldBoneList, len(bones))
	for i, row := range list {
		g.SetTransform(row, binds[i])
		g.SetSphere(row, blocks.FieldBoundingSphere, math3d.SphereFromPoints(boneVerts[i]))
	}
	return slots, nil
}

// inverseBinds reads a skin's inverse bind matrices. Skins without them
// bind every joint at the identity.
func (im *importer) inverseBinds(skin *gltf.Skin, n int) ([]math3d.Transform, error) {
	binds := make([]math3d.Transform, n)
	for i := range binds {
		binds[i] = math3d.IdentityTransform()
	}
	if skin.InverseBindMatrices == nil {
		return binds, nil
	}

	acr, err := im.accessor(*skin.InverseBindMatrices)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadAccessor(im.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read inverse bind matrices: %w", err)
	}
	mats, ok := raw.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("inverse bind matrices: unexpected %T", raw)
	}
	for i := range binds[:min(n, len(mats))] {
		var m math3d.Mat4
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				m[c*4+r] = float64(mats[i][c][r])
			}
		}
		binds[i] = math3d.TransformFromMat4(m)
	}
	return binds, nil
}

func (im *importer) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(im.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return im.doc.Accessors[idx], nil
}
