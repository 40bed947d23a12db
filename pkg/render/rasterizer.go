package render

import (
	"math"

	"github.com/taigrr/nifview/pkg/math3d"
)

// MeshRenderer gives the rasterizer indexed access to a triangle mesh.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// ColoredMesh is a mesh that may carry per-vertex colors.
type ColoredMesh interface {
	MeshRenderer
	GetColor(i int) (math3d.Color4, bool)
}

// SphereBounded is a mesh that knows its bounding sphere in the same frame
// as its vertex positions.
type SphereBounded interface {
	BoundingSphere() math3d.Sphere
}

// ambient is the light every surface receives regardless of orientation.
const ambient = 0.3

// minW keeps projected points in front of the eye.
const minW = 1e-6

// Stats counts what the last frame drew.
type Stats struct {
	MeshesTested     int // Meshes with bounds tested against the frustum
	MeshesCulled     int
	MeshesDrawn      int
	TrianglesDrawn   int
	TrianglesSkipped int // Faces naming a vertex past the vertex count
}

// Rasterizer draws meshes into a framebuffer through a camera with a depth
// buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	Stats Stats
	// DisableBackfaceCulling draws both sides of every triangle and lights
	// back faces with the flipped normal.
	DisableBackfaceCulling bool
	// VertexColors replaces the surface color with the mesh's per-vertex
	// colors when it has them.
	VertexColors bool
}

// NewRasterizer creates a rasterizer sized to fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Camera returns the camera the rasterizer projects through.
func (r *Rasterizer) Camera() *Camera { return r.camera }

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Resize matches the depth buffer to the framebuffer.
func (r *Rasterizer) Resize() {
	n := r.Width() * r.Height()
	if cap(r.zbuffer) < n {
		r.zbuffer = make([]float64, n)
		return
	}
	r.zbuffer = r.zbuffer[:n]
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame clears the color and depth buffers and the stats.
func (r *Rasterizer) BeginFrame(background Color) {
	if len(r.zbuffer) != r.Width()*r.Height() {
		r.Resize()
	}
	r.fb.Clear(background)
	r.ClearDepth()
	r.Stats = Stats{}
}

// ClearDepth resets the depth buffer.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Frustum returns the camera's current view frustum.
func (r *Rasterizer) Frustum() Frustum {
	return r.camera.Frustum()
}

// IsSphereVisible tests a world space sphere against the frustum.
func (r *Rasterizer) IsSphereVisible(s math3d.Sphere) bool {
	return r.Frustum().IntersectsSphere(s)
}

// cull reports whether a bounded mesh lies outside the frustum after
// transform. Meshes without bounds are always drawn.
func (r *Rasterizer) cull(mesh MeshRenderer, transform math3d.Transform) bool {
	bounded, ok := mesh.(SphereBounded)
	if !ok {
		return false
	}
	r.Stats.MeshesTested++
	if !r.IsSphereVisible(bounded.BoundingSphere().Transform(transform)) {
		r.Stats.MeshesCulled++
		return true
	}
	r.Stats.MeshesDrawn++
	return false
}

// face returns triangle i, or false when it names a vertex the mesh does
// not have.
func (r *Rasterizer) face(mesh MeshRenderer, i, vertices int) ([3]int, bool) {
	f := mesh.GetFace(i)
	for _, v := range f {
		if v < 0 || v >= vertices {
			r.Stats.TrianglesSkipped++
			return f, false
		}
	}
	return f, true
}

// vertex is a world space vertex ready for shading.
type vertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	color  Color
}

// screenVertex is a vertex after projection.
type screenVertex struct {
	X, Y  float64 // Pixels
	Z     float64 // NDC depth
	W     float64
	Color Color
}

func (r *Rasterizer) project(p math3d.Vec3, viewProj math3d.Mat4) screenVertex {
	clip := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	sv := screenVertex{W: clip.W}
	if clip.W > minW {
		inv := 1 / clip.W
		sv.X = (clip.X*inv + 1) * 0.5 * float64(r.Width())
		sv.Y = (1 - clip.Y*inv) * 0.5 * float64(r.Height())
		sv.Z = clip.Z * inv
	}
	return sv
}

// DrawMeshGouraud draws a mesh with per-vertex lighting interpolated across
// each triangle. transform maps mesh positions to world space.
func (r *Rasterizer) DrawMeshGouraud(mesh MeshRenderer, transform math3d.Transform, color Color, lightDir math3d.Vec3) {
	if r.cull(mesh, transform) {
		return
	}
	colored, hasColors := mesh.(ColoredMesh)
	hasColors = hasColors && r.VertexColors
	light := lightDir.Normalize()
	vertices := mesh.VertexCount()

	for i := 0; i < mesh.TriangleCount(); i++ {
		f, ok := r.face(mesh, i, vertices)
		if !ok {
			continue
		}
		var tri [3]vertex
		for k, idx := range f {
			p, n, _ := mesh.GetVertex(idx)
			c := color
			if hasColors {
				if vc, ok := colored.GetColor(idx); ok {
					c = FromColor4(vc)
				}
			}
			tri[k] = vertex{pos: transform.Apply(p), normal: transform.Rotate(n).Normalize(), color: c}
		}
		r.drawTriangle(tri, light)
	}
}

// drawTriangle rasterizes one Gouraud shaded triangle with edge functions
// stepped incrementally across its screen bounding box.
// Counter-clockwise triangles face the camera.
func (r *Rasterizer) drawTriangle(tri [3]vertex, light math3d.Vec3) {
	viewProj := r.camera.ViewProjectionMatrix()
	var sv [3]screenVertex
	for i := range tri {
		sv[i] = r.project(tri[i].pos, viewProj)
		if sv[i].W <= minW {
			// Crosses the eye plane.
			return
		}
	}

	// Screen y points down, so front faces have negative area here.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 || math.IsNaN(area) {
		return
	}
	back := area > 0
	if back && !r.DisableBackfaceCulling {
		return
	}

	for i := range tri {
		n := tri[i].normal
		if back {
			n = n.Negate()
		}
		intensity := ambient + (1-ambient)*math.Max(0, n.Dot(light))
		sv[i].Color = shade(tri[i].color, intensity)
	}
	if !back {
		sv[1], sv[2] = sv[2], sv[1]
		area = -area
	}

	w, h := r.Width(), r.Height()
	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(w-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(h-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.TrianglesDrawn++

	// Edge k is opposite vertex k.
	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	inv := 1 / area

	r0, g0, bl0 := float64(sv[0].Color.R), float64(sv[0].Color.G), float64(sv[0].Color.B)
	r1, g1, bl1 := float64(sv[1].Color.R), float64(sv[1].Color.G), float64(sv[1].Color.B)
	r2, g2, bl2 := float64(sv[2].Color.R), float64(sv[2].Color.G), float64(sv[2].Color.B)

	px, py := float64(minX)+0.5, float64(minY)+0.5
	e0Row := a0*px + b0*py + c0
	e1Row := a1*px + b1*py + c1
	e2Row := a2*px + b2*py + c2

	for y := minY; y <= maxY; y++ {
		e0, e1, e2 := e0Row, e1Row, e2Row
		row := y * w
		for x := minX; x <= maxX; x++ {
			if e0 >= 0 && e1 >= 0 && e2 >= 0 {
				l0, l1, l2 := e0*inv, e1*inv, e2*inv
				z := l0*sv[0].Z + l1*sv[1].Z + l2*sv[2].Z
				if idx := row + x; z < r.zbuffer[idx] {
					r.zbuffer[idx] = z
					r.fb.Pixels[idx] = Color{
						R: clamp8(r0*l0 + r1*l1 + r2*l2),
						G: clamp8(g0*l0 + g1*l1 + g2*l2),
						B: clamp8(bl0*l0 + bl1*l1 + bl2*l2),
						A: 255,
					}
				}
			}
			e0 += a0
			e1 += a1
			e2 += a2
		}
		e0Row += b0
		e1Row += b1
		e2Row += b2
	}
}

// edgeCoeffs returns A, B, C of the edge function A*x + B*y + C for the
// edge from (x0, y0) to (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// DrawMeshWireframe draws the edges of every triangle.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Transform, color Color) {
	if r.cull(mesh, transform) {
		return
	}
	vertices := mesh.VertexCount()
	for i := 0; i < mesh.TriangleCount(); i++ {
		f, ok := r.face(mesh, i, vertices)
		if !ok {
			continue
		}
		var p [3]math3d.Vec3
		for k, idx := range f {
			pos, _, _ := mesh.GetVertex(idx)
			p[k] = transform.Apply(pos)
		}
		r.drawLine3D(p[0], p[1], color)
		r.drawLine3D(p[1], p[2], color)
		r.drawLine3D(p[2], p[0], color)
	}
}

// drawLine3D projects a world space segment and draws it without depth
// testing. Segments crossing the eye plane are clipped to it.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	ca := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	cb := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if ca.W <= minW && cb.W <= minW {
		return
	}
	if ca.W <= minW {
		ca = clipToEye(cb, ca)
	} else if cb.W <= minW {
		cb = clipToEye(ca, cb)
	}

	toScreen := func(c math3d.Vec4) (float64, float64) {
		return (c.X/c.W + 1) * 0.5 * float64(r.Width()), (1 - c.Y/c.W) * 0.5 * float64(r.Height())
	}
	x0, y0 := toScreen(ca)
	x1, y1 := toScreen(cb)
	x0, y0, x1, y1, ok := clipLine(x0, y0, x1, y1, float64(r.Width()), float64(r.Height()))
	if !ok {
		return
	}
	r.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// clipToEye moves the clip space point out toward in until its w reaches
// the eye plane.
func clipToEye(in, out math3d.Vec4) math3d.Vec4 {
	t := (in.W - minW) / (in.W - out.W)
	return math3d.V4(
		in.X+(out.X-in.X)*t,
		in.Y+(out.Y-in.Y)*t,
		in.Z+(out.Z-in.Z)*t,
		minW,
	)
}

// clipLine clips a screen segment to [0, w) x [0, h) with the
// Liang-Barsky method.
func clipLine(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	maxX, maxY := math.Nextafter(w, 0), math.Nextafter(h, 0)
	for _, e := range [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	cx := func(v float64) float64 { return min(max(v, 0), maxX) }
	cy := func(v float64) float64 { return min(max(v, 0), maxY) }
	return cx(x0 + dx*t0), cy(y0 + dy*t0), cx(x0 + dx*t1), cy(y0 + dy*t1), true
}
