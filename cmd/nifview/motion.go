package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/scene"
)

// RotationAxis tracks position and velocity for one rotation axis with
// spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates a critically damped axis.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and eases velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState is the model orbit.
type RotationState struct {
	Pitch, Yaw RotationAxis
	fps        int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{Pitch: NewRotationAxis(fps), Yaw: NewRotationAxis(fps), fps: fps}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
}

// bendStep is the change in target angle per key press.
const bendStep = math.Pi / 12

// boneBend is one posable bone easing toward a target bend about its
// local Z axis.
type boneBend struct {
	ref    blocks.Ref
	name   string
	base   math3d.Transform
	target float64
	angle  float64
	vel    float64
}

// poser bends the bones a model's shapes are weighted to.
type poser struct {
	skel   *scene.Skeleton
	bones  []boneBend
	sel    int
	spring harmonica.Spring
}

// newPoser collects the distinct bones of every shape's weight table in
// first seen order.
func newPoser(l *loaded, fps int) *poser {
	p := &poser{
		skel:   l.model.Skeleton,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.8),
	}
	seen := make(map[blocks.Ref]bool)
	for _, s := range l.shapes {
		for _, bw := range s.Weights() {
			if seen[bw.Bone] {
				continue
			}
			seen[bw.Bone] = true
			n, ok := p.skel.Node(bw.Bone)
			if !ok {
				continue
			}
			p.bones = append(p.bones, boneBend{ref: n.Ref, name: n.Name, base: n.Local})
		}
	}
	return p
}

// Len returns the number of posable bones.
func (p *poser) Len() int { return len(p.bones) }

// Selected returns the selected bone's name and target angle.
func (p *poser) Selected() (string, float64, bool) {
	if len(p.bones) == 0 {
		return "", 0, false
	}
	b := p.bones[p.sel]
	return b.name, b.target, true
}

// Next selects the following bone.
func (p *poser) Next() {
	if len(p.bones) > 0 {
		p.sel = (p.sel + 1) % len(p.bones)
	}
}

// Bend moves the selected bone's target by steps increments.
func (p *poser) Bend(steps int) {
	if len(p.bones) > 0 {
		p.bones[p.sel].target += float64(steps) * bendStep
	}
}

// Reset returns every bone to its bind pose at once.
func (p *poser) Reset() {
	for i := range p.bones {
		b := &p.bones[i]
		b.target, b.angle, b.vel = 0, 0, 0
		p.skel.SetLocal(b.ref, b.base)
	}
}

// Step advances every bone one frame toward its target and writes the
// resulting local transforms.
func (p *poser) Step() {
	for i := range p.bones {
		b := &p.bones[i]
		b.angle, b.vel = p.spring.Update(b.angle, b.vel, b.target)
		local := b.base
		local.Rotation = local.Rotation.Mul(math3d.Rotation3(math3d.V3(0, 0, 1), b.angle))
		p.skel.SetLocal(b.ref, local)
	}
}
