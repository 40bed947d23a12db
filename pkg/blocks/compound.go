package blocks

import (
	"fmt"

	"github.com/taigrr/nifview/pkg/math3d"
)

// Compound fields such as Bounding Sphere are stored as a table with a
// single row holding the members.

// Compound returns the record holding the members of a compound field.
func Compound(src Source, b Ref, field string) (Ref, error) {
	t, err := src.Table(b, field)
	if err != nil {
		return None, err
	}
	if src.RowCount(t) == 0 {
		return None, fmt.Errorf("%q on %d is empty: %w", field, b, ErrFieldNotFound)
	}
	return src.Row(t, 0), nil
}

// ReadSphere reads a Center/Radius compound.
func ReadSphere(src Source, b Ref, field string) (math3d.Sphere, error) {
	row, err := Compound(src, b, field)
	if err != nil {
		return math3d.Sphere{}, err
	}
	center, err := src.Vec3(row, FieldCenter)
	if err != nil {
		return math3d.Sphere{}, err
	}
	radius, err := src.Float(row, FieldRadius)
	if err != nil {
		return math3d.Sphere{}, err
	}
	return math3d.NewSphere(center, radius), nil
}

// SetSphere writes a Center/Radius compound onto a Graph record.
func (g *Graph) SetSphere(b Ref, field string, s math3d.Sphere) {
	rows := g.AddRows(b, field, 1)
	g.Set(rows[0], FieldCenter, s.Center)
	g.Set(rows[0], FieldRadius, s.Radius)
}

// ReadTransform reads the Rotation, Translation and Scale members of a
// record. Absent members keep their identity value.
func ReadTransform(src Source, b Ref) math3d.Transform {
	t := math3d.IdentityTransform()
	if r, err := src.Mat3(b, FieldRotation); err == nil {
		t.Rotation = r
	}
	if v, err := src.Vec3(b, FieldTranslation); err == nil {
		t.Translation = v
	}
	if s, err := src.Float(b, FieldScale); err == nil {
		t.Scale = s
	}
	return t
}

// SetTransform writes Rotation, Translation and Scale onto a Graph record.
func (g *Graph) SetTransform(b Ref, t math3d.Transform) {
	g.Set(b, FieldRotation, t.Rotation)
	g.Set(b, FieldTranslation, t.Translation)
	g.Set(b, FieldScale, t.Scale)
}
