package blocks

import (
	"fmt"

	"github.com/taigrr/nifview/pkg/math3d"
)

type record struct {
	kind   Kind
	block  bool
	fields map[string]any
}

// Graph is an in-memory Source. Blocks and row records share one
// reference space; rows are records with KindNone that are only reachable
// through a table field.
//
// A Graph may be read from several goroutines once it is fully built but
// must not be mutated concurrently.
type Graph struct {
	version Version
	records []record
}

// NewGraph creates an empty graph with the given version tag.
func NewGraph(v Version) *Graph {
	return &Graph{version: v}
}

// Version returns the graph's version tag.
func (g *Graph) Version() Version {
	return g.version
}

// AddBlock appends a top level block of kind k.
func (g *Graph) AddBlock(k Kind) Ref {
	g.records = append(g.records, record{kind: k, block: true, fields: map[string]any{}})
	return Ref(len(g.records) - 1)
}

// AddRow appends a row record. Attach it to a block with a Rows value.
func (g *Graph) AddRow() Ref {
	g.records = append(g.records, record{fields: map[string]any{}})
	return Ref(len(g.records) - 1)
}

// AddRows creates n rows, stores them as table field on owner, and
// returns them.
func (g *Graph) AddRows(owner Ref, field string, n int) Rows {
	rows := make(Rows, n)
	for i := range rows {
		rows[i] = g.AddRow()
	}
	g.Set(owner, field, rows)
	return rows
}

// Set stores a field value. Setting a field on an invalid ref is a no-op.
func (g *Graph) Set(r Ref, field string, value any) {
	rec, ok := g.record(r)
	if !ok {
		return
	}
	rec.fields[field] = value
}

// Delete removes a field.
func (g *Graph) Delete(r Ref, field string) {
	if rec, ok := g.record(r); ok {
		delete(rec.fields, field)
	}
}

// Len returns the number of records, blocks and rows together.
func (g *Graph) Len() int {
	return len(g.records)
}

// Blocks lists every top level block in insertion order.
func (g *Graph) Blocks() []Ref {
	var out []Ref
	for i := range g.records {
		if g.records[i].block {
			out = append(out, Ref(i))
		}
	}
	return out
}

// BlocksOf lists the blocks whose kind is k or derives from it.
func (g *Graph) BlocksOf(k Kind) []Ref {
	var out []Ref
	for i := range g.records {
		if g.records[i].block && g.records[i].kind.Inherits(k) {
			out = append(out, Ref(i))
		}
	}
	return out
}

func (g *Graph) record(r Ref) (*record, bool) {
	if r < 0 || int(r) >= len(g.records) {
		return nil, false
	}
	return &g.records[r], true
}

func (g *Graph) field(r Ref, field string) (any, error) {
	rec, ok := g.record(r)
	if !ok {
		return nil, fmt.Errorf("ref %d: %w", r, ErrInvalidRef)
	}
	v, ok := rec.fields[field]
	if !ok {
		return nil, fmt.Errorf("%q on %d: %w", field, r, ErrFieldNotFound)
	}
	return v, nil
}

func get[T any](g *Graph, r Ref, field string) (T, error) {
	var zero T
	v, err := g.field(r, field)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%q on %d holds %T: %w", field, r, v, ErrFieldType)
	}
	return t, nil
}

// Kind returns the kind of block b, or KindNone.
func (g *Graph) Kind(b Ref) Kind {
	if rec, ok := g.record(b); ok {
		return rec.kind
	}
	return KindNone
}

// Inherits reports whether block b is of kind k or a derived kind.
func (g *Graph) Inherits(b Ref, k Kind) bool {
	rec, ok := g.record(b)
	return ok && rec.block && rec.kind.Inherits(k)
}

// Link follows a reference field. The target must be a block of kind want
// (or derived from it) unless want is KindNone.
func (g *Graph) Link(b Ref, field string, want Kind) (Ref, bool) {
	target, err := get[Ref](g, b, field)
	if err != nil || !target.Valid() {
		return None, false
	}
	rec, ok := g.record(target)
	if !ok || !rec.block {
		return None, false
	}
	if want != KindNone && !rec.kind.Inherits(want) {
		return None, false
	}
	return target, true
}

// LinkArray reads a list of block references.
func (g *Graph) LinkArray(b Ref, field string) ([]Ref, error) {
	return get[[]Ref](g, b, field)
}

func (g *Graph) Int(b Ref, field string) (int, error) {
	return get[int](g, b, field)
}

func (g *Graph) Text(b Ref, field string) (string, error) {
	return get[string](g, b, field)
}

// Float reads a float field. Integer values are widened.
func (g *Graph) Float(b Ref, field string) (float64, error) {
	v, err := g.field(b, field)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	}
	return 0, fmt.Errorf("%q on %d holds %T: %w", field, b, v, ErrFieldType)
}

func (g *Graph) Vec3(b Ref, field string) (math3d.Vec3, error) {
	return get[math3d.Vec3](g, b, field)
}

func (g *Graph) Mat3(b Ref, field string) (math3d.Mat3, error) {
	return get[math3d.Mat3](g, b, field)
}

func (g *Graph) Bytes3(b Ref, field string) ([3]uint8, error) {
	return get[[3]uint8](g, b, field)
}

func (g *Graph) Bytes4(b Ref, field string) ([4]uint8, error) {
	return get[[4]uint8](g, b, field)
}

func (g *Graph) Half2(b Ref, field string) ([2]uint16, error) {
	return get[[2]uint16](g, b, field)
}

func (g *Graph) Floats(b Ref, field string) ([]float64, error) {
	return get[[]float64](g, b, field)
}

func (g *Graph) Bytes(b Ref, field string) ([]uint8, error) {
	return get[[]uint8](g, b, field)
}

func (g *Graph) Vec4s(b Ref, field string) ([]math3d.Vec4, error) {
	return get[[]math3d.Vec4](g, b, field)
}

func (g *Graph) Triangles(b Ref, field string) ([]Triangle, error) {
	return get[[]Triangle](g, b, field)
}

// Has reports whether record b has the field.
func (g *Graph) Has(b Ref, field string) bool {
	_, err := g.field(b, field)
	return err == nil
}

// Table checks that field on b is a table and returns a handle to it.
func (g *Graph) Table(b Ref, field string) (TableRef, error) {
	if _, err := get[Rows](g, b, field); err != nil {
		return TableRef{Owner: None}, err
	}
	return TableRef{Owner: b, Field: field}, nil
}

// RowCount returns the number of rows, or 0 for an invalid table.
func (g *Graph) RowCount(t TableRef) int {
	rows, err := get[Rows](g, t.Owner, t.Field)
	if err != nil {
		return 0
	}
	return len(rows)
}

// Row returns row i, or None when out of range.
func (g *Graph) Row(t TableRef, i int) Ref {
	rows, err := get[Rows](g, t.Owner, t.Field)
	if err != nil || i < 0 || i >= len(rows) {
		return None
	}
	return rows[i]
}

var _ Source = (*Graph)(nil)
