package blocks

import (
	"errors"

	"github.com/taigrr/nifview/pkg/math3d"
)

// Ref addresses a block or a row record in a Source.
type Ref int32

// None is the null reference.
const None Ref = -1

// Valid reports whether r can point at a record.
func (r Ref) Valid() bool {
	return r >= 0
}

// TableRef names a table field on a record.
type TableRef struct {
	Owner Ref
	Field string
}

// Triangle is three vertex indices.
type Triangle [3]uint16

// Rows is a table value: an ordered list of row records.
type Rows []Ref

var (
	// ErrFieldNotFound is returned when a record has no such field.
	ErrFieldNotFound = errors.New("field not found")
	// ErrFieldType is returned when a field holds a different type.
	ErrFieldType = errors.New("field type mismatch")
	// ErrInvalidRef is returned for references that resolve to nothing.
	ErrInvalidRef = errors.New("invalid reference")
)

// Source is the query surface of an attributed block graph. Readers treat
// every error as "feature absent".
type Source interface {
	Version() Version
	Kind(b Ref) Kind
	Inherits(b Ref, k Kind) bool

	// Link follows a reference field and checks the target's kind.
	Link(b Ref, field string, want Kind) (Ref, bool)
	LinkArray(b Ref, field string) ([]Ref, error)

	Int(b Ref, field string) (int, error)
	Text(b Ref, field string) (string, error)
	Float(b Ref, field string) (float64, error)
	Vec3(b Ref, field string) (math3d.Vec3, error)
	Mat3(b Ref, field string) (math3d.Mat3, error)
	Bytes3(b Ref, field string) ([3]uint8, error)
	Bytes4(b Ref, field string) ([4]uint8, error)
	Half2(b Ref, field string) ([2]uint16, error)

	Floats(b Ref, field string) ([]float64, error)
	Bytes(b Ref, field string) ([]uint8, error)
	Vec4s(b Ref, field string) ([]math3d.Vec4, error)
	Triangles(b Ref, field string) ([]Triangle, error)

	Has(b Ref, field string) bool

	Table(b Ref, field string) (TableRef, error)
	RowCount(t TableRef) int
	Row(t TableRef, i int) Ref
}
