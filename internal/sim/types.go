package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

// Vector is a fixed-dimension real vector field value.
type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	return floats.Norm(v, 2)
}

func (v Vector) Dot(other Vector) float64 {
	return floats.Dot(v, other)
}

func (v Vector) Add(other Vector) Vector {
	return floats.AddTo(make(Vector, len(v)), v, other)
}

func (v Vector) Sub(other Vector) Vector {
	return floats.SubTo(make(Vector, len(v)), v, other)
}

func (v Vector) Scale(factor float64) Vector {
	return floats.ScaleTo(make(Vector, len(v)), factor, v)
}

// Cross is defined for three dimensional vectors only.
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		v[1]*other[2] - v[2]*other[1],
		v[2]*other[0] - v[0]*other[2],
		v[0]*other[1] - v[1]*other[0],
	}
}

// Rotate applies q to a three dimensional vector as q v q*.
func Rotate(q quat.Number, v Vector) Vector {
	p := quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vector{r.Imag, r.Jmag, r.Kmag}
}

// Kind identifies the value type carried by a field.
type Kind int

const (
	KindReal Kind = iota
	KindInteger
	KindBool
	KindVector
	KindQuaternion
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	case KindQuaternion:
		return "quaternion"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value enumerates the Go types a field may hold.
type Value interface {
	float64 | int64 | bool | Vector | quat.Number
}

func kindOf[T Value]() Kind {
	var zero T
	switch any(zero).(type) {
	case float64:
		return KindReal
	case int64:
		return KindInteger
	case bool:
		return KindBool
	case Vector:
		return KindVector
	default:
		return KindQuaternion
	}
}

// Real converts a real, integer or bool field value to float64. Vectors
// report their Euclidean norm and quaternions their modulus.
func Real(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case Vector:
		return x.Norm(), true
	case quat.Number:
		return quat.Abs(x), true
	default:
		return 0, false
	}
}

// Flatten expands a field value into its scalar components.
func Flatten(v any) []float64 {
	switch x := v.(type) {
	case Vector:
		return x.Clone()
	case quat.Number:
		return []float64{x.Real, x.Imag, x.Jmag, x.Kmag}
	default:
		f, _ := Real(v)
		return []float64{f}
	}
}
