package common

import (
	"encoding/binary"
	"math"
	"testing"
)

const epsilon = 1e-5

func matNear(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > epsilon {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)
	matNear(t, m, []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func TestMul4(t *testing.T) {
	identity := make([]float32, 16)
	Identity(identity)

	translate := make([]float32, 16)
	Identity(translate)
	translate[12], translate[13], translate[14] = 1, 2, 3

	scale := make([]float32, 16)
	Identity(scale)
	scale[0], scale[5], scale[10] = 2, 2, 2

	tests := []struct {
		name string
		a, b []float32
		want []float32
	}{
		{
			name: "identity times identity",
			a:    identity,
			b:    identity,
			want: identity,
		},
		{
			name: "translate times scale",
			a:    translate,
			b:    scale,
			want: []float32{
				2, 0, 0, 0,
				0, 2, 0, 0,
				0, 0, 2, 0,
				1, 2, 3, 1,
			},
		},
		{
			name: "scale times translate",
			a:    scale,
			b:    translate,
			want: []float32{
				2, 0, 0, 0,
				0, 2, 0, 0,
				0, 0, 2, 0,
				2, 4, 6, 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]float32, 16)
			Mul4(out, tt.a, tt.b)
			matNear(t, out, tt.want)
		})
	}
}

func TestMul4Aliased(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	m[12] = 5

	Mul4(m, m, m)

	if math.Abs(float64(m[12]-10)) > epsilon {
		t.Fatalf("aliased multiply: got translation %v, want 10", m[12])
	}
}

func TestPerspective(t *testing.T) {
	out := make([]float32, 16)
	Perspective(out, float32(math.Pi/2), 2.0, 0.1, 100.0)

	f := float32(1.0 / math.Tan(math.Pi/4))
	if math.Abs(float64(out[0]-f/2.0)) > epsilon {
		t.Errorf("out[0]: got %v, want %v", out[0], f/2.0)
	}
	if math.Abs(float64(out[5]-f)) > epsilon {
		t.Errorf("out[5]: got %v, want %v", out[5], f)
	}
	if out[11] != -1 {
		t.Errorf("out[11]: got %v, want -1", out[11])
	}
	if out[15] != 0 {
		t.Errorf("out[15]: got %v, want 0", out[15])
	}

	// A point on the near plane must land at depth 0, one on the far plane at depth 1.
	nearZ := out[10]*(-0.1) + out[14]
	nearW := out[11] * (-0.1)
	if math.Abs(float64(nearZ/nearW)) > epsilon {
		t.Errorf("near plane depth: got %v, want 0", nearZ/nearW)
	}
	farZ := out[10]*(-100.0) + out[14]
	farW := out[11] * (-100.0)
	if math.Abs(float64(farZ/farW-1)) > epsilon {
		t.Errorf("far plane depth: got %v, want 1", farZ/farW)
	}
}

func TestQuaternionMatrix(t *testing.T) {
	s := float32(math.Sqrt(0.5))

	tests := []struct {
		name           string
		qx, qy, qz, qw float32
		in             [3]float32
		want           [3]float32
	}{
		{
			name: "identity",
			qw:   1,
			in:   [3]float32{1, 2, 3},
			want: [3]float32{1, 2, 3},
		},
		{
			name: "quarter turn about Y",
			qy:   s, qw: s,
			in:   [3]float32{1, 0, 0},
			want: [3]float32{0, 0, -1},
		},
		{
			name: "quarter turn about X",
			qx:   s, qw: s,
			in:   [3]float32{0, 1, 0},
			want: [3]float32{0, 0, 1},
		},
		{
			name: "half turn about Z",
			qz:   1,
			in:   [3]float32{1, 1, 0},
			want: [3]float32{-1, -1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make([]float32, 16)
			QuaternionMatrix(m, tt.qx, tt.qy, tt.qz, tt.qw)

			var got [3]float32
			for row := 0; row < 3; row++ {
				got[row] = m[0+row]*tt.in[0] + m[4+row]*tt.in[1] + m[8+row]*tt.in[2]
			}
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > epsilon {
					t.Fatalf("component %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
			if m[15] != 1 || m[3] != 0 || m[7] != 0 || m[11] != 0 || m[12] != 0 || m[13] != 0 || m[14] != 0 {
				t.Fatal("rotation matrix has non-trivial translation or projection terms")
			}
		})
	}
}

func TestQuaternionMatrix3MatchesMatrix4(t *testing.T) {
	q := AxisAngleQuaternion(1, 2, 3, 0.7)

	m4 := make([]float32, 16)
	QuaternionMatrix(m4, q[0], q[1], q[2], q[3])

	m3 := make([]float32, 9)
	QuaternionMatrix3(m3, q[0], q[1], q[2], q[3])

	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			got := m3[col*3+row]
			want := m4[col*4+row]
			if math.Abs(float64(got-want)) > epsilon {
				t.Fatalf("element (%d,%d): got %v, want %v", col, row, got, want)
			}
		}
	}
}

func TestComposeTransform(t *testing.T) {
	out := make([]float32, 16)
	ComposeTransform(out, 3, -1, 2, 0, 0, 0, 1)

	want := make([]float32, 16)
	Identity(want)
	want[12], want[13], want[14] = 3, -1, 2
	matNear(t, out, want)
}

func TestAxisAngleQuaternion(t *testing.T) {
	tests := []struct {
		name       string
		ax, ay, az float32
		angle      float32
		want       [4]float32
	}{
		{
			name: "zero axis yields identity",
			want: [4]float32{0, 0, 0, 1},
		},
		{
			name: "quarter turn about Y",
			ay:   1, angle: float32(math.Pi / 2),
			want: [4]float32{0, float32(math.Sin(math.Pi / 4)), 0, float32(math.Cos(math.Pi / 4))},
		},
		{
			name: "axis is normalized",
			ay:   10, angle: float32(math.Pi / 2),
			want: [4]float32{0, float32(math.Sin(math.Pi / 4)), 0, float32(math.Cos(math.Pi / 4))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AxisAngleQuaternion(tt.ax, tt.ay, tt.az, tt.angle)
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > epsilon {
					t.Fatalf("component %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInvert4(t *testing.T) {
	m := make([]float32, 16)
	ComposeTransform(m, 4, 5, 6, AxisAngleQuaternion(0, 1, 0, 0.9)[0], AxisAngleQuaternion(0, 1, 0, 0.9)[1], AxisAngleQuaternion(0, 1, 0, 0.9)[2], AxisAngleQuaternion(0, 1, 0, 0.9)[3])

	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("expected invertible matrix")
	}

	product := make([]float32, 16)
	Mul4(product, m, inv)

	identity := make([]float32, 16)
	Identity(identity)
	matNear(t, product, identity)
}

func TestInvert4Singular(t *testing.T) {
	m := make([]float32, 16) // all zeros
	out := make([]float32, 16)
	out[0] = 42

	if Invert4(out, m) {
		t.Fatal("expected singular matrix to fail")
	}
	if out[0] != 42 {
		t.Fatal("singular inversion must leave output unchanged")
	}
}

func TestLookAt(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 5, 0, 0, 0, 0, 1, 0)

	// The eye position must map to the view-space origin.
	x := view[0]*0 + view[4]*0 + view[8]*5 + view[12]
	y := view[1]*0 + view[5]*0 + view[9]*5 + view[13]
	z := view[2]*0 + view[6]*0 + view[10]*5 + view[14]
	for i, v := range []float32{x, y, z} {
		if math.Abs(float64(v)) > epsilon {
			t.Errorf("eye component %d: got %v, want 0", i, v)
		}
	}

	// The target sits straight ahead on the -Z axis in view space.
	tz := view[2]*0 + view[6]*0 + view[10]*0 + view[14]
	if math.Abs(float64(tz+5)) > epsilon {
		t.Errorf("target view-space z: got %v, want -5", tz)
	}
}

func TestSliceToBytes(t *testing.T) {
	if got := SliceToBytes([]float32(nil)); got != nil {
		t.Fatalf("nil slice: got %v, want nil", got)
	}

	data := []float32{1.0, 2.5}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("length: got %d, want 8", len(b))
	}
	if bits := binary.LittleEndian.Uint32(b[0:4]); bits != math.Float32bits(1.0) {
		t.Errorf("first element bits: got %#x, want %#x", bits, math.Float32bits(1.0))
	}
	if bits := binary.LittleEndian.Uint32(b[4:8]); bits != math.Float32bits(2.5) {
		t.Errorf("second element bits: got %#x, want %#x", bits, math.Float32bits(2.5))
	}
}

func TestSliceToBytesUint32(t *testing.T) {
	data := []uint32{0x01020304}
	b := SliceToBytes(data)
	if len(b) != 4 {
		t.Fatalf("length: got %d, want 4", len(b))
	}
	if got := binary.LittleEndian.Uint32(b); got != 0x01020304 {
		t.Errorf("got %#x, want %#x", got, 0x01020304)
	}
}
