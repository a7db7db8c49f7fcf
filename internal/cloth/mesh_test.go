package cloth

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func smallConfig() MeshConfig {
	cfg := DefaultMeshConfig()
	cfg.Width = 1
	cfg.Height = 1
	cfg.Density = 4
	cfg.Origin = mgl64.Vec3{}
	return cfg
}

func TestNewMesh_TopologyCounts(t *testing.T) {
	tests := []struct {
		name       string
		diagonal   bool
		structural int
		shear      int
		bending    int
	}{
		{"with diagonal bending", true, 24, 18, 24},
		{"without diagonal bending", false, 24, 18, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.DiagonalBending = tt.diagonal
			m, err := NewMesh(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if m.Rows() != 4 || m.Cols() != 4 {
				t.Fatalf("expected 4x4 grid, got %dx%d", m.Rows(), m.Cols())
			}
			if len(m.Points()) != 16 {
				t.Errorf("expected 16 points, got %d", len(m.Points()))
			}
			if got := m.SpringCount(Structural); got != tt.structural {
				t.Errorf("expected %d structural springs, got %d", tt.structural, got)
			}
			if got := m.SpringCount(Shear); got != tt.shear {
				t.Errorf("expected %d shear springs, got %d", tt.shear, got)
			}
			if got := m.SpringCount(Bending); got != tt.bending {
				t.Errorf("expected %d bending springs, got %d", tt.bending, got)
			}
			if len(m.FaceIndices()) != 54 {
				t.Errorf("expected 54 face indices, got %d", len(m.FaceIndices()))
			}
			if len(m.Faces()) != 18 {
				t.Errorf("expected 18 triangles, got %d", len(m.Faces()))
			}
		})
	}
}

func TestNewMesh_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MeshConfig)
		want   error
	}{
		{"zero width", func(c *MeshConfig) { c.Width = 0 }, ErrInvalidGrid},
		{"negative height", func(c *MeshConfig) { c.Height = -1 }, ErrInvalidGrid},
		{"zero density", func(c *MeshConfig) { c.Density = 0 }, ErrInvalidGrid},
		{"rounds to no points", func(c *MeshConfig) { c.Width = 0.1; c.Density = 1 }, ErrInvalidGrid},
		{"zero mass", func(c *MeshConfig) { c.Mass = 0 }, ErrInvalidParameter},
		{"zero shear", func(c *MeshConfig) { c.Shear = 0 }, ErrInvalidParameter},
		{"negative damping", func(c *MeshConfig) { c.Damping = -1 }, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(&cfg)
			m, err := NewMesh(cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("expected nil mesh on error")
			}
		})
	}
}

func TestMesh_IndexBijection(t *testing.T) {
	cfg := smallConfig()
	cfg.Width = 1.5 // 6 x 4
	m, err := NewMesh(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int]bool)
	for j := 0; j < m.Cols(); j++ {
		for i := 0; i < m.Rows(); i++ {
			idx, ok := m.Index(i, j)
			if !ok {
				t.Fatalf("(%d,%d) reported out of range", i, j)
			}
			if idx != j*m.Rows()+i {
				t.Errorf("(%d,%d) -> %d, want %d", i, j, idx, j*m.Rows()+i)
			}
			seen[idx] = true
		}
	}
	if len(seen) != len(m.Points()) {
		t.Errorf("mapping covers %d of %d points", len(seen), len(m.Points()))
	}

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {m.Rows(), 0}, {0, m.Cols()}} {
		if _, ok := m.Index(c[0], c[1]); ok {
			t.Errorf("(%d,%d) should be out of range", c[0], c[1])
		}
		if m.Point(c[0], c[1]) != nil {
			t.Errorf("Point(%d,%d) should be nil", c[0], c[1])
		}
	}
}

func TestMesh_FacesValid(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	for n, f := range m.Faces() {
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			t.Errorf("face %d repeats a point: %v", n, f)
		}
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Points()) {
				t.Errorf("face %d references invalid point %d", n, idx)
			}
		}
	}
}

func TestMesh_RestLengthExact(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	points := m.Points()
	for k, s := range m.Springs() {
		if d := s.Length(points); math.Abs(d-s.RestLength) > 1e-12 {
			t.Errorf("spring %d: length %f, rest %f", k, d, s.RestLength)
		}
	}
}

func TestMesh_NoDuplicateEdges(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	type key struct {
		a, b int
		kind SpringKind
	}
	seen := make(map[key]bool)
	for _, s := range m.Springs() {
		a, b := s.A, s.B
		if a > b {
			a, b = b, a
		}
		k := key{a, b, s.Kind}
		if seen[k] {
			t.Errorf("duplicate %s edge %d-%d", s.Kind, a, b)
		}
		seen[k] = true
	}
}

func TestMesh_LayoutAndTexCoords(t *testing.T) {
	cfg := smallConfig()
	cfg.Origin = mgl64.Vec3{1, 2, 3}

	m, _ := NewMesh(cfg)
	if got := m.Point(3, 2).Position; !got.ApproxEqualThreshold(mgl64.Vec3{1.75, 1.5, 3}, 1e-12) {
		t.Errorf("vertical (3,2) at %v", got)
	}
	if tc := m.Point(3, 2).TexCoord; !tc.ApproxEqualThreshold(mgl64.Vec2{1, 2.0 / 3.0}, 1e-12) {
		t.Errorf("tex coord (3,2) = %v", tc)
	}

	cfg.Layout = Horizontal
	m, _ = NewMesh(cfg)
	if got := m.Point(3, 2).Position; !got.ApproxEqualThreshold(mgl64.Vec3{1.75, 2, 3.5}, 1e-12) {
		t.Errorf("horizontal (3,2) at %v", got)
	}
}

func TestMesh_ComputeNormalFlat(t *testing.T) {
	tests := []struct {
		layout Layout
		want   mgl64.Vec3
	}{
		{Vertical, mgl64.Vec3{0, 0, 1}},
		{Horizontal, mgl64.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			cfg := smallConfig()
			cfg.Layout = tt.layout
			m, _ := NewMesh(cfg)
			m.ComputeNormal()
			for i, p := range m.Points() {
				if !p.Normal.ApproxEqualThreshold(tt.want, 1e-12) {
					t.Errorf("point %d normal %v, want %v", i, p.Normal, tt.want)
				}
			}
		})
	}
}

func TestMesh_PinUnpin(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	before := m.Point(0, 0).Position

	m.Pin(0, 0, mgl64.Vec3{1, 0, 0})
	if !m.IsPinned(0, 0) {
		t.Fatal("expected (0,0) pinned")
	}
	if got := m.Point(0, 0).Position; got != before.Add(mgl64.Vec3{1, 0, 0}) {
		t.Errorf("pin offset not applied: %v", got)
	}

	pinnedPos := m.Point(0, 0).Position
	m.Unpin(0, 0)
	if m.IsPinned(0, 0) {
		t.Error("expected (0,0) unpinned")
	}
	if m.Point(0, 0).Position != pinnedPos {
		t.Error("unpin moved the point")
	}

	snapshot := append([]MassPoint(nil), m.Points()...)
	m.Pin(-1, 0, mgl64.Vec3{5, 5, 5})
	m.Pin(0, 99, mgl64.Vec3{5, 5, 5})
	m.Unpin(99, 99)
	for i, p := range m.Points() {
		if p != snapshot[i] {
			t.Fatalf("out-of-range pin/unpin changed point %d", i)
		}
	}
}

func TestMesh_PinsAfterSprings(t *testing.T) {
	cfg := smallConfig()
	cfg.Pins = []Pin{
		{I: 0, J: 0, Offset: mgl64.Vec3{0.1, 0, 0}},
		{I: 3, J: 0, Offset: mgl64.Vec3{-0.1, 0, 0}},
	}
	m, err := NewMesh(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.Pinned(); len(got) != 2 || got[0] != [2]int{0, 0} || got[1] != [2]int{3, 0} {
		t.Errorf("unexpected pinned set %v", got)
	}

	spacing := m.Spacing()
	for _, s := range m.Springs() {
		if s.Kind == Structural && math.Abs(s.RestLength-spacing) > 1e-12 {
			t.Errorf("structural rest length %f encodes the pin offset", s.RestLength)
		}
	}

	pinned, _ := m.Index(0, 0)
	stressed := false
	for _, s := range m.Springs() {
		if s.A == pinned || s.B == pinned {
			if math.Abs(s.Length(m.Points())-s.RestLength) > 1e-9 {
				stressed = true
			}
		}
	}
	if !stressed {
		t.Error("expected springs at the pinned corner to be pre-stressed")
	}
}

func TestMesh_AddForceConsumedByIntegrate(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	m.AddForce(mgl64.Vec3{1, 0, 0})
	m.AddForce(mgl64.Vec3{1, 0, 0})
	m.ComputeForce(0.01, mgl64.Vec3{})

	for i, p := range m.Points() {
		if !p.Force.ApproxEqualThreshold(mgl64.Vec3{2, 0, 0}, 1e-9) {
			t.Fatalf("point %d force %v, want (2,0,0)", i, p.Force)
		}
	}

	m.Integrate(0.01)
	for i, p := range m.Points() {
		if p.Force != (mgl64.Vec3{}) {
			t.Fatalf("point %d force not cleared: %v", i, p.Force)
		}
	}
}

func TestMesh_Diagnostics(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	if m.KineticEnergy() != 0 || m.VelocityNorm() != 0 || m.MaxStrain() > 1e-12 {
		t.Error("expected a resting, unstrained mesh")
	}
	if !m.IsFinite() {
		t.Error("expected finite state")
	}

	m.Point(1, 1).Velocity = mgl64.Vec3{3, 4, 0}
	if math.Abs(m.KineticEnergy()-12.5) > 1e-12 {
		t.Errorf("expected kinetic energy 12.5, got %f", m.KineticEnergy())
	}
	if math.Abs(m.VelocityNorm()-5) > 1e-12 {
		t.Errorf("expected velocity norm 5, got %f", m.VelocityNorm())
	}
	if low := m.LowestPoint(); math.Abs(low.Y()+0.75) > 1e-12 {
		t.Errorf("expected lowest height -0.75, got %f", low.Y())
	}

	m.Point(2, 2).Position[0] = math.NaN()
	if m.IsFinite() {
		t.Error("expected NaN to be detected")
	}
}

func TestMesh_Vertices(t *testing.T) {
	m, _ := NewMesh(smallConfig())
	m.ComputeNormal()
	verts := m.Vertices()
	if len(verts) != len(m.Points()) {
		t.Fatalf("expected %d vertices, got %d", len(m.Points()), len(verts))
	}
	for i, v := range verts {
		p := m.Points()[i]
		if v.Position != p.Position || v.Normal != p.Normal || v.TexCoord != p.TexCoord {
			t.Errorf("vertex %d does not mirror point", i)
		}
	}
}
