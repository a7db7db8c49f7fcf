package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

func testMesh(t *testing.T) *cloth.Mesh {
	t.Helper()
	cfg := cloth.DefaultMeshConfig()
	cfg.Width, cfg.Height, cfg.Density = 1, 1, 4
	cfg.Origin = mgl64.Vec3{}
	m, err := cloth.NewMesh(cfg)
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	return m
}

func setVelocity(m *cloth.Mesh, v mgl64.Vec3) {
	pts := m.Points()
	for i := range pts {
		pts[i].Velocity = v
	}
}

func TestEnergyAverages(t *testing.T) {
	m := testMesh(t)
	e := NewEnergy()

	e.Observe(m, 0)
	if e.Value() != 0 {
		t.Errorf("expected zero energy at rest, got %f", e.Value())
	}

	setVelocity(m, mgl64.Vec3{1, 0, 0})
	e.Observe(m, 0.1)

	// 16 points of unit mass at unit speed: 8 J, averaged with the 0 J frame.
	if math.Abs(e.Value()-4) > 1e-9 {
		t.Errorf("expected mean energy 4, got %f", e.Value())
	}
	if math.Abs(e.Last()-8) > 1e-9 {
		t.Errorf("expected last energy 8, got %f", e.Last())
	}
}

func TestEnergyReset(t *testing.T) {
	m := testMesh(t)
	setVelocity(m, mgl64.Vec3{0, 1, 0})
	e := NewEnergy()

	e.Observe(m, 0)
	if e.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestTotalEnergyAtRest(t *testing.T) {
	m := testMesh(t)
	g := mgl64.Vec3{0, -10, 0}

	// Unstretched springs store nothing; only height contributes.
	want := 0.0
	for _, p := range m.Points() {
		want += p.Mass * 10 * p.Position.Y()
	}
	if got := TotalEnergy(m, g); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestEnergyDrift(t *testing.T) {
	m := testMesh(t)
	g := mgl64.Vec3{0, -10, 0}
	pts := m.Points()
	for i := range pts {
		pts[i].Position[1] += 1
	}

	d := NewEnergyDrift(g)
	d.Observe(m, 0)
	if d.Value() != 0 {
		t.Errorf("expected zero drift after one frame, got %f", d.Value())
	}

	setVelocity(m, mgl64.Vec3{1, 0, 0})
	d.Observe(m, 0.1)
	if d.Value() <= 0 {
		t.Error("expected positive drift after energy change")
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}
