package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultDensity    = 4.0
	DefaultStructural = 500.0
	DefaultShear      = 10.0
	DefaultBending    = 200.0
	DefaultDamping    = 5.0
)

// Layout selects the plane the grid is laid out in. The i axis always runs
// along +X.
type Layout int

const (
	// Vertical hangs the cloth: the j axis runs along -Y.
	Vertical Layout = iota
	// Horizontal lays the cloth flat: the j axis runs along +Z.
	Horizontal
)

func (l Layout) String() string {
	if l == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	default:
		return Vertical, fmt.Errorf("unknown layout: %s", s)
	}
}

// Pin fixes grid point (I, J) after moving it by Offset.
type Pin struct {
	I, J   int
	Offset mgl64.Vec3
}

type MeshConfig struct {
	Width   float64
	Height  float64
	Density float64 // points per unit length
	Origin  mgl64.Vec3
	Layout  Layout
	Mass    float64

	Structural      float64
	Shear           float64
	Bending         float64
	Damping         float64
	DiagonalBending bool

	// Pins are applied after the spring network is built, so their offsets
	// pre-stress the springs around each pinned point.
	Pins []Pin

	// Integrator defaults to SemiImplicitEuler when nil.
	Integrator Integrator
}

func DefaultMeshConfig() MeshConfig {
	return MeshConfig{
		Width:           6,
		Height:          6,
		Density:         DefaultDensity,
		Origin:          mgl64.Vec3{-3, 7, -3},
		Layout:          Vertical,
		Mass:            DefaultMass,
		Structural:      DefaultStructural,
		Shear:           DefaultShear,
		Bending:         DefaultBending,
		Damping:         DefaultDamping,
		DiagonalBending: true,
	}
}

// Vertex is the per-point data a renderer consumes.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	TexCoord mgl64.Vec2
}

// Mesh is a rows x cols lattice of mass points. Grid coordinate (i, j) maps
// to point index j*rows + i for the lifetime of the mesh.
type Mesh struct {
	rows, cols int
	density    float64
	spacing    float64

	points     []MassPoint
	springs    []Spring
	faces      [][3]int
	integrator Integrator
}

func NewMesh(cfg MeshConfig) (*Mesh, error) {
	if err := validateMeshConfig(cfg); err != nil {
		return nil, err
	}

	rows, cols := GridSize(cfg.Width, cfg.Height, cfg.Density)
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %gx%g at density %g gives %dx%d points",
			ErrInvalidGrid, cfg.Width, cfg.Height, cfg.Density, rows, cols)
	}

	m := &Mesh{
		rows:       rows,
		cols:       cols,
		density:    cfg.Density,
		spacing:    1 / cfg.Density,
		integrator: cfg.Integrator,
	}
	if m.integrator == nil {
		m.integrator = NewSemiImplicitEuler()
	}

	m.buildPoints(cfg)
	if err := m.buildSprings(cfg); err != nil {
		return nil, err
	}
	m.buildFaces()

	for _, p := range cfg.Pins {
		m.Pin(p.I, p.J, p.Offset)
	}
	return m, nil
}

// GridSize is the point count along each side of a width x height cloth.
func GridSize(width, height, density float64) (rows, cols int) {
	return int(math.Round(width * density)), int(math.Round(height * density))
}

func validateMeshConfig(cfg MeshConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Density <= 0 {
		return fmt.Errorf("%w: width %g, height %g, density %g",
			ErrInvalidGrid, cfg.Width, cfg.Height, cfg.Density)
	}
	if cfg.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidParameter, cfg.Mass)
	}
	if cfg.Structural <= 0 || cfg.Shear <= 0 || cfg.Bending <= 0 {
		return fmt.Errorf("%w: stiffness must be positive (structural %g, shear %g, bending %g)",
			ErrInvalidParameter, cfg.Structural, cfg.Shear, cfg.Bending)
	}
	if cfg.Damping < 0 {
		return fmt.Errorf("%w: damping must be non-negative, got %g", ErrInvalidParameter, cfg.Damping)
	}
	return nil
}

func (m *Mesh) buildPoints(cfg MeshConfig) {
	down := mgl64.Vec3{0, -1, 0}
	if cfg.Layout == Horizontal {
		down = mgl64.Vec3{0, 0, 1}
	}
	across := mgl64.Vec3{1, 0, 0}

	m.points = make([]MassPoint, m.rows*m.cols)
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			pos := cfg.Origin.
				Add(across.Mul(float64(i) * m.spacing)).
				Add(down.Mul(float64(j) * m.spacing))
			p := NewMassPoint(pos, cfg.Mass)
			p.TexCoord = mgl64.Vec2{texCoord(i, m.rows), texCoord(j, m.cols)}
			m.points[j*m.rows+i] = p
		}
	}
}

func texCoord(k, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(k) / float64(n-1)
}

func (m *Mesh) buildSprings(cfg MeshConfig) error {
	add := func(i0, j0, i1, j1 int, k float64, kind SpringKind) error {
		a, okA := m.Index(i0, j0)
		b, okB := m.Index(i1, j1)
		if !okA || !okB {
			return nil
		}
		s, err := NewSpring(m.points, a, b, k, cfg.Damping, kind)
		if err != nil {
			return err
		}
		m.springs = append(m.springs, s)
		return nil
	}

	type edge struct {
		i0, j0, i1, j1 int
		k              float64
		kind           SpringKind
	}
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			edges := []edge{
				{i, j, i + 1, j, cfg.Structural, Structural},
				{i, j, i, j + 1, cfg.Structural, Structural},
				{i, j, i + 1, j + 1, cfg.Shear, Shear},
				{i + 1, j, i, j + 1, cfg.Shear, Shear},
				{i, j, i + 2, j, cfg.Bending, Bending},
				{i, j, i, j + 2, cfg.Bending, Bending},
			}
			if cfg.DiagonalBending {
				edges = append(edges,
					edge{i, j, i + 2, j + 2, cfg.Bending, Bending},
					edge{i + 2, j, i, j + 2, cfg.Bending, Bending},
				)
			}
			for _, e := range edges {
				if err := add(e.i0, e.j0, e.i1, e.j1, e.k, e.kind); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildFaces splits every cell into two triangles wound
// (i+1,j) (i,j) (i,j+1) and (i+1,j+1) (i+1,j) (i,j+1). With this winding the
// vertical layout faces +Z and the horizontal layout faces +Y.
func (m *Mesh) buildFaces() {
	if m.rows < 2 || m.cols < 2 {
		return
	}
	m.faces = make([][3]int, 0, 2*(m.rows-1)*(m.cols-1))
	for j := 0; j < m.cols-1; j++ {
		for i := 0; i < m.rows-1; i++ {
			m.faces = append(m.faces,
				[3]int{m.index(i+1, j), m.index(i, j), m.index(i, j+1)},
				[3]int{m.index(i+1, j+1), m.index(i+1, j), m.index(i, j+1)},
			)
		}
	}
}

func (m *Mesh) index(i, j int) int { return j*m.rows + i }

// Index returns the point index of grid coordinate (i, j) and whether the
// coordinate is inside the grid.
func (m *Mesh) Index(i, j int) (int, bool) {
	if i < 0 || j < 0 || i >= m.rows || j >= m.cols {
		return 0, false
	}
	return m.index(i, j), true
}

func (m *Mesh) Rows() int           { return m.rows }
func (m *Mesh) Cols() int           { return m.cols }
func (m *Mesh) Density() float64    { return m.density }
func (m *Mesh) Spacing() float64    { return m.spacing }
func (m *Mesh) Points() []MassPoint { return m.points }
func (m *Mesh) Springs() []Spring   { return m.springs }

// Faces returns the triangle list. Callers must not modify it.
func (m *Mesh) Faces() [][3]int { return m.faces }

// Point returns the point at (i, j), or nil when out of range.
func (m *Mesh) Point(i, j int) *MassPoint {
	idx, ok := m.Index(i, j)
	if !ok {
		return nil
	}
	return &m.points[idx]
}

func (m *Mesh) SpringCount(kind SpringKind) int {
	n := 0
	for _, s := range m.springs {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (m *Mesh) SetIntegrator(integ Integrator) {
	if integ == nil {
		integ = NewSemiImplicitEuler()
	}
	m.integrator = integ
}

// Pin moves point (i, j) by offset and fixes it. Out-of-range coordinates
// are ignored.
func (m *Mesh) Pin(i, j int, offset mgl64.Vec3) {
	p := m.Point(i, j)
	if p == nil {
		return
	}
	p.Position = p.Position.Add(offset)
	p.Fixed = true
}

// Unpin frees point (i, j) without moving it. Out-of-range coordinates are
// ignored.
func (m *Mesh) Unpin(i, j int) {
	if p := m.Point(i, j); p != nil {
		p.Fixed = false
	}
}

func (m *Mesh) IsPinned(i, j int) bool {
	p := m.Point(i, j)
	return p != nil && p.Fixed
}

// Pinned lists the fixed grid coordinates in index order.
func (m *Mesh) Pinned() [][2]int {
	var out [][2]int
	for idx := range m.points {
		if m.points[idx].Fixed {
			out = append(out, [2]int{idx % m.rows, idx / m.rows})
		}
	}
	return out
}

// AddForce adds f to every point's accumulator. It is consumed by the next
// Integrate.
func (m *Mesh) AddForce(f mgl64.Vec3) {
	for i := range m.points {
		m.points[i].AddForce(f)
	}
}

// ComputeForce accumulates gravity and every spring force from the current
// positions. No point moves during this pass.
func (m *Mesh) ComputeForce(dt float64, gravity mgl64.Vec3) {
	for i := range m.points {
		m.points[i].AddForce(gravity.Mul(m.points[i].Mass))
	}
	for k := range m.springs {
		m.springs[k].ApplyInternalForce(m.points, dt)
	}
}

func (m *Mesh) Integrate(dt float64) {
	m.integrator.Integrate(m.points, m.springs, dt)
}

// CollisionResponse resolves every point against every collider, fixed
// points included.
func (m *Mesh) CollisionResponse(colliders ...Collider) {
	for i := range m.points {
		for _, c := range colliders {
			if c != nil {
				c.Resolve(&m.points[i])
			}
		}
	}
}

// Tick runs one force, integrate and collision pass.
func (m *Mesh) Tick(dt float64, gravity mgl64.Vec3, colliders ...Collider) {
	m.ComputeForce(dt, gravity)
	m.Integrate(dt)
	m.CollisionResponse(colliders...)
}

// ComputeNormal recomputes per-point normals as the normalized sum of the
// unnormalized normals of incident faces. It has no effect on the physics.
func (m *Mesh) ComputeNormal() {
	for i := range m.points {
		m.points[i].Normal = mgl64.Vec3{}
	}
	for _, f := range m.faces {
		p0 := m.points[f[0]].Position
		n := m.points[f[1]].Position.Sub(p0).Cross(m.points[f[2]].Position.Sub(p0))
		for _, idx := range f {
			m.points[idx].Normal = m.points[idx].Normal.Add(n)
		}
	}
	for i := range m.points {
		if l := m.points[i].Normal.Len(); l > degenerateLength {
			m.points[i].Normal = m.points[i].Normal.Mul(1 / l)
		}
	}
}

func (m *Mesh) Vertices() []Vertex {
	out := make([]Vertex, len(m.points))
	for i, p := range m.points {
		out[i] = Vertex{Position: p.Position, Normal: p.Normal, TexCoord: p.TexCoord}
	}
	return out
}

// FaceIndices flattens the face list into the index buffer layout renderers
// upload, three indices per triangle.
func (m *Mesh) FaceIndices() []uint32 {
	out := make([]uint32, 0, 3*len(m.faces))
	for _, f := range m.faces {
		out = append(out, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return out
}
