package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// SnapshotPool recycles position buffers of a fixed point count.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(points int) *SnapshotPool {
	return &SnapshotPool{
		size: points,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]mgl64.Vec3, points)
			},
		},
	}
}

func (p *SnapshotPool) Get() []mgl64.Vec3 {
	return p.pool.Get().([]mgl64.Vec3)
}

func (p *SnapshotPool) Put(s []mgl64.Vec3) {
	if len(s) == p.size {
		for i := range s {
			s[i] = mgl64.Vec3{}
		}
		p.pool.Put(s)
	}
}

// Capture copies the mesh positions into a pooled buffer.
func (p *SnapshotPool) Capture(m *cloth.Mesh) []mgl64.Vec3 {
	dst := p.Get()
	for i, pt := range m.Points() {
		dst[i] = pt.Position
	}
	return dst
}

// Snapshot is the mesh positions at one frame.
type Snapshot struct {
	Frame     int
	Time      float64
	Positions []mgl64.Vec3
}

// Recorder is an Observer keeping a snapshot every Every frames, up to Limit
// snapshots. Older snapshots are dropped and their buffers recycled.
type Recorder struct {
	Every int
	Limit int

	pool      *SnapshotPool
	snapshots []Snapshot
}

func NewRecorder(points, every, limit int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{
		Every: every,
		Limit: limit,
		pool:  NewSnapshotPool(points),
	}
}

func (r *Recorder) OnFrame(frame int, t float64, m *cloth.Mesh) {
	if frame%r.Every != 0 {
		return
	}
	if r.Limit > 0 && len(r.snapshots) == r.Limit {
		r.pool.Put(r.snapshots[0].Positions)
		r.snapshots = r.snapshots[1:]
	}
	r.snapshots = append(r.snapshots, Snapshot{Frame: frame, Time: t, Positions: r.pool.Capture(m)})
}

func (r *Recorder) Snapshots() []Snapshot { return r.snapshots }

func (r *Recorder) Release() {
	for _, s := range r.snapshots {
		r.pool.Put(s.Positions)
	}
	r.snapshots = nil
}
