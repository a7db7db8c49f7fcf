package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

type MeshData struct {
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Positions [][3]float64 `json:"positions"`
	Normals   [][3]float64 `json:"normals"`
	Faces     []uint32     `json:"faces"`
	Pinned    [][2]int     `json:"pinned"`
}

type ExportData struct {
	Scene      string             `json:"scene"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	SubSteps   int                `json:"sub_steps"`
	Frames     int                `json:"frames"`
	Time       float64            `json:"time"`
	Samples    []sim.Sample       `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
	Mesh       *MeshData          `json:"mesh,omitempty"`
	Animation  []FrameData        `json:"animation,omitempty"`
}

// FrameData is one recorded frame of point positions in index order.
type FrameData struct {
	Frame     int          `json:"frame"`
	Time      float64      `json:"time"`
	Positions [][3]float64 `json:"positions"`
}

func NewAnimation(snaps []sim.Snapshot) []FrameData {
	frames := make([]FrameData, len(snaps))
	for i, s := range snaps {
		frames[i] = FrameData{Frame: s.Frame, Time: s.Time, Positions: make([][3]float64, len(s.Positions))}
		for k, p := range s.Positions {
			frames[i].Positions[k] = [3]float64(p)
		}
	}
	return frames
}

func NewMeshData(m *cloth.Mesh) *MeshData {
	d := &MeshData{
		Rows:   m.Rows(),
		Cols:   m.Cols(),
		Faces:  m.FaceIndices(),
		Pinned: m.Pinned(),
	}
	for _, p := range m.Points() {
		d.Positions = append(d.Positions, [3]float64(p.Position))
		d.Normals = append(d.Normals, [3]float64(p.Normal))
	}
	return d
}

// NewExportData gathers a run result, and the final mesh when m is non-nil.
func NewExportData(scene string, cfg *config.Config, result *sim.Result, m *cloth.Mesh) ExportData {
	data := ExportData{
		Scene:      scene,
		Integrator: cfg.Simulation.Integrator,
		Dt:         cfg.Simulation.Dt,
		SubSteps:   cfg.Simulation.SubSteps,
		Frames:     result.FramesTaken,
		Time:       result.Time,
		Samples:    result.Samples,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		data.Errors = append(data.Errors, err.Error())
	}
	if m != nil {
		data.Mesh = NewMeshData(m)
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// SaveJSON writes to path, or to stdout when path is "-".
func SaveJSON(path string, data ExportData) error {
	if path == "-" {
		return WriteJSON(os.Stdout, data)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
