package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
)

// WriteOBJ writes the mesh as a Wavefront OBJ object with positions, texture
// coordinates, normals and triangle faces. Indices are 1-based and shared by
// all three attributes.
func WriteOBJ(w io.Writer, name string, m *cloth.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# clothsim %dx%d, %d vertices, %d faces\n", m.Rows(), m.Cols(), len(m.Points()), len(m.Faces()))
	fmt.Fprintf(bw, "o %s\n", name)

	verts := m.Vertices()
	for _, v := range verts {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", v.Position.X(), v.Position.Y(), v.Position.Z())
	}
	for _, v := range verts {
		fmt.Fprintf(bw, "vt %.6f %.6f\n", v.TexCoord.X(), v.TexCoord.Y())
	}
	for _, v := range verts {
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", v.Normal.X(), v.Normal.Y(), v.Normal.Z())
	}
	for _, f := range m.Faces() {
		a, b, c := f[0]+1, f[1]+1, f[2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	return bw.Flush()
}

func SaveOBJ(path, name string, m *cloth.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, name, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
