package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/jigsaw/internal/d3"
	"github.com/soypat/jigsaw/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview.
type View struct {
	// what position (point) to look at
	Lookat r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eyepos r3.Vec
	Far    float64
	Near   float64
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersampling factor, 1 disables antialiasing.
	Scale int
}

// DefaultView is an isometric view of a mesh fit in the bi-unit cube.
var DefaultView = View{
	Up:     r3.Vec{Z: 1},
	Eyepos: d3.Elem(2.4),
	Near:   1,
	Far:    10,
	Width:  768,
	Height: 432,
	Scale:  2,
}

// Preview renders the surface of m shaded from view. The mesh is fit in a
// bi-unit cube centered at the origin before rendering.
func Preview(m *mesh.Mesh, view View) (image.Image, error) {
	model := Surface(m)
	if len(model) == 0 {
		return nil, errors.New("mesh has no surface to render")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	tris := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		tris[i] = fauxgl.NewTriangleForPoints(vec(t[0]), vec(t[1]), vec(t[2]))
	}
	fm := fauxgl.NewTriangleMesh(tris)
	fm.BiUnitCube()

	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = vec(view.Eyepos)
		center = vec(view.Lookat)
		up     = vec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(fm)
	img := context.Image()
	if scale > 1 {
		// downsample image for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePreview renders m with Preview and writes a PNG to path.
func SavePreview(path string, m *mesh.Mesh, view View) error {
	img, err := Preview(m, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func vec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
