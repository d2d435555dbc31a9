package reachcube

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// View selects which of the scene's two camera angles a frame is drawn
// from
type View int

const (
	// FrontView looks at the arm horizontally from in front of it
	FrontView View = iota

	// TopView looks straight down at the table
	TopView
)

func (v View) String() string {
	switch v {
	case TopView:
		return "Top"
	default:
		return "Front"
	}
}

const (
	// FrameWidth and FrameHeight are the pixel dimensions of rendered
	// frames
	FrameWidth  int = 320
	FrameHeight int = 240

	// renderScale converts world metres to pixels
	renderScale float64 = 300.0

	// groundMargin is the number of pixels between the bottom of a
	// front-view frame and the table surface
	groundMargin float64 = 30.0

	// cubeHalfWidth is the half-extent of the cube geom in the scene
	cubeHalfWidth float64 = 0.01
)

var (
	skyShade     color.Color = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	tableShade   color.Color = color.RGBA{R: 60, G: 70, B: 85, A: 255}
	armShade     color.Color = color.RGBA{R: 190, G: 190, B: 200, A: 255}
	jointShade   color.Color = color.RGBA{R: 120, G: 120, B: 135, A: 255}
	gripperShade color.Color = color.RGBA{R: 128, G: 102, B: 230, A: 255}
	cubeShade    color.Color = color.RGBA{R: 204, G: 26, B: 26, A: 255}
)

// armChain names the model bodies along the arm from its fixed base to
// the jaw, in order. Consecutive bodies are drawn as links.
var armChain = []string{
	"base",
	"shoulder",
	"upper_arm",
	"forearm",
	"wrist",
	GripperBody,
	"jaw",
}

// worldToPixel projects a world coordinate onto a frame of the
// argument view
func worldToPixel(v View, x, y, z float64) (float64, float64) {
	if v == TopView {
		return float64(FrameWidth)/2 + renderScale*x,
			float64(FrameHeight)/2 - renderScale*y
	}
	return float64(FrameWidth)/2 + renderScale*y,
		float64(FrameHeight) - groundMargin - renderScale*z
}

// Frame draws the current simulator state from the argument view and
// returns it as an image
func (b *base) Frame(v View) (image.Image, error) {
	dc := gg.NewContext(FrameWidth, FrameHeight)
	dc.SetColor(skyShade)
	dc.Clear()

	// Table
	if v == FrontView {
		dc.SetColor(tableShade)
		dc.DrawRectangle(0, float64(FrameHeight)-groundMargin,
			float64(FrameWidth), groundMargin)
		dc.Fill()
	} else {
		dc.SetColor(tableShade)
		dc.DrawRectangle(0, 0, float64(FrameWidth), float64(FrameHeight))
		dc.Fill()
	}

	// Arm links
	chain := make([][2]float64, len(armChain))
	for i, name := range armChain {
		pos, err := b.BodyXPos(name)
		if err != nil {
			return nil, fmt.Errorf("frame: %v", err)
		}
		px, py := worldToPixel(v, pos.AtVec(0), pos.AtVec(1), pos.AtVec(2))
		chain[i] = [2]float64{px, py}
	}

	dc.SetColor(armShade)
	for i := 0; i < len(chain)-1; i++ {
		dc.SetLineWidth(9.0 - float64(i))
		dc.DrawLine(chain[i][0], chain[i][1], chain[i+1][0], chain[i+1][1])
		dc.Stroke()
	}
	dc.SetColor(jointShade)
	for _, joint := range chain[:len(chain)-1] {
		dc.DrawCircle(joint[0], joint[1], 3.0)
		dc.Fill()
	}

	// Gripper
	gripper := chain[len(chain)-2]
	dc.SetColor(gripperShade)
	dc.DrawCircle(gripper[0], gripper[1], 4.0)
	dc.Fill()

	// Cube
	cube := b.CubePos()
	cx, cy := worldToPixel(v, cube.AtVec(0), cube.AtVec(1), cube.AtVec(2))
	side := 2 * cubeHalfWidth * renderScale
	dc.SetColor(cubeShade)
	dc.DrawRectangle(cx-side/2, cy-side/2, side, side)
	dc.Fill()

	return dc.Image(), nil
}

// Render saves numbered PNG frames of the current simulator state from
// both camera views
func (b *base) Render(i int) error {
	for _, v := range []View{FrontView, TopView} {
		img, err := b.Frame(v)
		if err != nil {
			return fmt.Errorf("render: %v", err)
		}

		filename := fmt.Sprintf("./ReachCube%v%v.png", v, i)
		if err := gg.SavePNG(filename, img); err != nil {
			return fmt.Errorf("render: could not save frame: %v", err)
		}
	}
	return nil
}
