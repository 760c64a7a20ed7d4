package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/metrics"
)

// IconSource resolves an icon key to an image. A missing icon is (nil, nil).
type IconSource interface {
	Icon(ctx context.Context, key string) (image.Image, error)
}

// Renderer rasterizes card scenes to PNG.
type Renderer struct {
	icons IconSource
}

// NewRenderer creates a renderer. icons may be nil, in which case scenes are
// drawn without their weather icon.
func NewRenderer(icons IconSource) *Renderer {
	return &Renderer{icons: icons}
}

// ellipseSteps is the number of segments used to approximate rings and
// marker dots.
const ellipseSteps = 96

// hatchPeriod is the stripe period in pixels of the half-density arrow fill.
const hatchPeriod = 6

// Render draws the scene and returns PNG bytes.
func (r *Renderer) Render(ctx context.Context, s *card.Scene) ([]byte, error) {
	if s == nil {
		return nil, errors.New("render: nil scene")
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	start := time.Now()

	faces := faceCache{}
	defer faces.close()

	dst := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	c := &canvas{
		dst:   dst,
		faces: faces,
		tr:    newTransform(s),
		ras:   vector.NewRasterizer(s.Width, s.Height),
	}

	if err := c.header(s.Label, s.Title); err != nil {
		return nil, err
	}

	for _, e := range s.Rings {
		c.strokePath(c.tr.ellipse(e.Center, e.RX, e.RY, ellipseSteps), e.Stroke, true)
	}
	for _, seg := range s.Ticks {
		c.strokePath([]pt{c.tr.pt(seg.From), c.tr.pt(seg.To)}, seg.Stroke, false)
	}

	r.drawIcon(ctx, c, s.Icon)
	c.arrow(s.Arrow)

	if err := c.bar(s.Sunshine); err != nil {
		return nil, err
	}
	for _, m := range s.Markers {
		if err := c.marker(m); err != nil {
			return nil, err
		}
	}
	for _, a := range s.Annotations {
		if err := c.annotation(a); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card image: %w", err)
	}

	metrics.CardsRendered.Inc()
	metrics.CardRenderLatency.Observe(time.Since(start).Seconds())
	return buf.Bytes(), nil
}

func (r *Renderer) drawIcon(ctx context.Context, c *canvas, ref card.ImageRef) {
	if r.icons == nil || ref.Key == "" {
		return
	}
	icon, err := r.icons.Icon(ctx, ref.Key)
	if err != nil {
		log.Printf("imagegen: icon %q: %v", ref.Key, err)
		return
	}
	if icon == nil {
		return
	}

	// Fit the icon inside its box, keeping its aspect ratio.
	boxW := ref.SizeX / c.tr.x.Span() * float64(c.dst.Bounds().Dx())
	boxH := ref.SizeY / c.tr.y.Span() * c.tr.plotH
	ib := icon.Bounds()
	scale := math.Min(boxW/float64(ib.Dx()), boxH/float64(ib.Dy()))
	w, h := float64(ib.Dx())*scale, float64(ib.Dy())*scale
	ctr := c.tr.pt(ref.Center)
	rect := image.Rect(
		int(math.Round(float64(ctr.x)-w/2)), int(math.Round(float64(ctr.y)-h/2)),
		int(math.Round(float64(ctr.x)+w/2)), int(math.Round(float64(ctr.y)+h/2)),
	)
	xdraw.CatmullRom.Scale(c.dst, rect, icon, ib, xdraw.Over, nil)
}

type pt struct{ x, y float32 }

// transform maps scene data coordinates to canvas pixels.
type transform struct {
	x, y  forecast.AxisRange
	width float64
	plotT float64
	plotH float64
}

func newTransform(s *card.Scene) transform {
	return transform{
		x:     s.XRange,
		y:     s.YRange,
		width: float64(s.Width),
		plotT: card.MarginTop,
		plotH: float64(s.Height - card.MarginTop - card.MarginBottom),
	}
}

func (t transform) px(p card.Point) (float64, float64) {
	x := (p.X - t.x.Min) / t.x.Span() * t.width
	y := t.plotT + (t.y.Max-p.Y)/t.y.Span()*t.plotH
	return x, y
}

func (t transform) pt(p card.Point) pt {
	x, y := t.px(p)
	return pt{float32(x), float32(y)}
}

func (t transform) ellipse(c card.Point, rx, ry float64, steps int) []pt {
	pts := make([]pt, 0, steps)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts = append(pts, t.pt(card.Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}))
	}
	return pts
}

type canvas struct {
	dst   *image.RGBA
	faces faceCache
	tr    transform
	ras   *vector.Rasterizer
}

func rgba(c card.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c *canvas) fill(pts []pt, src image.Image) {
	if len(pts) < 3 {
		return
	}
	b := c.dst.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	c.ras.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		c.ras.LineTo(p.x, p.y)
	}
	c.ras.ClosePath()
	c.ras.Draw(c.dst, b, src, image.Point{})
}

// strokePath draws each segment as a quad of the stroke width. Overlapping
// quads saturate, so joints need no special handling at these widths.
func (c *canvas) strokePath(pts []pt, s card.Stroke, closed bool) {
	if len(pts) < 2 || s.Width <= 0 {
		return
	}
	b := c.dst.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	half := float32(s.Width / 2)

	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		a, z := pts[i], pts[(i+1)%len(pts)]
		dx, dy := z.x-a.x, z.y-a.y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		c.ras.MoveTo(a.x+nx, a.y+ny)
		c.ras.LineTo(z.x+nx, z.y+ny)
		c.ras.LineTo(z.x-nx, z.y-ny)
		c.ras.LineTo(a.x-nx, a.y-ny)
		c.ras.ClosePath()
	}
	c.ras.Draw(c.dst, b, image.NewUniform(rgba(s.Color)), image.Point{})
}

func (c *canvas) arrow(p card.Polygon) {
	pts := make([]pt, len(p.Points))
	for i, q := range p.Points {
		pts[i] = c.tr.pt(q)
	}
	switch p.Fill {
	case card.FillSolid:
		c.fill(pts, image.NewUniform(rgba(p.FillColor)))
	case card.FillHatched:
		c.fill(pts, hatch{c: rgba(p.FillColor), period: hatchPeriod})
	}
	c.strokePath(pts, p.Stroke, true)
}

func (c *canvas) bar(b card.Bar) error {
	x0, y0 := c.tr.px(card.Point{X: b.X - b.Width/2, Y: b.Base + b.Height})
	x1, y1 := c.tr.px(card.Point{X: b.X + b.Width/2, Y: b.Base})
	pts := []pt{
		{float32(x0), float32(y0)}, {float32(x1), float32(y0)},
		{float32(x1), float32(y1)}, {float32(x0), float32(y1)},
	}
	c.fill(pts, image.NewUniform(rgba(b.Color)))
	c.strokePath(pts, b.Outline, true)

	if b.Text == "" {
		return nil
	}
	return c.text(b.Text, (x0+x1)/2, (y0+y1)/2, 11, false, color.Black)
}

func (c *canvas) marker(m card.Marker) error {
	ctr := c.tr.pt(m.At)
	r := float32(m.Size / 2)
	pts := make([]pt, 0, 24)
	for i := 0; i < 24; i++ {
		a := 2 * math.Pi * float64(i) / 24
		pts = append(pts, pt{ctr.x + r*float32(math.Cos(a)), ctr.y + r*float32(math.Sin(a))})
	}
	col := rgba(m.Color)
	c.fill(pts, image.NewUniform(col))

	if m.Text == "" {
		return nil
	}
	f, err := c.faces.get(14, true)
	if err != nil {
		return err
	}
	lineH := float64(f.Metrics().Ascent+f.Metrics().Descent) / 64
	y := float64(ctr.y) - float64(r) - 2 - lineH/2
	if m.Position == card.TextBelow {
		y = float64(ctr.y) + float64(r) + 2 + lineH/2
	}
	return c.text(m.Text, float64(ctr.x), y, 14, true, col)
}

func (c *canvas) annotation(a card.Annotation) error {
	x, y := c.tr.px(a.At)
	return c.text(a.Text, x, y, a.Size, a.Bold, rgba(a.Color))
}

func (c *canvas) header(label, title string) error {
	w := float64(c.dst.Bounds().Dx())
	if label != "" {
		if err := c.text(label, w/2, 12, 10, true, color.RGBA{148, 163, 184, 255}); err != nil {
			return err
		}
	}
	if title != "" {
		if err := c.text(title, w/2, 28, 14, true, color.RGBA{51, 65, 85, 255}); err != nil {
			return err
		}
	}
	return nil
}

// text draws s centred on (x, y).
func (c *canvas) text(s string, x, y, size float64, bold bool, col color.Color) error {
	f, err := c.faces.get(size, bold)
	if err != nil {
		return err
	}
	m := f.Metrics()
	width := font.MeasureString(f, s)
	baseline := y + float64(m.Ascent-m.Descent)/64/2

	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(col),
		Face: f,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x*64) - width/2,
			Y: fixed.Int26_6(baseline * 64),
		},
	}
	d.DrawString(s)
	return nil
}

// hatch is an unbounded source image of diagonal stripes, half of each
// period coloured.
type hatch struct {
	c      color.RGBA
	period int
}

func (h hatch) ColorModel() color.Model { return color.RGBAModel }

func (h hatch) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (h hatch) At(x, y int) color.Color {
	if ((x+y)%h.period+h.period)%h.period < h.period/2 {
		return h.c
	}
	return color.Transparent
}
