package imagegen

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/models"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

var testAxis = forecast.AxisRange{Min: -1, Max: 35}

func testScene() *card.Scene {
	return card.EncodeRow(models.WeatherRecord{
		CreationDate:         "2024-01-01",
		ProgDate:             "2024-01-03",
		TempMin:              nf(2),
		TempMax:              nf(8),
		WindAvg:              nf(4),
		WindMax:              nf(9),
		WindDirAvg:           nf(90),
		SunshinePercentTotal: nf(50),
		SunshineTotalH:       nf(3.2),
		WeatherType:          "clear",
	}, testAxis)
}

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func pixel(img image.Image, x, y float64) color.RGBA {
	r, g, b, a := img.At(int(x), int(y)).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRender(t *testing.T) {
	s := testScene()
	data, err := NewRenderer(nil).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, data)

	if b := img.Bounds(); b.Dx() != card.CanvasWidth || b.Dy() != card.CanvasHeight {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), card.CanvasWidth, card.CanvasHeight)
	}

	// Inside the sunshine bar, clear of its centred label.
	tr := newTransform(s)
	x, y := tr.px(card.Point{X: 1 + s.Sunshine.Width*0.4, Y: s.Sunshine.Base + s.Sunshine.Height/2})
	want := color.RGBA{255, 255, 127, 255}
	if got := pixel(img, x, y); got != want {
		t.Errorf("bar pixel = %v, want %v", got, want)
	}

	// The top-left corner is background.
	if got := pixel(img, 2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, want white", got)
	}
}

func TestRender_SolidArrow(t *testing.T) {
	s := testScene()
	s.Arrow.Fill = card.FillSolid
	s.Arrow.FillColor = card.Black

	data, err := NewRenderer(nil).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, data)

	// Centroid of the arrow triangle.
	tr := newTransform(s)
	var cx, cy float64
	for _, p := range s.Arrow.Points[:3] {
		x, y := tr.px(p)
		cx += x / 3
		cy += y / 3
	}
	if got := pixel(img, cx, cy); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("arrow centroid = %v, want black", got)
	}
}

func TestRender_NilScene(t *testing.T) {
	if _, err := NewRenderer(nil).Render(context.Background(), nil); err == nil {
		t.Error("expected error for nil scene")
	}
}

type staticIcons struct {
	img image.Image
	err error
}

func (s staticIcons) Icon(ctx context.Context, key string) (image.Image, error) {
	return s.img, s.err
}

func TestRender_Icon(t *testing.T) {
	s := testScene()
	red := decode(t, solidPNG(t, color.RGBA{255, 0, 0, 255}))

	data, err := NewRenderer(staticIcons{img: red}).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, data)

	x, y := newTransform(s).px(s.Icon.Center)
	if got := pixel(img, x, y); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("icon centre = %v, want red", got)
	}

	// Icon failures are logged and skipped.
	if _, err := NewRenderer(staticIcons{err: errors.New("boom")}).Render(context.Background(), s); err != nil {
		t.Errorf("Render with failing icons: %v", err)
	}
}

func TestSceneKey(t *testing.T) {
	a, err := SceneKey(testScene())
	if err != nil {
		t.Fatalf("SceneKey: %v", err)
	}
	b, _ := SceneKey(testScene())
	if a != b {
		t.Errorf("identical scenes produced %s and %s", a, b)
	}

	other := testScene()
	other.Title = "2024-01-02"
	c, _ := SceneKey(other)
	if a == c {
		t.Error("different scenes share a key")
	}
	if len(a) != 64 {
		t.Errorf("len(key) = %d, want 64 hex chars", len(a))
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 0)

	if _, ok := c.Get("abc"); ok {
		t.Error("expected miss on empty cache")
	}
	if err := c.Set("abc", []byte("png")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok := c.Get("abc")
	if !ok || string(data) != "png" {
		t.Errorf("Get = %q, %v", data, ok)
	}
	if n := c.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}

	stale := NewCache(dir, time.Minute)
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "card_abc.png"), old, old); err != nil {
		t.Fatal(err)
	}
	if _, ok := stale.Get("abc"); ok {
		t.Error("expected stale entry to miss")
	}
	if _, ok := c.Get("abc"); !ok {
		t.Error("cache without max age should still hit")
	}
}

type fakeGenerator struct {
	data  []byte
	calls int
}

func (g *fakeGenerator) Generate(ctx context.Context, t forecast.WeatherType) ([]byte, error) {
	g.calls++
	return g.data, nil
}

func TestIconSet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "w_clear.png"), solidPNG(t, color.White), 0644); err != nil {
		t.Fatal(err)
	}
	icons := NewIconSet(dir, nil)
	ctx := context.Background()

	img, err := icons.Icon(ctx, "clear")
	if err != nil || img == nil {
		t.Fatalf("Icon(clear) = %v, %v", img, err)
	}

	for _, key := range []string{"rain", "", "../clear", "a/b"} {
		img, err := icons.Icon(ctx, key)
		if err != nil || img != nil {
			t.Errorf("Icon(%q) = %v, %v; want nil, nil", key, img, err)
		}
	}
}

func TestIconSet_GeneratesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "icons")
	gen := &fakeGenerator{data: solidPNG(t, color.RGBA{0, 0, 255, 255})}
	icons := NewIconSet(dir, gen)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		img, err := icons.Icon(ctx, "snow")
		if err != nil || img == nil {
			t.Fatalf("Icon(snow) = %v, %v", img, err)
		}
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, "w_snow.png")); err != nil {
		t.Errorf("generated icon not stored: %v", err)
	}
}
