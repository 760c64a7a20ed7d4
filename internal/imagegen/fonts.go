package imagegen

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontRegular *opentype.Font
	fontBold    *opentype.Font
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() error {
	fontOnce.Do(func() {
		fontRegular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse Go Regular: %w", fontErr)
			return
		}
		fontBold, fontErr = opentype.Parse(gobold.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse Go Bold: %w", fontErr)
		}
	})
	return fontErr
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache hands out font faces for a single render. Faces keep glyph
// buffers, so they must not be shared between goroutines.
type faceCache map[faceKey]font.Face

func (fc faceCache) get(size float64, bold bool) (font.Face, error) {
	k := faceKey{size, bold}
	if f, ok := fc[k]; ok {
		return f, nil
	}
	src := fontRegular
	if bold {
		src = fontBold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %.0fpt: %w", size, err)
	}
	fc[k] = f
	return f, nil
}

func (fc faceCache) close() {
	for _, f := range fc {
		f.Close()
	}
}
