package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/certchain-backend/internal/domain/certification"
	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type Config struct {
	Width  int
	Height int
	Scale  float64
	// FontPath, when set, replaces the bundled Go fonts for body text.
	FontPath string
}

// Compositor draws the certificate natively with gg. It renders the
// document's plain-text lines rather than its markup, so it needs no
// browser and works in minimal containers.
type Compositor struct {
	cfg     Config
	log     *logger.Logger
	regular *truetype.Font
	bold    *truetype.Font
}

var (
	bgTop    = color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	bgBottom = color.NRGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	border   = color.NRGBA{R: 0x33, G: 0x41, B: 0x55, A: 0xff}
	fuchsia  = color.NRGBA{R: 0xd9, G: 0x46, B: 0xef, A: 0xff}
	cyan     = color.NRGBA{R: 0x22, G: 0xd3, B: 0xee, A: 0xff}
	emerald  = color.NRGBA{R: 0x6e, G: 0xe7, B: 0xb7, A: 0xff}
	textHi   = color.NRGBA{R: 0xf1, G: 0xf5, B: 0xf9, A: 0xff}
	textMid  = color.NRGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff}
	textLow  = color.NRGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
)

func New(cfg Config, log *logger.Logger) (*Compositor, error) {
	if cfg.Width <= 0 {
		cfg.Width = 1600
	}
	if cfg.Height <= 0 {
		cfg.Height = 900
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	regularTTF := goregular.TTF
	if p := strings.TrimSpace(cfg.FontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		regularTTF = b
	}
	regular, err := truetype.Parse(regularTTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold TTF: %w", err)
	}
	return &Compositor{cfg: cfg, log: log.Named("compositor.raster"), regular: regular, bold: bold}, nil
}

func (c *Compositor) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size * c.cfg.Scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (c *Compositor) Composite(ctx context.Context, doc certification.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, faults.Classify(faults.CodeRenderingUnavailable, faults.OpCompositorRender, err)
	}
	s := c.cfg.Scale
	w := float64(c.cfg.Width) * s
	h := float64(c.cfg.Height) * s
	dc := gg.NewContext(int(w), int(h))

	grad := gg.NewLinearGradient(0, 0, w, h)
	grad.AddColorStop(0, bgTop)
	grad.AddColorStop(0.5, bgBottom)
	grad.AddColorStop(1, bgTop)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// card
	pad := 80 * s
	cardX, cardY, cardW, cardH := pad*2, pad, w-pad*4, h-pad*2
	dc.SetColor(color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xb0})
	dc.DrawRoundedRectangle(cardX, cardY, cardW, cardH, 16*s)
	dc.Fill()
	dc.SetColor(border)
	dc.SetLineWidth(1.5 * s)
	dc.DrawRoundedRectangle(cardX, cardY, cardW, cardH, 16*s)
	dc.Stroke()

	inner := 48 * s
	left := cardX + inner
	top := cardY + inner

	// logo tile
	tile := gg.NewLinearGradient(left, top, left+48*s, top+48*s)
	tile.AddColorStop(0, fuchsia)
	tile.AddColorStop(1, cyan)
	dc.SetFillStyle(tile)
	dc.DrawRoundedRectangle(left, top, 48*s, 48*s, 8*s)
	dc.Fill()

	dc.SetFontFace(c.face(c.regular, 12))
	dc.SetColor(textLow)
	dc.DrawString(strings.ToUpper(doc.Lines.Eyebrow), left+60*s, top+18*s)
	dc.SetFontFace(c.face(c.bold, 16))
	dc.SetColor(textMid)
	dc.DrawString(doc.Lines.Heading, left+60*s, top+42*s)

	dc.SetFontFace(c.face(c.regular, 12))
	bw, _ := dc.MeasureString(doc.Lines.Badge)
	bx := cardX + cardW - inner - bw - 24*s
	dc.SetColor(color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0x26})
	dc.DrawRoundedRectangle(bx, top+8*s, bw+24*s, 28*s, 14*s)
	dc.Fill()
	dc.SetColor(emerald)
	dc.DrawStringAnchored(doc.Lines.Badge, bx+(bw+24*s)/2, top+22*s, 0.5, 0.35)

	cx := w / 2
	dc.SetFontFace(c.face(c.bold, 40))
	dc.SetColor(textHi)
	dc.DrawStringAnchored(doc.Lines.Headline, cx, cardY+cardH*0.42, 0.5, 0.5)

	dc.SetFontFace(c.face(c.regular, 22))
	dc.SetColor(textMid)
	dc.DrawStringAnchored(doc.Lines.TopicLine, cx, cardY+cardH*0.54, 0.5, 0.5)

	dc.SetFontFace(c.face(c.regular, 14))
	dc.SetColor(textLow)
	dc.DrawStringAnchored(doc.Lines.DateLine, cx, cardY+cardH*0.63, 0.5, 0.5)

	sigY := cardY + cardH - inner - 40*s
	dc.SetColor(border)
	dc.SetLineWidth(1 * s)
	dc.DrawLine(left, sigY, cardX+cardW-inner, sigY)
	dc.Stroke()
	dc.SetFontFace(c.face(c.bold, 14))
	dc.SetColor(textMid)
	dc.DrawString(doc.Lines.SignatureName, left, sigY+22*s)
	dc.SetFontFace(c.face(c.regular, 12))
	dc.SetColor(textLow)
	dc.DrawString(doc.Lines.SignatureTitle, left, sigY+40*s)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, faults.New(faults.CodeRenderingUnavailable, faults.OpCompositorCapture, "png encode failed", err)
	}
	return buf.Bytes(), nil
}
