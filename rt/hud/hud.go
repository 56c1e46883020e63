// Package hud renders the debug text overlay (FPS, particle count, ring
// overflow count) for the reference renderer, adapted from
// the teacher's glyph-atlas text renderer (voxelrt/rt/core/text_renderer.go).
package hud

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/sandforge/sandcore"
)

type glyphInfo struct {
	uvMin, uvMax [2]float32
	size, off    [2]float32
	adv          float32
}

// TextVertex is one corner of a glyph quad, ready for upload to a text
// pipeline the way the teacher's BuildVertices output feeds its own.
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// Overlay builds glyph-atlas vertices for the stats line shown over the
// reference renderer.
type Overlay struct {
	atlas  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

const atlasSize = 512

// NewOverlay loads fontPath at fontSize and bakes the printable ASCII
// range into a single atlas, following the teacher's NewTextRenderer.
func NewOverlay(fontPath string, fontSize float64) (*Overlay, error) {
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: fontSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y, rowHeight := 2, 2, 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}
		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)
		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0,
		}
		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &Overlay{atlas: atlas, glyphs: glyphs, face: face}, nil
}

// AtlasImage exposes the baked glyph atlas for GPU texture upload.
func (o *Overlay) AtlasImage() *image.Alpha { return o.atlas }

// StatsLine formats one FrameStats into the HUD's standard overlay text.
func StatsLine(s sandcore.FrameStats, state sandcore.LifecycleState) string {
	return fmt.Sprintf(
		"fps %.0f  particles %d  steps/frame %d  overflow %d  mem %.1fMB  %s",
		s.FPS, s.ParticleCount, s.StepsPerFrame, s.RingOverflows,
		float64(s.AllocatedBytes)/(1<<20), state,
	)
}

// BuildVertices lays out text at a normalized screen position, mirroring
// the teacher's per-glyph quad construction.
func (o *Overlay) BuildVertices(text string, posX, posY, scale float32, color [4]float32, screenW, screenH int) []TextVertex {
	verts := make([]TextVertex, 0, len(text)*6)
	sw, sh := float32(screenW), float32(screenH)
	metrics := o.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())

	px, py := posX, posY+ascent*scale
	for _, r := range text {
		if r == '\n' {
			px = posX
			py += float32(metrics.Height.Ceil()) * scale
			continue
		}
		g, ok := o.glyphs[r]
		if !ok {
			continue
		}
		x0 := (px+g.off[0]*scale)/sw*2 - 1
		y0 := 1 - (py+g.off[1]*scale)/sh*2
		x1 := (px+(g.off[0]+g.size[0])*scale)/sw*2 - 1
		y1 := 1 - (py+(g.off[1]+g.size[1])*scale)/sh*2

		verts = append(verts,
			TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
		)
		px += g.adv * scale
	}
	return verts
}
