//go:build !libretro && !ios

// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/echip8/emu"
)

// Emulator wraps emu.Emulator with Ebiten-specific rendering
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Offscreen buffer at native resolution
	drawOpts  ebiten.DrawImageOptions // Reused every frame
}

// NewEmulator creates a new emulator instance with Ebiten rendering.
func NewEmulator(rom []byte, region emu.Region, cfg emu.Config) (*Emulator, error) {
	base, err := emu.NewEmulatorWithConfig(rom, region, cfg)
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: &base}, nil
}

// DrawToScreen renders the display to the given screen, scaled to fit
// with the aspect ratio preserved and centered.
func (e *Emulator) DrawToScreen(screen *ebiten.Image) {
	img := e.FramebufferImage()
	if img == nil {
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(emu.ScreenWidth)
	nativeH := float64(emu.ScreenHeight)

	scale := float64(screenW) / nativeW
	if s := float64(screenH) / nativeH; s < scale {
		scale = s
	}

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(img, &e.drawOpts)
}

// Layout returns the window size so scaling is handled in DrawToScreen.
func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// FramebufferImage returns the display as an ebiten.Image at native resolution.
func (e *Emulator) FramebufferImage() *ebiten.Image {
	if e.offscreen == nil {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight)
	}

	fb := e.GetFramebuffer()
	required := e.GetFramebufferStride() * emu.ScreenHeight
	if len(fb) < required {
		return nil
	}
	e.offscreen.WritePixels(fb[:required])
	return e.offscreen
}
