package emu

import "image"

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Framebuffer is the 64x32 monochrome display. Each pixel is 0 or 1.
type Framebuffer struct {
	pix [ScreenHeight][ScreenWidth]uint8
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	f.pix = [ScreenHeight][ScreenWidth]uint8{}
}

// Pixel returns the pixel at (x, y), wrapping both coordinates.
func (f *Framebuffer) Pixel(x, y int) uint8 {
	return f.pix[wrap(y, ScreenHeight)][wrap(x, ScreenWidth)]
}

// Rows returns a copy of the display contents.
func (f *Framebuffer) Rows() [ScreenHeight][ScreenWidth]uint8 {
	return f.pix
}

// Lit returns the number of pixels that are on.
func (f *Framebuffer) Lit() int {
	n := 0
	for y := range f.pix {
		for _, p := range f.pix[y] {
			n += int(p)
		}
	}
	return n
}

// Draw XORs an 8 pixel wide sprite onto the display at (x, y). Every pixel
// wraps around independently. It reports whether any lit pixel was turned off.
func (f *Framebuffer) Draw(x, y int, sprite []uint8) bool {
	collision := false
	for row, line := range sprite {
		sy := wrap(y+row, ScreenHeight)
		for bit := 0; bit < 8; bit++ {
			p := (line >> (7 - bit)) & 1
			if p == 0 {
				continue
			}
			sx := wrap(x+bit, ScreenWidth)
			if f.pix[sy][sx] == 1 {
				collision = true
			}
			f.pix[sy][sx] ^= 1
		}
	}
	return collision
}

// Render writes the display into dst, one RGBA pixel per display pixel.
// dst must be ScreenWidth x ScreenHeight.
func (f *Framebuffer) Render(dst *image.RGBA, on, off [4]uint8) {
	for y := 0; y < ScreenHeight; y++ {
		rowOff := y * dst.Stride
		for x := 0; x < ScreenWidth; x++ {
			c := off
			if f.pix[y][x] != 0 {
				c = on
			}
			copy(dst.Pix[rowOff+x*4:rowOff+x*4+4], c[:])
		}
	}
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
