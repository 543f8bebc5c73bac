//go:build !libretro

// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	bridge "github.com/user-none/echip8/bridge/ebiten"
	"github.com/user-none/echip8/emu"
)

// keyMap binds the 16 hex keys to the left-hand block of an AZERTY
// keyboard. Index is the hex key.
var keyMap = [emu.KeyCount]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyA, ebiten.KeyZ, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyQ, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyW, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

// padMap binds standard gamepad buttons to hex keys. The D-pad steers with
// 2/4/6/8.
var padMap = map[ebiten.StandardGamepadButton]int{
	ebiten.StandardGamepadButtonLeftTop:     0x2,
	ebiten.StandardGamepadButtonLeftBottom:  0x8,
	ebiten.StandardGamepadButtonLeftLeft:    0x4,
	ebiten.StandardGamepadButtonLeftRight:   0x6,
	ebiten.StandardGamepadButtonRightBottom: emu.PadKeyA,
	ebiten.StandardGamepadButtonRightRight:  emu.PadKeyB,
	ebiten.StandardGamepadButtonCenterRight: emu.PadKeyStart,
}

// Runner wraps an emulator for command-line mode.
// It handles input polling (emulator doesn't poll input itself).
// This follows the libretro pattern where the frontend is responsible
// for polling input and passing it to the emulator via SetInput().
type Runner struct {
	emulator *bridge.Emulator
}

// NewRunner creates a new Runner wrapping the given emulator.
func NewRunner(e *bridge.Emulator) *Runner {
	return &Runner{emulator: e}
}

// Close cleans up the runner's resources.
func (r *Runner) Close() {
	r.emulator.Close()
}

// Update implements ebiten.Game. A halted interpreter or the Escape key
// ends the game loop.
func (r *Runner) Update() error {
	if err := r.emulator.Err(); err != nil {
		return err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if !ebiten.IsFocused() {
		return nil
	}

	r.emulator.SetInput(0, pollKeys())
	r.emulator.RunFrame()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.emulator.DrawToScreen(screen)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// pollKeys reads keyboard and gamepad state as a SetInput button mask.
func pollKeys() uint32 {
	var mask uint32
	for i, k := range keyMap {
		if ebiten.IsKeyPressed(k) {
			mask |= 1 << (emu.KeyButtonBase + i)
		}
	}

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for b, key := range padMap {
			if ebiten.IsStandardGamepadButtonPressed(id, b) {
				mask |= 1 << (emu.KeyButtonBase + key)
			}
		}
	}
	return mask
}
