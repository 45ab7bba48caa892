// Package render implements the headless object/sprite render service:
// it injects a known-good game state into a running emulator core, jumps
// the CPU into the ROM's own drawing handler for a given entity, then
// extracts the rendered pixels from the PPU. This is how an editor turns
// an object or sprite ID into a bitmap without reimplementing the ROM's
// drawing code.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/jsummers/gobmp"
	"github.com/nfnt/resize"

	"nitro-core-dx/internal/ppu"
	"nitro-core-dx/internal/snes"
)

// Mode selects how a request is rendered.
type Mode uint8

const (
	// Emulated drives the ROM's own handler through the CPU/PPU, the
	// only mode this module implements.
	Emulated Mode = iota
	// Static would draw from pre-decoded room/object data without
	// running any CPU code. Building that decoder is explicitly out of
	// scope (it's the "game-domain data decoder" collaborator) so this
	// mode is carried as a documented no-op.
	Static
	// Hybrid would use Static for dungeon objects and Emulated for
	// sprites. Same story as Static: named and routed, not implemented.
	Hybrid
)

func (m Mode) String() string {
	switch m {
	case Emulated:
		return "emulated"
	case Static:
		return "static"
	case Hybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ErrStaticRenderingUnavailable is returned by any request routed to
// Static or Hybrid mode. Callers that hit it should fall back to
// whatever non-emulated drawing path they have, per the HandlerTimeout
// recovery contract this module shares.
var ErrStaticRenderingUnavailable = errors.New("render: static rendering is not implemented by this core")

// ErrNotInitialized is returned when Render is called before a ROM has
// been loaded into the underlying emulator.
var ErrNotInitialized = errors.New("render: service has no ROM loaded")

// ErrHandlerTimeout is returned when a ROM handler runs past its opcode
// budget without hitting the STP trap.
var ErrHandlerTimeout = errors.New("render: handler execution timeout")

// ErrObjectNotFound is returned when an object id's handler table entry
// is zero (the ROM has no drawing routine registered for it).
var ErrObjectNotFound = errors.New("render: object has no drawing routine")

// TargetType names what kind of entity a Request asks to render.
type TargetType uint8

const (
	DungeonObject TargetType = iota
	Sprite
	FullRoom
)

// Request describes one render operation. Graphics and Palette carry
// already-decoded tile/color data for the room or sprite in question —
// decoding those out of ROM-specific room/sprite tables is a
// game-domain concern this module deliberately doesn't own; callers
// that need BG/Link the ALTTP-specific edit experience supply the bytes.
type Request struct {
	Type TargetType

	ObjectID int // object id (0-0xFFF) or sprite id (0-0xFF)
	X, Y     int // tile position (0-63)
	Size     int // size parameter for scalable objects

	RoomID int // context id used for the state cache key and WRAM injection

	// Graphics is 4bpp SNES-planar tile data loaded into VRAM starting
	// at word 0. Palette is CGRAM colors (BGR555 words) loaded starting
	// at color index 0. Both nil means "use whatever the currently
	// loaded state already has".
	Graphics []uint16
	Palette  []uint16

	OutputWidth  int
	OutputHeight int
}

// Result is the outcome of a Render call.
type Result struct {
	Success bool
	Error   string

	RGBA   []byte // RGBA8888, Width*Height*4 bytes
	Width  int
	Height int

	CyclesExecuted     int
	HandlerAddress     uint16
	UsedStaticFallback bool
}

// EncodeBMP writes the result's RGBA pixels out as a BMP image.
func (r Result) EncodeBMP() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := (y*r.Width + x) * 4
			img.SetRGBA(x, y, color.RGBA{R: r.RGBA[i], G: r.RGBA[i+1], B: r.RGBA[i+2], A: r.RGBA[i+3]})
		}
	}

	var buf bytes.Buffer
	if err := gobmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encoding bmp: %w", err)
	}
	return buf.Bytes(), nil
}

// Upscale returns the result's pixels nearest-neighbour scaled by
// factor (2 or 4 are the expected values), ready to hand to an editor's
// higher-resolution canvas.
func (r Result) Upscale(factor uint) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.RGBA)
	scaled := resize.Resize(uint(r.Width)*factor, uint(r.Height)*factor, img, resize.NearestNeighbor)
	out := image.NewRGBA(scaled.Bounds())
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			out.Set(x, y, scaled.At(x, y))
		}
	}
	return out
}

// Service is the headless render service: a single emulator core plus a
// cache of baseline save states keyed by room/area context.
type Service struct {
	emu    *snes.Emulator
	mode   Mode
	states *StateManager
}

// NewService wraps an already-constructed emulator. The caller is
// responsible for loading a ROM into it before calling Render.
func NewService(emu *snes.Emulator) *Service {
	return &Service{emu: emu, mode: Emulated, states: NewStateManager()}
}

// SetMode changes how subsequent Render calls are dispatched.
func (s *Service) SetMode(m Mode) { s.mode = m }

// Mode returns the currently configured render mode.
func (s *Service) Mode() Mode { return s.mode }

// States exposes the service's save-state cache for callers that want
// to pre-warm it (see StateManager.Put) or inspect cached metadata.
func (s *Service) States() *StateManager { return s.states }

// Render dispatches a single request to the handler for its TargetType.
func (s *Service) Render(req Request) (Result, error) {
	if !s.emu.Cartridge.HasROM() {
		return Result{}, ErrNotInitialized
	}

	switch req.Type {
	case DungeonObject:
		if s.mode != Emulated {
			return Result{UsedStaticFallback: true}, ErrStaticRenderingUnavailable
		}
		return s.renderDungeonObject(req)
	case Sprite:
		return Result{}, fmt.Errorf("render: sprite rendering not yet implemented")
	case FullRoom:
		return Result{}, fmt.Errorf("render: full room rendering not yet implemented")
	default:
		return Result{}, fmt.Errorf("render: unknown target type %d", req.Type)
	}
}

// RenderBatch renders every request independently, collecting errors
// into each Result rather than aborting the batch.
func (s *Service) RenderBatch(reqs []Request) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		result, err := s.Render(req)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
		}
		results[i] = result
	}
	return results
}

// extractPixelsFromPPU converts the PPU's packed 0x00RRGGBB framebuffer
// into RGBA8888, opaque throughout (the PPU has no alpha channel).
func extractPixelsFromPPU(e *snes.Emulator) []byte {
	buffer := e.GetOutputBuffer()
	rgba := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	for i, px := range buffer {
		rgba[i*4+0] = byte(px >> 16)
		rgba[i*4+1] = byte(px >> 8)
		rgba[i*4+2] = byte(px)
		rgba[i*4+3] = 0xff
	}
	return rgba
}

// renderPPUFrame runs exactly one full PPU frame (all scanlines plus
// vblank) so the framebuffer reflects whatever the handler just drew
// into VRAM/CGRAM/OAM.
func renderPPUFrame(e *snes.Emulator) error {
	return e.PPU.StepPPU(uint64(ppu.DotsPerScanline * ppu.ScanlinesPerFrame))
}
