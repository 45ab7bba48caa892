package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/jsummers/gobmp"

	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/savestate"
	"nitro-core-dx/internal/snes"
)

func main() {
	romPath := flag.String("rom", "", "Path to ROM file")
	unlimited := flag.Bool("unlimited", false, "Run at unlimited speed (no frame limit)")
	frames := flag.Int("frames", 60, "Number of frames to run before exiting")
	enableLogging := flag.Bool("log", false, "Enable logging (disabled by default)")
	savePath := flag.String("save-state", "", "Write a save state to this path after running")
	framePath := flag.String("dump-frame", "", "Write the final rendered frame to this .bmp path")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: nitro-core-dx -rom <path-to-rom>")
		fmt.Println("  -rom <path>        Path to ROM file (.sfc/.smc)")
		fmt.Println("  -frames <n>        Number of frames to run (default: 60)")
		fmt.Println("  -unlimited         Run at unlimited speed")
		fmt.Println("  -log               Enable logging (disabled by default)")
		fmt.Println("  -save-state <path> Write a save state after running")
		fmt.Println("  -dump-frame <path> Write the final frame as a .bmp")
		os.Exit(1)
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ROM file: %v\n", err)
		os.Exit(1)
	}

	var emu *snes.Emulator
	if *enableLogging {
		logger := debug.NewLogger(10000)
		logger.SetComponentEnabled(debug.ComponentCPU, true)
		logger.SetComponentEnabled(debug.ComponentPPU, true)
		logger.SetComponentEnabled(debug.ComponentAPU, true)
		logger.SetComponentEnabled(debug.ComponentMemory, true)
		logger.SetComponentEnabled(debug.ComponentInput, true)
		logger.SetComponentEnabled(debug.ComponentSystem, true)
		emu = snes.NewEmulatorWithLogger(logger)
		if emu.CPU != nil && emu.CPU.Log != nil {
			if adapter, ok := emu.CPU.Log.(*cpu.CPULoggerAdapter); ok {
				adapter.SetLevel(cpu.CPULogInstructions)
			}
		}
	} else {
		emu = snes.NewEmulator()
	}

	if err := emu.LoadROM(romData); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	emu.SetFrameLimit(!*unlimited)
	emu.Start()

	fmt.Println("Nitro-Core-DX Emulator")
	fmt.Println("======================")
	fmt.Printf("ROM loaded: %s\n", *romPath)
	fmt.Printf("Frame limit: %v\n", !*unlimited)
	fmt.Printf("Running %d frames headless...\n", *frames)

	for i := 0; i < *frames; i++ {
		if err := emu.RunFrame(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running frame %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Done. %.2f fps, %d CPU cycles/frame\n", emu.GetFPS(), emu.GetCPUCyclesPerFrame())

	if *savePath != "" {
		if err := emu.SaveStateToFile(*savePath, savestate.QuickSave, "cmd/emulator headless run"); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing save state: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Save state written to %s\n", *savePath)
	}

	if *framePath != "" {
		if err := dumpFrame(emu, *framePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing frame: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Frame written to %s\n", *framePath)
	}
}

// dumpFrame packs the PPU's 256x224 output buffer (0x00RRGGBB per pixel)
// into an RGBA image and writes it out as a BMP.
func dumpFrame(emu *snes.Emulator, path string) error {
	buffer := emu.GetOutputBuffer()
	const width, height = 256, 224

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := buffer[y*width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(px >> 16),
				G: uint8(px >> 8),
				B: uint8(px),
				A: 0xff,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer f.Close()

	if err := gobmp.Encode(f, img); err != nil {
		return fmt.Errorf("encoding bmp: %w", err)
	}
	return nil
}
