package main

import (
	"flag"
	"fmt"
	"os"

	"nitro-core-dx/internal/render"
	"nitro-core-dx/internal/snes"
)

func main() {
	romPath := flag.String("rom", "", "Path to ROM file")
	objectID := flag.Int("object", -1, "Dungeon object id to render (0-0x2FF)")
	x := flag.Int("x", 0, "Object tile X position (0-63)")
	y := flag.Int("y", 0, "Object tile Y position (0-63)")
	size := flag.Int("size", 0, "Object size parameter")
	outPath := flag.String("out", "", "Path to write the rendered .bmp")
	upscale := flag.Uint("upscale", 0, "Nearest-neighbour upscale factor (0 = off)")
	flag.Parse()

	if *romPath == "" || *objectID < 0 || *outPath == "" {
		fmt.Println("Usage: render -rom <path-to-rom> -object <id> -out <path.bmp>")
		fmt.Println("  -rom <path>     Path to ROM file (.sfc/.smc)")
		fmt.Println("  -object <id>    Dungeon object id to render")
		fmt.Println("  -x, -y <tile>   Tile position within the room (default 0,0)")
		fmt.Println("  -size <n>       Object size parameter (default 0)")
		fmt.Println("  -out <path>     Output .bmp path")
		fmt.Println("  -upscale <n>    Nearest-neighbour upscale factor")
		os.Exit(1)
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ROM file: %v\n", err)
		os.Exit(1)
	}

	emu := snes.NewEmulator()
	if err := emu.LoadROM(romData); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}
	emu.Start()
	emu.SetFrameLimit(false)

	svc := render.NewService(emu)
	result, err := svc.Render(render.Request{
		Type:     render.DungeonObject,
		ObjectID: *objectID,
		X:        *x,
		Y:        *y,
		Size:     *size,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering object %d: %v\n", *objectID, err)
		os.Exit(1)
	}

	fmt.Printf("Rendered object %d: handler at $%04X, %d opcodes executed\n",
		*objectID, result.HandlerAddress, result.CyclesExecuted)

	bmp, err := result.EncodeBMP()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding bmp: %v\n", err)
		os.Exit(1)
	}

	if *upscale > 1 {
		img := result.Upscale(*upscale)
		upscaled := render.Result{RGBA: img.Pix, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
		bmp, err = upscaled.EncodeBMP()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding upscaled bmp: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*outPath, bmp, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)
}
