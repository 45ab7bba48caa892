package render

import (
	"fmt"

	"nitro-core-dx/internal/input"
	"nitro-core-dx/internal/savestate"
	"nitro-core-dx/internal/snes"
)

// WRAM offsets the boot sequence pokes directly, bank $7E. These mirror
// the handful of well-known state variables a TAS or save-state tool
// uses to warp past menus instead of actually navigating them.
const (
	wramModule       = 0x0010 // game mode: 0x06 dungeon, 0x07/0x09 overworld/dungeon running
	wramSubmodule    = 0x0011
	wramIndoorFlag   = 0x001B // 1 = currently indoors
	wramRoomIDLo     = 0x00A0
	wramRoomIDHi     = 0x00A1
	wramLinkXLo      = 0x0020
	wramLinkXHi      = 0x0021
	wramLinkYLo      = 0x0022
	wramLinkYHi      = 0x0023

	moduleDungeon   = 0x06
	moduleOverworld = 0x09
	moduleRunning1  = 0x07
	moduleRunning2  = 0x09
	submoduleIdle   = 0x00

	maxBootFrames = 3600 // 60 seconds at 60fps before giving up
)

// pressButton holds a button down for n frames, then releases it. Every
// intervening frame is advanced with RunFrame so the ROM's own input
// poll sees it.
func pressButton(e *snes.Emulator, button uint8, frames int) error {
	e.Input.SetButton(button, true)
	for i := 0; i < frames; i++ {
		if err := e.RunFrame(); err != nil {
			return err
		}
	}
	e.Input.SetButton(button, false)
	return nil
}

// waitFrames advances the emulator n frames with no input held.
func waitFrames(e *snes.Emulator, frames int) error {
	for i := 0; i < frames; i++ {
		if err := e.RunFrame(); err != nil {
			return err
		}
	}
	return nil
}

// waitForModule runs frames until WRAM's module byte reaches target (or
// any of targets), up to maxBootFrames. Returns an error if the budget
// runs out first.
func waitForModule(e *snes.Emulator, targets ...uint8) error {
	for i := 0; i < maxBootFrames; i++ {
		module := e.Bus.Read8(0x7E, wramModule)
		for _, t := range targets {
			if module == t {
				return nil
			}
		}
		if err := e.RunFrame(); err != nil {
			return err
		}
	}
	return fmt.Errorf("render: timed out waiting for module %v", targets)
}

// BootToTitleScreen runs frames from power-on through the attract
// sequence and presses Start to reach the file select screen.
func BootToTitleScreen(e *snes.Emulator) error {
	if err := waitFrames(e, 180); err != nil {
		return err
	}
	return pressButton(e, input.ButtonStart, 4)
}

// NavigateToFileSelect presses through the file select screen onto an
// empty save slot.
func NavigateToFileSelect(e *snes.Emulator) error {
	if err := waitFrames(e, 60); err != nil {
		return err
	}
	return pressButton(e, input.ButtonA, 4)
}

// StartNewGame presses through name entry with whatever default name
// the ROM proposes, then waits for the overworld intro to finish
// loading into the dungeon/overworld module.
func StartNewGame(e *snes.Emulator) error {
	if err := pressButton(e, input.ButtonStart, 4); err != nil {
		return err
	}
	if err := waitFrames(e, 30); err != nil {
		return err
	}
	return waitForModule(e, moduleRunning1, moduleRunning2)
}

// NavigateToRoom warps directly to a room by writing its id and Link's
// position into WRAM rather than walking there, then runs frames until
// the room has finished loading (submodule returns to idle).
func NavigateToRoom(e *snes.Emulator, roomID int, indoor bool, linkX, linkY uint16) error {
	e.Bus.Write8(0x7E, wramRoomIDLo, uint8(roomID))
	e.Bus.Write8(0x7E, wramRoomIDHi, uint8(roomID>>8))

	if indoor {
		e.Bus.Write8(0x7E, wramIndoorFlag, 1)
		e.Bus.Write8(0x7E, wramModule, moduleDungeon)
	} else {
		e.Bus.Write8(0x7E, wramIndoorFlag, 0)
	}

	e.Bus.Write8(0x7E, wramLinkXLo, uint8(linkX))
	e.Bus.Write8(0x7E, wramLinkXHi, uint8(linkX>>8))
	e.Bus.Write8(0x7E, wramLinkYLo, uint8(linkY))
	e.Bus.Write8(0x7E, wramLinkYHi, uint8(linkY>>8))

	if err := waitFrames(e, 4); err != nil {
		return err
	}
	if err := waitForModule(e, moduleRunning1, moduleRunning2); err != nil {
		return err
	}
	for i := 0; e.Bus.Read8(0x7E, wramSubmodule) != submoduleIdle; i++ {
		if i >= maxBootFrames {
			return fmt.Errorf("render: timed out waiting for submodule %#x", submoduleIdle)
		}
		if err := e.RunFrame(); err != nil {
			return err
		}
	}
	return nil
}

// GenerateRoomState runs the full boot-to-room sequence for roomID and
// caches the resulting save state under savestate.Checkpoint, so future
// renders targeting the same room can restore it instead of replaying
// the boot sequence.
func (s *Service) GenerateRoomState(roomID int, indoor bool, linkX, linkY uint16) error {
	if dump, meta, ok := s.states.Get(savestate.Checkpoint, roomID); ok {
		return s.emu.LoadState(dump, meta)
	}

	if !s.emu.Running {
		s.emu.Start()
	}

	if err := BootToTitleScreen(s.emu); err != nil {
		return fmt.Errorf("render: booting to title: %w", err)
	}
	if err := NavigateToFileSelect(s.emu); err != nil {
		return fmt.Errorf("render: navigating to file select: %w", err)
	}
	if err := StartNewGame(s.emu); err != nil {
		return fmt.Errorf("render: starting new game: %w", err)
	}
	if err := NavigateToRoom(s.emu, roomID, indoor, linkX, linkY); err != nil {
		return fmt.Errorf("render: navigating to room %d: %w", roomID, err)
	}

	dump, meta := s.emu.SaveState(savestate.Checkpoint, fmt.Sprintf("room %d baseline", roomID))
	s.states.Put(savestate.Checkpoint, roomID, dump, meta)
	return nil
}
