package snes

import (
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/ppu"
)

// OAMAdapter adapts PPU OAM to the debug.OAMReader interface
type OAMAdapter struct {
	ppu *ppu.PPU
}

// ReadOAM reads a byte from the OAM low table at the given byte offset
// (two bytes per word, low table only; the high table is a separate
// 32-byte region not addressable through this byte-oriented interface).
func (a *OAMAdapter) ReadOAM(offset uint8) uint8 {
	if a.ppu == nil {
		return 0
	}
	word := a.ppu.OAM[offset/2]
	if offset%2 == 0 {
		return uint8(word)
	}
	return uint8(word >> 8)
}

// NewOAMAdapter creates a new OAM adapter
func NewOAMAdapter(ppu *ppu.PPU) debug.OAMReader {
	return &OAMAdapter{ppu: ppu}
}
