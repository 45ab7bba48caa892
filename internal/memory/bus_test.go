package memory

import "testing"

func makeLoROM(size int) []uint8 {
	data := make([]uint8, size)
	header := 0x7FC0
	copy(data[header:], []byte("TEST ROM           "))
	data[header+0x15] = 0x20 // LoROM, slow
	data[header+0x3C] = 0x00
	data[header+0x3D] = 0x80 // reset vector -> $8000
	return data
}

func TestBusWRAMMirror(t *testing.T) {
	b := NewBus(NewCartridge())
	b.Write8(0x00, 0x0100, 0x42)
	if got := b.Read8(0x00, 0x0100); got != 0x42 {
		t.Fatalf("bank 0 low RAM: got %#x want 0x42", got)
	}
	if got := b.Read8(0x7E, 0x0100); got != 0x42 {
		t.Fatalf("WRAM bank $7E should mirror bank 0 low RAM: got %#x", got)
	}
}

func TestBusWRAMPortAutoIncrement(t *testing.T) {
	b := NewBus(NewCartridge())
	b.Write8(0x00, 0x2181, 0x00)
	b.Write8(0x00, 0x2182, 0x01)
	b.Write8(0x00, 0x2183, 0x00)
	b.Write8(0x00, 0x2180, 0xAB)
	b.Write8(0x00, 0x2180, 0xCD)
	if got := b.WRAM[0x0100]; got != 0xAB {
		t.Fatalf("WRAM port byte 0: got %#x want 0xAB", got)
	}
	if got := b.WRAM[0x0101]; got != 0xCD {
		t.Fatalf("WRAM port byte 1 after autoincrement: got %#x want 0xCD", got)
	}
}

func TestBusLoROMMapping(t *testing.T) {
	c := NewCartridge()
	data := makeLoROM(0x80000)
	data[0] = 0x11
	data[0x8000] = 0x22
	if err := c.LoadROM(data); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	b := NewBus(c)
	if got := b.Read8(0x00, 0x8000); got != 0x11 {
		t.Fatalf("bank 0 offset 0x8000: got %#x want 0x11", got)
	}
	if got := b.Read8(0x41, 0x8000); got != 0x22 {
		t.Fatalf("bank 0x41 offset 0x8000 (second 32K half): got %#x want 0x22", got)
	}
}

func TestBusDividerRegisters(t *testing.T) {
	b := NewBus(NewCartridge())
	b.Write8(0x00, 0x4204, 100) // WRDIVL
	b.Write8(0x00, 0x4205, 0)   // WRDIVH
	b.Write8(0x00, 0x4206, 7)   // WRDIVB triggers divide
	if got := b.Read8(0x00, 0x4214); got != 14 {
		t.Fatalf("RDDIVL: got %d want 14", got)
	}
	if got := b.Read8(0x00, 0x4216); got != 2 {
		t.Fatalf("RDMPYL (remainder): got %d want 2", got)
	}
}

func TestBusMultiplyRegisters(t *testing.T) {
	b := NewBus(NewCartridge())
	b.Write8(0x00, 0x4202, 12)
	b.Write8(0x00, 0x4203, 11) // triggers multiply
	if got := uint16(b.Read8(0x00, 0x4216)) | uint16(b.Read8(0x00, 0x4217))<<8; got != 132 {
		t.Fatalf("product: got %d want 132", got)
	}
}

func TestBusGeneralPurposeDMA(t *testing.T) {
	b := NewBus(NewCartridge())
	for i := 0; i < 4; i++ {
		b.WRAM[i] = uint8(0x10 + i)
	}
	b.DMA[0].Params = 0x00 // CPU->PPU, 1 register
	b.DMA[0].DestAddr = 0x04
	b.DMA[0].SrcAddrLo = 0x0000
	b.DMA[0].SrcBank = 0x7E
	b.DMA[0].Size = 4
	b.Write8(0x00, 0x420B, 0x01) // strobe channel 0

	if b.MDMAEN != 0 {
		t.Fatalf("MDMAEN should clear after transfer")
	}
}
