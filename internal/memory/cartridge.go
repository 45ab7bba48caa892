package memory

import (
	"fmt"
	"hash/crc32"
)

// MapMode identifies how a ROM image's banks are laid out in CPU address
// space. LoROM and HiROM are the two mappings ALTTP-era cartridges use;
// ExHiROM extends HiROM to ROMs larger than 4MB.
type MapMode uint8

const (
	MapLoROM MapMode = iota
	MapHiROM
	MapExHiROM
)

func (m MapMode) String() string {
	switch m {
	case MapHiROM:
		return "HiROM"
	case MapExHiROM:
		return "ExHiROM"
	default:
		return "LoROM"
	}
}

const (
	bankSize       = 0x10000
	loromBankBytes = 0x8000
)

// Cartridge holds a loaded ROM image and answers bank/offset reads against
// it according to the detected mapping mode. It never observes writes: a
// real SNES cartridge's mask ROM is read-only from the CPU's perspective
// (write-back carts and coprocessors are out of scope).
type Cartridge struct {
	ROMData []uint8
	ROMSize uint32
	Mode    MapMode

	// Header fields parsed from the internal ROM header, cached for
	// quick access (title trimmed of trailing padding, checksum as
	// stored on the cartridge vs. the checksum we compute from ROMData).
	Title            string
	MakerCode        uint8
	RegionCode       uint8
	StoredChecksum   uint16
	ROMSpeed         uint8
	HeaderOffset     uint32
	ComputedChecksum uint32 // CRC32 of the raw ROM image, used by save states
}

// NewCartridge creates an empty, unloaded cartridge.
func NewCartridge() *Cartridge {
	return &Cartridge{ROMData: make([]uint8, 0)}
}

// LoadROM loads a raw SNES ROM image (with or without a 512-byte copier
// header) and detects its mapping mode from the internal header.
func (c *Cartridge) LoadROM(data []uint8) error {
	if len(data) < 0x8000 {
		return fmt.Errorf("ROM too small: %d bytes", len(data))
	}

	// A 512-byte copier header, if present, is not part of the mapped
	// image and must be stripped before bank math makes sense.
	if len(data)%bankSize == 512 || (len(data)-512)%loromBankBytes == 0 && len(data)%loromBankBytes != 0 {
		data = data[512:]
	}

	mode, headerOffset, err := detectMapMode(data)
	if err != nil {
		return err
	}

	c.ROMData = make([]uint8, len(data))
	copy(c.ROMData, data)
	c.ROMSize = uint32(len(data))
	c.Mode = mode
	c.HeaderOffset = headerOffset
	c.ComputedChecksum = crc32.ChecksumIEEE(c.ROMData)

	title := make([]byte, 21)
	copy(title, data[headerOffset:headerOffset+21])
	c.Title = trimTitle(title)
	c.MakerCode = data[headerOffset+0x1A]
	c.RegionCode = data[headerOffset+0x19]
	c.ROMSpeed = data[headerOffset+0x15]
	c.StoredChecksum = uint16(data[headerOffset+0x1E]) | uint16(data[headerOffset+0x1F])<<8

	return nil
}

func trimTitle(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0x20 || b[end-1] == 0x00) {
		end--
	}
	return string(b[:end])
}

// detectMapMode inspects the three candidate header locations ($7FC0 for
// LoROM, $FFC0 for HiROM, $40FFC0 for ExHiROM) and scores each by the
// plausibility of its reset vector and map-mode byte, the same heuristic
// real-world loaders use when a ROM carries no other metadata.
func detectMapMode(data []uint8) (MapMode, uint32, error) {
	type candidate struct {
		mode   MapMode
		offset uint32
	}
	candidates := []candidate{
		{MapLoROM, 0x7FC0},
		{MapHiROM, 0xFFC0},
		{MapExHiROM, 0x40FFC0},
	}

	best := -1
	var bestMode MapMode
	var bestOffset uint32

	for _, cand := range candidates {
		if uint32(len(data)) < cand.offset+0x40 {
			continue
		}
		header := data[cand.offset : cand.offset+0x40]
		score := scoreHeader(header, cand.mode)
		if score > best {
			best = score
			bestMode = cand.mode
			bestOffset = cand.offset
		}
	}

	if best < 0 {
		return 0, 0, fmt.Errorf("ROM too small to contain a header at any known offset")
	}
	return bestMode, bestOffset, nil
}

// scoreHeader rates how plausible a candidate header looks: the map-mode
// byte should have its low nibble match the mapping being tested, the
// reset vector should point into ROM space, and the title bytes should be
// mostly printable ASCII.
func scoreHeader(header []uint8, mode MapMode) int {
	score := 0

	mapByte := header[0x15]
	switch mode {
	case MapLoROM:
		if mapByte&0x0F == 0x00 || mapByte&0x0F == 0x02 {
			score += 3
		}
	case MapHiROM:
		if mapByte&0x0F == 0x01 || mapByte&0x0F == 0x05 {
			score += 3
		}
	case MapExHiROM:
		if mapByte&0x0F == 0x05 {
			score += 3
		}
	}

	resetVector := uint16(header[0x3C]) | uint16(header[0x3D])<<8
	if resetVector >= 0x8000 {
		score += 2
	}

	printable := 0
	for _, b := range header[0:21] {
		if b >= 0x20 && b < 0x7F {
			printable++
		}
	}
	if printable >= 18 {
		score += 2
	}

	return score
}

// Read8 reads a byte from ROM space for the given CPU bank/offset. The
// caller (Bus) is responsible for having already decided the access is
// destined for the cartridge rather than WRAM or I/O.
func (c *Cartridge) Read8(bank uint8, offset uint16) uint8 {
	romOffset, ok := c.mapAddress(bank, offset)
	if !ok || romOffset >= uint32(len(c.ROMData)) {
		return 0
	}
	return c.ROMData[romOffset]
}

// mapAddress converts a CPU (bank, offset) pair into a linear ROM file
// offset according to the cartridge's detected mapping mode.
func (c *Cartridge) mapAddress(bank uint8, offset uint16) (uint32, bool) {
	switch c.Mode {
	case MapHiROM:
		return c.mapHiROM(bank, offset)
	case MapExHiROM:
		return c.mapExHiROM(bank, offset)
	default:
		return c.mapLoROM(bank, offset)
	}
}

func (c *Cartridge) mapLoROM(bank uint8, offset uint16) (uint32, bool) {
	b := bank & 0x7F
	if offset < 0x8000 {
		// Banks 0x00-0x3F/0x80-0xBF only expose ROM from $8000 up;
		// banks 0x40-0x7D/0xC0-0xFF expose the low half too.
		if b < 0x40 {
			return 0, false
		}
	}
	romBank := uint32(b)
	if b >= 0x40 {
		romBank = uint32(b - 0x40)
	}
	return romBank*loromBankBytes + uint32(offset&0x7FFF), true
}

func (c *Cartridge) mapHiROM(bank uint8, offset uint16) (uint32, bool) {
	if offset < 0x8000 {
		b := bank & 0x7F
		if b < 0x40 {
			return 0, false
		}
	}
	b := bank & 0x3F
	return uint32(b)*bankSize + uint32(offset), true
}

func (c *Cartridge) mapExHiROM(bank uint8, offset uint16) (uint32, bool) {
	if offset < 0x8000 {
		b := bank & 0x7F
		if b < 0x40 {
			return 0, false
		}
	}
	b := uint32(bank)
	if b >= 0xC0 {
		return (b-0xC0)*bankSize + uint32(offset), true
	}
	return (b&0x3F)*bankSize + 0x400000 + uint32(offset), true
}

// Read16 reads a little-endian 16-bit value from ROM.
func (c *Cartridge) Read16(bank uint8, offset uint16) uint16 {
	low := c.Read8(bank, offset)
	high := c.Read8(bank, offset+1)
	return uint16(low) | uint16(high)<<8
}

// ResetVector returns the reset vector used to seed PC/PBR at power-on:
// the RESET entry of the emulation-mode vector table ($FFFC), read
// relative to the header location appropriate to the map mode.
func (c *Cartridge) ResetVector() (bank uint8, offset uint16, err error) {
	if len(c.ROMData) == 0 {
		return 0, 0, fmt.Errorf("ROM not loaded")
	}
	vectorOffset := c.HeaderOffset + 0x3C
	if vectorOffset+2 > uint32(len(c.ROMData)) {
		return 0, 0, fmt.Errorf("ROM too small to contain a reset vector")
	}
	offset = uint16(c.ROMData[vectorOffset]) | uint16(c.ROMData[vectorOffset+1])<<8
	// Reset always begins execution in bank 0 (mirrors ROM banks 0x80+ in
	// LoROM/HiROM, or bank 0x00 directly).
	return 0, offset, nil
}

// HasROM reports whether a ROM image has been loaded.
func (c *Cartridge) HasROM() bool {
	return len(c.ROMData) > 0
}

// CRC32 returns the checksum of the raw ROM image, used to gate save
// state compatibility.
func (c *Cartridge) CRC32() uint32 {
	return c.ComputedChecksum
}
