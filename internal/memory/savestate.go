package memory

import (
	"bytes"
	"encoding/binary"
)

// Snapshot serializes work RAM, the DMA/HDMA channel registers, and the
// CPU-facing control registers into a fixed little-endian layout, for
// save-state capture. The cartridge ROM image and I/O handler pointers
// are not included: ROM is immutable and handlers are rewired at load
// time by whoever owns the bus.
func (b *Bus) Snapshot() []byte {
	buf := new(bytes.Buffer)
	w := func(v interface{}) { binary.Write(buf, binary.LittleEndian, v) }

	w(b.WRAM)
	w(b.DMA)
	w(b.NMITIMEN)
	w(b.MDMAEN)
	w(b.HDMAEN)
	w(b.MemSelect)
	w(b.RDNMI)
	w(b.TIMEUP)
	w(b.HVBJOY)
	w(b.WRIO)
	w(b.WRMPYA)
	w(b.WRMPYB)
	w(b.WRDIVL)
	w(b.WRDIVH)
	w(b.WRDIVB)
	w(b.RDDIVL)
	w(b.RDDIVH)
	w(b.RDMPYL)
	w(b.RDMPYH)
	w(b.JoypadAuto)
	w(b.wramPort)
	w(b.openBus)

	return buf.Bytes()
}

// Restore reconstructs WRAM and register state from a buffer produced by
// Snapshot.
func (b *Bus) Restore(data []byte) error {
	buf := bytes.NewReader(data)
	fields := []interface{}{
		&b.WRAM, &b.DMA, &b.NMITIMEN, &b.MDMAEN, &b.HDMAEN, &b.MemSelect,
		&b.RDNMI, &b.TIMEUP, &b.HVBJOY, &b.WRIO, &b.WRMPYA, &b.WRMPYB,
		&b.WRDIVL, &b.WRDIVH, &b.WRDIVB, &b.RDDIVL, &b.RDDIVH, &b.RDMPYL,
		&b.RDMPYH, &b.JoypadAuto, &b.wramPort, &b.openBus,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
