package cpu

type fakeMem struct {
	data [0x1000000]uint8 // flat 24-bit space: bank<<16 | offset
}

func (m *fakeMem) index(bank uint8, offset uint16) uint32 {
	return uint32(bank)<<16 | uint32(offset)
}

func (m *fakeMem) Read8(bank uint8, offset uint16) uint8 {
	return m.data[m.index(bank, offset)]
}

func (m *fakeMem) Write8(bank uint8, offset uint16, value uint8) {
	m.data[m.index(bank, offset)] = value
}

func newTestCPU() (*CPU, *fakeMem) {
	mem := &fakeMem{}
	c := NewCPU(mem, nil)
	c.Reset()
	c.Reg.PBR = 0x01
	c.Reg.PC = 0x8000
	return c, mem
}

func load(mem *fakeMem, bank uint8, offset uint16, bytes ...uint8) {
	for i, b := range bytes {
		mem.Write8(bank, offset+uint16(i), b)
	}
}
