package spc700

import "testing"

func TestResetLoadsPCFromIPLVector(t *testing.T) {
	s, _ := newTestCore()
	if s.Reg.PC != 0xFFC0 {
		t.Fatalf("PC: got %#x want 0xFFC0 (IPL entry point)", s.Reg.PC)
	}
	if s.Reg.SP != 0xEF {
		t.Fatalf("SP: got %#x want 0xEF", s.Reg.SP)
	}
}

func TestMovImmediateSetsFlags(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	load(mem, 0x0200, 0xE8, 0x00) // MOV A,#$00
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if !s.GetFlag(FlagZ) {
		t.Fatal("loading zero should set Z")
	}
}

func TestAdcSetsCarryOnOverflow(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.Reg.A = 0xFF
	s.SetFlag(FlagC, false)
	load(mem, 0x0200, 0x88, 0x01) // ADC A,#$01
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.A != 0x00 {
		t.Fatalf("A: got %#x want 0x00", s.Reg.A)
	}
	if !s.GetFlag(FlagC) {
		t.Fatal("0xFF+1 should set carry")
	}
	if !s.GetFlag(FlagZ) {
		t.Fatal("result 0 should set Z")
	}
}

func TestDirectPageFlagSelectsPage1(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.SetFlag(FlagP, true)
	load(mem, 0x0200, 0xE4, 0x10) // MOV A,d with d=$10 -> $0110 when P set
	mem.data[0x0110] = 0x7A
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.A != 0x7A {
		t.Fatalf("A: got %#x want 0x7A (read from page-1 direct page)", s.Reg.A)
	}
}

func TestPushPopPreservesValue(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.Reg.A = 0x55
	load(mem, 0x0200, 0x2D, 0xAE) // PUSH A ; POP A (into A again after clearing)
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	s.Reg.A = 0
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.A != 0x55 {
		t.Fatalf("PUSH/POP round trip: got %#x want 0x55", s.Reg.A)
	}
}

func TestBranchNotTakenFallsThrough(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.SetFlag(FlagZ, false)
	load(mem, 0x0200, 0xF0, 0x10) // BEQ +16, Z clear so not taken
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.PC != 0x0202 {
		t.Fatalf("PC after non-taken branch: got %#x want 0x0202", s.Reg.PC)
	}
}

func TestCallRetRoundTrips(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	load(mem, 0x0200, 0x3F, 0x00, 0x03) // CALL $0300
	load(mem, 0x0300, 0x6F)             // RET
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.PC != 0x0300 {
		t.Fatalf("PC after CALL: got %#x want 0x0300", s.Reg.PC)
	}
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.PC != 0x0203 {
		t.Fatalf("PC after RET: got %#x want 0x0203", s.Reg.PC)
	}
}

func TestMulYA(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.Reg.Y = 12
	s.Reg.A = 11
	load(mem, 0x0200, 0xCF) // MUL YA
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	product := uint16(s.Reg.Y)<<8 | uint16(s.Reg.A)
	if product != 132 {
		t.Fatalf("MUL YA: got %d want 132", product)
	}
}

func TestDivYAX(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.Reg.Y = 0
	s.Reg.A = 100
	s.Reg.X = 7
	load(mem, 0x0200, 0x9E) // DIV YA,X
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.A != 14 || s.Reg.Y != 2 {
		t.Fatalf("DIV YA,X: got quotient=%d remainder=%d want 14/2", s.Reg.A, s.Reg.Y)
	}
}

func TestSet1Clr1RoundTrip(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	load(mem, 0x0200, 0x02, 0x20) // SET1 $20.0
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if mem.data[0x0020]&0x01 == 0 {
		t.Fatal("SET1 should set bit 0")
	}
	s.Reg.PC = 0x0202
	load(mem, 0x0202, 0x12, 0x20) // CLR1 $20.0
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if mem.data[0x0020]&0x01 != 0 {
		t.Fatal("CLR1 should clear bit 0")
	}
}

func TestMovYIndexedByX(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	s.Reg.X = 0x05
	mem.data[0x0025] = 0x42
	load(mem, 0x0200, 0xFB, 0x20) // MOV Y,d+X ($20+X)
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Reg.Y != 0x42 {
		t.Fatalf("MOV Y,d+X: got %#x want 0x42", s.Reg.Y)
	}
}

func TestStopHaltsCore(t *testing.T) {
	s, mem := newTestCore()
	s.Reg.PC = 0x0200
	load(mem, 0x0200, 0xFF) // STOP
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	pcBefore := s.Reg.PC
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if !s.Stopped() || s.Reg.PC != pcBefore {
		t.Fatal("STOP should halt the core permanently")
	}
}
