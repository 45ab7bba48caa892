package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nitro-core-dx/internal/snes"
)

// makeObjectROM builds a minimal LoROM image (bank $01's object tables
// hold a single type-1 object whose handler is a bare RTL, so
// executeHandler's STP trap is reached on the very next fetch). Its
// bank $00 reset vector is never actually stepped: renderDungeonObject
// jumps the CPU straight into the handler via SetEntryPoint instead of
// running through RunFrame.
func makeObjectROM() []byte {
	data := make([]byte, 0x100000)
	header := 0x7fc0
	copy(data[header:], []byte("TEST ROM            "))
	data[header+0x15] = 0x20 // LoROM, slow ROM
	data[header+0x3c] = 0x00
	data[header+0x3d] = 0x80 // reset vector -> $8000

	const handlerAddr = 0x8600
	data[type1DataTable] = 0x34   // object 0 data offset low
	data[type1DataTable+1] = 0x12 // object 0 data offset high
	data[type1HandlerTable] = handlerAddr & 0xff
	data[type1HandlerTable+1] = handlerAddr >> 8

	data[handlerAddr] = 0x6b // RTL
	return data
}

func newTestService(t *testing.T) (*Service, *snes.Emulator) {
	t.Helper()
	emu := snes.NewEmulator()
	require.NoError(t, emu.LoadROM(makeObjectROM()))
	emu.Start()
	emu.SetFrameLimit(false)
	return NewService(emu), emu
}

func TestRenderDungeonObjectRunsHandlerAndProducesFrame(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Render(Request{Type: DungeonObject, ObjectID: 0, X: 2, Y: 3})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 256, result.Width)
	require.Equal(t, 224, result.Height)
	require.Len(t, result.RGBA, 256*224*4)
	require.Equal(t, uint16(0x8600), result.HandlerAddress)
}

func TestRenderUnknownObjectReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Render(Request{Type: DungeonObject, ObjectID: 1})
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestRenderBeforeROMLoadedFails(t *testing.T) {
	svc := NewService(snes.NewEmulator())
	_, err := svc.Render(Request{Type: DungeonObject, ObjectID: 0})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestStaticModeReturnsUnavailable(t *testing.T) {
	svc, _ := newTestService(t)
	svc.SetMode(Static)

	_, err := svc.Render(Request{Type: DungeonObject, ObjectID: 0})
	require.ErrorIs(t, err, ErrStaticRenderingUnavailable)
}

func TestLookupHandlerAddressReadsObjectTables(t *testing.T) {
	_, emu := newTestService(t)

	dataOffset, handlerAddr, err := lookupHandlerAddress(emu, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), dataOffset)
	require.Equal(t, uint16(0x8600), handlerAddr)
}

func TestStateManagerRoundTrip(t *testing.T) {
	m := NewStateManager()
	require.False(t, m.Has(2, 5), "fresh manager should have no cached states")

	m.Put(2, 5, []byte{1, 2, 3}, []byte{4, 5})
	dump, meta, ok := m.Get(2, 5)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, dump)
	require.Equal(t, []byte{4, 5}, meta)

	m.Evict(2, 5)
	require.False(t, m.Has(2, 5))
}

func TestRenderBatchCollectsIndependentResults(t *testing.T) {
	svc, _ := newTestService(t)

	results := svc.RenderBatch([]Request{
		{Type: DungeonObject, ObjectID: 0},
		{Type: DungeonObject, ObjectID: 1},
	})
	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.False(t, results[1].Success)
	require.NotEmpty(t, results[1].Error)
}
