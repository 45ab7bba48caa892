package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDsp() (*Dsp, []uint8) {
	aram := make([]uint8, 0x10000)
	return NewDsp(aram), aram
}

func TestVolumeRegisterRoundTrip(t *testing.T) {
	d, _ := newTestDsp()
	d.Write(0x00, 0x40) // voice 0 VOL L
	d.Write(0x01, 0xC0) // voice 0 VOL R (signed negative)
	require.EqualValues(t, 0x40, d.channel[0].VolumeL)
	require.Equal(t, int8(0xC0), d.channel[0].VolumeR)
	require.EqualValues(t, 0x40, d.Read(0x00), "reading back VOL L should round trip")
}

func TestPitchRegisterRoundTrip(t *testing.T) {
	d, _ := newTestDsp()
	d.Write(0x02, 0x34) // pitch low, voice 0
	d.Write(0x03, 0x12) // pitch high (top 2 bits ignored)
	require.EqualValues(t, 0x1234, d.channel[0].Pitch)
}

func TestKeyOnSetsPerVoiceFlag(t *testing.T) {
	d, _ := newTestDsp()
	d.Write(0x4C, 0x05) // KON voices 0 and 2
	require.True(t, d.channel[0].KeyOn, "KON bits should set KeyOn on the addressed voices")
	require.True(t, d.channel[2].KeyOn, "KON bits should set KeyOn on the addressed voices")
	require.False(t, d.channel[1].KeyOn, "KON should not affect unaddressed voices")
}

func TestCheckCounterZeroRateNeverFires(t *testing.T) {
	d, _ := newTestDsp()
	for i := 0; i < 100; i++ {
		d.counter++
		require.False(t, d.CheckCounter(0), "rate 0 should never fire")
	}
}

func TestCheckCounterFastestRateFiresWithinFewCycles(t *testing.T) {
	d, _ := newTestDsp()
	fired := false
	for i := 0; i < 4; i++ {
		d.counter++
		if d.CheckCounter(31) {
			fired = true
		}
	}
	require.True(t, fired, "the fastest rate (index 31, period 1) should fire within a few cycles")
}

func TestAttackEnvelopeRaisesGain(t *testing.T) {
	d, _ := newTestDsp()
	d.channel[0].UseGain = true
	d.channel[0].AdsrRates[0] = 0x0F // instant attack
	d.channel[0].KeyOn = true
	d.HandleGain(0)
	require.NotZero(t, d.channel[0].Gain, "instant attack should raise gain above zero immediately")
}

func TestKeyOffMovesToRelease(t *testing.T) {
	d, _ := newTestDsp()
	d.channel[0].AdsrState = adsrSustain
	d.channel[0].Gain = 0x400
	d.channel[0].KeyOff = true
	d.HandleGain(0)
	require.Equal(t, adsrRelease, d.channel[0].AdsrState, "KeyOff should move the envelope into release")
}

func TestReleaseEnvelopeDecaysToZero(t *testing.T) {
	d, _ := newTestDsp()
	d.channel[0].AdsrState = adsrRelease
	d.channel[0].Gain = 16
	for i := 0; i < 10 && d.channel[0].Gain > 0; i++ {
		d.HandleGain(0)
	}
	require.Zero(t, d.channel[0].Gain, "release should decay gain to zero")
}

func TestDecodeBrrProducesNonTrivialSamples(t *testing.T) {
	d, aram := newTestDsp()
	// One BRR block: header (shift=12, filter=0, end+no-loop), 8 bytes of
	// nibble data.
	aram[0x1000] = 0xC1 // shift=12, filter=0, end=1, loop=0
	for i := 0; i < 8; i++ {
		aram[0x1001+i] = 0x12
	}
	d.channel[0].DecodeOffset = 0x1000
	d.DecodeBrr(0)
	nonZero := false
	for _, s := range d.channel[0].DecodeBuffer {
		if s != 0 {
			nonZero = true
		}
	}
	require.True(t, nonZero, "decoding a non-silent BRR block should produce non-zero samples")
}

func TestCycleProducesStereoOutputWithoutPanicking(t *testing.T) {
	d, _ := newTestDsp()
	d.Write(0x00, 0x7F)
	d.Write(0x01, 0x7F)
	d.channel[0].Gain = 0x400
	d.channel[0].SampleOut = 100
	d.Cycle()
}

func TestChannelMuteZeroesOutput(t *testing.T) {
	d, _ := newTestDsp()
	d.SetChannelMute(0, true)
	d.channel[0].Gain = 0x7FF
	d.CycleChannel(0)
	require.Zero(t, d.channel[0].SampleOut, "muted channel should produce silent output")
	require.True(t, d.GetChannelMute(0), "GetChannelMute should reflect SetChannelMute")
}
