package gpu

import (
	"encoding/binary"
	"testing"
)

func TestAlignUp16(t *testing.T) {
	cases := map[int]int{0: 16, 1: 16, 15: 16, 16: 16, 17: 32, 200: 208}
	for in, want := range cases {
		if got := alignUp16(in); got != want {
			t.Errorf("alignUp16(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPackInputsLaysOutMessagesAtFixedStride(t *testing.T) {
	messages := [][]byte{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	buf := packInputs(messages, 4)
	if len(buf) < 12 {
		t.Fatalf("packInputs buffer too short: %d", len(buf))
	}
	for i, m := range messages {
		got := buf[i*4 : i*4+4]
		for j := range m {
			if got[j] != m[j] {
				t.Errorf("message %d byte %d = %d, want %d", i, j, got[j], m[j])
			}
		}
	}
}

func TestPackInputsAlignsTotalSizeTo16Bytes(t *testing.T) {
	messages := [][]byte{{1, 2, 3}, {4, 5, 6}}
	buf := packInputs(messages, 3)
	if len(buf)%16 != 0 {
		t.Errorf("len(buf) = %d, not a multiple of 16", len(buf))
	}
}

func TestGpuHashParamsMarshalLittleEndian(t *testing.T) {
	p := gpuHashParams{NumHashes: 7, InputLength: 136, RateBytes: 136, OutputBytes: 32, Domain: 0x06}
	buf := p.marshal()
	if len(buf) != gpuHashParamsSize {
		t.Fatalf("marshal() length = %d, want %d", len(buf), gpuHashParamsSize)
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 7 {
		t.Errorf("NumHashes field = %d, want 7", got)
	}
	if got := binary.LittleEndian.Uint32(buf[16:20]); got != 0x06 {
		t.Errorf("Domain field = %#x, want 0x06", got)
	}
}
