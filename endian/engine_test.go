package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineFor(t *testing.T) {
	require.Equal(t, GetBigEndianEngine(), EngineFor(true))
	require.Equal(t, GetLittleEndianEngine(), EngineFor(false))
	require.Equal(t, binary.BigEndian, EngineFor(true))
}

func TestEngineRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name   string
		engine EndianEngine
		want   []byte
	}{
		{"little", GetLittleEndianEngine(), []byte{0x04, 0x03, 0x02, 0x01}},
		{"big", GetBigEndianEngine(), []byte{0x01, 0x02, 0x03, 0x04}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.engine.AppendUint32(nil, 0x01020304)
			require.Equal(t, tt.want, buf)
			require.Equal(t, uint32(0x01020304), tt.engine.Uint32(buf))
		})
	}
}
