package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestChecksumMatchesID(t *testing.T) {
	require.Equal(t, ID("/BAG_root/metadata"), Checksum([]byte("/BAG_root/metadata")))
	require.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}

func TestChecksum32(t *testing.T) {
	sum := Checksum([]byte("header"))
	require.Equal(t, uint32(sum)^uint32(sum>>32), Checksum32([]byte("header")))
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	b.ResetTimer()
	for b.Loop() {
		Checksum(data)
	}
}
