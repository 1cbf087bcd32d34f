package section

import (
	"fmt"

	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
)

// AppendString appends s with a uint16 length prefix.
func AppendString(buf []byte, engine endian.EndianEngine, s string) ([]byte, error) {
	if len(s) > MaxStringLength {
		return buf, fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, len(s))
	}

	buf = engine.AppendUint16(buf, uint16(len(s))) //nolint:gosec
	buf = append(buf, s...)

	return buf, nil
}

// ReadString reads a length-prefixed string from the start of data and
// returns it together with the number of bytes consumed.
func ReadString(data []byte, engine endian.EndianEngine) (string, int, error) {
	if len(data) < 2 {
		return "", 0, fmt.Errorf("%w: string length", errs.ErrTruncated)
	}

	n := int(engine.Uint16(data[0:2]))
	if len(data) < 2+n {
		return "", 0, fmt.Errorf("%w: string of %d bytes", errs.ErrTruncated, n)
	}

	return string(data[2 : 2+n]), 2 + n, nil
}
