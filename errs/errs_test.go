package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportError(t *testing.T) {
	err := fmt.Errorf("load: %w", &ImportError{Source: "meta.xml", Line: 7, Err: ErrMalformedField})

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 7, ie.Line)
	require.ErrorIs(t, err, ErrMalformedField)
	require.Equal(t, "load: import metadata from meta.xml (line 7): malformed field value", err.Error())

	noLine := &ImportError{Source: "buffer", Err: ErrEmptyDocument}
	require.Equal(t, "import metadata from buffer: empty metadata document", noLine.Error())
}

func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "extend", Entry: "/BAG_root/metadata", Err: ErrExceedsMaxLength}
	require.ErrorIs(t, err, ErrExceedsMaxLength)
	require.Equal(t, "storage extend /BAG_root/metadata: length exceeds entry maximum", err.Error())

	bare := &StorageError{Op: "flush", Err: ErrClosed}
	require.Equal(t, "storage flush: container or entry is closed", bare.Error())
}

func TestExportError(t *testing.T) {
	err := &ExportError{Err: ErrNotInitialized}
	require.True(t, errors.Is(err, ErrNotInitialized))
	require.Contains(t, err.Error(), "export metadata")
}
