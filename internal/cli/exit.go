package cli

import (
	"errors"

	"github.com/arloliu/bagmeta/errs"
)

// Exit codes returned by the bagmeta command.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitNotFound     = 2
	ExitImportExport = 3
)

// ExitCodeForError returns the exit code for an error returned by Execute.
// Returns ExitSuccess for nil and ExitGeneralError for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var importErr *errs.ImportError
	var exportErr *errs.ExportError

	switch {
	case errors.Is(err, errs.ErrMetadataNotFound):
		return ExitNotFound
	case errors.As(err, &importErr), errors.As(err, &exportErr):
		return ExitImportExport
	}

	return ExitGeneralError
}
