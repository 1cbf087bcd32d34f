package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/bagmeta/metadata"
)

var errInvalidMetadata = errors.New("metadata failed validation")

var validateCmd = &cobra.Command{
	Use:   "validate <metadata.xml>",
	Short: "Decode and check a metadata document",
	Long: `Decode an XML metadata document and check it for semantic problems:
grid size and spacing, corner ordering, geographic bounds and reference
systems. No container is involved.

With --strict, unknown elements, malformed values and missing required
sections fail the decode itself.

Examples:
  bagmeta validate survey.xml
  bagmeta validate survey.xml --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateFlags struct {
	strict bool
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "Decode strictly")
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	strict := validateFlags.strict || s.cfg.Strict

	md, size, err := metadata.ImportFile(path, strict)
	if err != nil {
		return err
	}
	defer func() {
		if err := metadata.Free(md); err != nil {
			s.logger.Debug("free metadata record", "error", err)
		}
	}()
	s.logger.Debug("metadata decoded", "file", path, "bytes", size, "strict", strict)

	w := cmd.OutOrStdout()
	result := metadata.Validate(md)
	if result.HasErrors() {
		fmt.Fprintf(w, "%s: %d problem(s)\n", path, len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}

		return fmt.Errorf("%w: %s", errInvalidMetadata, path)
	}

	fmt.Fprintf(w, "%s: valid (%d bytes)\n", path, size)

	return nil
}
