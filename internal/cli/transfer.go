package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/bagmeta"
	"github.com/arloliu/bagmeta/container"
	"github.com/arloliu/bagmeta/errs"
)

var exportCmd = &cobra.Command{
	Use:   "export <bag>",
	Short: "Write the stored metadata XML",
	Long: `Write the metadata entry of a container exactly as stored, to stdout or
to the file given with -o.

Examples:
  bagmeta export survey.bag > survey.xml
  bagmeta export survey.bag -o survey.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <bag> <metadata.xml>",
	Short: "Replace the metadata of a container",
	Long: `Decode an XML metadata document and store it in an existing container,
overwriting the metadata entry or creating it when absent. The document is
re-encoded, so the stored XML is canonical.

Examples:
  bagmeta import survey.bag corrected.xml
  bagmeta import survey.bag corrected.xml --config strict.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var exportFlags struct {
	output string
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	f, err := container.Open(args[0], container.ReadOnly, container.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := f.OpenEntry(bagmeta.MetadataPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrMetadataNotFound, err)
	}
	defer entry.Close()

	data, err := entry.ReadAll()
	if err != nil {
		return &errs.ExportError{Err: err}
	}

	if exportFlags.output == "" || exportFlags.output == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(exportFlags.output, data, 0o644); err != nil {
		return &errs.ExportError{Err: err}
	}
	s.logger.Debug("metadata exported", "container", args[0], "file", exportFlags.output, "bytes", len(data))

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	bagPath, xmlPath := args[0], args[1]
	opts := s.options()

	f, err := container.Open(bagPath, container.ReadWrite, container.WithLogger(s.logger))
	if err != nil {
		return err
	}
	ds := bagmeta.NewDataset(f, opts...)
	defer ds.Close()

	m := bagmeta.NewMetadata(opts...)
	defer m.Close()

	created := false
	if err := m.Bind(ds); err != nil {
		if !errors.Is(err, errs.ErrMetadataNotFound) {
			return err
		}
		created = true
	}

	if err := m.LoadFromFile(xmlPath); err != nil {
		return err
	}

	if created {
		if _, ok := f.Attribute(bagmeta.VersionAttribute); !ok {
			if err := f.SetAttribute(bagmeta.VersionAttribute, bagmeta.Version); err != nil {
				return err
			}
		}
		err = m.CreateEntry(ds)
	} else {
		err = m.Write()
	}
	if err != nil {
		return err
	}

	length := m.XMLLength()
	m.Close()
	if err := ds.Close(); err != nil {
		return err
	}

	verb := "replaced"
	if created {
		verb = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s metadata of %s from %s (%d bytes)\n", verb, bagPath, xmlPath, length)

	return nil
}
