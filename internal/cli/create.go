package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/bagmeta"
	"github.com/arloliu/bagmeta/format"
	"github.com/arloliu/bagmeta/metadata"
)

var createCmd = &cobra.Command{
	Use:   "create <bag>",
	Short: "Create a container holding a metadata entry",
	Long: `Create a new BAG container and write its metadata entry.

The record is read from the XML file given with --from, or starts empty.
The container also records the BAG version attribute.

Examples:
  # Create from an existing metadata document
  bagmeta create survey.bag --from survey.xml

  # Compress the entry and assign a fresh file identifier
  bagmeta create survey.bag --from survey.xml --compression zstd --new-id`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var createFlags struct {
	from        string
	chunkSize   int
	compression string
	newID       bool
	bigEndian   bool
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createFlags.from, "from", "", "Metadata XML document to store")
	createCmd.Flags().IntVar(&createFlags.chunkSize, "chunk-size", 0,
		fmt.Sprintf("Entry chunk size in bytes (default %d)", bagmeta.DefaultChunkSize))
	createCmd.Flags().StringVar(&createFlags.compression, "compression", "", "Entry codec: none, zstd, s2 or lz4")
	createCmd.Flags().BoolVar(&createFlags.newID, "new-id", false, "Replace the file identifier with a new UUID")
	createCmd.Flags().BoolVar(&createFlags.bigEndian, "big-endian", false, "Write a big-endian container")
}

func runCreate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts := s.options()
	if createFlags.chunkSize != 0 {
		opts = append(opts, bagmeta.WithChunkSize(createFlags.chunkSize))
	}
	if createFlags.compression != "" {
		ct, err := format.ParseCompressionType(createFlags.compression)
		if err != nil {
			return err
		}
		opts = append(opts, bagmeta.WithCompression(ct))
	}
	if createFlags.bigEndian {
		opts = append(opts, bagmeta.WithBigEndian())
	}

	md := bagmeta.NewMetadata(opts...)
	if createFlags.from != "" {
		if err := md.LoadFromFile(createFlags.from); err != nil {
			md.Close()
			return err
		}
	}
	if createFlags.newID {
		md.Struct().FileIdentifier = metadata.NewFileIdentifier()
	}

	ds, err := bagmeta.CreateDataset(args[0], md, opts...)
	if err != nil {
		md.Close()
		return err
	}

	length := md.XMLLength()
	id := md.Struct().FileIdentifier
	if err := ds.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s: %d bytes of metadata, file identifier %q\n", args[0], length, id)

	return nil
}
