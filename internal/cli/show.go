package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/bagmeta"
	"github.com/arloliu/bagmeta/container"
)

var showCmd = &cobra.Command{
	Use:   "show <bag>",
	Short: "Show the grid and storage properties of a container",
	Long: `Open a container read-only and print its descriptor: BAG version, grid
size and spacing, corners, reference systems and how the metadata entry is
stored.

Examples:
  bagmeta show survey.bag
  bagmeta show survey.bag --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var showFlags struct {
	format string
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFlags.format, "format", "text", "Output format: text, json or yaml")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ds, err := bagmeta.OpenDataset(args[0], container.ReadOnly, s.options()...)
	if err != nil {
		return err
	}
	defer ds.Close()

	return writeDescriptor(cmd.OutOrStdout(), ds.Descriptor(), showFlags.format)
}

func writeDescriptor(w io.Writer, d bagmeta.Descriptor, outFormat string) error {
	switch strings.ToLower(outFormat) {
	case "", "text":
		return writeDescriptorText(w, d)
	case "json":
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("encode descriptor: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)

		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode descriptor: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outFormat)
	}
}

func writeDescriptorText(w io.Writer, d bagmeta.Descriptor) error {
	hcrs := d.HorizontalCRS
	if hcrs == "" {
		hcrs = "(not WKT)"
	}
	vcrs := d.VerticalCRS
	if vcrs == "" {
		vcrs = "(none)"
	}

	st := d.Storage
	_, err := fmt.Fprintf(w, `Version:            %s
Read-only:          %t
Grid:               %d rows x %d columns
Resolution:         %g x %g
Lower-left corner:  (%g, %g)
Upper-right corner: (%g, %g)
Horizontal CRS:     %s
Vertical CRS:       %s
Metadata:           %d bytes, %s, %d chunks, %d bytes stored (%.1f%% saved)
`,
		d.Version, d.ReadOnly,
		d.Rows, d.Columns,
		d.RowResolution, d.ColumnResolution,
		d.LLCornerX, d.LLCornerY,
		d.URCornerX, d.URCornerY,
		hcrs, vcrs,
		d.XMLLength, strings.ToLower(st.Algorithm.String()), st.Chunks, st.CompressedSize,
		st.SpaceSavings(),
	)

	return err
}
