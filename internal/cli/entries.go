package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/bagmeta/container"
)

var entriesCmd = &cobra.Command{
	Use:   "entries <bag>",
	Short: "List container attributes and entries",
	Long: `List the attributes of a container and every entry with its length,
chunking and compression statistics.

Examples:
  bagmeta entries survey.bag`,
	Args: cobra.ExactArgs(1),
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	f, err := container.Open(args[0], container.ReadOnly, container.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer f.Close()

	w := cmd.OutOrStdout()
	attrs := f.Attributes()
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		fmt.Fprintf(w, "@%s = %s\n", name, attrs[name])
	}

	fmt.Fprintf(w, "%-32s %10s %8s %7s %-6s %10s %7s\n",
		"NAME", "LENGTH", "CHUNK", "CHUNKS", "CODEC", "STORED", "RATIO")
	for _, e := range f.Entries() {
		st := e.Stats
		fmt.Fprintf(w, "%-32s %10d %8d %7d %-6s %10d %6.1f%%\n",
			e.Name, e.Length, e.ChunkSize, st.Chunks,
			strings.ToLower(st.Algorithm.String()), st.CompressedSize, st.CompressionRatio()*100)
	}

	return nil
}
