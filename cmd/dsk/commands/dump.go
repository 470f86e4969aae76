// cmd/dsk/commands/dump.go
package commands

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"dsk/internal/alphabet"
	"dsk/internal/countmap"
	"dsk/internal/errors"
	"dsk/internal/kmer"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <counts.map>",
	Short: "decode a count map to tab-separated text",
	Long: `dump reads a binary count map written by dsk and prints one
"<kmer>\t<count>" line per distinct k-mer, in lexicographic packed order.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrapf(errors.IOError, err, "opening count map %s", args[0])
	}
	defer f.Close()

	cm, err := countmap.Read(f)
	if err != nil {
		return err
	}
	alpha, err := alphabet.New(cm.Symbols)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(cm.Counts))
	for key := range cm.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w := bufio.NewWriter(os.Stdout)
	for _, key := range keys {
		letters, err := kmer.Decode(alpha, cm.K, []byte(key))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", letters, cm.Counts[key])
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.IOError, err, "writing to stdout")
	}
	return nil
}
