// cmd/dsk/commands/root.go
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dsk/internal/engine"
	"dsk/internal/errors"
)

// Build variables - can be set during build with ldflags
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var rootOpts struct {
	seqs     string
	k        int
	maxMem   float64
	maxDisk  float64
	fastq    bool
	alphabet string
	out      string
	compress bool
	noBar    bool
	infoPath string
	profMode string
	quiet    bool
}

var rootCmd = &cobra.Command{
	Use:   "dsk [flags] <seqs.fa>",
	Short: "disk streaming of k-mers: count k-mers under memory and disk caps",
	Long: `dsk counts every k-length substring of a FASTA or FASTQ file.

The k-mer space is split across iterations and on-disk partitions so that
each in-memory counting step fits the configured memory budget, however
large the input. Counts are written as a binary map; see "dsk dump" and
"dsk export" for reading it back.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCount,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&rootOpts.seqs, "seqs", "s", "", "input sequence file (alternative to the positional argument)")
	f.IntVarP(&rootOpts.k, "kmer-len", "k", 27, "k-mer length")
	f.Float64VarP(&rootOpts.maxMem, "max-mem", "m", 2, "maximum memory in GB")
	f.Float64VarP(&rootOpts.maxDisk, "max-disk", "d", 3, "maximum scratch disk in GB")
	f.BoolVarP(&rootOpts.fastq, "fastq", "q", false, "input is FASTQ rather than FASTA")
	f.StringVarP(&rootOpts.alphabet, "alphabet", "a", "DNA", "alphabet preset: DNA, dna, dna+N or iupac")
	f.StringVarP(&rootOpts.out, "out", "o", "out.map", "output count map file")
	f.BoolVarP(&rootOpts.compress, "compress-banks", "z", false, "snappy-compress the scratch bank files")
	f.BoolVar(&rootOpts.noBar, "no-progress", false, "disable the pass progress bar")
	f.StringVar(&rootOpts.infoPath, "info", "", "also write a TOML run summary to this path")
	f.StringVar(&rootOpts.profMode, "profile", "", "write a cpu or mem profile for this run")
	f.BoolVar(&rootOpts.quiet, "quiet", false, "log warnings and errors only")

	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(exportCmd)
}

// Execute runs the CLI and returns the first fatal error.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(quiet bool) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	log := zerolog.New(w).With().Timestamp().Logger()
	if quiet {
		log = log.Level(zerolog.WarnLevel)
	}
	return log
}

func runCount(cmd *cobra.Command, args []string) error {
	input := rootOpts.seqs
	if len(args) == 1 {
		if input != "" && input != args[0] {
			return errors.Newf(errors.ConfigError,
				"input given both positionally (%s) and with -s (%s)", args[0], input)
		}
		input = args[0]
	}

	switch rootOpts.profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		return errors.Newf(errors.ConfigError, "unknown profile mode %q (expected cpu or mem)", rootOpts.profMode)
	}

	log := newLogger(rootOpts.quiet)
	cfg := engine.Config{
		Input:         input,
		Output:        rootOpts.out,
		K:             rootOpts.k,
		MemGB:         rootOpts.maxMem,
		DiskGB:        rootOpts.maxDisk,
		Fastq:         rootOpts.fastq,
		Alphabet:      rootOpts.alphabet,
		CompressBanks: rootOpts.compress,
		Progress:      !rootOpts.noBar && !rootOpts.quiet,
		InfoPath:      rootOpts.infoPath,
	}
	_, err := engine.Run(cfg, log)
	return err
}
