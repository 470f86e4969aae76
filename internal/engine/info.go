package engine

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"dsk/internal/alphabet"
	"dsk/internal/errors"
)

// runInfo is the optional TOML sidecar describing a finished run.
type runInfo struct {
	Input      string  `toml:"input"`
	Output     string  `toml:"output"`
	K          int     `toml:"k"`
	Alphabet   string  `toml:"alphabet"`
	Symbols    string  `toml:"symbols"`
	MaxMemGB   float64 `toml:"max-mem-gb"`
	MaxDiskGB  float64 `toml:"max-disk-gb"`
	Iterations uint64  `toml:"iterations"`
	Partitions uint64  `toml:"partitions"`
	Records    uint64  `toml:"records"`
	Kmers      uint64  `toml:"kmers"`
	Distinct   int     `toml:"distinct-kmers"`
	SmallPath  bool    `toml:"small-path"`
	ElapsedSec float64 `toml:"elapsed-seconds"`
}

func writeInfo(cfg Config, alpha *alphabet.Alphabet, sum *Summary) error {
	info := runInfo{
		Input:      cfg.Input,
		Output:     cfg.Output,
		K:          cfg.K,
		Alphabet:   cfg.Alphabet,
		Symbols:    string(alpha.Symbols()),
		MaxMemGB:   cfg.MemGB,
		MaxDiskGB:  cfg.DiskGB,
		Iterations: sum.Iters,
		Partitions: sum.Parts,
		Records:    sum.Records,
		Kmers:      sum.Emissions,
		Distinct:   sum.Distinct,
		SmallPath:  sum.SmallPath,
		ElapsedSec: sum.Elapsed.Seconds(),
	}
	data, err := toml.Marshal(info)
	if err != nil {
		return errors.Wrap(errors.SerializationError, err, "encoding run info")
	}
	if err := os.WriteFile(cfg.InfoPath, data, 0644); err != nil {
		return errors.Wrapf(errors.IOError, err, "writing run info to %s", cfg.InfoPath)
	}
	return nil
}
