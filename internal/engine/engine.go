// Package engine drives the two-phase DSK pipeline: size the run from the
// budgets, stream the input once per iteration routing each k-mer to a
// scratch bucket, then aggregate the buckets into the global count map and
// serialize it.
package engine

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"dsk/internal/alphabet"
	"dsk/internal/countmap"
	"dsk/internal/errors"
	"dsk/internal/kmer"
	"dsk/internal/seqio"
	"dsk/internal/sizing"
	"dsk/internal/workspace"
)

// Config is a validated engine run description.
type Config struct {
	Input         string
	Output        string
	K             int
	MemGB         float64
	DiskGB        float64
	Fastq         bool
	Alphabet      string
	CompressBanks bool
	Progress      bool
	InfoPath      string
}

// Summary reports what a finished run did.
type Summary struct {
	Records   uint64
	Emissions uint64
	Distinct  int
	Iters     uint64
	Parts     uint64
	SmallPath bool
	Elapsed   time.Duration
}

func (c Config) validate() error {
	if c.Input == "" {
		return errors.Newf(errors.ConfigError, "no input sequence file given")
	}
	if c.Output == "" {
		return errors.Newf(errors.ConfigError, "no output file given")
	}
	if c.K < 1 {
		return errors.Newf(errors.ConfigError, "k must be positive, got %d", c.K)
	}
	if c.MemGB <= 0 {
		return errors.Newf(errors.ConfigError, "memory cap must be positive, got %g GB", c.MemGB)
	}
	if c.DiskGB <= 0 {
		return errors.Newf(errors.ConfigError, "disk cap must be positive, got %g GB", c.DiskGB)
	}
	return nil
}

// Run executes one complete counting pipeline.
func Run(cfg Config, log zerolog.Logger) (*Summary, error) {
	start := time.Now()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	alpha, err := alphabet.ByName(cfg.Alphabet)
	if err != nil {
		return nil, err
	}

	// Fail fast on an unwritable output path before any work happens.
	out, err := os.Create(cfg.Output)
	if err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "creating output file %s", cfg.Output)
	}
	defer out.Close()

	src := seqio.Source{Path: cfg.Input}
	if cfg.Fastq {
		src.Format = seqio.FormatFastq
	}

	log.Info().Str("input", cfg.Input).Str("format", src.Format.String()).
		Int("k", cfg.K).Str("alphabet", cfg.Alphabet).
		Msg("scanning input for sizing")
	records, emissions, err := src.CountEmissions(cfg.K)
	if err != nil {
		return nil, err
	}

	plan := sizing.Compute(emissions, cfg.K, cfg.MemGB, cfg.DiskGB)
	small := kmer.IsSmall(alpha, cfg.K)
	log.Info().
		Str("records", humanize.Comma(int64(records))).
		Str("kmers", humanize.Comma(int64(emissions))).
		Uint64("iterations", plan.Iters).
		Uint64("partitions", plan.Parts).
		Str("max_mem", humanize.Bytes(uint64(cfg.MemGB*1e9))).
		Str("max_disk", humanize.Bytes(uint64(cfg.DiskGB*1e9))).
		Int("alphabet_size", alpha.Len()).
		Msg("sized run")
	if small {
		log.Info().Msg("using small k-mer counter")
	} else {
		log.Info().Msg("using large k-mer counter")
	}

	recordSize := kmer.BytesPerKmer(alpha, cfg.K)
	ws, err := workspace.New(int(plan.Parts), recordSize, cfg.CompressBanks)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			log.Warn().Err(rmErr).Msg("could not remove scratch directory")
		}
	}()

	counts := make(map[string]uint64)
	if emissions > 0 {
		log.Info().Msg("counting k-mers")
		if err := runPasses(cfg, src, alpha, ws, plan, counts, log); err != nil {
			return nil, err
		}
	}

	log.Info().Str("distinct", humanize.Comma(int64(len(counts)))).Msg("writing map to disk")
	if err := countmap.Write(out, cfg.K, alpha.Symbols(), counts); err != nil {
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "closing output file %s", cfg.Output)
	}

	sum := &Summary{
		Records:   records,
		Emissions: emissions,
		Distinct:  len(counts),
		Iters:     plan.Iters,
		Parts:     plan.Parts,
		SmallPath: small,
		Elapsed:   time.Since(start),
	}
	if cfg.InfoPath != "" {
		if err := writeInfo(cfg, alpha, sum); err != nil {
			return nil, err
		}
	}
	log.Info().Dur("elapsed", sum.Elapsed).Msg("finished")
	return sum, nil
}

// runPasses streams the input once per iteration. Each pass truncate-creates
// the bank files, appends the packed k-mers of its residue class, then folds
// the banks into the global map before the next pass reuses them.
func runPasses(cfg Config, src seqio.Source, alpha *alphabet.Alphabet,
	ws *workspace.Workspace, plan sizing.Plan, counts map[string]uint64, log zerolog.Logger) error {

	bar := newPassBar(cfg.Progress, plan.Iters)
	defer bar.done()

	scan := kmer.NewScanner(alpha, cfg.K, kmer.New(alpha, cfg.K))
	packed := make([]byte, 0, ws.RecordSize())

	for pass := uint64(0); pass < plan.Iters; pass++ {
		if err := writeOnePass(src, scan, ws, plan, pass, &packed); err != nil {
			return err
		}
		if err := aggregate(ws, counts); err != nil {
			return err
		}
		log.Debug().Uint64("pass", pass).Int("distinct", len(counts)).Msg("pass aggregated")
		bar.step()
	}
	return nil
}

func writeOnePass(src seqio.Source, scan *kmer.Scanner, ws *workspace.Workspace,
	plan sizing.Plan, pass uint64, packed *[]byte) error {

	writers, err := ws.OpenWriters()
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			workspace.CloseWriters(writers)
		}
	}()

	rd, err := src.Open()
	if err != nil {
		return err
	}
	defer rd.Close()

	for {
		seq, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		scan.SetSequence(seq)
		for scan.Next() {
			w := scan.Window()
			if w.Iteration(plan.Iters) != pass {
				continue
			}
			bucket := w.Bucket(plan.Iters, plan.Parts)
			*packed = w.Append((*packed)[:0])
			if err := writers[bucket].WriteRecord(*packed); err != nil {
				return err
			}
		}
		if err := scan.Err(); err != nil {
			return err
		}
	}

	closed = true
	return workspace.CloseWriters(writers)
}

// aggregate reads every bank back and folds it into the global map.
func aggregate(ws *workspace.Workspace, counts map[string]uint64) error {
	buf := make([]byte, ws.RecordSize())
	for p := 0; p < ws.Parts(); p++ {
		rd, err := ws.OpenReader(p)
		if err != nil {
			return err
		}
		for {
			ok, err := rd.Next(buf)
			if err != nil {
				rd.Close()
				return err
			}
			if !ok {
				break
			}
			key := string(buf)
			c := counts[key]
			if c == math.MaxUint64 {
				rd.Close()
				return errors.Newf(errors.SerializationError,
					"count overflow for k-mer %x", key)
			}
			counts[key] = c + 1
		}
		if err := rd.Close(); err != nil {
			return errors.Wrap(errors.IOError, err, "closing bank file")
		}
	}
	return nil
}
