// cmd/dsk/commands/export.go
package commands

import (
	"database/sql"
	"os"
	"sort"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"dsk/internal/alphabet"
	"dsk/internal/countmap"
	"dsk/internal/errors"
	"dsk/internal/kmer"
)

var exportCmd = &cobra.Command{
	Use:   "export <counts.map> <counts.db>",
	Short: "load a count map into a SQLite database",
	Long: `export reads a binary count map written by dsk and loads it into a
SQLite table kmer_counts(kmer, packed, count), creating the database file
if needed.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
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

	db, err := sql.Open("sqlite", args[1])
	if err != nil {
		return errors.Wrapf(errors.IOError, err, "opening database %s", args[1])
	}
	defer db.Close()

	const schema = `CREATE TABLE IF NOT EXISTS kmer_counts (
		kmer   TEXT PRIMARY KEY,
		packed BLOB NOT NULL,
		count  INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(errors.IOError, err, "creating kmer_counts table")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.IOError, err, "starting transaction")
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO kmer_counts (kmer, packed, count) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(errors.IOError, err, "preparing insert")
	}

	keys := make([]string, 0, len(cm.Counts))
	for key := range cm.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		letters, err := kmer.Decode(alpha, cm.K, []byte(key))
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(string(letters), []byte(key), int64(cm.Counts[key])); err != nil {
			stmt.Close()
			tx.Rollback()
			return errors.Wrapf(errors.IOError, err, "inserting k-mer %s", letters)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.IOError, err, "committing counts")
	}
	return nil
}
