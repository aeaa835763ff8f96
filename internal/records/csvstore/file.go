// Package csvstore keeps record tables in memory and writes them through to
// comma-delimited files.
package csvstore

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	saveAttempts = 3
	saveBackoff  = 50 * time.Millisecond
	maxLineBytes = 1 << 20
)

// readRows calls fn for every non-blank line of the file. Each line is parsed
// on its own, so a stray quote spoils only the line it appears on. Lines that
// cannot be parsed, or that fn rejects, are logged with their line number and
// skipped; they never stop the load.
func readRows(path string, logger logrus.FieldLogger, skipHeader bool, fn func(record []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNumber := 0
	headerPending := skipHeader
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if headerPending {
			headerPending = false
			continue
		}

		record, err := parseLine(line)
		if err == nil {
			err = fn(record)
		}
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path": path,
				"line": lineNumber,
			}).WithError(err).Warn("skipping malformed line")
		}
	}
	return scanner.Err()
}

func parseLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty record")
	}
	return record, err
}

// writeRows replaces the file at path with the rows produced by encode. Each
// attempt writes a temporary file next to the target and renames it over the
// target, so readers and crashes only ever see a complete file.
func writeRows(path string, encode func(w *csv.Writer) error) error {
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		if err = writeFileAtomic(path, encode); err == nil {
			return nil
		}
		if attempt < saveAttempts {
			time.Sleep(time.Duration(attempt) * saveBackoff)
		}
	}
	return err
}

func writeFileAtomic(path string, encode func(w *csv.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}

	writer := csv.NewWriter(tmp)
	if err = encode(writer); err != nil {
		return err
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
