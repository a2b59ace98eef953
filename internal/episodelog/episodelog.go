// Package episodelog writes one CSV row per episode and reads those files
// back into summaries.
package episodelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lox/blackjackrl/internal/statistics"
)

// Header is the first row of every episode log.
var Header = []string{"episode", "total_reward", "steps", "win"}

// FileName returns the log file name for a scenario started at ts.
func FileName(scenario string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.csv", scenario, ts.Format("20060102_150405"))
}

// Writer appends episode rows to a CSV file.
type Writer struct {
	path string
	f    *os.File
	csv  *csv.Writer
	rows int
}

// Create makes dir if needed and starts a new log for scenario, writing the
// header row.
func Create(dir, scenario string, ts time.Time) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return Open(filepath.Join(dir, FileName(scenario, ts)))
}

// Open truncates path and writes the header row.
func Open(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create episode log: %w", err)
	}
	w := &Writer{path: path, f: f, csv: csv.NewWriter(f)}
	if err := w.csv.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Rows returns the number of episode rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Record appends one episode. Rows are buffered until Flush or Close.
func (w *Writer) Record(r statistics.EpisodeRecord) error {
	win := "0"
	if r.Win {
		win = "1"
	}
	row := []string{
		strconv.Itoa(r.Episode),
		strconv.FormatFloat(r.TotalReward, 'g', -1, 64),
		strconv.Itoa(r.Steps),
		win,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write episode %d: %w", r.Episode, err)
	}
	w.rows++
	return nil
}

// Flush writes buffered rows to the file.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	closeErr := w.f.Close()
	return errors.Join(flushErr, closeErr)
}

// Read parses an episode log into statistics.
func Read(r io.Reader) (*statistics.Statistics, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("episode log is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	stats := &statistics.Statistics{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stats.Add(rec)
	}
	return stats, nil
}

func parseRow(row []string) (statistics.EpisodeRecord, error) {
	episode, err := strconv.Atoi(row[0])
	if err != nil {
		return statistics.EpisodeRecord{}, fmt.Errorf("episode: %w", err)
	}
	reward, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return statistics.EpisodeRecord{}, fmt.Errorf("total_reward: %w", err)
	}
	steps, err := strconv.Atoi(row[2])
	if err != nil {
		return statistics.EpisodeRecord{}, fmt.Errorf("steps: %w", err)
	}
	var win bool
	switch row[3] {
	case "0":
	case "1":
		win = true
	default:
		return statistics.EpisodeRecord{}, fmt.Errorf("win: want 0 or 1, got %q", row[3])
	}
	return statistics.EpisodeRecord{Episode: episode, TotalReward: reward, Steps: steps, Win: win}, nil
}

// Summarize reads the log at path and returns its summary, labelled with the
// file name.
func Summarize(path string) (statistics.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return statistics.Summary{}, err
	}
	defer f.Close()

	stats, err := Read(f)
	if err != nil {
		return statistics.Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return stats.Summary(label, 0), nil
}
