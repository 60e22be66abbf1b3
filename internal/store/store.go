// Package store records readings as CSV with one file per day. Files are
// named YYYY-MM-DD.csv and have the columns:
//
//	time,source,raw,value,unit
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/luki/pitemp/internal/sensor"
)

const (
	timeLayout = "2006-01-02T15:04:05"
	fileLayout = "2006-01-02"
)

var header = []string{"time", "source", "raw", "value", "unit"}

// Recorder appends readings to the current day's file, rotating at
// midnight local time.
type Recorder struct {
	dir     string
	current *os.File
	writer  *csv.Writer
	curDate string
}

// StoredReading is a single row from a CSV log file.
type StoredReading struct {
	Time   time.Time
	Source string
	Raw    int64
	Value  float64
	Unit   string
}

// New creates a recorder in dir, creating the directory if needed.
func New(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data dir: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

// Record appends one reading.
func (d *Recorder) Record(r sensor.Reading) error {
	dateStr := r.Time.Format(fileLayout)

	if d.curDate != dateStr || d.current == nil {
		if err := d.Close(); err != nil {
			return err
		}
		f, err := os.OpenFile(DayPath(d.dir, r.Time), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		d.current = f
		d.writer = csv.NewWriter(f)
		d.curDate = dateStr

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			if err := d.writer.Write(header); err != nil {
				return err
			}
		}
	}

	if err := d.writer.Write([]string{
		r.Time.Format(timeLayout),
		r.Source,
		strconv.FormatInt(r.Raw, 10),
		strconv.FormatFloat(r.Value, 'f', 1, 64),
		r.Unit.Letter(),
	}); err != nil {
		return err
	}
	d.writer.Flush()
	return d.writer.Error()
}

// Close flushes and closes the current file.
func (d *Recorder) Close() error {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.current == nil {
		return nil
	}
	err := d.current.Close()
	d.current = nil
	d.writer = nil
	return err
}

// DayPath returns the file holding readings taken on the day of t.
func DayPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(fileLayout)+".csv")
}

// LoadDay reads the day file for t from dir. A day without a file has no
// readings.
func LoadDay(dir string, t time.Time) ([]StoredReading, error) {
	readings, err := LoadFile(DayPath(dir, t))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return readings, err
}

// LoadFile reads all rows from a CSV log file. Malformed rows are skipped.
func LoadFile(path string) ([]StoredReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var readings []StoredReading
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) < len(header) {
			continue
		}

		t, err := time.ParseInLocation(timeLayout, row[0], time.Local)
		if err != nil {
			continue
		}
		raw, _ := strconv.ParseInt(row[2], 10, 64)
		value, _ := strconv.ParseFloat(row[3], 64)

		readings = append(readings, StoredReading{
			Time:   t,
			Source: row[1],
			Raw:    raw,
			Value:  value,
			Unit:   row[4],
		})
	}
	return readings, nil
}
