package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLine bounds how much of the first line is read.
const maxLine = 127

// ErrUnsupported is returned when the sensor source cannot be opened or
// read. On anything but a Pi this usually means the path does not exist.
var ErrUnsupported = errors.New("this system is not supported by PiTempMonitor")

// FileSource reads the first line of a pseudo-file on every call. The file is
// not held open between reads.
type FileSource struct {
	Path string
}

// ReadRaw opens the file, reads its first line and parses the leading
// integer. Content without a numeric prefix reads as 0.
func (s FileSource) ReadRaw() (int64, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	defer f.Close()

	line, err := readLine(f)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", ErrUnsupported, s.Path, err)
	}
	return ParseMilli(line), nil
}

func (s FileSource) String() string {
	return s.Path
}

func readLine(r io.Reader) (string, error) {
	br := bufio.NewReader(io.LimitReader(r, maxLine))
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

// ParseMilli parses the leading decimal integer of s the way atoi does:
// leading whitespace and one sign are accepted, the first non-digit ends
// the number, and no digits at all yields 0. Values past the int64 range
// saturate.
func ParseMilli(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}

	v, _ := strconv.ParseInt(s[:end], 10, 64)
	return v
}
