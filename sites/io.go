package sites

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skfile/argweaver/model"
)

// Read parses a sites file. REGION coordinates are 1-based inclusive in
// the file and converted to 0-based half-open; data positions likewise.
func Read(r io.Reader) (*Sites, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var s *Sites
	var names []string
	lineno := 0

	for sc.Scan() {
		lineno++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "NAMES":
			names = fields[1:]
			if len(names) == 0 {
				return nil, fmt.Errorf("line %d: NAMES without ids: %w", lineno, ErrFormat)
			}

		case "REGION":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: REGION wants chrom start end: %w", lineno, ErrFormat)
			}
			start, err1 := strconv.Atoi(fields[2])
			end, err2 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || end < start {
				return nil, fmt.Errorf("line %d: bad REGION coordinates: %w", lineno, ErrFormat)
			}
			if names == nil {
				return nil, fmt.Errorf("line %d: REGION before NAMES: %w", lineno, ErrFormat)
			}
			s = New(fields[1], start-1, end, names)

		default:
			if s == nil {
				return nil, fmt.Errorf("line %d: data before headers: %w", lineno, ErrFormat)
			}
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: want pos and column: %w", lineno, ErrFormat)
			}
			pos, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad position: %w", lineno, ErrFormat)
			}
			if pos-1 < s.Start || pos-1 >= s.End {
				return nil, fmt.Errorf("line %d: position outside REGION: %w", lineno, ErrFormat)
			}
			col := []byte(fields[1])
			for _, c := range col {
				switch c {
				case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n', '0', '1':
				default:
					return nil, fmt.Errorf("line %d: bad base %q: %w", lineno, c, ErrFormat)
				}
			}
			if err := s.Append(pos-1, col); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("missing NAMES/REGION headers: %w", ErrFormat)
	}
	return s, nil
}

// Write emits the sites format, converting back to 1-based inclusive
// coordinates.
func (s *Sites) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "NAMES\t%s\n", strings.Join(s.Names, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "REGION\t%s\t%d\t%d\n", s.Chrom, s.Start+1, s.End); err != nil {
		return err
	}
	for i, pos := range s.positions {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", pos+1, s.columns[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadRateMap parses a TSV rate track (chrom, start, end, rate):
// half-open, non-overlapping per chromosome, sorted by start. Rows for
// other chromosomes are skipped.
func ReadRateMap(r io.Reader, chrom string) (*model.RateMap, error) {
	sc := bufio.NewScanner(r)
	var ivals []model.RateInterval
	lineno := 0

	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: want chrom start end rate: %w", lineno, ErrFormat)
		}
		if fields[0] != chrom {
			continue
		}
		start, err1 := strconv.Atoi(fields[1])
		end, err2 := strconv.Atoi(fields[2])
		rate, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("line %d: bad fields: %w", lineno, ErrFormat)
		}
		ivals = append(ivals, model.RateInterval{Start: start, End: end, Value: rate})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return model.NewRateMap(ivals)
}
