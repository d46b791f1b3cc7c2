package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// LoadCSV reads a file of numeric rows. Blank lines are skipped and every
// row must have the same number of columns.
func LoadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses numeric CSV rows from r, skipping blank lines.
func ReadCSV(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %d", line, i+1)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MinMaxNormalize rescales every column into [0, 1] in place. Constant
// columns become 0.
func MinMaxNormalize(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	col := make([]float64, len(rows))
	for j := range rows[0] {
		for i, row := range rows {
			col[i] = row[j]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		for _, row := range rows {
			if hi == lo {
				row[j] = 0
				continue
			}
			row[j] = (row[j] - lo) / (hi - lo)
		}
	}
}
