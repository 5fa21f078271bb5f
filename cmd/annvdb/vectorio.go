package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readIDs reads one int64 per non-blank line.
func readIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var ids []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// readVectors reads one row of dim comma- or whitespace-separated float32
// values per non-blank line, returning the flattened (nb*dim) slice and nb.
func readVectors(path string, dim int) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []float32
	nb := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) != dim {
			return nil, 0, fmt.Errorf("row %d: expected %d values, got %d", nb, dim, len(fields))
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: parse %q: %w", nb, field, err)
			}
			out = append(out, float32(v))
		}
		nb++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return out, nb, nil
}
