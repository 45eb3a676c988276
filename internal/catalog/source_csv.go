package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var csvHeader = []string{"melon_id", "common_name", "price", "image_url", "color", "seedless"}

// LoadCSV reads melons from r. The first row must be the header
// melon_id,common_name,price,image_url,color,seedless.
func LoadCSV(r io.Reader) ([]Melon, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("catalog csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("catalog csv: %w", err)
	}
	for i, col := range csvHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("catalog csv: column %d is %q, want %q", i, header[i], col)
		}
	}

	out := make([]Melon, 0, 16)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog csv: %w", err)
		}

		line, _ := cr.FieldPos(0)

		price, err := ParsePrice(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("catalog csv line %d: %w", line, err)
		}

		seedless := false
		if s := strings.TrimSpace(rec[5]); s != "" {
			seedless, err = strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("catalog csv line %d: seedless %q: %w", line, s, err)
			}
		}

		out = append(out, Melon{
			ID:         strings.TrimSpace(rec[0]),
			CommonName: strings.TrimSpace(rec[1]),
			PriceCents: price,
			ImageURL:   strings.TrimSpace(rec[3]),
			Color:      strings.TrimSpace(rec[4]),
			Seedless:   seedless,
		})
	}

	return out, nil
}

func LoadCSVFile(path string) ([]Melon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadCSV(f)
}
