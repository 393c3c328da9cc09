package analytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ErrUnsupportedFormat is returned for formats other than json, csv and excel.
var ErrUnsupportedFormat = errors.New("analytics: unsupported export format")

// ParseFormat maps a case-insensitive name to a Format. An empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatExcel, "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Worksheet is a tabular rendering ready for a spreadsheet writer.
type Worksheet struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Export is the encoded form of a metrics value. Exactly one of Body or Sheet
// is populated depending on Format.
type Export struct {
	Format      Format
	ContentType string
	Filename    string
	Body        []byte
	Sheet       *Worksheet
}

var exportHeaders = []string{"metric", "value"}

// ExportData encodes metrics in the requested format. CSV and excel output
// flatten nested values into dotted metric paths in declaration order.
func ExportData(name string, metrics any, format Format) (Export, error) {
	if name == "" {
		name = "analytics"
	}
	switch format {
	case FormatJSON:
		body, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return Export{}, fmt.Errorf("encode json export: %w", err)
		}
		return Export{Format: format, ContentType: "application/json", Filename: name + ".json", Body: body}, nil
	case FormatCSV:
		rows, err := Flatten(metrics)
		if err != nil {
			return Export{}, err
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeaders); err != nil {
			return Export{}, fmt.Errorf("encode csv export: %w", err)
		}
		if err := w.WriteAll(rows); err != nil {
			return Export{}, fmt.Errorf("encode csv export: %w", err)
		}
		return Export{Format: format, ContentType: "text/csv", Filename: name + ".csv", Body: buf.Bytes()}, nil
	case FormatExcel:
		rows, err := Flatten(metrics)
		if err != nil {
			return Export{}, err
		}
		sheet := &Worksheet{Name: name, Headers: append([]string(nil), exportHeaders...), Rows: rows}
		return Export{Format: format, ContentType: "application/json", Filename: name + ".xlsx.json", Sheet: sheet}, nil
	default:
		return Export{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Flatten renders a JSON-encodable value as [path, value] rows. Array elements
// are addressed by index, e.g. "hallUtilization.0.hallName".
func Flatten(v any) ([][]string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("flatten metrics: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	rows := make([][]string, 0)
	if err := flattenValue(dec, "", &rows); err != nil {
		return nil, fmt.Errorf("flatten metrics: %w", err)
	}
	return rows, nil
}

func flattenValue(dec *json.Decoder, path string, rows *[][]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", keyTok)
				}
				if err := flattenValue(dec, joinPath(path, key), rows); err != nil {
					return err
				}
			}
		case '[':
			for i := 0; dec.More(); i++ {
				if err := flattenValue(dec, joinPath(path, strconv.Itoa(i)), rows); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case nil:
		*rows = append(*rows, []string{path, ""})
	case bool:
		*rows = append(*rows, []string{path, strconv.FormatBool(t)})
	case json.Number:
		*rows = append(*rows, []string{path, t.String()})
	case string:
		*rows = append(*rows, []string{path, t})
	}
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
