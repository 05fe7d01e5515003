package query

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/ohrlando/stream-list/errors"
	"github.com/ohrlando/stream-list/util"
)

// Format is a record encoding.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// FormatNames lists the accepted format names.
var FormatNames = []string{string(FormatJSON), string(FormatJSONL), string(FormatYAML), string(FormatCSV)}

var extensions = map[string]Format{
	".json":   FormatJSON,
	".jsonl":  FormatJSONL,
	".ndjson": FormatJSONL,
	".yaml":   FormatYAML,
	".yml":    FormatYAML,
	".csv":    FormatCSV,
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatCSV:
		return f, nil
	default:
		return "", errors.Unsupported("format", name)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Decode reads every record from r.
func Decode(r io.Reader, f Format) ([]Record, error) {
	switch f {
	case FormatJSON:
		return decodeJSON(r)
	case FormatJSONL:
		return decodeJSONLines(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatCSV:
		return decodeCSV(r)
	default:
		return nil, errors.Unsupported("format", string(f))
	}
}

func decodeJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Internal(err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Record{}, nil
	}
	if data[0] == '{' {
		var rec Record
		if err := gojson.Unmarshal(data, &rec); err != nil {
			return nil, errors.InvalidFormat("input", "JSON object").WithCause(err)
		}
		return []Record{rec}, nil
	}
	records := []Record{}
	if err := gojson.Unmarshal(data, &records); err != nil {
		return nil, errors.InvalidFormat("input", "JSON array of objects").WithCause(err)
	}
	return records, nil
}

func decodeJSONLines(r io.Reader) ([]Record, error) {
	records := []Record{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec Record
		if err := gojson.Unmarshal(text, &rec); err != nil {
			return nil, errors.InvalidFormat(fmt.Sprintf("input line %d", line), "JSON object").WithCause(err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Internal(err)
	}
	return records, nil
}

// decodeYAML accepts a sequence of mappings, or a single mapping read as one
// record, mirroring decodeJSON.
func decodeYAML(r io.Reader) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []Record{}, nil
		}
		return nil, errors.InvalidFormat("input", "YAML sequence of mappings").WithCause(err)
	}
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		var rec Record
		if err := doc.Decode(&rec); err != nil {
			return nil, errors.InvalidFormat("input", "YAML mapping").WithCause(err)
		}
		return []Record{rec}, nil
	}
	records := []Record{}
	if err := doc.Decode(&records); err != nil {
		return nil, errors.InvalidFormat("input", "YAML sequence of mappings").WithCause(err)
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, errors.InvalidFormat("input", "CSV with a header row").WithCause(err)
	}
	for i, h := range header {
		header[i] = util.SanitizeString(h)
	}

	records := []Record{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, errors.InvalidFormat("input", "CSV with a header row").WithCause(err)
		}
		rec := make(Record, len(header))
		for i, h := range header {
			rec[h] = row[i]
		}
		records = append(records, rec)
	}
}

// Encode writes records to w. columns fixes the CSV column order; without
// it the sorted union of every record's keys is used.
func Encode(w io.Writer, f Format, records []Record, columns ...string) error {
	switch f {
	case FormatJSON:
		return encodeValue(w, f, records)
	case FormatJSONL:
		enc := gojson.NewEncoder(w)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return errors.Internal(err)
			}
		}
		return nil
	case FormatYAML:
		return encodeValue(w, f, records)
	case FormatCSV:
		return encodeCSV(w, records, columns)
	default:
		return errors.Unsupported("format", string(f))
	}
}

// EncodeResult writes the outcome of Run. List results and the record found
// by first or last go through Encode; booleans and counts are written as
// scalars.
func EncodeResult(w io.Writer, f Format, res Result, columns ...string) error {
	switch res.Mode {
	case ModeList:
		return Encode(w, f, res.Records, columns...)
	case ModeFirst, ModeLast:
		if f == FormatCSV || f == FormatJSONL {
			return Encode(w, f, res.Records, columns...)
		}
	}
	return encodeValue(w, f, res.Value())
}

func encodeValue(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON, FormatJSONL:
		enc := gojson.NewEncoder(w)
		if f == FormatJSON {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(v); err != nil {
			return errors.Internal(err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Internal(err)
		}
		if err := enc.Close(); err != nil {
			return errors.Internal(err)
		}
		return nil
	case FormatCSV:
		if _, err := fmt.Fprintln(w, v); err != nil {
			return errors.Internal(err)
		}
		return nil
	default:
		return errors.Unsupported("format", string(f))
	}
}

func encodeCSV(w io.Writer, records []Record, columns []string) error {
	if len(columns) == 0 {
		union := make(map[string]struct{})
		for _, rec := range records {
			for k := range rec {
				union[k] = struct{}{}
			}
		}
		columns = util.SortedKeys(union)
	}
	if len(columns) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return errors.Internal(err)
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = csvCell(rec[col])
		}
		if err := writer.Write(row); err != nil {
			return errors.Internal(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// csvCell renders nested values as JSON and scalars as text.
func csvCell(v any) string {
	switch v.(type) {
	case map[string]any, []any, Record:
		if data, err := gojson.Marshal(v); err == nil {
			return string(data)
		}
	}
	return valueString(v)
}
