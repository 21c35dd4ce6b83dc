// Package parser ingests raw transport object lists — pasted text, CSV
// exports, or JSON — into object records for the analysis engine.
//
// Parsing is deliberately tolerant: real transport exports are messy,
// and a row the parser cannot place is skipped and reported, never a
// batch failure.
package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"crosscheck/internal/model"
	"crosscheck/internal/normalize"
)

// abapLineRE matches transport lines such as "R3TR PROG ZREPORT".
var abapLineRE = regexp.MustCompile(`(?i)(R3TR|LIMU)\s+([A-Z0-9_]{3,5})\s+([A-Z0-9_/\\\-~><=]+)`)

// Result carries the parsed records plus skipped-row warnings.
type Result struct {
	Records []model.ObjectRecord
	Skipped []model.SkippedRecord
}

// ParseObjectText parses a pasted ABAP object list. Handles space/tab
// delimited exports and mixed text containing R3TR/LIMU patterns;
// dedupes by object identity, first occurrence wins.
func ParseObjectText(text string) Result {
	var result Result
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		ln := strings.TrimSpace(line)
		if ln == "" {
			continue
		}

		record, ok := parseLine(ln)
		if !ok {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Raw:    ln,
				Reason: "unrecognized object line",
			})
			continue
		}

		addUnique(&result, seen, record)
	}

	return result
}

func parseLine(ln string) (model.ObjectRecord, bool) {
	if m := abapLineRE.FindStringSubmatch(ln); m != nil {
		return model.ObjectRecord{Class: m[1], Type: m[2], Name: m[3], Raw: ln}, true
	}

	parts := strings.Fields(ln)

	// "R3TR PROG ZFOO" that the regex missed (exotic name characters).
	if len(parts) >= 3 {
		class := strings.ToUpper(parts[0])
		if class == "R3TR" || class == "LIMU" {
			return model.ObjectRecord{Class: parts[0], Type: parts[1], Name: parts[2], Raw: ln}, true
		}
	}

	// Shorthand without the class column: "PROG ZFOO".
	if len(parts) >= 2 {
		if _, known := normalize.KnownTypes[strings.ToUpper(parts[0])]; known {
			return model.ObjectRecord{Class: "R3TR", Type: parts[0], Name: parts[1], Raw: ln}, true
		}
	}

	return model.ObjectRecord{}, false
}

// ParseCSV parses a CSV export with a header row. Column names are
// matched leniently (obj_type/object_type/type, obj_name/object_name/
// name, package/devclass).
func ParseCSV(r io.Reader) (Result, error) {
	var result Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if idx, ok := cols[name]; ok && idx < len(row) {
				if v := strings.TrimSpace(row[idx]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	seen := make(map[string]struct{})
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read CSV row: %w", err)
		}

		record := model.ObjectRecord{
			Class:   field(row, "obj_class", "object_class", "class"),
			Type:    field(row, "obj_type", "object_type", "type"),
			Name:    field(row, "obj_name", "object_name", "name"),
			Package: field(row, "package", "devclass"),
			Raw:     strings.Join(row, ","),
		}
		if record.Class == "" {
			record.Class = "R3TR"
		}
		if record.Type == "" || record.Name == "" {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Raw:    record.Raw,
				Reason: "missing object type or name",
			})
			continue
		}

		addUnique(&result, seen, record)
	}

	return result, nil
}

// jsonObject mirrors the accepted JSON row shape with its aliases.
type jsonObject struct {
	ObjClass   string `json:"obj_class"`
	ObjType    string `json:"obj_type"`
	ObjectType string `json:"object_type"`
	ObjName    string `json:"obj_name"`
	ObjectName string `json:"object_name"`
	Package    string `json:"package"`
	Raw        string `json:"raw"`
}

// ParseJSON parses either {"objects": [...]} or a bare object list.
func ParseJSON(data []byte) (Result, error) {
	var result Result

	var objects []jsonObject
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return result, fmt.Errorf("failed to parse JSON object list: %w", err)
		}
	} else {
		var wrapper struct {
			Objects []jsonObject `json:"objects"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return result, fmt.Errorf("failed to parse JSON change document: %w", err)
		}
		objects = wrapper.Objects
	}

	seen := make(map[string]struct{})
	for _, o := range objects {
		record := model.ObjectRecord{
			Class:   o.ObjClass,
			Type:    firstNonEmpty(o.ObjType, o.ObjectType),
			Name:    firstNonEmpty(o.ObjName, o.ObjectName),
			Package: o.Package,
			Raw:     o.Raw,
		}
		if record.Class == "" {
			record.Class = "R3TR"
		}
		if record.Type == "" || record.Name == "" {
			result.Skipped = append(result.Skipped, model.SkippedRecord{
				Raw:    record.Raw,
				Reason: "missing object type or name",
			})
			continue
		}

		addUnique(&result, seen, record)
	}

	return result, nil
}

// addUnique appends the record unless its normalized identity was
// already seen. Normalization here is only used for dedup; the engine
// re-normalizes authoritatively.
func addUnique(result *Result, seen map[string]struct{}, record model.ObjectRecord) {
	obj, err := normalize.Normalize(record)
	if err != nil {
		result.Skipped = append(result.Skipped, model.SkippedRecord{Raw: record.Raw, Reason: err.Error()})
		return
	}
	identity := obj.Identity()
	if _, dup := seen[identity]; dup {
		return
	}
	seen[identity] = struct{}{}
	result.Records = append(result.Records, record)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
