package audit

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// QueryFilter holds equality filters applied to a Query call (spec.md
// §4.6: "Query helpers can read the last N records and apply equality
// filters on type, allowed, and severity").
type QueryFilter struct {
	Type     string
	Allowed  *bool
	Severity string
}

func (f QueryFilter) matches(r Record) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}

	if f.Allowed != nil && r.Allowed != *f.Allowed {
		return false
	}

	if f.Severity != "" && string(r.Severity) != f.Severity {
		return false
	}

	return true
}

// Query reads path and returns up to the last n records matching filter,
// oldest first. n <= 0 means "all matching records".
func Query(path string, n int, filter QueryFilter) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var matched []Record

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}

		if filter.matches(record) {
			matched = append(matched, record)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if n > 0 && len(matched) > n {
		matched = matched[len(matched)-n:]
	}

	return matched, nil
}

// RenderTable formats records as a go-pretty table for the `depwatch audit
// tail` CLI view (SPEC_FULL.md §4's supplemented audit query helper).
func RenderTable(records []Record) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Time", "Type", "Allowed", "Severity", "Reason", "Target", "Package"})

	for _, r := range records {
		t.AppendRow(table.Row{r.ISO, r.Type, r.Allowed, r.Severity, r.Reason, r.Target, r.Package})
	}

	return t.Render()
}
