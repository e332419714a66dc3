package bulkimport

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of a workbook into a header slice and
// header-keyed rows. Fully blank rows are skipped; blank trailing cells
// come back as empty strings.
func ParseXLSX(r io.Reader) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("bulkimport: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("bulkimport: workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("bulkimport: read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil, fmt.Errorf("bulkimport: sheet %q is empty", sheets[0])
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for _, line := range cells[1:] {
		row := make(Row, len(header))
		blank := true
		for i, name := range header {
			var value string
			if i < len(line) {
				value = line[i]
			}
			if strings.TrimSpace(value) != "" {
				blank = false
			}
			row[name] = value
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
