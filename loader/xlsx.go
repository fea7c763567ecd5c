package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// sstXML is xl/sharedStrings.xml: the string table cells reference by
// index.
type sstXML struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// sheetXML is one xl/worksheets/sheetN.xml.
type sheetXML struct {
	Rows []struct {
		Cells []struct {
			Type  string `xml:"t,attr"`
			Value string `xml:"v"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// extractXLSX flattens every worksheet into tab-separated rows, sheets in
// archive order. Only cell values are kept; formatting is dropped.
func extractXLSX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer reader.Close()

	shared, err := readSharedStrings(&reader.Reader)
	if err != nil {
		return "", err
	}

	var sheetFiles []*zip.File
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml") {
			sheetFiles = append(sheetFiles, file)
		}
	}
	if len(sheetFiles) == 0 {
		return "", fmt.Errorf("xlsx has no worksheets")
	}
	sort.Slice(sheetFiles, func(i, j int) bool { return sheetFiles[i].Name < sheetFiles[j].Name })

	var b strings.Builder
	for _, file := range sheetFiles {
		if err := appendSheet(&b, file, shared); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func readSharedStrings(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "xl/sharedStrings.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("read shared strings: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read shared strings: %w", err)
		}
		var sst sstXML
		if err := xml.Unmarshal(data, &sst); err != nil {
			return nil, fmt.Errorf("parse shared strings: %w", err)
		}
		out := make([]string, len(sst.Items))
		for i, item := range sst.Items {
			if item.Text != "" {
				out[i] = item.Text
				continue
			}
			var parts []string
			for _, run := range item.Runs {
				parts = append(parts, run.Text)
			}
			out[i] = strings.Join(parts, "")
		}
		return out, nil
	}
	return nil, nil
}

func appendSheet(b *strings.Builder, file *zip.File, shared []string) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("read worksheet: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("read worksheet: %w", err)
	}

	var sheet sheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return fmt.Errorf("parse worksheet: %w", err)
	}

	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			value := cell.Value
			if cell.Type == "s" {
				if idx, err := strconv.Atoi(cell.Value); err == nil && idx >= 0 && idx < len(shared) {
					value = shared[idx]
				}
			}
			cells = append(cells, value)
		}
		line := strings.TrimSpace(strings.Join(cells, "\t"))
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return nil
}
