package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rodeoai/ingest/internal/models"
)

// HTMLParser extracts tables from HTML documents. Each table is
// classified and parsed like a tabular sheet; documents without tables
// fall back to free-text pattern extraction over the visible text.
type HTMLParser struct{}

func (p *HTMLParser) SupportsType(declaredType string) bool {
	return strings.Contains(strings.ToLower(declaredType), "html")
}

func (p *HTMLParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".html", ".htm")
}

func (p *HTMLParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}

	merged := &models.RecordSet{Source: filename}
	tables := 0
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		headers, rows := tableCells(table)
		if len(headers) == 0 {
			return
		}
		tables++
		set := classifyTable(headers, rows, fmt.Sprintf("%s#table%d", filename, i))
		mergeRecordSets(merged, set)
	})

	if tables == 0 {
		return parseFreeText(doc.Text(), filename), nil
	}
	return merged, nil
}

// tableCells flattens a goquery table selection into a header row and
// data rows. Header cells come from th elements, or the first row when
// the table has none.
func tableCells(table *goquery.Selection) ([]string, [][]string) {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return
		}
		var row []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		if len(row) == 0 {
			return
		}
		if headers == nil {
			headers = row
			return
		}
		rows = append(rows, row)
	})

	return headers, rows
}
