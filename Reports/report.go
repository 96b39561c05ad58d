// Package Reports renders scoped fleet data as a PDF or an Excel workbook.
package Reports

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

var ErrDatasetTooLarge = errors.New("report dataset too large")

// ParseFormat accepts pdf, excel and xlsx.
func ParseFormat(raw string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pdf":
		return FormatPDF, true
	case "excel", "xlsx":
		return FormatExcel, true
	}
	return "", false
}

func (f Format) extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

func (f Format) contentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename is TruckManager_Report_<slug>_<YYYY-MM-DD>.<ext>.
func Filename(f Format, slug string, at time.Time) string {
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("TruckManager_Report_%s_%s.%s", slug, at.Format("2006-01-02"), f.extension())
}

// Generate renders data in memory. A dataset above maxRows rows is refused
// with ErrDatasetTooLarge; maxRows <= 0 disables the check.
func Generate(f Format, data Dataset, meta Meta, maxRows int) (Report, error) {
	if n := data.Rows(); maxRows > 0 && n > maxRows {
		return Report{}, fmt.Errorf("%w: %d rows, limit %d", ErrDatasetTooLarge, n, maxRows)
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}

	tables := BuildTables(data)

	var (
		body []byte
		err  error
	)
	switch f {
	case FormatPDF:
		body, err = renderPDF(tables, meta)
	case FormatExcel:
		body, err = renderExcel(tables)
	default:
		return Report{}, fmt.Errorf("unknown report format %q", f)
	}
	if err != nil {
		return Report{}, err
	}

	return Report{
		Filename:    Filename(f, meta.RangeSlug, meta.GeneratedAt),
		ContentType: f.contentType(),
		Body:        body,
	}, nil
}
