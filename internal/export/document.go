package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var (
	// ErrUnsupportedFormat is returned for formats a report cannot be rendered in.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	// ErrNothingToExport is returned when a report has no rows.
	ErrNothingToExport = errors.New("export: nothing to export")
)

// ParseFormat normalizes a format name.
func ParseFormat(value string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")))
	switch format {
	case FormatCSV, FormatXLSX, FormatPDF:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Document is a rendered export ready to be served.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename builds "<base>_<YYYYMMDD_HHMMSS>.<ext>".
func Filename(base string, format Format, at time.Time) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "reporte"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		case r == ' ' || r == '.' || r == '/':
			return '_'
		default:
			return -1
		}
	}, base)
	return fmt.Sprintf("%s_%s.%s", base, at.Format("20060102_150405"), format)
}
