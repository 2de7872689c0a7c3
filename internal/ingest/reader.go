package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/regintel/riskscan/internal/model"
)

// SupportedExtensions lists the spreadsheet formats the reader accepts.
// Legacy binary formats and CSV are rejected before any byte is decoded.
var SupportedExtensions = []string{".xlsx", ".xlsm"}

// Reader parses uploaded bytes into an immutable Workbook snapshot.
type Reader struct {
	maxBytes int64
}

// NewReader creates a Reader with the given size ceiling in bytes.
func NewReader(maxBytes int64) *Reader {
	return &Reader{maxBytes: maxBytes}
}

// Read validates and decodes a raw upload. It is a pure parse: no side
// effects, and the returned Workbook is never mutated afterwards.
func (r *Reader) Read(data []byte, filename string) (*model.Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !isSupportedExtension(ext) {
		return nil, model.Wrap(model.ErrFileType, "extension %q", ext)
	}

	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, model.Wrap(model.ErrFileTooLarge, "%d bytes exceeds limit of %d", len(data), r.maxBytes)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, model.Wrap(model.ErrParse, "open workbook: %v", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, model.Wrap(model.ErrEmptyWorkbook, "%s", filename)
	}

	wb := &model.Workbook{
		FileName: filepath.Base(filename),
		Sheets:   make([]model.Sheet, 0, len(sheetList)),
	}

	for _, name := range sheetList {
		rows, err := f.GetRows(name)
		if err != nil {
			// A damaged sheet should not sink the whole workbook.
			rows = nil
		}
		wb.Sheets = append(wb.Sheets, model.Sheet{Name: name, Rows: rows})
	}

	return wb, nil
}

func isSupportedExtension(ext string) bool {
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
