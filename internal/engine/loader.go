package engine

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	log "github.com/sirupsen/logrus"

	"exodash/internal/config"
)

// LoadTable reads the CSV at path into an immutable Table.
// Columns listed as numeric are parsed as float64, every other column as text.
// Empty cells become nulls. Any parse error is returned; callers treat it as fatal.
func LoadTable(path string, cols config.Columns) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f, cols)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":    path,
		"rows":    t.NumRows(),
		"columns": len(t.names),
		"took":    time.Since(start),
	}).Info("table loaded")
	return t, nil
}

// ReadTable parses CSV from src. The header is read first to build the arrow
// schema, then src is rewound and parsed in a single chunk.
func ReadTable(src io.ReadSeeker, cols config.Columns) (*Table, error) {
	// 1. Header -> schema
	header, err := stdcsv.NewReader(src).Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	schema, err := schemaFor(header, cols)
	if err != nil {
		return nil, err
	}

	// 2. Rewind and parse everything into one record
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}
	mem := memory.NewGoAllocator()
	r := csv.NewReader(src, schema,
		csv.WithAllocator(mem),
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(true, ""),
	)
	defer r.Release()

	var rec arrow.Record
	for r.Next() {
		next := r.Record()
		next.Retain()
		if rec != nil {
			// chunk -1 yields a single record
			next.Release()
			continue
		}
		rec = next
	}
	if err := r.Err(); err != nil {
		if rec != nil {
			rec.Release()
		}
		return nil, fmt.Errorf("parse: %w", err)
	}

	// 3. Header-only file
	if rec == nil {
		rec = emptyRecord(mem, schema)
	}
	return newTable(rec), nil
}

func schemaFor(header []string, cols config.Columns) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("header column %d has no name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = true

		var typ arrow.DataType = arrow.BinaryTypes.String
		if cols.IsNumeric(name) {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: name, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

func emptyRecord(mem memory.Allocator, schema *arrow.Schema) arrow.Record {
	arrs := make([]arrow.Array, len(schema.Fields()))
	for i, f := range schema.Fields() {
		b := array.NewBuilder(mem, f.Type)
		arrs[i] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, arrs, 0)
	for _, a := range arrs {
		a.Release()
	}
	return rec
}
