// Package export writes cleaned record sets for downstream analysis.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/wonny/strikezone/internal/contracts"
	"github.com/wonny/strikezone/internal/dataset"
)

// Row is the Parquet schema of one cleaned pitch.
// Zone columns are null when the cell is not a finite number.
type Row struct {
	Year       int32    `parquet:"name=year, type=INT32"`
	PX         float64  `parquet:"name=px, type=DOUBLE"`
	PZ         float64  `parquet:"name=pz, type=DOUBLE"`
	IsStrike   int32    `parquet:"name=is_strike, type=INT32"`
	ZoneTop    *float64 `parquet:"name=sz_top, type=DOUBLE, repetitiontype=OPTIONAL"`
	ZoneBottom *float64 `parquet:"name=sz_bot, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// FileName is the export file of a season
func FileName(year int) string {
	return fmt.Sprintf("pitches_clean_%d.parquet", year)
}

func codec(compression string) parquet.CompressionCodec {
	switch strings.ToLower(compression) {
	case "snappy":
		return parquet.CompressionCodec_SNAPPY
	case "gzip":
		return parquet.CompressionCodec_GZIP
	case "zstd":
		return parquet.CompressionCodec_ZSTD
	default:
		return parquet.CompressionCodec_UNCOMPRESSED
	}
}

// WriteParquet writes rs to path; the file appears only when complete
func WriteParquet(path string, rs *contracts.RecordSet, compression string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp := path + ".tmp"
	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		fw.Close()
		os.Remove(tmp)
		return fmt.Errorf("new parquet writer: %w", err)
	}
	pw.CompressionType = codec(compression)

	fail := func(err error) error {
		_ = pw.WriteStop()
		fw.Close()
		os.Remove(tmp)
		return err
	}

	year := int32(rs.Year)
	for _, rec := range rs.Records {
		row := Row{
			Year:       year,
			PX:         rec.PX,
			PZ:         rec.PZ,
			IsStrike:   int32(rec.IsStrike),
			ZoneTop:    optional(rec.ZoneTop),
			ZoneBottom: optional(rec.ZoneBottom),
		}
		if err := pw.Write(row); err != nil {
			return fail(fmt.Errorf("write parquet row: %w", err))
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		os.Remove(tmp)
		return fmt.Errorf("finalize parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close parquet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func optional(cell string) *float64 {
	v, ok := dataset.ParseNumber(cell)
	if !ok {
		return nil
	}
	return &v
}
