package convert

import (
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// Column order here must match the append sequence in WriteParquet.
var profileSchema = arrow.NewSchema([]arrow.Field{
	{Name: "float_id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "cycle_number", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "level", Type: arrow.PrimitiveTypes.Int32},
	{Name: "profile_timestamp", Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true},
	{Name: "latitude", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "longitude", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "pressure", Type: arrow.PrimitiveTypes.Float64},
	{Name: "temperature", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "salinity", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "position_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "pres_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "temp_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "psal_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "temperature_adj", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "salinity_adj", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "pressure_adj", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "temp_adj_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "psal_adj_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "data_mode", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "oxygen", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "oxygen_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "chlorophyll", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "chlorophyll_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "nitrate", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "nitrate_qc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "month", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
}, nil)

// WriteParquet writes the row table to a Parquet file, dictionary-encoding
// the low-cardinality columns.
func WriteParquet(rows []Row, path, compression string) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, profileSchema)
	defer builder.Release()

	for _, r := range rows {
		f := 0
		next := func() int { f++; return f - 1 }

		builder.Field(next()).(*array.Int64Builder).Append(r.FloatID)
		appendInt32(builder.Field(next()).(*array.Int32Builder), r.CycleNumber)
		builder.Field(next()).(*array.Int32Builder).Append(r.Level)
		appendTimestamp(builder.Field(next()).(*array.TimestampBuilder), r.ProfileTimestamp)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Latitude)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Longitude)
		builder.Field(next()).(*array.Float64Builder).Append(r.Pressure)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Temperature)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Salinity)
		appendString(builder.Field(next()).(*array.StringBuilder), r.PositionQC)
		appendString(builder.Field(next()).(*array.StringBuilder), r.PresQC)
		appendString(builder.Field(next()).(*array.StringBuilder), r.TempQC)
		appendString(builder.Field(next()).(*array.StringBuilder), r.PsalQC)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.TemperatureAdj)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.SalinityAdj)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.PressureAdj)
		appendString(builder.Field(next()).(*array.StringBuilder), r.TempAdjQC)
		appendString(builder.Field(next()).(*array.StringBuilder), r.PsalAdjQC)
		appendString(builder.Field(next()).(*array.StringBuilder), r.DataMode)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Oxygen)
		appendString(builder.Field(next()).(*array.StringBuilder), r.OxygenQC)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Chlorophyll)
		appendString(builder.Field(next()).(*array.StringBuilder), r.ChlorophyllQC)
		appendFloat64(builder.Field(next()).(*array.Float64Builder), r.Nitrate)
		appendString(builder.Field(next()).(*array.StringBuilder), r.NitrateQC)
		appendInt32(builder.Field(next()).(*array.Int32Builder), r.Year)
		appendInt32(builder.Field(next()).(*array.Int32Builder), r.Month)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	table := array.NewTableFromRecords(profileSchema, []arrow.Record{rec})
	defer table.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer out.Close()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codecFor(compression)),
		parquet.WithDictionaryDefault(false),
		parquet.WithDictionaryFor("float_id", true),
		parquet.WithDictionaryFor("cycle_number", true),
		parquet.WithDictionaryFor("data_mode", true),
	)

	if err := pqarrow.WriteTable(table, out, table.NumRows(), props, pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

func codecFor(name string) compress.Compression {
	switch name {
	case "snappy":
		return compress.Codecs.Snappy
	case "gzip":
		return compress.Codecs.Gzip
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Zstd
	}
}

func appendFloat64(b *array.Float64Builder, v *float64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func appendInt32(b *array.Int32Builder, v *int32) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func appendString(b *array.StringBuilder, v *string) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func appendTimestamp(b *array.TimestampBuilder, v *time.Time) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(arrow.Timestamp(v.UTC().UnixMicro()))
}
