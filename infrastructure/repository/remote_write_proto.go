package repository

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from prometheus/prompb types.proto
const (
	writeRequestTimeseriesField protowire.Number = 1
	timeSeriesLabelsField       protowire.Number = 1
	timeSeriesSamplesField      protowire.Number = 2
	labelNameField              protowire.Number = 1
	labelValueField             protowire.Number = 2
	sampleValueField            protowire.Number = 1
	sampleTimestampField        protowire.Number = 2
)

// TimeSeries is one gauge sample and its labels, excluding __name__
type TimeSeries struct {
	Name        string
	Labels      map[string]string
	Value       float64
	TimestampMs int64
}

// encodeWriteRequest encodes a prompb.WriteRequest holding every series
func encodeWriteRequest(series []TimeSeries) []byte {
	var buf []byte
	for _, ts := range series {
		buf = protowire.AppendTag(buf, writeRequestTimeseriesField, protowire.BytesType)
		buf = protowire.AppendBytes(buf, encodeTimeSeries(ts))
	}
	return buf
}

// encodeTimeSeries writes labels sorted by name, as remote write receivers expect
func encodeTimeSeries(ts TimeSeries) []byte {
	all := make(map[string]string, len(ts.Labels)+1)
	for k, v := range ts.Labels {
		all[k] = v
	}
	all["__name__"] = ts.Name

	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	sort.Strings(names)

	var buf []byte
	for _, name := range names {
		buf = protowire.AppendTag(buf, timeSeriesLabelsField, protowire.BytesType)
		buf = protowire.AppendBytes(buf, encodeLabel(name, all[name]))
	}

	buf = protowire.AppendTag(buf, timeSeriesSamplesField, protowire.BytesType)
	buf = protowire.AppendBytes(buf, encodeSample(ts.Value, ts.TimestampMs))
	return buf
}

func encodeLabel(name, value string) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, labelNameField, protowire.BytesType)
	buf = protowire.AppendString(buf, name)
	buf = protowire.AppendTag(buf, labelValueField, protowire.BytesType)
	buf = protowire.AppendString(buf, value)
	return buf
}

func encodeSample(value float64, timestampMs int64) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, sampleValueField, protowire.Fixed64Type)
	buf = protowire.AppendFixed64(buf, math.Float64bits(value))
	buf = protowire.AppendTag(buf, sampleTimestampField, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(timestampMs))
	return buf
}
