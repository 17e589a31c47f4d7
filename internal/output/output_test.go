// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func dataset() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "zebra", "count": 3, "state": "materialized"},
		{"name": "Alpha", "count": 1, "state": "materializing"},
		{"name": "beta", "count": 12, "state": "materialized"},
	}
}

func TestSortDataset(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{
			name:      "ascending by name",
			spec:      "name",
			wantOrder: []string{"Alpha", "beta", "zebra"},
		},
		{
			name:      "descending by name",
			spec:      "-name",
			wantOrder: []string{"zebra", "beta", "Alpha"},
		},
		{
			name:      "ascending by count is numeric",
			spec:      "count",
			wantOrder: []string{"Alpha", "zebra", "beta"},
		},
		{
			name:      "descending by count",
			spec:      "-count",
			wantOrder: []string{"beta", "zebra", "Alpha"},
		},
		{
			name:      "case sensitive",
			spec:      "!name",
			wantOrder: []string{"Alpha", "beta", "zebra"},
		},
		{
			name:      "multiple fields",
			spec:      "state,-count",
			wantOrder: []string{"beta", "zebra", "Alpha"},
		},
		{
			name:      "empty spec",
			spec:      "",
			wantOrder: []string{"zebra", "Alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := dataset()
			SortDataset(data, tt.spec)
			for i, expectedName := range tt.wantOrder {
				assert.Equal(t, expectedName, data[i]["name"], "at index %d", i)
			}
		})
	}
}

func TestSortDataset_Times(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	data := []map[string]interface{}{
		{"name": "b", "created": t0.Add(time.Hour)},
		{"name": "a", "created": t0},
	}
	SortDataset(data, "created")
	assert.Equal(t, "a", data[0]["name"])
}

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		spec string
		want []Filter
	}{
		{spec: "", want: nil},
		{spec: "state=materialized", want: []Filter{{Key: "state", Operand: "=", Target: "materialized"}}},
		{spec: "name!^toy", want: []Filter{{Key: "name", Negate: true, Operand: "^", Target: "toy"}}},
		{spec: "name@lp,count>1", want: []Filter{
			{Key: "name", Operand: "@", Target: "lp"},
			{Key: "count", Operand: ">", Target: "1"},
		}},
		{spec: "garbage", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilters(tt.spec))
		})
	}
}

func TestFilterDataset(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{spec: "", want: []string{"zebra", "Alpha", "beta"}},
		{spec: "state=materialized", want: []string{"zebra", "beta"}},
		{spec: "state!=materialized", want: []string{"Alpha"}},
		{spec: "name~alpha", want: []string{"Alpha"}},
		{spec: "name/^[a-z]", want: []string{"zebra", "beta"}},
		{spec: "count=12", want: []string{"beta"}},
		{spec: "missing=x", want: []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			var got []string
			for _, row := range FilterDataset(dataset(), tt.spec) {
				got = append(got, row["name"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmit(t *testing.T) {
	columns := []string{"name", "count"}

	var buf bytes.Buffer
	require.NoError(t, Emit(dataset(), columns, Options{Format: "json", Sort: "name"}, &buf))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha", rows[0]["name"])
	assert.NotContains(t, rows[0], "state")

	buf.Reset()
	require.NoError(t, Emit(dataset(), columns, Options{Format: "yaml", Filter: "name=beta"}, &buf))
	var yrows []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &yrows))
	require.Len(t, yrows, 1)
	assert.Equal(t, 12, yrows[0]["count"])

	buf.Reset()
	require.NoError(t, Emit(dataset(), columns, Options{Format: "text", Titles: true}, &buf))
	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "zebra")
	assert.Contains(t, out, "12")

	buf.Reset()
	require.NoError(t, Emit(nil, columns, Options{}, &buf))
	assert.Empty(t, buf.String())
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(1 << 40), want: "1099511627776"},
		{name: "float64", value: 42.5, want: "42.5"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "time", value: time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), want: "2025-06-01 14:30"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
		{name: "zero value with custom empty", value: 0, emptyVal: "N/A", want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetColors(t *testing.T) {
	header, even, odd := getColors("colors")

	assert.IsType(t, "", header)
	assert.IsType(t, "", even)
	assert.IsType(t, "", odd)
}

func BenchmarkSortDataset(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SortDataset(dataset(), "state,-count")
	}
}
