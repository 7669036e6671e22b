// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"strconv"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// LogPrec is the precision for saving float values in trace tables
var LogPrec = 6

// TraceTable collects samples into a table with one row per sample
type TraceTable struct {
	Table *etable.Table `desc:"columns Gid, Probe, Tag, Time, Value"`
}

// NewTraceTable returns an empty trace table with the given name
func NewTraceTable(name string) *TraceTable {
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))
	sch := etable.Schema{
		{"Gid", etensor.INT64, nil, nil},
		{"Probe", etensor.INT64, nil, nil},
		{"Tag", etensor.STRING, nil, nil},
		{"Time", etensor.FLOAT64, nil, nil},
		{"Value", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
	return &TraceTable{Table: dt}
}

// Sampler returns a sampler that appends its records to the table
func (tt *TraceTable) Sampler() Sampler {
	return func(pm ProbeMetadata, n int, recs []SampleRecord) {
		dt := tt.Table
		row := dt.Rows
		dt.AddRows(n)
		for i := 0; i < n; i++ {
			dt.SetCellFloat("Gid", row+i, float64(pm.Addr.Gid))
			dt.SetCellFloat("Probe", row+i, float64(pm.Addr.Index))
			dt.SetCellString("Tag", row+i, pm.Info.Tag)
			dt.SetCellFloat("Time", row+i, recs[i].Time)
			dt.SetCellFloat("Value", row+i, recs[i].Value)
		}
	}
}

// Values returns the times and values recorded for probe addr
func (tt *TraceTable) Values(addr ProbeAddress) (ts, vs []float64) {
	dt := tt.Table
	for r := 0; r < dt.Rows; r++ {
		if int(dt.CellFloat("Gid", r)) != addr.Gid || int(dt.CellFloat("Probe", r)) != addr.Index {
			continue
		}
		ts = append(ts, dt.CellFloat("Time", r))
		vs = append(vs, dt.CellFloat("Value", r))
	}
	return
}
