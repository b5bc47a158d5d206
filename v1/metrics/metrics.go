// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package metrics exports string runtime and heap counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alex60217101990/strval/v1/heap"
	"github.com/alex60217101990/strval/v1/value"
)

const namespace = "strval"

var (
	flattensDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "flattens_total"),
		"Number of ropes flattened.", nil, nil)
	flattenedUnitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "flattened_units_total"),
		"Number of code units copied by flattening.", nil, nil)
	classificationsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "classifications_total"),
		"Number of strings hashed and classified.", nil, nil)
	identifiersDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "identifiers_total"),
		"Number of strings interned as identifiers.", nil, nil)
	comparesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "compares_total"),
		"Number of ordering comparisons.", nil, nil)
	equalDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "equal_total"),
		"Number of equality checks by deciding path.", []string{"path"}, nil)

	heapLiveDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "live"),
		"Number of strings tracked by the heap.", nil, nil)
	heapRootsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "roots"),
		"Number of distinct heap roots.", nil, nil)
	heapCellsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "cells"),
		"Number of heap cells ever allocated.", nil, nil)
	heapSegmentsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "segments"),
		"Number of heap segments.", nil, nil)
	heapCollectionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "collections_total"),
		"Number of completed collections.", nil, nil)
	heapFreedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "heap", "freed_total"),
		"Number of strings reclaimed by the heap.", nil, nil)
)

// Collector implements prometheus.Collector over a runtime and, optionally,
// a heap.
type Collector struct {
	rt   *value.Runtime
	heap *heap.Heap
}

// New returns a collector for rt. h may be nil.
func New(rt *value.Runtime, h *heap.Heap) *Collector {
	return &Collector{rt: rt, heap: h}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- flattensDesc
	ch <- flattenedUnitsDesc
	ch <- classificationsDesc
	ch <- identifiersDesc
	ch <- comparesDesc
	ch <- equalDesc
	if c.heap != nil {
		ch <- heapLiveDesc
		ch <- heapRootsDesc
		ch <- heapCellsDesc
		ch <- heapSegmentsDesc
		ch <- heapCollectionsDesc
		ch <- heapFreedDesc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.rt.Stats().Snapshot()

	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}

	counter(flattensDesc, s.Flattens)
	counter(flattenedUnitsDesc, s.FlattenedUnits)
	counter(classificationsDesc, s.Classifications)
	counter(identifiersDesc, s.Identifiers)
	counter(comparesDesc, s.Compares)
	counter(equalDesc, s.EqualIdentity, "identity")
	counter(equalDesc, s.EqualHashMismatch, "hash_mismatch")
	counter(equalDesc, s.EqualIdentifier, "identifier")
	counter(equalDesc, s.EqualNumeric, "numeric")
	counter(equalDesc, s.EqualContent, "content")

	if c.heap == nil {
		return
	}
	h := c.heap.Stats()
	gauge(heapLiveDesc, h.Live)
	gauge(heapRootsDesc, h.Roots)
	gauge(heapCellsDesc, h.Cells)
	gauge(heapSegmentsDesc, h.Segments)
	counter(heapCollectionsDesc, h.Collections)
	counter(heapFreedDesc, h.Freed)
}
