// Package dataprocessing implements the BANKNIFTY CE labeling pipeline.
//
// Stages are pure functions over immutable inputs:
//
//	Loader        rows  -> Dataset (ticks with parsed dates)
//	GroupByDate   ticks -> DateGroups (CE rows, time ordered)
//	SelectAnchor  group -> AnchorSlice (from the 09:15 anchor to end of day)
//	BuildSession  slices -> session ordered by (date, time)
//	RatchetLabeler session -> annotated rows and the paired total
//
// Processor wires them together with logging, tracing and metrics.
package dataprocessing
