// Package audit records each optimization run for offline inspection.
// Records are write-once and append-only; the engine never reads them back,
// and a failed write must never fail the request that produced it.
package audit

import (
	"context"
	"time"
)

// SolverReport summarizes the solver side of one run.
type SolverReport struct {
	Status         string  `json:"status"`
	StatusCode     int     `json:"status_code"`
	Version        string  `json:"version,omitempty"`
	Iterations     int     `json:"iterations"`
	ObjectiveValue float64 `json:"objective_value"`
	SolveTimeMs    float64 `json:"solve_time_ms"`
}

// Record is one durable audit entry.
type Record struct {
	ID              string       `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	ModelHash       string       `json:"model_hash"`
	Request         interface{}  `json:"request"`
	CatalogMetadata interface{}  `json:"catalog_metadata"`
	Solver          SolverReport `json:"solver"`
	Warnings        []string     `json:"warnings,omitempty"`
	ResponseStatus  string       `json:"response_status"`
}

// Sink persists audit records.
type Sink interface {
	Write(ctx context.Context, rec *Record) error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Write(context.Context, *Record) error { return nil }
