package api

import (
	"context"
	"time"

	"github.com/ssargent/pxdb/pkg/paradox"
	"github.com/ssargent/pxdb/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr      string
	APIKey    string // empty disables authentication
	TablesDir string
}

// TableSummary describes one table file in the tables directory.
type TableSummary struct {
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// TableInfo is the header and schema of a table.
type TableInfo struct {
	Name   string          `json:"name"`
	Header paradox.Header  `json:"header"`
	Fields []paradox.Field `json:"fields"`
}

// RecordsResponse carries decoded records.
type RecordsResponse struct {
	Name        string           `json:"name"`
	Incremental bool             `json:"incremental"`
	Total       int              `json:"total"`
	Records     []paradox.Record `json:"records"`
}

// RowsResponse carries rows read from the mirror.
type RowsResponse struct {
	Name string      `json:"name"`
	Rows []store.Row `json:"rows"`
}

// Mirror is the part of *store.Mirror the server uses.
type Mirror interface {
	Sync(ctx context.Context, path string) (*store.SyncResult, error)
	Scan(table string, from int64, limit int) ([]store.Row, error)
	Tables() ([]store.State, error)
}
