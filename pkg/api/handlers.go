package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/ssargent/pxdb/pkg/paradox"
	"github.com/ssargent/pxdb/pkg/store"
)

// ErrTableNotFound is returned when no file in the tables directory matches
// the requested name.
var ErrTableNotFound = errors.New("table not found")

const (
	defaultRowLimit = 100
	maxRowLimit     = 10000
)

// Server holds the API server state
type Server struct {
	config  ServerConfig
	mirror  Mirror
	metrics *Metrics
	log     zerolog.Logger
}

// NewServer creates a new API server. mirror may be nil, in which case the
// mirror routes are not mounted.
func NewServer(config ServerConfig, mirror Mirror, metrics *Metrics, log zerolog.Logger) *Server {
	return &Server{
		config:  config,
		mirror:  mirror,
		metrics: metrics,
		log:     log,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.listTables()
	if err != nil {
		s.sendErr(w, err)
		return
	}
	sendSuccess(w, tables)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.resolveTable(name)
	if err != nil {
		s.sendErr(w, err)
		return
	}

	db, err := paradox.OpenSchema(path)
	if err != nil {
		s.sendErr(w, err)
		return
	}
	sendSuccess(w, TableInfo{Name: store.TableName(path), Header: db.Header, Fields: db.Fields})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.resolveTable(name)
	if err != nil {
		s.sendErr(w, err)
		return
	}

	opts := []paradox.Option{paradox.WithLogger(s.log)}
	mode := store.ModeFull
	if since := r.URL.Query().Get("since"); since != "" {
		key, err := strconv.ParseUint(since, 10, 32)
		if err != nil {
			sendError(w, "since must be an unsigned 32-bit key", http.StatusBadRequest)
			return
		}
		opts = append(opts, paradox.WithResumeFrom(uint32(key)))
		mode = store.ModeIncremental
	}
	limit, err := queryLimit(r, 0)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	db, err := paradox.Open(r.Context(), path, opts...)
	if err != nil {
		s.metrics.RecordDecode(mode, 0, false, time.Since(start))
		s.sendErr(w, err)
		return
	}
	s.metrics.RecordDecode(mode, len(db.Records), true, time.Since(start))

	records := db.Records
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	sendSuccess(w, RecordsResponse{
		Name:        store.TableName(path),
		Incremental: db.Incremental(),
		Total:       len(db.Records),
		Records:     records,
	})
}

func (s *Server) handleMirrorSync(w http.ResponseWriter, r *http.Request) {
	path, err := s.resolveTable(chi.URLParam(r, "name"))
	if err != nil {
		s.sendErr(w, err)
		return
	}

	res, err := s.mirror.Sync(r.Context(), path)
	if err != nil {
		s.metrics.RecordSync(store.ModeFull, false)
		s.sendErr(w, err)
		return
	}
	s.metrics.RecordSync(res.Mode, true)
	sendSuccess(w, res)
}

func (s *Server) handleMirrorTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.mirror.Tables()
	if err != nil {
		s.sendErr(w, err)
		return
	}
	if tables == nil {
		tables = []store.State{}
	}
	sendSuccess(w, tables)
}

func (s *Server) handleMirrorRows(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))

	var from int64
	if v := r.URL.Query().Get("from"); v != "" {
		var err error
		if from, err = strconv.ParseInt(v, 10, 64); err != nil {
			sendError(w, "from must be an integer key", http.StatusBadRequest)
			return
		}
	}
	limit, err := queryLimit(r, defaultRowLimit)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.mirror.Scan(name, from, limit)
	if err != nil {
		s.sendErr(w, err)
		return
	}
	sendSuccess(w, RowsResponse{Name: name, Rows: rows})
}

func queryLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxRowLimit {
		return 0, errors.Newf("limit must be between 1 and %d", maxRowLimit)
	}
	return n, nil
}

func (s *Server) listTables() ([]TableSummary, error) {
	entries, err := os.ReadDir(s.config.TablesDir)
	if err != nil {
		return nil, errors.Wrap(err, "read tables directory")
	}

	tables := []TableSummary{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		tables = append(tables, TableSummary{
			Name:     store.TableName(e.Name()),
			File:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// resolveTable maps a table name to a file in the tables directory. Only
// names of listed files resolve, so the name cannot escape the directory.
func (s *Server) resolveTable(name string) (string, error) {
	tables, err := s.listTables()
	if err != nil {
		return "", err
	}
	for _, t := range tables {
		if strings.EqualFold(t.Name, name) {
			return filepath.Join(s.config.TablesDir, t.File), nil
		}
	}
	return "", errors.Wrapf(ErrTableNotFound, "%q", name)
}

// statusFor maps decoder and mirror errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsAny(err, ErrTableNotFound, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, paradox.ErrIncrementalUnsupported):
		return http.StatusBadRequest
	case errors.IsAny(err, paradox.ErrMalformed, paradox.ErrEncrypted, paradox.ErrUnsupportedFieldType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, paradox.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", code).Msg("request failed")
	}
	sendError(w, err.Error(), code)
}
