package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/paradox"
)

// ErrNotFound is returned for unknown tables and rows.
var ErrNotFound = errors.New("not found")

// Sync modes.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

var (
	rowPrefix   = []byte("r/")
	statePrefix = []byte("s/")
)

// MirrorConfig holds configuration for a Mirror.
type MirrorConfig struct {
	Dir    string
	Logger zerolog.Logger
}

// Mirror keeps decoded tables in a pebble database so that later syncs only
// read the records appended since the previous one.
type Mirror struct {
	db  *pebble.DB
	log zerolog.Logger
	mu  sync.Mutex // serializes syncs
}

// State describes the last successful sync of a table.
type State struct {
	Table    string          `json:"table"`
	Path     string          `json:"path"`
	Fields   []paradox.Field `json:"fields"`
	Keyed    bool            `json:"keyed"`
	LastKey  int64           `json:"last_key"`
	Rows     int             `json:"rows"`
	RunID    string          `json:"run_id"`
	Mode     string          `json:"mode"`
	SyncedAt time.Time       `json:"synced_at"`
}

// SyncResult summarizes one Sync call.
type SyncResult struct {
	Table   string        `json:"table"`
	RunID   string        `json:"run_id"`
	Mode    string        `json:"mode"`
	Added   int           `json:"added"`
	Rows    int           `json:"rows"`
	LastKey int64         `json:"last_key"`
	Took    time.Duration `json:"took"`
}

// Row is one mirrored record. Values hold the JSON form of each field.
type Row struct {
	Key    int64             `json:"key"`
	Values []json.RawMessage `json:"values"`
}

// OpenMirror opens or creates the mirror database in cfg.Dir.
func OpenMirror(cfg MirrorConfig) (*Mirror, error) {
	if cfg.Dir == "" {
		return nil, errors.New("mirror directory is required")
	}
	db, err := pebble.Open(cfg.Dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open mirror %s", cfg.Dir)
	}
	return &Mirror{db: db, log: cfg.Logger}, nil
}

// Close flushes and closes the database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// TableName derives the mirror name of a table file: its lower-cased base
// name without extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Sync loads the table at path into the mirror. Tables keyed by an
// autoincrement first field are loaded incrementally after the first sync;
// everything else is reloaded in full.
func (m *Mirror) Sync(ctx context.Context, path string) (*SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	started := time.Now()
	table := TableName(path)
	prev, err := m.State(table)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	runID := ksuid.New().String()
	log := m.log.With().Str("table", table).Str("run", runID).Logger()

	mode := ModeFull
	opts := []paradox.Option{paradox.WithLogger(log)}
	if prev != nil && prev.Keyed && prev.LastKey < math.MaxUint32 {
		mode = ModeIncremental
		opts = append(opts, paradox.WithResumeFrom(uint32(max(prev.LastKey+1, 0))))
	}

	db, err := paradox.Open(ctx, path, opts...)
	if mode == ModeIncremental && errors.Is(err, paradox.ErrIncrementalUnsupported) {
		log.Warn().Msg("table lost its autoincrement key, reloading in full")
		mode = ModeFull
		db, err = paradox.Open(ctx, path, paradox.WithLogger(log))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "sync %s", table)
	}

	state := &State{
		Table:    table,
		Path:     path,
		Fields:   db.Fields,
		Keyed:    len(db.Fields) > 0 && db.Fields[0].Type == codec.AutoIncrement,
		RunID:    runID,
		Mode:     mode,
		SyncedAt: time.Now().UTC(),
	}

	batch := m.db.NewBatch()
	defer batch.Close()

	if mode == ModeIncremental {
		state.Rows = prev.Rows
		state.LastKey = prev.LastKey
	} else {
		lo, hi := rowBounds(table)
		if err := batch.DeleteRange(lo, hi, nil); err != nil {
			return nil, errors.Wrap(err, "clear rows")
		}
	}

	for i, rec := range db.Records {
		key := int64(i)
		if state.Keyed {
			key, _ = rec.Key()
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "encode row %d", key)
		}
		if err := m.put(batch, rowKey(table, key), payload); err != nil {
			return nil, err
		}
		if i == 0 || key > state.LastKey {
			state.LastKey = key
		}
	}
	state.Rows += len(db.Records)

	payload, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrap(err, "encode state")
	}
	if err := m.put(batch, stateKey(table), payload); err != nil {
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, errors.Wrapf(err, "commit %s", table)
	}

	res := &SyncResult{
		Table:   table,
		RunID:   runID,
		Mode:    mode,
		Added:   len(db.Records),
		Rows:    state.Rows,
		LastKey: state.LastKey,
		Took:    time.Since(started),
	}
	log.Info().Str("mode", mode).Int("added", res.Added).Int("rows", res.Rows).Dur("took", res.Took).Msg("table synced")
	return res, nil
}

// State returns the sync state of table.
func (m *Mirror) State(table string) (*State, error) {
	var s State
	if err := m.get(stateKey(table), &s); err != nil {
		return nil, errors.Wrapf(err, "table %q", table)
	}
	return &s, nil
}

// Tables returns the state of every mirrored table ordered by name.
func (m *Mirror) Tables() ([]State, error) {
	iter, err := m.db.NewIter(&pebble.IterOptions{
		LowerBound: statePrefix,
		UpperBound: prefixEnd(statePrefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}

	var out []State
	for iter.First(); iter.Valid(); iter.Next() {
		var s State
		if err := decodeValue(iter.Value(), &s); err != nil {
			_ = iter.Close()
			return nil, errors.Wrapf(err, "state %q", iter.Key())
		}
		out = append(out, s)
	}
	return out, iter.Close()
}

// Get returns the row stored under key.
func (m *Mirror) Get(table string, key int64) (*Row, error) {
	row := &Row{Key: key}
	if err := m.get(rowKey(table, key), &row.Values); err != nil {
		return nil, errors.Wrapf(err, "table %q row %d", table, key)
	}
	return row, nil
}

// Scan returns up to limit rows with keys of at least from, in key order. A
// limit of zero or less returns every remaining row.
func (m *Mirror) Scan(table string, from int64, limit int) ([]Row, error) {
	_, hi := rowBounds(table)
	iter, err := m.db.NewIter(&pebble.IterOptions{
		LowerBound: rowKey(table, from),
		UpperBound: hi,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %q", table)
	}

	rows := []Row{}
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := Row{Key: keyFromRowKey(iter.Key())}
		if err := decodeValue(iter.Value(), &row.Values); err != nil {
			_ = iter.Close()
			return nil, errors.Wrapf(err, "table %q row %d", table, row.Key)
		}
		rows = append(rows, row)
	}
	return rows, iter.Close()
}

func (m *Mirror) put(b *pebble.Batch, key, payload []byte) error {
	entry, err := EncodeEntry(key, payload)
	if err != nil {
		return err
	}
	return b.Set(key, entry, nil)
}

func (m *Mirror) get(key []byte, v any) error {
	data, closer, err := m.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	defer closer.Close()
	return decodeValue(data, v)
}

func decodeValue(data []byte, v any) error {
	e, err := DecodeEntry(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Value, v); err != nil {
		return errors.Mark(errors.Wrap(err, "decode payload"), ErrCorruption)
	}
	return nil
}

func stateKey(table string) []byte {
	return append(append([]byte{}, statePrefix...), table...)
}

func tablePrefix(table string) []byte {
	p := append(append([]byte{}, rowPrefix...), table...)
	return append(p, '/')
}

// rowKey orders keys numerically by flipping the sign bit of the big-endian
// form.
func rowKey(table string, key int64) []byte {
	return binary.BigEndian.AppendUint64(tablePrefix(table), uint64(key)^(1<<63))
}

func keyFromRowKey(k []byte) int64 {
	if len(k) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(k[len(k)-8:]) ^ (1 << 63))
}

func rowBounds(table string) ([]byte, []byte) {
	p := tablePrefix(table)
	return p, prefixEnd(p)
}

// prefixEnd returns the smallest key greater than every key with prefix p.
func prefixEnd(p []byte) []byte {
	end := append([]byte{}, p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
