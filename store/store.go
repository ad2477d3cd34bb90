// Package store 以 sqlite 保存求解记录
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"schrodinger/types"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var schema = []string{`CREATE TABLE IF NOT EXISTS runs (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	created TEXT NOT NULL,
	method  TEXT NOT NULL,
	type    TEXT NOT NULL,
	config  BLOB NOT NULL
)`, `CREATE TABLE IF NOT EXISTS states (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	k      REAL NOT NULL,
	idx    INTEGER NOT NULL,
	energy REAL NOT NULL,
	psi    BLOB NOT NULL,
	PRIMARY KEY (run_id, k, idx)
)`}

// Run 一次求解或扫描
type Run struct {
	ID      int64
	Created time.Time
	Method  types.Method
	Type    types.NonParabolicity
	Config  json.RawMessage // 求解配置
}

// Result 单个电场值的结果
type Result struct {
	K   float64
	Set *types.WavefunctionSet
}

// State 存储的单个态
type State struct {
	RunID  int64
	K      float64
	Index  int
	Energy float64 // [J]
	Psi    []float64
}

// Store sqlite 存储
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open 打开或创建数据库
func Open(path string) (*Store, error) {
	if path == "" {
		path = "schrodinger.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Path 数据库文件
func (s *Store) Path() string { return s.path }

// Close 关闭数据库
func (s *Store) Close() error { return s.db.Close() }

// SaveRun 在一个事务中保存运行记录与全部态, 返回运行编号
func (s *Store) SaveRun(ctx context.Context, run Run, results []Result) (id int64, retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.Created.IsZero() {
		run.Created = time.Now()
	}
	if run.Config == nil {
		run.Config = json.RawMessage("{}")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `INSERT INTO runs (created, method, type, config) VALUES (?, ?, ?, ?)`,
		run.Created.UTC().Format(time.RFC3339Nano), run.Method.String(), run.Type.String(), []byte(run.Config))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO states (run_id, k, idx, energy, psi) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare states: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range results {
		if r.Set == nil {
			continue
		}
		for i, st := range r.Set.States {
			psi, err := json.Marshal(st.Psi)
			if err != nil {
				return 0, fmt.Errorf("encode psi: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, id, r.K, i, st.Energy, psi); err != nil {
				return 0, fmt.Errorf("insert state: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Runs 全部运行记录, 按编号升序
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created, method, type, config FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		var (
			r                     Run
			created, method, kind string
			config                []byte
		)
		if err := rows.Scan(&r.ID, &created, &method, &kind, &config); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("decode created: %w", err)
		}
		if r.Method, err = types.ParseMethod(method); err != nil {
			return nil, err
		}
		if r.Type, err = types.ParseNonParabolicity(kind); err != nil {
			return nil, err
		}
		r.Config = json.RawMessage(config)
		out = append(out, r)
	}
	return out, rows.Err()
}

// States 运行中的全部态, 按电场与序号排列
func (s *Store) States(ctx context.Context, runID int64) ([]State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT k, idx, energy, psi FROM states WHERE run_id = ? ORDER BY k, idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("select states: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []State
	for rows.Next() {
		st := State{RunID: runID}
		var psi []byte
		if err := rows.Scan(&st.K, &st.Index, &st.Energy, &psi); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(psi, &st.Psi); err != nil {
			return nil, fmt.Errorf("decode psi: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
