package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the current database schema version, recorded in
// PRAGMA user_version.
const SchemaVersion = 1

// Store is the durable backing for canvases, nodes, edges and settings. All
// writes go through Transaction so multi-collection operations commit or roll
// back together.
type Store struct {
	db   *sql.DB
	path string
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so collection helpers can run
// inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS canvases (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	thumbnail   TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_canvases_updated ON canvases(updated_at);

CREATE TABLE IF NOT EXISTS nodes (
	id              TEXT NOT NULL,
	canvas_id       TEXT NOT NULL,
	type            TEXT NOT NULL,
	position_x      REAL NOT NULL DEFAULT 0,
	position_y      REAL NOT NULL DEFAULT 0,
	source_position TEXT NOT NULL DEFAULT '',
	target_position TEXT NOT NULL DEFAULT '',
	data            TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL,
	PRIMARY KEY (canvas_id, id)
);
CREATE INDEX IF NOT EXISTS idx_nodes_canvas ON nodes(canvas_id);

CREATE TABLE IF NOT EXISTS edges (
	id         TEXT NOT NULL,
	canvas_id  TEXT NOT NULL,
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	animated   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (canvas_id, id)
);
CREATE INDEX IF NOT EXISTS idx_edges_canvas ON edges(canvas_id);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(canvas_id, source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(canvas_id, target);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// OpenStore opens (or creates) the database at path and migrates it to the
// current schema version. Opening is idempotent.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	// Serialized writes; the store is the only shared mutable resource.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// migrate creates the schema and stamps the version.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return &StoreError{Path: s.path, Op: "migrate", Err: err}
	}

	if version > SchemaVersion {
		return &StoreError{Path: s.path, Op: "migrate",
			Err: fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return &StoreError{Path: s.path, Op: "migrate", Err: err}
	}

	if version < SchemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
			return &StoreError{Path: s.path, Op: "migrate", Err: err}
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Transaction runs body with exclusive write access. All writes inside commit
// together; any error aborts them all and is returned wrapped in a TxError.
func (s *Store) Transaction(op string, body func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Path: s.path, Op: "write", Err: err}
	}

	if err := body(tx); err != nil {
		_ = tx.Rollback()
		return &TxError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return &TxError{Op: op, Err: err}
	}

	return nil
}

// StoreInfo summarizes collection sizes for diagnostics.
type StoreInfo struct {
	Path     string `json:"path" yaml:"path"`
	Version  int    `json:"version" yaml:"version"`
	Canvases int    `json:"canvases" yaml:"canvases"`
	Nodes    int    `json:"nodes" yaml:"nodes"`
	Edges    int    `json:"edges" yaml:"edges"`
	Settings int    `json:"settings" yaml:"settings"`
}

// Info returns row counts for every collection.
func (s *Store) Info() (*StoreInfo, error) {
	info := &StoreInfo{Path: s.path}
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&info.Version); err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	counts := []struct {
		table string
		dst   *int
	}{
		{"canvases", &info.Canvases},
		{"nodes", &info.Nodes},
		{"edges", &info.Edges},
		{"settings", &info.Settings},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	return info, nil
}

// ---- canvases collection ----

func putCanvas(q dbtx, c *Canvas) error {
	meta, err := MarshalMetadata(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal canvas metadata: %w", err)
	}
	_, err = q.Exec(`
		INSERT INTO canvases (id, name, description, thumbnail, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Description, c.Thumbnail, meta, c.CreatedAt, c.UpdatedAt)
	return err
}

func getCanvas(q dbtx, id string) (*Canvas, error) {
	var c Canvas
	var meta string
	err := q.QueryRow(`
		SELECT id, name, description, thumbnail, metadata, created_at, updated_at
		FROM canvases WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Thumbnail, &meta, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "canvas", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}
	if c.Metadata, err = UnmarshalMetadata(meta); err != nil {
		return nil, fmt.Errorf("failed to parse canvas metadata: %w", err)
	}
	return &c, nil
}

func allCanvases(q dbtx) ([]Canvas, error) {
	rows, err := q.Query(`
		SELECT id, name, description, thumbnail, metadata, created_at, updated_at
		FROM canvases ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query canvases: %w", err)
	}
	defer rows.Close()

	canvases := make([]Canvas, 0)
	for rows.Next() {
		var c Canvas
		var meta string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Thumbnail, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan canvas: %w", err)
		}
		if c.Metadata, err = UnmarshalMetadata(meta); err != nil {
			return nil, fmt.Errorf("failed to parse canvas metadata: %w", err)
		}
		canvases = append(canvases, c)
	}
	return canvases, rows.Err()
}

func deleteCanvasRow(q dbtx, id string) error {
	_, err := q.Exec(`DELETE FROM canvases WHERE id = ?`, id)
	return err
}

// ---- nodes collection ----

func putNode(q dbtx, n *StoredNode) error {
	data, err := MarshalData(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal node data: %w", err)
	}
	_, err = q.Exec(`
		INSERT INTO nodes (id, canvas_id, type, position_x, position_y, source_position, target_position, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canvas_id, id) DO UPDATE SET
			type = excluded.type,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			source_position = excluded.source_position,
			target_position = excluded.target_position,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		n.ID, n.CanvasID, n.Type, n.Position.X, n.Position.Y,
		n.SourcePosition, n.TargetPosition, data, n.CreatedAt, n.UpdatedAt)
	return err
}

func bulkPutNodes(q dbtx, nodes []StoredNode) error {
	for i := range nodes {
		if err := putNode(q, &nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func nodesByCanvas(q dbtx, canvasID string) ([]StoredNode, error) {
	rows, err := q.Query(`
		SELECT id, canvas_id, type, position_x, position_y, source_position, target_position, data, created_at, updated_at
		FROM nodes WHERE canvas_id = ?`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func allNodes(q dbtx) ([]StoredNode, error) {
	rows, err := q.Query(`
		SELECT id, canvas_id, type, position_x, position_y, source_position, target_position, data, created_at, updated_at
		FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func scanNodes(rows *sql.Rows) ([]StoredNode, error) {
	nodes := make([]StoredNode, 0)
	for rows.Next() {
		var n StoredNode
		var data string
		if err := rows.Scan(&n.ID, &n.CanvasID, &n.Type, &n.Position.X, &n.Position.Y,
			&n.SourcePosition, &n.TargetPosition, &data, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		parsed, err := UnmarshalData(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse node data: %w", err)
		}
		n.Data = parsed
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func deleteNodesByCanvas(q dbtx, canvasID string) error {
	_, err := q.Exec(`DELETE FROM nodes WHERE canvas_id = ?`, canvasID)
	return err
}

func deleteNodeRow(q dbtx, canvasID, nodeID string) error {
	_, err := q.Exec(`DELETE FROM nodes WHERE canvas_id = ? AND id = ?`, canvasID, nodeID)
	return err
}

// ---- edges collection ----

func putEdge(q dbtx, e *StoredEdge) error {
	_, err := q.Exec(`
		INSERT INTO edges (id, canvas_id, source, target, type, animated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canvas_id, id) DO UPDATE SET
			source = excluded.source,
			target = excluded.target,
			type = excluded.type,
			animated = excluded.animated,
			updated_at = excluded.updated_at`,
		e.ID, e.CanvasID, e.Source, e.Target, e.Type, boolToInt(e.Animated), e.CreatedAt, e.UpdatedAt)
	return err
}

func bulkPutEdges(q dbtx, edges []StoredEdge) error {
	for i := range edges {
		if err := putEdge(q, &edges[i]); err != nil {
			return err
		}
	}
	return nil
}

func edgesByCanvas(q dbtx, canvasID string) ([]StoredEdge, error) {
	rows, err := q.Query(`
		SELECT id, canvas_id, source, target, type, animated, created_at, updated_at
		FROM edges WHERE canvas_id = ?`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func allEdges(q dbtx) ([]StoredEdge, error) {
	rows, err := q.Query(`
		SELECT id, canvas_id, source, target, type, animated, created_at, updated_at
		FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]StoredEdge, error) {
	edges := make([]StoredEdge, 0)
	for rows.Next() {
		var e StoredEdge
		var animated int
		if err := rows.Scan(&e.ID, &e.CanvasID, &e.Source, &e.Target, &e.Type,
			&animated, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Animated = animated != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func deleteEdgesByCanvas(q dbtx, canvasID string) error {
	_, err := q.Exec(`DELETE FROM edges WHERE canvas_id = ?`, canvasID)
	return err
}

func deleteEdgesTouchingNode(q dbtx, canvasID, nodeID string) error {
	_, err := q.Exec(`DELETE FROM edges WHERE canvas_id = ? AND (source = ? OR target = ?)`,
		canvasID, nodeID, nodeID)
	return err
}

// ---- settings collection ----

func putSetting(q dbtx, s *Setting) error {
	_, err := q.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.Key, s.Value, s.UpdatedAt)
	return err
}

func getSetting(q dbtx, key string) (*Setting, error) {
	var s Setting
	err := q.QueryRow(`SELECT key, value, updated_at FROM settings WHERE key = ?`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "setting", ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}
	return &s, nil
}

func allSettings(q dbtx) ([]Setting, error) {
	rows, err := q.Query(`SELECT key, value, updated_at FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make([]Setting, 0)
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func deleteSettingRow(q dbtx, key string) error {
	_, err := q.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

func clearAll(q dbtx) error {
	for _, table := range []string{"canvases", "nodes", "edges", "settings"} {
		if _, err := q.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
