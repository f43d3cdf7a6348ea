// Package persistence stores campaign snapshots in SQLite. Regions, factions,
// marshals and events get their own tables; the negotiation and standing-order
// state rides in the metadata table as JSON.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/marshals/internal/agents"
	"github.com/talgya/marshals/internal/engine"
	"github.com/talgya/marshals/internal/social"
	"github.com/talgya/marshals/internal/world"
)

// ErrNoSavedState is returned by Load when the database holds no campaign.
var ErrNoSavedState = errors.New("no saved state")

// DB wraps a SQLite connection for campaign persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regions (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		terrain INTEGER NOT NULL,
		yield INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		adjacent_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS factions (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capital TEXT NOT NULL,
		player INTEGER NOT NULL,
		budget INTEGER NOT NULL,
		defeated INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS marshals (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		faction TEXT NOT NULL,
		location TEXT NOT NULL,
		strength INTEGER NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_marshals_faction ON marshals(faction);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type regionRow struct {
	Seq      int    `db:"seq"`
	ID       string `db:"id"`
	Name     string `db:"name"`
	Owner    string `db:"owner"`
	Terrain  int    `db:"terrain"`
	Yield    int    `db:"yield"`
	Q        int    `db:"q"`
	R        int    `db:"r"`
	Adjacent string `db:"adjacent_json"`
}

type factionRow struct {
	Seq      int    `db:"seq"`
	ID       string `db:"id"`
	Name     string `db:"name"`
	Capital  string `db:"capital"`
	Player   bool   `db:"player"`
	Budget   int    `db:"budget"`
	Defeated bool   `db:"defeated"`
}

type marshalRow struct {
	Seq      int    `db:"seq"`
	ID       string `db:"id"`
	Faction  string `db:"faction"`
	Location string `db:"location"`
	Strength int    `db:"strength"`
	Data     string `db:"data_json"`
}

// Metadata keys.
const (
	metaTurn           = "turn"
	metaSeed           = "seed"
	metaPlayerActions  = "player_actions"
	metaMajors         = "majors_this_turn"
	metaGameOver       = "game_over"
	metaWinner         = "winner"
	metaAuthority      = "authority_json"
	metaHistory        = "resolution_history_json"
	metaVindication    = "vindication_json"
	metaPending        = "pending_objections_json"
	metaStandingOrders = "standing_orders_json"
)

// Save replaces the stored campaign with the snapshot in one transaction.
func (db *DB) Save(s *engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"regions", "factions", "marshals", "events", "game_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := saveRegions(tx, s.Regions); err != nil {
		return err
	}
	if err := saveFactions(tx, s.Factions); err != nil {
		return err
	}
	if err := saveMarshals(tx, s.Marshals); err != nil {
		return err
	}
	if err := saveEvents(tx, s.Events); err != nil {
		return err
	}
	if err := saveMeta(tx, s); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	slog.Info("campaign saved", "turn", s.Turn, "regions", len(s.Regions),
		"marshals", len(s.Marshals), "events", len(s.Events))
	return nil
}

func saveRegions(tx *sqlx.Tx, regions []world.Region) error {
	stmt, err := tx.Preparex(`INSERT INTO regions
		(seq, id, name, owner, terrain, yield, q, r, adjacent_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare regions: %w", err)
	}
	defer stmt.Close()

	for i, r := range regions {
		adj, err := json.Marshal(r.Adjacent)
		if err != nil {
			return fmt.Errorf("encode region %s: %w", r.ID, err)
		}
		if _, err := stmt.Exec(i, r.ID, r.Name, r.Owner, int(r.Terrain), r.Yield, r.Coord.Q, r.Coord.R, string(adj)); err != nil {
			return fmt.Errorf("insert region %s: %w", r.ID, err)
		}
	}
	return nil
}

func saveFactions(tx *sqlx.Tx, factions []social.Faction) error {
	for i, f := range factions {
		_, err := tx.Exec(`INSERT INTO factions
			(seq, id, name, capital, player, budget, defeated)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, f.ID, f.Name, f.Capital, f.Player, f.Budget, f.Defeated)
		if err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}
	}
	return nil
}

func saveMarshals(tx *sqlx.Tx, marshals []agents.Marshal) error {
	stmt, err := tx.Preparex(`INSERT INTO marshals
		(seq, id, faction, location, strength, data_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare marshals: %w", err)
	}
	defer stmt.Close()

	for i, m := range marshals {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode marshal %s: %w", m.ID, err)
		}
		if _, err := stmt.Exec(i, m.ID, m.Faction, m.Location, m.Strength, string(data)); err != nil {
			return fmt.Errorf("insert marshal %s: %w", m.ID, err)
		}
	}
	return nil
}

func saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	for _, e := range events {
		_, err := tx.Exec("INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

func saveMeta(tx *sqlx.Tx, s *engine.Snapshot) error {
	meta := map[string]string{
		metaTurn:          strconv.Itoa(s.Turn),
		metaSeed:          strconv.FormatInt(s.Seed, 10),
		metaPlayerActions: strconv.Itoa(s.PlayerActions),
		metaMajors:        strconv.Itoa(s.MajorsThisTurn),
		metaGameOver:      strconv.FormatBool(s.GameOver),
		metaWinner:        string(s.Winner),
	}
	blobs := map[string]any{
		metaAuthority:      s.Authority,
		metaHistory:        s.ResolutionHistory,
		metaVindication:    s.Vindication,
		metaPending:        s.PendingObjections,
		metaStandingOrders: s.StandingOrders,
	}
	for key, v := range blobs {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		meta[key] = string(data)
	}

	for key, value := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}
	return nil
}

// HasSavedState reports whether a campaign has been saved.
func (db *DB) HasSavedState() bool {
	_, err := db.GetMeta(metaTurn)
	return err == nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNoSavedState)
	}
	return value, err
}

// Load reads the stored campaign back into a snapshot.
func (db *DB) Load() (*engine.Snapshot, error) {
	meta := make(map[string]string)
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM game_meta"); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	for _, r := range rows {
		meta[r.Key] = r.Value
	}
	if _, ok := meta[metaTurn]; !ok {
		return nil, ErrNoSavedState
	}

	s := &engine.Snapshot{Winner: world.FactionID(meta[metaWinner])}
	var err error
	if s.Turn, err = strconv.Atoi(meta[metaTurn]); err != nil {
		return nil, fmt.Errorf("load turn: %w", err)
	}
	if s.Seed, err = strconv.ParseInt(meta[metaSeed], 10, 64); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	if s.PlayerActions, err = strconv.Atoi(meta[metaPlayerActions]); err != nil {
		return nil, fmt.Errorf("load player actions: %w", err)
	}
	if s.MajorsThisTurn, err = strconv.Atoi(meta[metaMajors]); err != nil {
		return nil, fmt.Errorf("load major objections: %w", err)
	}
	if s.GameOver, err = strconv.ParseBool(meta[metaGameOver]); err != nil {
		return nil, fmt.Errorf("load game over: %w", err)
	}

	blobs := map[string]any{
		metaAuthority:      &s.Authority,
		metaHistory:        &s.ResolutionHistory,
		metaVindication:    &s.Vindication,
		metaPending:        &s.PendingObjections,
		metaStandingOrders: &s.StandingOrders,
	}
	for key, dst := range blobs {
		if err := json.Unmarshal([]byte(meta[key]), dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}

	if s.Regions, err = db.loadRegions(); err != nil {
		return nil, err
	}
	if s.Factions, err = db.loadFactions(); err != nil {
		return nil, err
	}
	if s.Marshals, err = db.loadMarshals(); err != nil {
		return nil, err
	}
	if s.Events, err = db.RecentEvents(-1); err != nil {
		return nil, err
	}

	slog.Info("campaign loaded", "turn", s.Turn, "regions", len(s.Regions), "marshals", len(s.Marshals))
	return s, nil
}

func (db *DB) loadRegions() ([]world.Region, error) {
	var rows []regionRow
	if err := db.conn.Select(&rows, "SELECT * FROM regions ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}
	out := make([]world.Region, 0, len(rows))
	for _, r := range rows {
		reg := world.Region{
			ID:      world.RegionID(r.ID),
			Name:    r.Name,
			Owner:   world.FactionID(r.Owner),
			Terrain: world.Terrain(r.Terrain),
			Yield:   r.Yield,
			Coord:   world.HexCoord{Q: r.Q, R: r.R},
		}
		if err := json.Unmarshal([]byte(r.Adjacent), &reg.Adjacent); err != nil {
			return nil, fmt.Errorf("decode region %s: %w", r.ID, err)
		}
		out = append(out, reg)
	}
	return out, nil
}

func (db *DB) loadFactions() ([]social.Faction, error) {
	var rows []factionRow
	if err := db.conn.Select(&rows, "SELECT * FROM factions ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load factions: %w", err)
	}
	out := make([]social.Faction, 0, len(rows))
	for _, r := range rows {
		out = append(out, social.Faction{
			ID:       world.FactionID(r.ID),
			Name:     r.Name,
			Capital:  world.RegionID(r.Capital),
			Player:   r.Player,
			Budget:   r.Budget,
			Defeated: r.Defeated,
		})
	}
	return out, nil
}

func (db *DB) loadMarshals() ([]agents.Marshal, error) {
	var rows []marshalRow
	if err := db.conn.Select(&rows, "SELECT * FROM marshals ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load marshals: %w", err)
	}
	out := make([]agents.Marshal, 0, len(rows))
	for _, r := range rows {
		var m agents.Marshal
		if err := json.Unmarshal([]byte(r.Data), &m); err != nil {
			return nil, fmt.Errorf("decode marshal %s: %w", r.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// RecentEvents returns the most recent events in chronological order. A
// negative limit returns them all.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		`SELECT turn, description, category FROM
			(SELECT id, turn, description, category FROM events ORDER BY id DESC LIMIT ?)
		ORDER BY id`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events, nil
}

// MarshalStrengths returns each faction's total troops as stored, without
// decoding the marshals.
func (db *DB) MarshalStrengths() (map[world.FactionID]int, error) {
	var rows []struct {
		Faction string `db:"faction"`
		Total   int    `db:"total"`
	}
	if err := db.conn.Select(&rows, "SELECT faction, SUM(strength) AS total FROM marshals GROUP BY faction"); err != nil {
		return nil, fmt.Errorf("load strengths: %w", err)
	}
	out := make(map[world.FactionID]int, len(rows))
	for _, r := range rows {
		out[world.FactionID(r.Faction)] = r.Total
	}
	return out, nil
}
