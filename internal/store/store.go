// Package store persists rooms, players, and game state in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// --------- Data models ---------

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomActive   RoomStatus = "active"
	RoomFinished RoomStatus = "finished"
)

type Room struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	ScenarioID  string     `json:"scenarioId"`
	Seed        int64      `json:"seed"`
	Status      RoomStatus `json:"status"`
	CurrentTurn int        `json:"currentTurn"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Player struct {
	ID       uuid.UUID `json:"id"`
	RoomID   uuid.UUID `json:"roomId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// PlannedActions is one side's committed plan for a turn. Resubmitting
// before resolution replaces the earlier plan.
type PlannedActions struct {
	RoomID     uuid.UUID       `json:"roomId"`
	TurnNumber int             `json:"turnNumber"`
	Role       string          `json:"role"`
	Actions    json.RawMessage `json:"actions"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type TurnRecord struct {
	RoomID     uuid.UUID       `json:"roomId"`
	TurnNumber int             `json:"turnNumber"`
	Result     json.RawMessage `json:"result"`
	ResolvedAt time.Time       `json:"resolvedAt"`
}

var (
	ErrNotFound   = errors.New("not found")
	ErrRoomFull   = errors.New("room already has a player in that role")
	ErrRoomClosed = errors.New("room is not accepting players")
)

// --------- Store ---------

type Store struct {
	db *sql.DB
}

// New opens/creates a SQLite database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&cache=shared", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// --------- Migrations ---------

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			scenario_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting',
			current_turn INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status, updated_at DESC);`,

		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			joined_at TIMESTAMP NOT NULL,
			UNIQUE(room_id, user_id),
			UNIQUE(room_id, role),
			FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS game_states (
			room_id TEXT PRIMARY KEY,
			state_json TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS planned_actions (
			room_id TEXT NOT NULL,
			turn_number INTEGER NOT NULL,
			role TEXT NOT NULL,
			actions_json TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(room_id, turn_number, role),
			FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS turn_results (
			room_id TEXT NOT NULL,
			turn_number INTEGER NOT NULL,
			result_json TEXT NOT NULL,
			resolved_at TIMESTAMP NOT NULL,
			UNIQUE(room_id, turn_number),
			FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS solo_games (
			id TEXT PRIMARY KEY,
			state_json TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// --------- Rooms ---------

// Room codes avoid 0/O/1/I so they survive being read aloud.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newRoomCode(rng *rand.Rand) string {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteByte(roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

// CreateRoom makes a new waiting room with a fresh join code.
func (s *Store) CreateRoom(ctx context.Context, scenarioID string, seed int64) (Room, error) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(now.UnixNano()))

	for attempt := 0; attempt < 5; attempt++ {
		room := Room{
			ID:          uuid.New(),
			Code:        newRoomCode(rng),
			ScenarioID:  scenarioID,
			Seed:        seed,
			Status:      RoomWaiting,
			CurrentTurn: 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO rooms(id, code, scenario_id, seed, status, current_turn, created_at, updated_at)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			room.ID.String(), room.Code, room.ScenarioID, room.Seed, room.Status, room.CurrentTurn, now, now)
		if err != nil {
			if isConstraintErr(err) {
				continue // code collision, try another
			}
			return Room{}, err
		}
		return room, nil
	}
	return Room{}, fmt.Errorf("could not allocate a unique room code")
}

// RoomByCode looks up a room by its join code.
func (s *Store) RoomByCode(ctx context.Context, code string) (Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx,
		`SELECT id, code, scenario_id, seed, status, current_turn, created_at, updated_at
		 FROM rooms WHERE code=?`, strings.ToUpper(code)))
}

// RoomByID looks up a room by id.
func (s *Store) RoomByID(ctx context.Context, id uuid.UUID) (Room, error) {
	return s.scanRoom(s.db.QueryRowContext(ctx,
		`SELECT id, code, scenario_id, seed, status, current_turn, created_at, updated_at
		 FROM rooms WHERE id=?`, id.String()))
}

func (s *Store) scanRoom(row *sql.Row) (Room, error) {
	var r Room
	var idStr string
	err := row.Scan(&idStr, &r.Code, &r.ScenarioID, &r.Seed, &r.Status, &r.CurrentTurn, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, err
	}
	r.ID = uuid.MustParse(idStr)
	return r, nil
}

// UpdateRoomStatus transitions the room lifecycle and turn counter.
func (s *Store) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status RoomStatus, currentTurn int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET status=?, current_turn=?, updated_at=? WHERE id=?`,
		status, currentTurn, time.Now().UTC(), id.String())
	return err
}

// --------- Players ---------

// JoinRoom adds a player in the given role. The second successful join
// flips the room from waiting to active.
func (s *Store) JoinRoom(ctx context.Context, roomID uuid.UUID, userID, role string) (Player, error) {
	room, err := s.RoomByID(ctx, roomID)
	if err != nil {
		return Player{}, err
	}
	if room.Status == RoomFinished {
		return Player{}, ErrRoomClosed
	}

	now := time.Now().UTC()
	p := Player{ID: uuid.New(), RoomID: roomID, UserID: userID, Role: role, JoinedAt: now}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players(id, room_id, user_id, role, joined_at) VALUES(?, ?, ?, ?, ?)`,
		p.ID.String(), roomID.String(), userID, role, now)
	if err != nil {
		if isConstraintErr(err) {
			return Player{}, ErrRoomFull
		}
		return Player{}, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE room_id=?`, roomID.String()).Scan(&count); err != nil {
		return Player{}, err
	}
	if count >= 2 && room.Status == RoomWaiting {
		if err := s.UpdateRoomStatus(ctx, roomID, RoomActive, room.CurrentTurn); err != nil {
			return Player{}, err
		}
	}
	return p, nil
}

// Players lists the room's players in join order.
func (s *Store) Players(ctx context.Context, roomID uuid.UUID) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, user_id, role, joined_at FROM players WHERE room_id=? ORDER BY joined_at`,
		roomID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		var p Player
		var idStr, roomStr string
		if err := rows.Scan(&idStr, &roomStr, &p.UserID, &p.Role, &p.JoinedAt); err != nil {
			return nil, err
		}
		p.ID = uuid.MustParse(idStr)
		p.RoomID = uuid.MustParse(roomStr)
		out = append(out, p)
	}
	return out, rows.Err()
}

// --------- Game state ---------

// SaveGameState upserts the authoritative state blob for a room,
// bumping the version counter.
func (s *Store) SaveGameState(ctx context.Context, roomID uuid.UUID, state any) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_states(room_id, state_json, version, updated_at) VALUES(?, ?, 1, ?)
		 ON CONFLICT(room_id) DO UPDATE SET state_json=excluded.state_json,
		   version=game_states.version+1, updated_at=excluded.updated_at`,
		roomID.String(), string(blob), time.Now().UTC())
	return err
}

// LoadGameState unmarshals the room's state blob into dst.
func (s *Store) LoadGameState(ctx context.Context, roomID uuid.UUID, dst any) error {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM game_states WHERE room_id=?`, roomID.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(blob), dst)
}

// --------- Planned actions ---------

// SubmitPlan stores one side's plan for a turn, replacing any earlier
// submission for the same (room, turn, role).
func (s *Store) SubmitPlan(ctx context.Context, roomID uuid.UUID, turn int, role string, actions any) error {
	blob, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO planned_actions(room_id, turn_number, role, actions_json, updated_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(room_id, turn_number, role) DO UPDATE SET
		   actions_json=excluded.actions_json, updated_at=excluded.updated_at`,
		roomID.String(), turn, role, string(blob), time.Now().UTC())
	return err
}

// Plans returns the submitted plans for a turn keyed by role.
func (s *Store) Plans(ctx context.Context, roomID uuid.UUID, turn int) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, actions_json FROM planned_actions WHERE room_id=? AND turn_number=?`,
		roomID.String(), turn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var role, blob string
		if err := rows.Scan(&role, &blob); err != nil {
			return nil, err
		}
		out[role] = json.RawMessage(blob)
	}
	return out, rows.Err()
}

// --------- Turn results ---------

// SaveTurnResult records the resolution report for a turn. The unique
// constraint makes double resolution a visible error.
func (s *Store) SaveTurnResult(ctx context.Context, roomID uuid.UUID, turn int, result any) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turn_results(room_id, turn_number, result_json, resolved_at) VALUES(?, ?, ?, ?)`,
		roomID.String(), turn, string(blob), time.Now().UTC())
	return err
}

// TurnResults lists resolution reports in turn order.
func (s *Store) TurnResults(ctx context.Context, roomID uuid.UUID) ([]TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, turn_number, result_json, resolved_at FROM turn_results
		 WHERE room_id=? ORDER BY turn_number`, roomID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var t TurnRecord
		var roomStr, blob string
		if err := rows.Scan(&roomStr, &t.TurnNumber, &blob, &t.ResolvedAt); err != nil {
			return nil, err
		}
		t.RoomID = uuid.MustParse(roomStr)
		t.Result = json.RawMessage(blob)
		out = append(out, t)
	}
	return out, rows.Err()
}

// --------- Solo games ---------

// SaveSoloGame upserts a single-player save.
func (s *Store) SaveSoloGame(ctx context.Context, id uuid.UUID, state any) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO solo_games(id, state_json, created_at, updated_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state_json=excluded.state_json, updated_at=excluded.updated_at`,
		id.String(), string(blob), now, now)
	return err
}

// LoadSoloGame unmarshals a single-player save into dst.
func (s *Store) LoadSoloGame(ctx context.Context, id uuid.UUID, dst any) error {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM solo_games WHERE id=?`, id.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(blob), dst)
}

func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint")
}
