package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFetchRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "scale-out", 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(room.Code) != 8 {
		t.Errorf("code %q should be 8 chars", room.Code)
	}
	if room.Status != RoomWaiting {
		t.Errorf("status = %s, want waiting", room.Status)
	}

	byCode, err := s.RoomByCode(ctx, room.Code)
	if err != nil {
		t.Fatal(err)
	}
	if byCode.ID != room.ID || byCode.Seed != 42 || byCode.ScenarioID != "scale-out" {
		t.Errorf("lookup mismatch: %+v", byCode)
	}

	if _, err := s.RoomByCode(ctx, "NOPENOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room = %v, want ErrNotFound", err)
	}
}

func TestJoinRoomActivatesOnSecondPlayer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room, _ := s.CreateRoom(ctx, "scale-out", 1)

	if _, err := s.JoinRoom(ctx, room.ID, "alice", "architect"); err != nil {
		t.Fatal(err)
	}
	r, _ := s.RoomByID(ctx, room.ID)
	if r.Status != RoomWaiting {
		t.Errorf("one player should leave the room waiting, got %s", r.Status)
	}

	if _, err := s.JoinRoom(ctx, room.ID, "bob", "prospect"); err != nil {
		t.Fatal(err)
	}
	r, _ = s.RoomByID(ctx, room.ID)
	if r.Status != RoomActive {
		t.Errorf("two players should activate the room, got %s", r.Status)
	}

	players, err := s.Players(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(players) != 2 {
		t.Errorf("got %d players, want 2", len(players))
	}
}

func TestJoinRoomRoleConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room, _ := s.CreateRoom(ctx, "scale-out", 1)

	s.JoinRoom(ctx, room.ID, "alice", "architect")
	if _, err := s.JoinRoom(ctx, room.ID, "carol", "architect"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("duplicate role = %v, want ErrRoomFull", err)
	}
	if _, err := s.JoinRoom(ctx, room.ID, "alice", "prospect"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("duplicate user = %v, want ErrRoomFull", err)
	}
}

func TestGameStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room, _ := s.CreateRoom(ctx, "scale-out", 1)

	type payload struct {
		Turn  int      `json:"turn"`
		Tags  []string `json:"tags"`
		Score float64  `json:"score"`
	}
	in := payload{Turn: 3, Tags: []string{"a", "b"}, Score: 12.5}
	if err := s.SaveGameState(ctx, room.ID, in); err != nil {
		t.Fatal(err)
	}

	var out payload
	if err := s.LoadGameState(ctx, room.ID, &out); err != nil {
		t.Fatal(err)
	}
	if out.Turn != 3 || len(out.Tags) != 2 || out.Score != 12.5 {
		t.Errorf("round trip mismatch: %+v", out)
	}

	// Upsert bumps, not duplicates.
	in.Turn = 4
	if err := s.SaveGameState(ctx, room.ID, in); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadGameState(ctx, room.ID, &out); err != nil {
		t.Fatal(err)
	}
	if out.Turn != 4 {
		t.Errorf("turn = %d after upsert, want 4", out.Turn)
	}
}

func TestPlanSubmissionUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room, _ := s.CreateRoom(ctx, "scale-out", 1)

	if err := s.SubmitPlan(ctx, room.ID, 1, "architect", []string{"a"}); err != nil {
		t.Fatal(err)
	}
	plans, err := s.Plans(ctx, room.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(plans))
	}

	// Resubmitting replaces.
	if err := s.SubmitPlan(ctx, room.ID, 1, "architect", []string{"b", "c"}); err != nil {
		t.Fatal(err)
	}
	plans, _ = s.Plans(ctx, room.ID, 1)
	if len(plans) != 1 {
		t.Fatalf("resubmit duplicated the plan: %d rows", len(plans))
	}
	if string(plans["architect"]) != `["b","c"]` {
		t.Errorf("plan = %s, want replacement", plans["architect"])
	}

	if err := s.SubmitPlan(ctx, room.ID, 1, "prospect", []string{"x"}); err != nil {
		t.Fatal(err)
	}
	plans, _ = s.Plans(ctx, room.ID, 1)
	if len(plans) != 2 {
		t.Errorf("got %d plans, want 2", len(plans))
	}
}

func TestTurnResultDoubleResolutionFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room, _ := s.CreateRoom(ctx, "scale-out", 1)

	if err := s.SaveTurnResult(ctx, room.ID, 1, map[string]any{"summary": "ok"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTurnResult(ctx, room.ID, 1, map[string]any{"summary": "again"}); err == nil {
		t.Error("resolving the same turn twice should fail")
	}

	results, err := s.TurnResults(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].TurnNumber != 1 {
		t.Errorf("results = %+v", results)
	}
}

func TestSoloGameRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	if err := s.LoadSoloGame(ctx, id, &struct{}{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing game = %v, want ErrNotFound", err)
	}

	in := map[string]int{"turn": 5}
	if err := s.SaveSoloGame(ctx, id, in); err != nil {
		t.Fatal(err)
	}
	var out map[string]int
	if err := s.LoadSoloGame(ctx, id, &out); err != nil {
		t.Fatal(err)
	}
	if out["turn"] != 5 {
		t.Errorf("round trip mismatch: %v", out)
	}
}
