package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
)

// newTxDB returns a mocked *sql.DB expecting the given number of committed
// transactions. The repositories under test are in-memory fakes, so only the
// Begin/Commit pairs issued by runInTx reach the mock.
func newTxDB(t *testing.T, commits int) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	for i := 0; i < commits; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestHub(t *testing.T) *draws.Hub {
	t.Helper()
	hub := draws.NewHub(zerolog.Nop())
	go hub.Run()
	return hub
}

type fakeDivisionRepo struct {
	divisions map[int]*models.Division
}

func newFakeDivisionRepo(divisions ...*models.Division) *fakeDivisionRepo {
	r := &fakeDivisionRepo{divisions: make(map[int]*models.Division)}
	for _, d := range divisions {
		r.divisions[d.ID] = d
	}
	return r
}

func (r *fakeDivisionRepo) Create(ctx context.Context, d *models.Division) error {
	d.ID = len(r.divisions) + 1
	r.divisions[d.ID] = d
	return nil
}

func (r *fakeDivisionRepo) GetByID(ctx context.Context, id int) (*models.Division, error) {
	d, ok := r.divisions[id]
	if !ok {
		return nil, repositories.ErrDivisionNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDivisionRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Division, error) {
	var out []*models.Division
	for _, d := range r.divisions {
		if d.TournamentID == tournamentID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDivisionRepo) Delete(ctx context.Context, id int) error {
	delete(r.divisions, id)
	return nil
}

type fakeEntryRepo struct {
	entries map[int]*models.Entry
}

func newFakeEntryRepo(entries ...*models.Entry) *fakeEntryRepo {
	r := &fakeEntryRepo{entries: make(map[int]*models.Entry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeEntryRepo) Create(ctx context.Context, e *models.Entry) error {
	e.ID = len(r.entries) + 1
	r.entries[e.ID] = e
	return nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repositories.ErrEntryNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEntryRepo) ListByDivision(ctx context.Context, divisionID int, statusFilter *models.EntryStatus) ([]*models.Entry, error) {
	var out []*models.Entry
	for _, e := range r.entries {
		if e.DivisionID != divisionID {
			continue
		}
		if statusFilter != nil && e.Status != *statusFilter {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEntryRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.Entry, error) {
	var out []*models.Entry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) UpdateSeed(ctx context.Context, id int, seed *int) error {
	e, ok := r.entries[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	e.Seed = seed
	return nil
}

func (r *fakeEntryRepo) UpdateStatus(ctx context.Context, id int, status models.EntryStatus) error {
	e, ok := r.entries[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	e.Status = status
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m
		if m.ID > r.nextID {
			r.nextID = m.ID
		}
	}
	return r
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.nextID++
	m.ID = r.nextID
	copied := *m
	r.matches[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByDivision(ctx context.Context, divisionID int, phase *models.MatchPhase, round *int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.DivisionID != divisionID {
			continue
		}
		if phase != nil && m.Phase != *phase {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListOccupyingByTournament(ctx context.Context, tournamentID, excludeMatchID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.ID == excludeMatchID || !m.Occupying() {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) ListFinishedSince(ctx context.Context, tournamentID int, since time.Time) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if !m.IsTerminal() || m.ActualEnd == nil || m.ActualEnd.Before(since) {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByDivisionAndPhase(ctx context.Context, divisionID int, phase models.MatchPhase) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.DivisionID == divisionID && m.Phase == phase {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) SetActualStart(ctx context.Context, id int, startedAt time.Time) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusOnCourt
	m.ActualStart = &startedAt
	return nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id int, games []models.GameScore, live *models.GameScore, status models.MatchStatus, winner *models.MatchSide, endedAt *time.Time) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Games = games
	m.LiveScore = live
	m.Status = status
	m.WinnerSide = winner
	m.ActualEnd = endedAt
	return nil
}

func (r *fakeMatchRepo) UpdateLiveScore(ctx context.Context, id int, live *models.GameScore) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.LiveScore = live
	return nil
}

func (r *fakeMatchRepo) UpdateNextMatchInfo(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID *int, nextMatchSlot *models.MatchSide) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.NextMatchSlot = nextMatchSlot
	return nil
}

func (r *fakeMatchRepo) FillSlot(ctx context.Context, exec repositories.SQLExecutor, id int, slot models.MatchSide, entryID int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == models.SideA {
		m.EntryAID = &entryID
	} else {
		m.EntryBID = &entryID
	}
	return nil
}

func (r *fakeMatchRepo) AssignCourt(ctx context.Context, id, courtID int) error {
	for _, other := range r.matches {
		if other.ID != id && other.CourtID != nil && *other.CourtID == courtID && other.Occupying() {
			return repositories.ErrCourtOccupied
		}
	}
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.CourtID = &courtID
	return nil
}

func (r *fakeMatchRepo) ClearCourt(ctx context.Context, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.CourtID = nil
	return nil
}

func (r *fakeMatchRepo) DeleteByDivision(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error {
	for id, m := range r.matches {
		if m.DivisionID == divisionID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeDrawStateRepo struct {
	states map[int]*models.DrawState
}

func newFakeDrawStateRepo(states ...*models.DrawState) *fakeDrawStateRepo {
	r := &fakeDrawStateRepo{states: make(map[int]*models.DrawState)}
	for _, s := range states {
		r.states[s.DivisionID] = s
	}
	return r
}

func (r *fakeDrawStateRepo) Create(ctx context.Context, exec repositories.SQLExecutor, state *models.DrawState) error {
	if _, ok := r.states[state.DivisionID]; ok {
		return repositories.ErrDrawStateConflict
	}
	state.ID = len(r.states) + 1
	copied := *state
	r.states[state.DivisionID] = &copied
	return nil
}

func (r *fakeDrawStateRepo) GetByDivision(ctx context.Context, divisionID int) (*models.DrawState, error) {
	s, ok := r.states[divisionID]
	if !ok {
		return nil, repositories.ErrDrawStateNotFound
	}
	copied := *s
	copied.ByeEntryIDs = append([]int(nil), s.ByeEntryIDs...)
	return &copied, nil
}

func (r *fakeDrawStateRepo) Update(ctx context.Context, exec repositories.SQLExecutor, state *models.DrawState) error {
	if _, ok := r.states[state.DivisionID]; !ok {
		return repositories.ErrDrawStateNotFound
	}
	copied := *state
	copied.ByeEntryIDs = append([]int(nil), state.ByeEntryIDs...)
	r.states[state.DivisionID] = &copied
	return nil
}

func (r *fakeDrawStateRepo) DeleteByDivision(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error {
	delete(r.states, divisionID)
	return nil
}

type fakeStandingRepo struct {
	snapshots map[int][]models.Standing
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{snapshots: make(map[int][]models.Standing)}
}

func (r *fakeStandingRepo) ReplaceSnapshot(ctx context.Context, exec repositories.SQLExecutor, divisionID int, standings []models.Standing) error {
	r.snapshots[divisionID] = append([]models.Standing(nil), standings...)
	return nil
}

func (r *fakeStandingRepo) ListByDivision(ctx context.Context, divisionID int) ([]models.Standing, error) {
	snapshot, ok := r.snapshots[divisionID]
	if !ok || len(snapshot) == 0 {
		return nil, repositories.ErrStandingsNotFound
	}
	return append([]models.Standing(nil), snapshot...), nil
}

func (r *fakeStandingRepo) DeleteByDivision(ctx context.Context, exec repositories.SQLExecutor, divisionID int) error {
	delete(r.snapshots, divisionID)
	return nil
}
