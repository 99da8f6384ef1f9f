package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tennis-tournament/models"
)

// memoryState is the whole dataset of the in-memory store. Transactions
// snapshot it and restore the snapshot on failure.
type memoryState struct {
	nextTournamentID int
	nextGroupID      int
	nextMatchID      int

	tournaments map[int]models.Tournament
	groups      map[int]models.Group
	matches     map[int]models.MatchResult
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		nextTournamentID: st.nextTournamentID,
		nextGroupID:      st.nextGroupID,
		nextMatchID:      st.nextMatchID,
		tournaments:      make(map[int]models.Tournament, len(st.tournaments)),
		groups:           make(map[int]models.Group, len(st.groups)),
		matches:          make(map[int]models.MatchResult, len(st.matches)),
	}
	for id, t := range st.tournaments {
		c.tournaments[id] = t
	}
	for id, g := range st.groups {
		c.groups[id] = copyGroup(g)
	}
	for id, m := range st.matches {
		c.matches[id] = copyMatchResult(m)
	}
	return c
}

// memoryStore is an in-memory Store used for local runs without a database
// and in tests. A transaction holds the store lock for its whole duration.
type memoryStore struct {
	mu   *sync.Mutex
	st   *memoryState
	inTx bool
}

func NewMemoryStore() Store {
	return &memoryStore{
		mu: &sync.Mutex{},
		st: &memoryState{
			tournaments: make(map[int]models.Tournament),
			groups:      make(map[int]models.Group),
			matches:     make(map[int]models.MatchResult),
		},
	}
}

func (s *memoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memoryStore) Tournaments() TournamentRepository   { return (*memoryTournamentRepository)(s) }
func (s *memoryStore) Groups() GroupRepository             { return (*memoryGroupRepository)(s) }
func (s *memoryStore) MatchResults() MatchResultRepository { return (*memoryMatchResultRepository)(s) }

func (s *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			*s.st = *snapshot
		}
	}()

	if err := fn(ctx, &memoryStore{mu: s.mu, st: s.st, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

type memoryTournamentRepository memoryStore

func (r *memoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	defer (*memoryStore)(r).lock()()

	r.st.nextTournamentID++
	t.ID = r.st.nextTournamentID
	t.CreatedAt = time.Now().UTC()

	stored := *t
	stored.Groups = nil
	r.st.tournaments[t.ID] = stored
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	defer (*memoryStore)(r).lock()()

	t, ok := r.st.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return &t, nil
}

func (r *memoryTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	defer (*memoryStore)(r).lock()()

	tournaments := make([]models.Tournament, 0, len(r.st.tournaments))
	for _, t := range r.st.tournaments {
		if filter.Archived != nil && t.Archived != *filter.Archived {
			continue
		}
		tournaments = append(tournaments, t)
	}
	sort.Slice(tournaments, func(i, j int) bool {
		a, b := tournaments[i], tournaments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return tournaments, nil
}

func (r *memoryTournamentRepository) SetArchived(ctx context.Context, id int) error {
	defer (*memoryStore)(r).lock()()

	t, ok := r.st.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Archived = true
	r.st.tournaments[id] = t
	return nil
}

func (r *memoryTournamentRepository) Delete(ctx context.Context, id int) error {
	defer (*memoryStore)(r).lock()()

	if _, ok := r.st.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(r.st.tournaments, id)
	for gid, g := range r.st.groups {
		if g.TournamentID != id {
			continue
		}
		delete(r.st.groups, gid)
		for mid, m := range r.st.matches {
			if m.GroupID == gid {
				delete(r.st.matches, mid)
			}
		}
	}
	return nil
}

type memoryGroupRepository memoryStore

func (r *memoryGroupRepository) Create(ctx context.Context, g *models.Group) error {
	defer (*memoryStore)(r).lock()()

	if _, ok := r.st.tournaments[g.TournamentID]; !ok {
		return ErrGroupInvalidRef
	}
	if g.Participants == nil {
		g.Participants = []string{}
	}
	r.st.nextGroupID++
	g.ID = r.st.nextGroupID
	r.st.groups[g.ID] = copyGroup(*g)
	return nil
}

func (r *memoryGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	defer (*memoryStore)(r).lock()()

	g, ok := r.st.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	c := copyGroup(g)
	return &c, nil
}

func (r *memoryGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Group, error) {
	byTournament, err := r.ListByTournaments(ctx, []int{tournamentID})
	if err != nil {
		return nil, err
	}
	groups := byTournament[tournamentID]
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (r *memoryGroupRepository) ListByTournaments(ctx context.Context, tournamentIDs []int) (map[int][]models.Group, error) {
	defer (*memoryStore)(r).lock()()

	wanted := make(map[int]bool, len(tournamentIDs))
	for _, id := range tournamentIDs {
		wanted[id] = true
	}

	result := make(map[int][]models.Group, len(tournamentIDs))
	for _, g := range r.st.groups {
		if wanted[g.TournamentID] {
			result[g.TournamentID] = append(result[g.TournamentID], copyGroup(g))
		}
	}
	for _, groups := range result {
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].GroupNumber != groups[j].GroupNumber {
				return groups[i].GroupNumber < groups[j].GroupNumber
			}
			return groups[i].ID < groups[j].ID
		})
	}
	return result, nil
}

func (r *memoryGroupRepository) UpdateParticipants(ctx context.Context, id int, participants []string) error {
	defer (*memoryStore)(r).lock()()

	g, ok := r.st.groups[id]
	if !ok {
		return ErrGroupNotFound
	}
	g.Participants = append([]string{}, participants...)
	r.st.groups[id] = g
	return nil
}

type memoryMatchResultRepository memoryStore

func (r *memoryMatchResultRepository) Create(ctx context.Context, m *models.MatchResult) error {
	defer (*memoryStore)(r).lock()()

	if _, ok := r.st.groups[m.GroupID]; !ok {
		return ErrMatchResultGroupRef
	}
	for _, existing := range r.st.matches {
		if existing.GroupID == m.GroupID && existing.Involves(m.Player1, m.Player2) {
			return ErrMatchResultConflict
		}
	}

	r.st.nextMatchID++
	m.ID = r.st.nextMatchID
	m.ReportedAt = time.Now().UTC()
	r.st.matches[m.ID] = copyMatchResult(*m)
	return nil
}

func (r *memoryMatchResultRepository) GetByID(ctx context.Context, id int) (*models.MatchResult, error) {
	defer (*memoryStore)(r).lock()()

	m, ok := r.st.matches[id]
	if !ok {
		return nil, ErrMatchResultNotFound
	}
	c := copyMatchResult(m)
	return &c, nil
}

func (r *memoryMatchResultRepository) ListByGroup(ctx context.Context, groupID int) ([]models.MatchResult, error) {
	defer (*memoryStore)(r).lock()()

	results := make([]models.MatchResult, 0)
	for _, m := range r.st.matches {
		if m.GroupID == groupID {
			results = append(results, copyMatchResult(m))
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (r *memoryMatchResultRepository) FindByGroupAndPair(ctx context.Context, groupID int, playerA, playerB string) (*models.MatchResult, error) {
	defer (*memoryStore)(r).lock()()

	for _, m := range r.st.matches {
		if m.GroupID == groupID && m.Involves(playerA, playerB) {
			c := copyMatchResult(m)
			return &c, nil
		}
	}
	return nil, ErrMatchResultNotFound
}

func (r *memoryMatchResultRepository) UpdateOutcome(ctx context.Context, m *models.MatchResult) error {
	defer (*memoryStore)(r).lock()()

	existing, ok := r.st.matches[m.ID]
	if !ok {
		return ErrMatchResultNotFound
	}
	updated := copyMatchResult(*m)
	existing.Status = updated.Status
	existing.Score1 = updated.Score1
	existing.Score2 = updated.Score2
	existing.Winner = updated.Winner
	r.st.matches[m.ID] = existing
	return nil
}

func copyGroup(g models.Group) models.Group {
	g.Participants = append([]string{}, g.Participants...)
	if g.Court1 != nil {
		c := *g.Court1
		g.Court1 = &c
	}
	if g.Court2 != nil {
		c := *g.Court2
		g.Court2 = &c
	}
	return g
}

func copyMatchResult(m models.MatchResult) models.MatchResult {
	if m.Score1 != nil {
		v := *m.Score1
		m.Score1 = &v
	}
	if m.Score2 != nil {
		v := *m.Score2
		m.Score2 = &v
	}
	if m.Winner != nil {
		v := *m.Winner
		m.Winner = &v
	}
	return m
}
