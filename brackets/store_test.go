package brackets

import (
	"context"
	"sort"

	"github.com/Dosada05/fight-league/models"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	tournaments  map[int]*models.Tournament
	matches      map[int]*models.BracketMatch
	participants map[[2]int]models.ParticipantStatus
	results      map[int]*models.TournamentResult
	nextID       int
	writes       int
}

func newMemStore(tournaments ...*models.Tournament) *memStore {
	s := &memStore{
		tournaments:  make(map[int]*models.Tournament),
		matches:      make(map[int]*models.BracketMatch),
		participants: make(map[[2]int]models.ParticipantStatus),
		results:      make(map[int]*models.TournamentResult),
	}
	for _, t := range tournaments {
		s.tournaments[t.ID] = t
	}
	return s
}

func (s *memStore) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := s.tournaments[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) UpdateTournamentStatus(_ context.Context, id int, status models.TournamentStatus, winnerID *int) error {
	s.writes++
	t := s.tournaments[id]
	t.Status = status
	if winnerID != nil {
		w := *winnerID
		t.WinnerID = &w
	}
	return nil
}

func (s *memStore) UpdateParticipantStatus(_ context.Context, tournamentID, fighterID int, status models.ParticipantStatus) error {
	s.writes++
	s.participants[[2]int{tournamentID, fighterID}] = status
	return nil
}

func (s *memStore) CreateMatches(_ context.Context, matches []*models.BracketMatch) error {
	s.writes++
	for _, m := range matches {
		s.nextID++
		m.ID = s.nextID
		cp := *m
		s.matches[m.ID] = &cp
	}
	return nil
}

func (s *memStore) GetMatch(_ context.Context, id int) (*models.BracketMatch, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) FindMatch(_ context.Context, tournamentID, round, matchNumber int) (*models.BracketMatch, error) {
	for _, m := range s.matches {
		if m.TournamentID == tournamentID && m.Round == round && m.MatchNumber == matchNumber {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (s *memStore) ListMatches(_ context.Context, tournamentID int) ([]*models.BracketMatch, error) {
	out := make([]*models.BracketMatch, 0)
	for _, m := range s.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (s *memStore) UpdateMatch(_ context.Context, match *models.BracketMatch) error {
	s.writes++
	if _, ok := s.matches[match.ID]; !ok {
		return ErrMatchNotFound
	}
	cp := *match
	s.matches[match.ID] = &cp
	return nil
}

func (s *memStore) GetResult(_ context.Context, tournamentID int) (*models.TournamentResult, error) {
	r, ok := s.results[tournamentID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) CreateResult(_ context.Context, result *models.TournamentResult) error {
	s.writes++
	cp := *result
	s.results[result.TournamentID] = &cp
	return nil
}

func (s *memStore) match(round, number int) *models.BracketMatch {
	m, _ := s.FindMatch(context.Background(), 1, round, number)
	return m
}
