package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/fight-league/models"
	"github.com/Dosada05/fight-league/rankings"
	"github.com/Dosada05/fight-league/repositories"
	"github.com/Dosada05/fight-league/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx runs fn directly with no executor; the fake repositories ignore it.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

type fakeFighterRepo struct {
	standings map[int]*models.FighterStanding
	records   []models.FightRecord
	nextID    int
}

func newFakeFighterRepo(standings ...models.FighterStanding) *fakeFighterRepo {
	r := &fakeFighterRepo{standings: make(map[int]*models.FighterStanding)}
	for i := range standings {
		s := standings[i]
		r.standings[s.ID] = &s
	}
	return r
}

func (r *fakeFighterRepo) CreateStanding(ctx context.Context, exec repositories.SQLExecutor, s *models.FighterStanding) error {
	if _, ok := r.standings[s.ID]; ok {
		return repositories.ErrFighterConflict
	}
	cp := *s
	r.standings[s.ID] = &cp
	return nil
}

func (r *fakeFighterRepo) GetStanding(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.FighterStanding, error) {
	s, ok := r.standings[id]
	if !ok {
		return nil, repositories.ErrFighterNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeFighterRepo) GetStandingForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.FighterStanding, error) {
	return r.GetStanding(ctx, exec, id)
}

func (r *fakeFighterRepo) ListStandings(ctx context.Context, exec repositories.SQLExecutor, filter repositories.ListStandingsFilter) ([]models.FighterStanding, error) {
	out := make([]models.FighterStanding, 0, len(r.standings))
	for _, s := range r.standings {
		if filter.WeightClass != "" && s.WeightClass != filter.WeightClass {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFighterRepo) UpdateStanding(ctx context.Context, exec repositories.SQLExecutor, s *models.FighterStanding) error {
	if _, ok := r.standings[s.ID]; !ok {
		return repositories.ErrFighterNotFound
	}
	cp := *s
	r.standings[s.ID] = &cp
	return nil
}

func (r *fakeFighterRepo) CreateRecord(ctx context.Context, exec repositories.SQLExecutor, rec *models.FightRecord) error {
	if _, ok := r.standings[rec.FighterID]; !ok {
		return repositories.ErrFightRecordFighterInvalid
	}
	r.nextID++
	rec.ID = r.nextID
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeFighterRepo) ListRecordsByFighter(ctx context.Context, exec repositories.SQLExecutor, fighterID int, limit int) ([]models.FightRecord, error) {
	var out []models.FightRecord
	for _, rec := range r.records {
		if rec.FighterID == fighterID {
			out = append(out, rec)
		}
	}
	rankings.SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFighterRepo) ListRecords(ctx context.Context, exec repositories.SQLExecutor, filter repositories.ListStandingsFilter) ([]models.FightRecord, error) {
	var out []models.FightRecord
	for _, rec := range r.records {
		s, ok := r.standings[rec.FighterID]
		if !ok || (filter.WeightClass != "" && s.WeightClass != filter.WeightClass) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	results     map[int]*models.TournamentResult
}

func newFakeTournamentRepo(tournaments ...models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{
		tournaments: make(map[int]*models.Tournament),
		results:     make(map[int]*models.TournamentResult),
	}
	for i := range tournaments {
		t := tournaments[i]
		r.tournaments[t.ID] = &t
	}
	return r
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, winnerID *int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	if winnerID != nil {
		w := *winnerID
		t.WinnerID = &w
	}
	return nil
}

func (r *fakeTournamentRepo) GetResult(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.TournamentResult, error) {
	res, ok := r.results[tournamentID]
	if !ok {
		return nil, repositories.ErrTournamentResultNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeTournamentRepo) CreateResult(ctx context.Context, exec repositories.SQLExecutor, result *models.TournamentResult) error {
	if _, ok := r.results[result.TournamentID]; ok {
		return repositories.ErrTournamentResultConflict
	}
	result.ID = len(r.results) + 1
	cp := *result
	r.results[result.TournamentID] = &cp
	return nil
}

type fakeParticipantRepo struct {
	participants []*models.TournamentParticipant
}

func (r *fakeParticipantRepo) find(tournamentID, fighterID int) *models.TournamentParticipant {
	for _, p := range r.participants {
		if p.TournamentID == tournamentID && p.FighterID == fighterID {
			return p
		}
	}
	return nil
}

func (r *fakeParticipantRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.TournamentParticipant) error {
	if r.find(p.TournamentID, p.FighterID) != nil {
		return repositories.ErrParticipantConflict
	}
	p.ID = len(r.participants) + 1
	cp := *p
	r.participants = append(r.participants, &cp)
	return nil
}

func (r *fakeParticipantRepo) FindByFighterAndTournament(ctx context.Context, exec repositories.SQLExecutor, fighterID, tournamentID int) (*models.TournamentParticipant, error) {
	p := r.find(tournamentID, fighterID)
	if p == nil {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, tournamentID, fighterID int, status models.ParticipantStatus) error {
	p := r.find(tournamentID, fighterID)
	if p == nil {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statusFilter *models.ParticipantStatus) ([]*models.TournamentParticipant, error) {
	var out []*models.TournamentParticipant
	for _, p := range r.participants {
		if p.TournamentID != tournamentID || (statusFilter != nil && p.Status != *statusFilter) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *fakeParticipantRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	n := 0
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeParticipantRepo) CountActive(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	n := 0
	for _, p := range r.participants {
		if p.TournamentID == tournamentID && p.Status != models.ParticipantWithdrawn {
			n++
		}
	}
	return n, nil
}

func (r *fakeParticipantRepo) status(tournamentID, fighterID int) models.ParticipantStatus {
	if p := r.find(tournamentID, fighterID); p != nil {
		return p.Status
	}
	return ""
}

type fakeMatchRepo struct {
	matches map[int]*models.BracketMatch
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.BracketMatch)}
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.BracketMatch) error {
	for _, m := range matches {
		r.nextID++
		m.ID = r.nextID
		cp := *m
		r.matches[m.ID] = &cp
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BracketMatch, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrBracketMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) FindByPosition(ctx context.Context, exec repositories.SQLExecutor, tournamentID, round, matchNumber int) (*models.BracketMatch, error) {
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Round == round && m.MatchNumber == matchNumber {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrBracketMatchNotFound
}

func (r *fakeMatchRepo) sorted(keep func(m *models.BracketMatch) bool) []*models.BracketMatch {
	var out []*models.BracketMatch
	for _, m := range r.matches {
		if keep(m) {
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
	return out
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.BracketMatch, error) {
	return r.sorted(func(m *models.BracketMatch) bool { return m.TournamentID == tournamentID }), nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, m *models.BracketMatch) error {
	if _, ok := r.matches[m.ID]; !ok {
		return repositories.ErrBracketMatchNotFound
	}
	cp := *m
	r.matches[m.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) ListOverdue(ctx context.Context, exec repositories.SQLExecutor, now time.Time, limit int) ([]*models.BracketMatch, error) {
	out := r.sorted(func(m *models.BracketMatch) bool {
		return (m.Status == models.MatchPending || m.Status == models.MatchScheduled) && m.DeadlineDate.Before(now)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type published struct {
	tournamentID int
	messageType  string
	payload      interface{}
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []published
}

func (n *fakeNotifier) Publish(tournamentID int, messageType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, published{tournamentID, messageType, payload})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	for i, m := range n.messages {
		out[i] = m.messageType
	}
	return out
}

type fakeUploader struct {
	objects map[string][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, err
	}
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://archive.test/" + key
}
