package brackets

import (
	"context"

	"github.com/Dosada05/fight-league/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket lays out every round of the bracket.
//
// Round 1 pairs seeds two at a time in order; an odd seed out gets a Bye match that it has
// already won. Later rounds are empty shells: round r+1 has ceil(matches(r)/2) matches,
// down to a single final. Byes are not propagated here.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.BracketMatch, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, ErrInsufficientParticipants
	}

	tournamentID := 0
	if params.Tournament != nil {
		tournamentID = params.Tournament.ID
	}

	newMatch := func(round, number int) *models.BracketMatch {
		return &models.BracketMatch{
			TournamentID: tournamentID,
			Round:        round,
			MatchNumber:  number,
			DeadlineDate: params.Deadline,
			Status:       models.MatchPending,
		}
	}

	allGeneratedMatches := make([]*models.BracketMatch, 0, n)

	pairs := n / 2
	for i := 0; i < pairs; i++ {
		bm := newMatch(1, i+1)
		f1, f2 := participants[i*2].FighterID, participants[i*2+1].FighterID
		bm.Fighter1ID = &f1
		bm.Fighter2ID = &f2
		allGeneratedMatches = append(allGeneratedMatches, bm)
	}
	matchesInRound := pairs
	if n%2 == 1 {
		bm := newMatch(1, pairs+1)
		lone := participants[n-1].FighterID
		winner := lone
		bm.Fighter1ID = &lone
		bm.WinnerID = &winner
		bm.Status = models.MatchBye
		allGeneratedMatches = append(allGeneratedMatches, bm)
		matchesInRound++
	}

	for round := 2; matchesInRound > 1; round++ {
		matchesInRound = (matchesInRound + 1) / 2
		for k := 1; k <= matchesInRound; k++ {
			allGeneratedMatches = append(allGeneratedMatches, newMatch(round, k))
		}
	}

	return allGeneratedMatches, nil
}

// NextSlot returns where the winner of (round, matchNumber) goes: the next round's match
// number and whether it fills the fighter1 slot.
func NextSlot(round, matchNumber int) (nextRound, nextMatchNumber int, firstSlot bool) {
	return round + 1, (matchNumber + 1) / 2, matchNumber%2 == 1
}
