package brackets

import (
	"context"
	"time"

	"github.com/Dosada05/fight-league/models"
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	// Participants must be checked in and ordered by seed.
	Participants []*models.TournamentParticipant
	// Deadline is stamped on every generated match, shells included.
	Deadline time.Time
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.BracketMatch, error)

	GetName() string
}

// GeneratorFor returns the generator for a tournament format.
func GeneratorFor(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination, "":
		return NewSingleEliminationGenerator(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
