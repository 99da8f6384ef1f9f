package brackets

import (
	"context"

	"github.com/Dosada05/tennis-tournament/models"
)

type GenerateRoundParams struct {
	Tournament *models.Tournament
	// NumberOfPlayers == nil означает "вывести из предыдущего раунда"
	NumberOfPlayers *int
}

type RoundGenerator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) ([]models.Group, error)

	GetName() string
}
