package services

import (
	"errors"

	"github.com/Dosada05/tennis-tournament/brackets"
	"github.com/Dosada05/tennis-tournament/repositories"
	"github.com/Dosada05/tennis-tournament/scoring"
)

// Ошибки, которые сервисы возвращают наружу. Все они означают ошибку во
// входных данных вызывающего; проверять их нужно через errors.Is.
var (
	// Не найдено
	ErrTournamentNotFound = repositories.ErrTournamentNotFound
	ErrGroupNotFound      = repositories.ErrGroupNotFound
	ErrMatchNotFound      = repositories.ErrMatchResultNotFound

	// Результат для этой пары уже есть, нужен Update
	ErrDuplicateMatch = repositories.ErrMatchResultConflict

	// Валидация результата матча
	ErrInvalidStatus   = scoring.ErrInvalidStatus
	ErrMissingScore    = scoring.ErrMissingScore
	ErrScoreOutOfRange = scoring.ErrScoreOutOfRange
	ErrNoGamesWinner   = scoring.ErrNoGamesWinner
	ErrAmbiguousWinner = scoring.ErrAmbiguousWinner
	ErrMissingWinner   = scoring.ErrMissingWinner
	ErrInvalidWinner   = scoring.ErrInvalidWinner
	ErrInvalidPairing  = errors.New("a match needs two different player names")

	// Размер следующего раунда
	ErrPlayerCountRequired = brackets.ErrPlayerCountRequired
	ErrTooFewPlayers       = brackets.ErrTooFewPlayers
	ErrOddPlayerCount      = brackets.ErrOddPlayerCount

	// Обновление пары
	ErrEmptyParticipantList    = errors.New("participant list must not be empty")
	ErrInvalidParticipantCount = errors.New("a knockout pairing must have exactly 2 participants")

	// Создание турнира
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentDateRequired = errors.New("tournament date is required")
	ErrTournamentDateInvalid  = errors.New("tournament date must be in YYYY-MM-DD format")
	ErrGroupsRequired         = errors.New("at least one group with participants is required")
)
