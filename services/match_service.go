package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tennis-tournament/brackets"
	"github.com/Dosada05/tennis-tournament/cache"
	"github.com/Dosada05/tennis-tournament/models"
	"github.com/Dosada05/tennis-tournament/repositories"
	"github.com/Dosada05/tennis-tournament/scoring"
)

// ReportMatchInput: имена игроков и победителя обрезаются по краям до
// сравнения и сохраняются уже обрезанными.
type ReportMatchInput struct {
	GroupID int     `json:"group_id"`
	Player1 string  `json:"player1"`
	Player2 string  `json:"player2"`
	Status  string  `json:"status"`
	Score1  *int    `json:"score1,omitempty"`
	Score2  *int    `json:"score2,omitempty"`
	Winner  *string `json:"winner,omitempty"`
}

// UpdateMatchInput перезаписывает исход матча. Имена игроков берутся из
// сохранённой записи, поля Player1/Player2 запроса игнорируются.
type UpdateMatchInput struct {
	Status  string  `json:"status"`
	Player1 string  `json:"player1,omitempty"`
	Player2 string  `json:"player2,omitempty"`
	Score1  *int    `json:"score1,omitempty"`
	Score2  *int    `json:"score2,omitempty"`
	Winner  *string `json:"winner,omitempty"`
}

type MatchService interface {
	Report(ctx context.Context, input ReportMatchInput) (*models.MatchResult, error)
	Update(ctx context.Context, matchID int, input UpdateMatchInput) (*models.MatchResult, error)
	GetForGroup(ctx context.Context, groupID int) ([]models.MatchResult, error)
	GroupStandings(ctx context.Context, groupID int) ([]brackets.Standing, error)
}

type matchService struct {
	store    repositories.Store
	rules    scoring.Rules
	cache    cache.ResultCache
	notifier Notifier
	logger   *slog.Logger
}

// NewMatchService создаёт сервис результатов. resultCache и notifier
// могут быть nil.
func NewMatchService(
	store repositories.Store,
	rules scoring.Rules,
	resultCache cache.ResultCache,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		store:    store,
		rules:    rules,
		cache:    resultCache,
		notifier: notifier,
		logger:   logger,
	}
}

type matchEvent struct {
	TournamentID int                 `json:"tournament_id"`
	Match        *models.MatchResult `json:"match"`
}

func (s *matchService) Report(ctx context.Context, input ReportMatchInput) (*models.MatchResult, error) {
	var (
		result       *models.MatchResult
		tournamentID int
		pairing      scoring.Pairing
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		group, err := tx.Groups().GetByID(ctx, input.GroupID)
		if err != nil {
			return err
		}

		pairing, err = newPairing(input.Player1, input.Player2)
		if err != nil {
			return err
		}

		_, err = tx.MatchResults().FindByGroupAndPair(ctx, group.ID, pairing.Player1, pairing.Player2)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s vs %s in group %d", ErrDuplicateMatch, pairing.Player1, pairing.Player2, group.ID)
		case !errors.Is(err, repositories.ErrMatchResultNotFound):
			return fmt.Errorf("failed to look up existing result in group %d: %w", group.ID, err)
		}

		decision, err := s.decide(input.Status, input.Score1, input.Score2, input.Winner, pairing)
		if err != nil {
			return err
		}

		m := &models.MatchResult{
			GroupID: group.ID,
			Player1: pairing.Player1,
			Player2: pairing.Player2,
		}
		decision.Apply(m)

		if err := tx.MatchResults().Create(ctx, m); err != nil {
			if errors.Is(err, repositories.ErrMatchResultGroupRef) {
				return ErrGroupNotFound
			}
			return err
		}

		result = m
		tournamentID = group.TournamentID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMatch) {
			s.logger.Warn("duplicate match report rejected",
				slog.Int("group_id", input.GroupID),
				slog.String("player1", pairing.Player1),
				slog.String("player2", pairing.Player2))
		}
		return nil, err
	}

	s.logger.Info("match reported",
		slog.Int("match_id", result.ID),
		slog.Int("group_id", result.GroupID),
		slog.String("status", string(result.Status)),
		slog.String("winner", derefString(result.Winner)))

	s.afterWrite(ctx, tournamentID, result, brackets.EventMatchReported)
	return result, nil
}

func (s *matchService) Update(ctx context.Context, matchID int, input UpdateMatchInput) (*models.MatchResult, error) {
	var (
		result       *models.MatchResult
		tournamentID int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		m, err := tx.MatchResults().GetByID(ctx, matchID)
		if err != nil {
			return err
		}

		pairing := scoring.Pairing{Player1: m.Player1, Player2: m.Player2}
		decision, err := s.decide(input.Status, input.Score1, input.Score2, input.Winner, pairing)
		if err != nil {
			return err
		}
		decision.Apply(m)

		if err := tx.MatchResults().UpdateOutcome(ctx, m); err != nil {
			return err
		}

		group, err := tx.Groups().GetByID(ctx, m.GroupID)
		if err != nil {
			return fmt.Errorf("failed to load group %d of match %d: %w", m.GroupID, m.ID, err)
		}

		result = m
		tournamentID = group.TournamentID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match updated",
		slog.Int("match_id", result.ID),
		slog.Int("group_id", result.GroupID),
		slog.String("status", string(result.Status)),
		slog.String("winner", derefString(result.Winner)))

	s.afterWrite(ctx, tournamentID, result, brackets.EventMatchUpdated)
	return result, nil
}

func (s *matchService) GetForGroup(ctx context.Context, groupID int) ([]models.MatchResult, error) {
	_, results, err := s.loadGroupResults(ctx, groupID)
	return results, err
}

func (s *matchService) GroupStandings(ctx context.Context, groupID int) ([]brackets.Standing, error) {
	group, results, err := s.loadGroupResults(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return brackets.BuildStandings(group.Participants, results), nil
}

func (s *matchService) loadGroupResults(ctx context.Context, groupID int) (*models.Group, []models.MatchResult, error) {
	group, err := s.store.Groups().GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	cacheable := false
	var version int64
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, groupID)
		if err != nil {
			s.logger.Warn("result cache read failed", slog.Int("group_id", groupID), slog.Any("error", err))
		} else if ok {
			return group, cached, nil
		}

		// версия читается до запроса в БД
		version, err = s.cache.Version(ctx, groupID)
		if err != nil {
			s.logger.Warn("result cache version read failed", slog.Int("group_id", groupID), slog.Any("error", err))
		} else {
			cacheable = true
		}
	}

	results, err := s.store.MatchResults().ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list results for group %d: %w", groupID, err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, groupID, version, results); err != nil {
			s.logger.Warn("result cache write failed", slog.Int("group_id", groupID), slog.Any("error", err))
		}
	}
	return group, results, nil
}

func (s *matchService) decide(status string, score1, score2 *int, winner *string, pairing scoring.Pairing) (scoring.Decision, error) {
	outcome, err := scoring.NewOutcome(status, score1, score2, trimmed(winner))
	if err != nil {
		return scoring.Decision{}, err
	}
	return s.rules.Decide(outcome, pairing)
}

// afterWrite сбрасывает кэш группы и рассылает событие. Вызывается только
// после коммита; ошибки здесь на результат операции не влияют.
func (s *matchService) afterWrite(ctx context.Context, tournamentID int, m *models.MatchResult, eventType string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, m.GroupID); err != nil {
			s.logger.Warn("result cache invalidation failed", slog.Int("group_id", m.GroupID), slog.Any("error", err))
		}
	}
	notify(s.notifier, tournamentID, eventType, matchEvent{TournamentID: tournamentID, Match: m})
}

func newPairing(player1, player2 string) (scoring.Pairing, error) {
	p := scoring.Pairing{
		Player1: strings.TrimSpace(player1),
		Player2: strings.TrimSpace(player2),
	}
	if p.Player1 == "" || p.Player2 == "" {
		return scoring.Pairing{}, fmt.Errorf("%w: both player names are required", ErrInvalidPairing)
	}
	if p.Player1 == p.Player2 {
		return scoring.Pairing{}, fmt.Errorf("%w: %s cannot play against themselves", ErrInvalidPairing, p.Player1)
	}
	return p, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
