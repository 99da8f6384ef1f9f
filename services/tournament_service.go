package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-tournament/brackets"
	"github.com/Dosada05/tennis-tournament/models"
	"github.com/Dosada05/tennis-tournament/repositories"
	"github.com/Dosada05/tennis-tournament/storage"
)

const dateLayout = "2006-01-02"

type GroupInput struct {
	// GroupNumber == 0 означает "по порядку в запросе"
	GroupNumber  int      `json:"group_number,omitempty"`
	Participants []string `json:"participants"`
	Court1       *string  `json:"court1,omitempty"`
	Court2       *string  `json:"court2,omitempty"`
}

type CreateTournamentInput struct {
	Name            string       `json:"name"`
	Date            string       `json:"date"`
	NumberOfWinners *int         `json:"number_of_winners,omitempty"`
	Groups          []GroupInput `json:"groups"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.TournamentSummary, error)
	List(ctx context.Context) ([]models.TournamentSummary, error)
	ListActive(ctx context.Context) ([]models.TournamentSummary, error)
	ListArchived(ctx context.Context) ([]models.TournamentSummary, error)
	Get(ctx context.Context, id int) (*models.Tournament, error)
	Archive(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	DeleteActive(ctx context.Context) (int, error)
	CreateNextRound(ctx context.Context, tournamentID int, numberOfPlayers *int) (*models.Tournament, error)
	UpdateGroupParticipants(ctx context.Context, groupID int, participants []string) (*models.Group, error)
	Ranking(ctx context.Context, tournamentID int) ([]brackets.Standing, error)
}

type tournamentService struct {
	store     repositories.Store
	generator brackets.RoundGenerator
	uploader  storage.FileUploader
	notifier  Notifier
	logger    *slog.Logger
}

// NewTournamentService создаёт сервис турниров. uploader и notifier могут
// быть nil: тогда архивы не выгружаются и события не рассылаются.
func NewTournamentService(
	store repositories.Store,
	generator brackets.RoundGenerator,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		store:     store,
		generator: generator,
		uploader:  uploader,
		notifier:  notifier,
		logger:    logger,
	}
}

// ArchiveSnapshot is the document exported when a tournament is archived.
type ArchiveSnapshot struct {
	Tournament *models.Tournament   `json:"tournament"`
	Results    []models.MatchResult `json:"results"`
	Standings  []brackets.Standing  `json:"standings"`
	ArchivedAt time.Time            `json:"archived_at"`
}

type roundEvent struct {
	TournamentID int            `json:"tournament_id"`
	Groups       []models.Group `json:"groups"`
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.TournamentSummary, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	rawDate := strings.TrimSpace(input.Date)
	if rawDate == "" {
		return nil, ErrTournamentDateRequired
	}
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTournamentDateInvalid, rawDate)
	}

	groups := make([]models.Group, 0, len(input.Groups))
	for i, g := range input.Groups {
		participants := cleanNames(g.Participants)
		if len(participants) == 0 {
			continue
		}
		number := g.GroupNumber
		if number <= 0 {
			number = i + 1
		}
		groups = append(groups, models.Group{
			GroupNumber:  number,
			Participants: participants,
			Court1:       optionalString(g.Court1),
			Court2:       optionalString(g.Court2),
		})
	}
	if len(groups) == 0 {
		return nil, ErrGroupsRequired
	}

	numberOfWinners := 1
	if input.NumberOfWinners != nil {
		numberOfWinners = *input.NumberOfWinners
	}

	t := &models.Tournament{
		Name:            name,
		Date:            date,
		NumberOfWinners: numberOfWinners,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Tournaments().Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		for i := range groups {
			groups[i].TournamentID = t.ID
			if err := tx.Groups().Create(ctx, &groups[i]); err != nil {
				return fmt.Errorf("failed to create group %d: %w", groups[i].GroupNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.Groups = groups

	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.Int("groups", len(input.Groups)),
		slog.Int("non_empty_groups", len(groups)))

	summary := t.Summary()
	return &summary, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.TournamentSummary, error) {
	return s.listSummaries(ctx, repositories.ListTournamentsFilter{})
}

func (s *tournamentService) ListActive(ctx context.Context) ([]models.TournamentSummary, error) {
	archived := false
	return s.listSummaries(ctx, repositories.ListTournamentsFilter{Archived: &archived})
}

func (s *tournamentService) ListArchived(ctx context.Context) ([]models.TournamentSummary, error) {
	archived := true
	return s.listSummaries(ctx, repositories.ListTournamentsFilter{Archived: &archived})
}

func (s *tournamentService) listSummaries(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.TournamentSummary, error) {
	tournaments, err := s.store.Tournaments().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	ids := make([]int, 0, len(tournaments))
	for _, t := range tournaments {
		ids = append(ids, t.ID)
	}
	groupsByTournament, err := s.store.Groups().ListByTournaments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups for tournament list: %w", err)
	}

	summaries := make([]models.TournamentSummary, 0, len(tournaments))
	for i := range tournaments {
		tournaments[i].Groups = groupsByTournament[tournaments[i].ID]
		summaries = append(summaries, tournaments[i].Summary())
	}
	return summaries, nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	return loadTournament(ctx, s.store, id)
}

func (s *tournamentService) Archive(ctx context.Context, id int) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		return tx.Tournaments().SetArchived(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament archived", slog.Int("tournament_id", id))
	notify(s.notifier, id, brackets.EventTournamentArchived, map[string]int{"tournament_id": id})

	if s.uploader != nil {
		if err := s.exportArchive(ctx, id); err != nil {
			s.logger.Error("archive export failed", slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) exportArchive(ctx context.Context, id int) error {
	t, err := loadTournament(ctx, s.store, id)
	if err != nil {
		return err
	}
	results, err := s.loadResults(ctx, t.Groups)
	if err != nil {
		return err
	}

	snapshot := ArchiveSnapshot{
		Tournament: t,
		Results:    make([]models.MatchResult, 0),
		Standings:  rankGroups(t.Groups, results),
		ArchivedAt: time.Now().UTC(),
	}
	for _, g := range t.Groups {
		snapshot.Results = append(snapshot.Results, results[g.ID]...)
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode archive snapshot: %w", err)
	}

	key := storage.ArchiveObjectKey(id, uuid.New())
	uploaded, err := s.uploader.Upload(ctx, key, storage.JSONContentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.logger.Info("archive exported", slog.Int("tournament_id", id), slog.String("location", uploaded.Location))
	return nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		return tx.Tournaments().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	notify(s.notifier, id, brackets.EventTournamentDeleted, map[string]int{"tournament_id": id})
	return nil
}

func (s *tournamentService) DeleteActive(ctx context.Context) (int, error) {
	archived := false
	var deleted []int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		active, err := tx.Tournaments().List(ctx, repositories.ListTournamentsFilter{Archived: &archived})
		if err != nil {
			return fmt.Errorf("failed to list active tournaments: %w", err)
		}
		for _, t := range active {
			if err := tx.Tournaments().Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("failed to delete tournament %d: %w", t.ID, err)
			}
			deleted = append(deleted, t.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("active tournaments deleted", slog.Int("count", len(deleted)))
	for _, id := range deleted {
		notify(s.notifier, id, brackets.EventTournamentDeleted, map[string]int{"tournament_id": id})
	}
	return len(deleted), nil
}

func (s *tournamentService) CreateNextRound(ctx context.Context, tournamentID int, numberOfPlayers *int) (*models.Tournament, error) {
	var (
		t       *models.Tournament
		created []models.Group
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		t, err = loadTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		created, err = s.generator.GenerateRound(ctx, brackets.GenerateRoundParams{
			Tournament:      t,
			NumberOfPlayers: numberOfPlayers,
		})
		if err != nil {
			return err
		}

		for i := range created {
			if err := tx.Groups().Create(ctx, &created[i]); err != nil {
				return fmt.Errorf("failed to create round group %d: %w", created[i].GroupNumber, err)
			}
		}
		t.Groups = append(t.Groups, created...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("next round created",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("new_groups", len(created)))

	notify(s.notifier, tournamentID, brackets.EventRoundCreated, roundEvent{TournamentID: tournamentID, Groups: created})
	return t, nil
}

func (s *tournamentService) UpdateGroupParticipants(ctx context.Context, groupID int, participants []string) (*models.Group, error) {
	var group *models.Group
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		group, err = tx.Groups().GetByID(ctx, groupID)
		if err != nil {
			return err
		}

		if len(participants) == 0 {
			return ErrEmptyParticipantList
		}
		if len(participants) != 2 {
			return fmt.Errorf("%w: got %d", ErrInvalidParticipantCount, len(participants))
		}

		if err := tx.Groups().UpdateParticipants(ctx, groupID, participants); err != nil {
			return err
		}
		group.Participants = append([]string{}, participants...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("group participants updated",
		slog.Int("group_id", group.ID),
		slog.Int("tournament_id", group.TournamentID))

	notify(s.notifier, group.TournamentID, brackets.EventGroupUpdated, group)
	return group, nil
}

func (s *tournamentService) Ranking(ctx context.Context, tournamentID int) ([]brackets.Standing, error) {
	t, err := loadTournament(ctx, s.store, tournamentID)
	if err != nil {
		return nil, err
	}
	results, err := s.loadResults(ctx, t.Groups)
	if err != nil {
		return nil, err
	}
	return rankGroups(t.Groups, results), nil
}

// loadResults загружает результаты всех групп параллельно.
func (s *tournamentService) loadResults(ctx context.Context, groups []models.Group) (map[int][]models.MatchResult, error) {
	perGroup := make([][]models.MatchResult, len(groups))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range groups {
		i := i
		g.Go(func() error {
			results, err := s.store.MatchResults().ListByGroup(gCtx, groups[i].ID)
			if err != nil {
				return fmt.Errorf("failed to list results for group %d: %w", groups[i].ID, err)
			}
			perGroup[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byGroup := make(map[int][]models.MatchResult, len(groups))
	for i, grp := range groups {
		byGroup[grp.ID] = perGroup[i]
	}
	return byGroup, nil
}

func rankGroups(groups []models.Group, results map[int][]models.MatchResult) []brackets.Standing {
	perGroup := make([][]brackets.Standing, 0, len(groups))
	for _, g := range groups {
		perGroup = append(perGroup, brackets.BuildStandings(g.Participants, results[g.ID]))
	}
	return brackets.MergeStandings(perGroup...)
}

func loadTournament(ctx context.Context, store repositories.Store, id int) (*models.Tournament, error) {
	t, err := store.Tournaments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := store.Groups().ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups for tournament %d: %w", id, err)
	}
	t.Groups = groups
	return t, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
