package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-tournament/brackets"
	"github.com/Dosada05/tennis-tournament/repositories"
	"github.com/Dosada05/tennis-tournament/storage"
)

type fakeUploader struct {
	mu      sync.Mutex
	err     error
	uploads map[string][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploads == nil {
		u.uploads = make(map[string][]byte)
	}
	u.uploads[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

type tournamentFixture struct {
	store    repositories.Store
	notifier *recordingNotifier
	uploader *fakeUploader
	service  TournamentService
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	notifier := &recordingNotifier{}
	uploader := &fakeUploader{}
	return &tournamentFixture{
		store:    store,
		notifier: notifier,
		uploader: uploader,
		service:  NewTournamentService(store, brackets.NewKnockoutRoundGenerator(), uploader, notifier, discardLogger()),
	}
}

func (f *tournamentFixture) create(t *testing.T, name, date string, groups ...[]string) int {
	t.Helper()
	input := CreateTournamentInput{Name: name, Date: date}
	for _, g := range groups {
		input.Groups = append(input.Groups, GroupInput{Participants: g})
	}
	summary, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)
	return summary.ID
}

func TestTournamentService_Create(t *testing.T) {
	f := newTournamentFixture(t)

	summary, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name: "  Autumn Open ",
		Date: "2024-10-05",
		Groups: []GroupInput{
			{GroupNumber: 1, Participants: []string{"Ana", "Bo", "Cy"}, Court1: ptr("Court A"), Court2: ptr("  ")},
			{GroupNumber: 2, Participants: []string{}},
			{GroupNumber: 3, Participants: []string{"Di", " ", "Ed"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Autumn Open", summary.Name)
	assert.Equal(t, 2, summary.GroupCount)
	assert.Equal(t, 5, summary.ParticipantCount)
	assert.Equal(t, time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC), summary.Date)

	tournament, err := f.service.Get(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.NumberOfWinners)
	require.Len(t, tournament.Groups, 2)
	assert.Equal(t, 1, tournament.Groups[0].GroupNumber)
	assert.Equal(t, "Court A", *tournament.Groups[0].Court1)
	assert.Nil(t, tournament.Groups[0].Court2)
	assert.Equal(t, 3, tournament.Groups[1].GroupNumber)
	assert.Equal(t, []string{"Di", "Ed"}, tournament.Groups[1].Participants)
}

func TestTournamentService_CreateValidation(t *testing.T) {
	groups := []GroupInput{{Participants: []string{"Ana", "Bo"}}}
	tests := []struct {
		name  string
		input CreateTournamentInput
		want  error
	}{
		{name: "blank name", input: CreateTournamentInput{Name: "  ", Date: "2024-01-01", Groups: groups}, want: ErrTournamentNameRequired},
		{name: "missing date", input: CreateTournamentInput{Name: "Cup", Groups: groups}, want: ErrTournamentDateRequired},
		{name: "bad date", input: CreateTournamentInput{Name: "Cup", Date: "01/02/2024", Groups: groups}, want: ErrTournamentDateInvalid},
		{name: "only empty groups", input: CreateTournamentInput{Name: "Cup", Date: "2024-01-01", Groups: []GroupInput{{}}}, want: ErrGroupsRequired},
		{name: "no groups", input: CreateTournamentInput{Name: "Cup", Date: "2024-01-01"}, want: ErrGroupsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTournamentFixture(t)
			_, err := f.service.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)

			all, err := f.service.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestTournamentService_Lists(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()

	winter := f.create(t, "Winter", "2024-01-20", []string{"Ana", "Bo"})
	f.create(t, "Summer", "2024-07-20", []string{"Cy", "Di"}, []string{"Ed", "Fa", "Gu"})

	require.NoError(t, f.service.Archive(ctx, winter))

	all, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Summer", all[0].Name)
	assert.Equal(t, 2, all[0].GroupCount)
	assert.Equal(t, 5, all[0].ParticipantCount)

	active, err := f.service.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Summer", active[0].Name)

	archived, err := f.service.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "Winter", archived[0].Name)
}

func TestTournamentService_ArchiveExportsSnapshot(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	id := f.create(t, "Spring", "2024-04-01", []string{"Ana", "Bo"})

	tournament, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	matches := NewMatchService(f.store, defaultRules(), nil, nil, discardLogger())
	_, err = matches.Report(ctx, ReportMatchInput{
		GroupID: tournament.Groups[0].ID, Player1: "Ana", Player2: "Bo", Status: "PLAYED", Score1: ptr(4), Score2: ptr(1),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Archive(ctx, id))
	// повторная архивация допустима
	require.NoError(t, f.service.Archive(ctx, id))

	stored, err := f.store.Tournaments().GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Archived)

	require.Len(t, f.uploader.uploads, 2)
	for key, body := range f.uploader.uploads {
		assert.True(t, strings.HasPrefix(key, "archives/tournament-"))
		var snapshot ArchiveSnapshot
		require.NoError(t, json.Unmarshal(body, &snapshot))
		assert.Equal(t, "Spring", snapshot.Tournament.Name)
		require.Len(t, snapshot.Results, 1)
		assert.Equal(t, "Ana", snapshot.Standings[0].Player)
	}
	assert.Equal(t, []string{brackets.EventTournamentArchived, brackets.EventTournamentArchived}, f.notifier.types())
}

func TestTournamentService_ArchiveIgnoresUploadFailure(t *testing.T) {
	f := newTournamentFixture(t)
	f.uploader.err = errors.New("r2 unavailable")
	id := f.create(t, "Spring", "2024-04-01", []string{"Ana", "Bo"})

	require.NoError(t, f.service.Archive(context.Background(), id))
	assert.ErrorIs(t, f.service.Archive(context.Background(), id+1), ErrTournamentNotFound)
}

func TestTournamentService_Delete(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	keep := f.create(t, "Old", "2023-05-01", []string{"Ana", "Bo"})
	f.create(t, "A", "2024-05-01", []string{"Ana", "Bo"})
	drop := f.create(t, "B", "2024-06-01", []string{"Cy", "Di"})
	require.NoError(t, f.service.Archive(ctx, keep))

	require.NoError(t, f.service.Delete(ctx, drop))
	assert.ErrorIs(t, f.service.Delete(ctx, drop), ErrTournamentNotFound)

	count, err := f.service.DeleteActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestTournamentService_CreateNextRoundExplicit(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	id := f.create(t, "Cup", "2024-03-01", []string{"Ana", "Bo", "Cy"}, []string{"Di", "Ed", "Fa"}, []string{"Gu", "Ha"})

	tournament, err := f.service.CreateNextRound(ctx, id, ptr(8))
	require.NoError(t, err)
	require.Len(t, tournament.Groups, 7)

	for i, g := range tournament.Groups[3:] {
		assert.Equal(t, 4+i, g.GroupNumber)
		assert.Empty(t, g.Participants)
		assert.Nil(t, g.Court1)
		assert.NotZero(t, g.ID)
	}

	stored, err := f.service.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Groups, 7)
	assert.Equal(t, []string{brackets.EventRoundCreated}, f.notifier.types())
}

func TestTournamentService_CreateNextRoundInferred(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	id := f.create(t, "Cup", "2024-03-01", []string{"Ana", "Bo"}, []string{"Cy", "Di"}, []string{"Ed", "Fa"}, []string{"Gu", "Ha"})

	tournament, err := f.service.CreateNextRound(ctx, id, nil)
	require.NoError(t, err)
	require.Len(t, tournament.Groups, 6)
	assert.Equal(t, 5, tournament.Groups[4].GroupNumber)
	assert.Equal(t, 6, tournament.Groups[5].GroupNumber)
}

// Номера новых пар идут после максимального номера, а не после количества
// групп: при номерах 1 и 5 новый раунд начинается с 6.
func TestTournamentService_CreateNextRoundAfterNumberGap(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	summary, err := f.service.Create(ctx, CreateTournamentInput{
		Name: "Cup",
		Date: "2024-03-01",
		Groups: []GroupInput{
			{GroupNumber: 1, Participants: []string{"Ana", "Bo", "Cy"}},
			{GroupNumber: 5, Participants: []string{"Di", "Ed", "Fa"}},
		},
	})
	require.NoError(t, err)

	tournament, err := f.service.CreateNextRound(ctx, summary.ID, ptr(4))
	require.NoError(t, err)
	require.Len(t, tournament.Groups, 4)

	numbers := make([]int, 0, len(tournament.Groups))
	for _, g := range tournament.Groups {
		numbers = append(numbers, g.GroupNumber)
	}
	assert.Equal(t, []int{1, 5, 6, 7}, numbers)
}

func TestTournamentService_CreateNextRoundRejections(t *testing.T) {
	tests := []struct {
		name            string
		groups          [][]string
		numberOfPlayers *int
		want            error
	}{
		{name: "no knockout pairings to infer from", groups: [][]string{{"Ana", "Bo", "Cy"}}, want: ErrPlayerCountRequired},
		{name: "odd inferred count", groups: [][]string{{"Ana", "Bo"}, {"Cy", "Di"}, {"Ed", "Fa"}}, want: ErrOddPlayerCount},
		{name: "explicit odd", groups: [][]string{{"Ana", "Bo"}}, numberOfPlayers: ptr(5), want: ErrOddPlayerCount},
		{name: "explicit too few", groups: [][]string{{"Ana", "Bo"}}, numberOfPlayers: ptr(1), want: ErrTooFewPlayers},
		{name: "explicit zero", groups: [][]string{{"Ana", "Bo"}}, numberOfPlayers: ptr(0), want: ErrTooFewPlayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTournamentFixture(t)
			id := f.create(t, "Cup", "2024-03-01", tt.groups...)

			_, err := f.service.CreateNextRound(context.Background(), id, tt.numberOfPlayers)
			assert.ErrorIs(t, err, tt.want)

			stored, err := f.service.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Len(t, stored.Groups, len(tt.groups))
			assert.Empty(t, f.notifier.types())
		})
	}

	f := newTournamentFixture(t)
	_, err := f.service.CreateNextRound(context.Background(), 99, ptr(4))
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_UpdateGroupParticipants(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	id := f.create(t, "Cup", "2024-03-01", []string{"Ana", "Bo"}, []string{"Cy", "Di"})

	tournament, err := f.service.CreateNextRound(ctx, id, nil)
	require.NoError(t, err)
	slot := tournament.Groups[2]

	_, err = f.service.UpdateGroupParticipants(ctx, slot.ID, []string{"Ana", "Cy", "Di"})
	assert.ErrorIs(t, err, ErrInvalidParticipantCount)

	_, err = f.service.UpdateGroupParticipants(ctx, slot.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyParticipantList)

	_, err = f.service.UpdateGroupParticipants(ctx, slot.ID+100, []string{"Ana", "Cy"})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	group, err := f.service.UpdateGroupParticipants(ctx, slot.ID, []string{"Ana", "Cy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Cy"}, group.Participants)

	stored, err := f.store.Groups().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Cy"}, stored.Participants)
	assert.Equal(t, []string{brackets.EventRoundCreated, brackets.EventGroupUpdated}, f.notifier.types())
}

func TestTournamentService_Ranking(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	id := f.create(t, "Cup", "2024-03-01", []string{"Ana", "Bo"}, []string{"Cy", "Di"})

	tournament, err := f.service.CreateNextRound(ctx, id, nil)
	require.NoError(t, err)
	final := tournament.Groups[2]
	_, err = f.service.UpdateGroupParticipants(ctx, final.ID, []string{"Ana", "Cy"})
	require.NoError(t, err)

	matches := NewMatchService(f.store, defaultRules(), nil, nil, discardLogger())
	reports := []ReportMatchInput{
		{GroupID: tournament.Groups[0].ID, Player1: "Ana", Player2: "Bo", Status: "PLAYED", Score1: ptr(4), Score2: ptr(0)},
		{GroupID: tournament.Groups[1].ID, Player1: "Cy", Player2: "Di", Status: "PLAYED", Score1: ptr(4), Score2: ptr(3)},
		{GroupID: final.ID, Player1: "Ana", Player2: "Cy", Status: "RETIRED", Score1: ptr(1), Score2: ptr(2), Winner: ptr("Cy")},
	}
	for _, r := range reports {
		_, err := matches.Report(ctx, r)
		require.NoError(t, err)
	}

	ranking, err := f.service.Ranking(ctx, id)
	require.NoError(t, err)
	require.Len(t, ranking, 4)

	assert.Equal(t, "Cy", ranking[0].Player)
	assert.Equal(t, 4, ranking[0].Points)
	assert.Equal(t, "Ana", ranking[1].Player)
	assert.Equal(t, 2, ranking[1].Points)
	assert.Equal(t, 2, ranking[1].Played)
	assert.Equal(t, "Di", ranking[2].Player)
	assert.Equal(t, "Bo", ranking[3].Player)

	_, err = f.service.Ranking(ctx, id+1)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
