package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-tournament/models"
)

func ptr[T any](v T) *T { return &v }

var anaBo = Pairing{Player1: "Ana", Player2: "Bo"}

func TestPlayedWinnerIsPlayerReachingFour(t *testing.T) {
	rules := NewRules(0)
	for s1 := 0; s1 <= 4; s1++ {
		for s2 := 0; s2 <= 4; s2++ {
			if (s1 == 4) == (s2 == 4) {
				continue
			}
			d, err := rules.Decide(Played{Score1: ptr(s1), Score2: ptr(s2)}, anaBo)
			require.NoError(t, err, "scores %d-%d", s1, s2)
			want := "Bo"
			if s1 == 4 {
				want = "Ana"
			}
			assert.Equal(t, want, d.Winner)
			assert.Equal(t, models.MatchStatusPlayed, d.Status)
			assert.Equal(t, s1, *d.Score1)
			assert.Equal(t, s2, *d.Score2)
		}
	}
}

func TestPlayedRejections(t *testing.T) {
	rules := NewRules(DefaultGamesToWin)
	tests := []struct {
		name   string
		s1, s2 *int
		want   error
	}{
		{"missing first", nil, ptr(4), ErrMissingScore},
		{"missing second", ptr(4), nil, ErrMissingScore},
		{"negative", ptr(-1), ptr(4), ErrScoreOutOfRange},
		{"above four", ptr(5), ptr(2), ErrScoreOutOfRange},
		{"nobody reached four", ptr(3), ptr(2), ErrNoGamesWinner},
		{"both reached four", ptr(4), ptr(4), ErrAmbiguousWinner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.Decide(Played{Score1: tt.s1, Score2: tt.s2}, anaBo)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWalkoverDropsScores(t *testing.T) {
	o, err := NewOutcome("walkover", ptr(4), ptr(1), ptr("Bo"))
	require.NoError(t, err)

	d, err := NewRules(4).Decide(o, anaBo)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusWalkover, d.Status)
	assert.Equal(t, "Bo", d.Winner)
	assert.Nil(t, d.Score1)
	assert.Nil(t, d.Score2)
}

func TestWinnerRules(t *testing.T) {
	rules := NewRules(4)
	for _, status := range []string{"WALKOVER", "RETIRED"} {
		t.Run(status+" missing", func(t *testing.T) {
			o, err := NewOutcome(status, ptr(1), ptr(2), nil)
			require.NoError(t, err)
			_, err = rules.Decide(o, anaBo)
			assert.ErrorIs(t, err, ErrMissingWinner)
		})
		t.Run(status+" blank", func(t *testing.T) {
			o, err := NewOutcome(status, ptr(1), ptr(2), ptr("   "))
			require.NoError(t, err)
			_, err = rules.Decide(o, anaBo)
			assert.ErrorIs(t, err, ErrMissingWinner)
		})
		t.Run(status+" stranger", func(t *testing.T) {
			o, err := NewOutcome(status, ptr(1), ptr(2), ptr("Cy"))
			require.NoError(t, err)
			_, err = rules.Decide(o, anaBo)
			assert.ErrorIs(t, err, ErrInvalidWinner)
		})
	}
}

func TestRetired(t *testing.T) {
	rules := NewRules(4)

	t.Run("scores below four are kept", func(t *testing.T) {
		for s1 := 0; s1 <= 3; s1++ {
			for s2 := 0; s2 <= 3; s2++ {
				d, err := rules.Decide(Retired{Winner: "Ana", Score1: ptr(s1), Score2: ptr(s2)}, anaBo)
				require.NoError(t, err)
				assert.Equal(t, "Ana", d.Winner)
				assert.Equal(t, s1, *d.Score1)
				assert.Equal(t, s2, *d.Score2)
			}
		}
	})

	t.Run("four is a completed match", func(t *testing.T) {
		_, err := rules.Decide(Retired{Winner: "Ana", Score1: ptr(4), Score2: ptr(1)}, anaBo)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := rules.Decide(Retired{Winner: "Ana", Score1: ptr(-2), Score2: ptr(1)}, anaBo)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	})

	t.Run("scores required", func(t *testing.T) {
		_, err := rules.Decide(Retired{Winner: "Bo", Score1: ptr(2)}, anaBo)
		assert.ErrorIs(t, err, ErrMissingScore)
	})

	t.Run("winner checked before scores", func(t *testing.T) {
		_, err := rules.Decide(Retired{}, anaBo)
		assert.ErrorIs(t, err, ErrMissingWinner)
	})
}

func TestCustomGamesToWin(t *testing.T) {
	rules := NewRules(6)

	d, err := rules.Decide(Played{Score1: ptr(4), Score2: ptr(6)}, anaBo)
	require.NoError(t, err)
	assert.Equal(t, "Bo", d.Winner)

	_, err = rules.Decide(Played{Score1: ptr(4), Score2: ptr(2)}, anaBo)
	assert.ErrorIs(t, err, ErrNoGamesWinner)

	_, err = rules.Decide(Retired{Winner: "Ana", Score1: ptr(5), Score2: ptr(5)}, anaBo)
	assert.NoError(t, err)
}

func TestNewOutcome(t *testing.T) {
	o, err := NewOutcome("played", ptr(4), ptr(0), ptr("ignored"))
	require.NoError(t, err)
	assert.Equal(t, Played{Score1: ptr(4), Score2: ptr(0)}, o)

	_, err = NewOutcome("abandoned", nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = NewRules(4).Decide(nil, anaBo)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDecisionApplyKeepsIdentity(t *testing.T) {
	m := &models.MatchResult{ID: 7, GroupID: 3, Player1: "Ana", Player2: "Bo", Score1: ptr(4), Score2: ptr(1)}
	Decision{Status: models.MatchStatusWalkover, Winner: "Bo"}.Apply(m)

	assert.Equal(t, 7, m.ID)
	assert.Equal(t, 3, m.GroupID)
	assert.Equal(t, "Ana", m.Player1)
	assert.Nil(t, m.Score1)
	assert.Nil(t, m.Score2)
	require.NotNil(t, m.Winner)
	assert.Equal(t, "Bo", *m.Winner)
}
