package brackets

import (
	"sort"

	"github.com/Dosada05/tennis-tournament/models"
)

// PointsPerWin is awarded to the winner of every recorded result.
const PointsPerWin = 2

type Standing struct {
	Player    string `json:"player"`
	Played    int    `json:"played"`
	Wins      int    `json:"wins"`
	Points    int    `json:"points"`
	GamesWon  int    `json:"games_won"`
	GamesLost int    `json:"games_lost"`
}

func (s Standing) GameDifference() int {
	return s.GamesWon - s.GamesLost
}

// BuildStandings ranks participants by points, then game difference, then
// games won. Results for players outside participants are ignored.
func BuildStandings(participants []string, results []models.MatchResult) []Standing {
	index := make(map[string]*Standing, len(participants))
	order := make([]string, 0, len(participants))
	for _, p := range participants {
		if _, ok := index[p]; ok {
			continue
		}
		index[p] = &Standing{Player: p}
		order = append(order, p)
	}

	for i := range results {
		accumulate(index, &results[i])
	}

	standings := make([]Standing, 0, len(order))
	for _, p := range order {
		standings = append(standings, *index[p])
	}
	sortStandings(standings)
	return standings
}

// MergeStandings sums per-group standings into one overall ranking.
func MergeStandings(perGroup ...[]Standing) []Standing {
	index := make(map[string]*Standing)
	var order []string
	for _, group := range perGroup {
		for _, s := range group {
			total, ok := index[s.Player]
			if !ok {
				total = &Standing{Player: s.Player}
				index[s.Player] = total
				order = append(order, s.Player)
			}
			total.Played += s.Played
			total.Wins += s.Wins
			total.Points += s.Points
			total.GamesWon += s.GamesWon
			total.GamesLost += s.GamesLost
		}
	}

	standings := make([]Standing, 0, len(order))
	for _, p := range order {
		standings = append(standings, *index[p])
	}
	sortStandings(standings)
	return standings
}

func accumulate(index map[string]*Standing, m *models.MatchResult) {
	for _, player := range []string{m.Player1, m.Player2} {
		s, ok := index[player]
		if !ok {
			continue
		}
		won, lost := m.GamesFor(player)
		s.Played++
		s.GamesWon += won
		s.GamesLost += lost
		if m.Winner != nil && *m.Winner == player {
			s.Wins++
			s.Points += PointsPerWin
		}
	}
}

func sortStandings(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GameDifference() != b.GameDifference() {
			return a.GameDifference() > b.GameDifference()
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.Player < b.Player
	})
}
