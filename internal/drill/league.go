package drill

// League is a display tier derived from total XP
type League string

const (
	LeaguePaper    League = "Paper"
	LeagueIron     League = "Iron"
	LeagueBronze   League = "Bronze"
	LeagueGold     League = "Gold"
	LeaguePlatinum League = "Platinum"
	LeagueDiamond  League = "Diamond"
)

var leagueThresholds = []struct {
	minXP  int
	league League
}{
	{10000, LeagueDiamond},
	{6000, LeaguePlatinum},
	{3000, LeagueGold},
	{1500, LeagueBronze},
	{500, LeagueIron},
}

// LeagueFor returns the league for an XP total
func LeagueFor(xp int) League {
	for _, t := range leagueThresholds {
		if xp >= t.minXP {
			return t.league
		}
	}
	return LeaguePaper
}
