package matchmaking

// Game is one entry of the fixed matchmaking catalog.
type Game struct {
	Name  string   `json:"name"`
	Ranks []string `json:"ranks"`
}

// Games is the supported catalog. Search requests are validated against it.
var Games = []Game{
	{
		Name: "Valorant",
		Ranks: []string{
			"Iron", "Bronze", "Silver", "Gold", "Platinum",
			"Diamond", "Ascendant", "Immortal", "Radiant",
		},
	},
	{
		Name: "LoL",
		Ranks: []string{
			"Iron", "Bronze", "Silver", "Gold", "Platinum",
			"Emerald", "Diamond", "Master", "Challenger",
		},
	},
	{
		Name: "CS2",
		Ranks: []string{
			"Silver", "Gold Nova", "Master Guardian", "Eagle",
			"Supreme", "Global Elite",
		},
	},
	{
		Name: "FIFA 24",
		Ranks: []string{
			"Div 10", "Div 8", "Div 6", "Div 4", "Div 2", "Div 1", "Elite",
		},
	},
}

// LookupGame finds a catalog entry by name.
func LookupGame(name string) (Game, bool) {
	for _, g := range Games {
		if g.Name == name {
			return g, true
		}
	}
	return Game{}, false
}

// HasRank reports whether rank belongs to the game's ladder.
func (g Game) HasRank(rank string) bool {
	for _, r := range g.Ranks {
		if r == rank {
			return true
		}
	}
	return false
}
