package game

// Powerup is a one-shot player-initiated boost. The catalogue is fixed;
// content does not define powerups.
type Powerup struct {
	ID       string
	Name     string
	Focus    float64
	Progress float64
}

var powerups = []Powerup{
	{ID: "coffee", Name: "Coffee Boost", Focus: 30},
}

// PowerupByID looks a powerup up in the shipped catalogue.
func PowerupByID(id string) (Powerup, bool) {
	for _, p := range powerups {
		if p.ID == id {
			return p, true
		}
	}
	return Powerup{}, false
}
