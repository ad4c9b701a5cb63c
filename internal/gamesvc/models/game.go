package models

import (
	"time"
)

type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
	SportCricket    Sport = "cricket"
	SportFutsal     Sport = "futsal"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// DefaultCurrentPlayers counts the host as the first player.
const DefaultCurrentPlayers = 1

type Game struct {
	ID                  int64      `json:"id"`
	Sport               Sport      `json:"sport"`
	Title               string     `json:"title"`
	Location            string     `json:"location"`
	DateTime            time.Time  `json:"date_time"`
	CurrentPlayersCount int        `json:"current_players_count"`
	NeededPlayersCount  int        `json:"needed_players_count"`
	SkillLevel          SkillLevel `json:"skill_level"`
	Visibility          Visibility `json:"visibility"`
	HostID              int64      `json:"host"`
	Description         *string    `json:"description"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (g *Game) IsPublic() bool {
	return g.Visibility == VisibilityPublic
}

func (g *Game) HostedBy(userID int64) bool {
	return g.HostID == userID
}

// AdmitPlayer applies an accepted join request to the capacity counters.
// The needed count never drops below zero, the current count always grows.
func (g *Game) AdmitPlayer() {
	if g.NeededPlayersCount > 0 {
		g.NeededPlayersCount--
	}
	g.CurrentPlayersCount++
}

// GameWithHost is a game snapshot with the host embedded instead of its id.
type GameWithHost struct {
	ID                  int64          `json:"id"`
	Sport               Sport          `json:"sport"`
	Title               string         `json:"title"`
	Location            string         `json:"location"`
	DateTime            time.Time      `json:"date_time"`
	CurrentPlayersCount int            `json:"current_players_count"`
	NeededPlayersCount  int            `json:"needed_players_count"`
	SkillLevel          SkillLevel     `json:"skill_level"`
	Visibility          Visibility     `json:"visibility"`
	Host                UserProjection `json:"host"`
	Description         *string        `json:"description"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (g *Game) WithHost(host UserProjection) GameWithHost {
	return GameWithHost{
		ID:                  g.ID,
		Sport:               g.Sport,
		Title:               g.Title,
		Location:            g.Location,
		DateTime:            g.DateTime,
		CurrentPlayersCount: g.CurrentPlayersCount,
		NeededPlayersCount:  g.NeededPlayersCount,
		SkillLevel:          g.SkillLevel,
		Visibility:          g.Visibility,
		Host:                host,
		Description:         g.Description,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}
