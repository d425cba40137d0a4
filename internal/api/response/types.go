package response

import (
	"time"

	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/calendar"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// User represents an account in API responses. The password hash is never exposed.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	PlayerID   *int64    `json:"player_id"`
	PlayerName *string   `json:"player_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserFromModel converts a model.Account to a response User
func UserFromModel(a *model.Account) User {
	return User{
		ID:         int64(a.ID),
		Email:      a.Email,
		Name:       a.Name,
		Role:       string(a.Role),
		Status:     string(a.Status),
		PlayerID:   playerIDPtr(a.PlayerID),
		PlayerName: a.PlayerName,
		CreatedAt:  a.CreatedAt,
	}
}

// UsersFromModel converts a list of accounts
func UsersFromModel(accounts []*model.Account) []User {
	out := make([]User, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, UserFromModel(a))
	}
	return out
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me is the response for GET /auth/me
type Me struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	PlayerID *int64 `json:"player_id"`
}

// MeFromModel converts the caller's account
func MeFromModel(a *model.Account) Me {
	return Me{
		ID:       int64(a.ID),
		Email:    a.Email,
		Name:     a.Name,
		Role:     string(a.Role),
		Status:   string(a.Status),
		PlayerID: playerIDPtr(a.PlayerID),
	}
}

// Player represents a roster profile in API responses
type Player struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone"`
	LevelOfficial   *string   `json:"level_official"`
	LevelApero      int       `json:"level_apero"`
	RatingTechnical int       `json:"rating_technical"`
	Avatar          *string   `json:"avatar"`
	MatchesPlayed   int       `json:"matches_played"`
	Wins            int       `json:"wins"`
	Losses          int       `json:"losses"`
	WinRate         int       `json:"win_rate"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:              int64(p.ID),
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		LevelOfficial:   p.LevelOfficial,
		LevelApero:      p.LevelApero,
		RatingTechnical: p.RatingTechnical,
		Avatar:          p.Avatar,
		MatchesPlayed:   p.Stats.MatchesPlayed,
		Wins:            p.Stats.Wins,
		Losses:          p.Stats.Losses,
		WinRate:         p.Stats.WinRate,
		CreatedAt:       p.CreatedAt,
	}
}

// PlayersFromModel converts a list of players
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerFromModel(p))
	}
	return out
}

// Event represents an event with its participants
type Event struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Date            string    `json:"date"`
	Description     *string   `json:"description"`
	Location        *string   `json:"location"`
	MaxParticipants *int      `json:"max_participants"`
	Participants    []int64   `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
}

// EventFromView converts a calendar.EventView
func EventFromView(v *calendar.EventView) Event {
	e := v.Event
	return Event{
		ID:              int64(e.ID),
		Name:            e.Name,
		Date:            e.Date.Format(DateLayout),
		Description:     e.Description,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		Participants:    participantIDs(v.Participants),
		CreatedAt:       e.CreatedAt,
	}
}

// EventsFromViews converts a list of event views
func EventsFromViews(views []calendar.EventView) []Event {
	out := make([]Event, 0, len(views))
	for i := range views {
		out = append(out, EventFromView(&views[i]))
	}
	return out
}

// Tournament represents a tournament with its participants
type Tournament struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"`
	Format       string    `json:"format"`
	Description  *string   `json:"description"`
	Status       string    `json:"status"`
	Participants []int64   `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// TournamentFromView converts a calendar.TournamentView
func TournamentFromView(v *calendar.TournamentView) Tournament {
	t := v.Tournament
	return Tournament{
		ID:           int64(t.ID),
		Name:         t.Name,
		Date:         t.Date.Format(DateLayout),
		Format:       t.Format,
		Description:  t.Description,
		Status:       string(t.Status),
		Participants: participantIDs(v.Participants),
		CreatedAt:    t.CreatedAt,
	}
}

// TournamentsFromViews converts a list of tournament views
func TournamentsFromViews(views []calendar.TournamentView) []Tournament {
	out := make([]Tournament, 0, len(views))
	for i := range views {
		out = append(out, TournamentFromView(&views[i]))
	}
	return out
}

// News represents a news item in API responses
type News struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Image      *string   `json:"image"`
	AuthorID   *int64    `json:"author_id"`
	AuthorName *string   `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewsFromModel converts a model.NewsItem
func NewsFromModel(n *model.NewsItem) News {
	var authorID *int64
	if n.AuthorID != nil {
		id := int64(*n.AuthorID)
		authorID = &id
	}
	return News{
		ID:         int64(n.ID),
		Title:      n.Title,
		Content:    n.Content,
		Image:      n.Image,
		AuthorID:   authorID,
		AuthorName: n.AuthorName,
		CreatedAt:  n.CreatedAt,
	}
}

// NewsListFromModel converts a list of news items
func NewsListFromModel(items []*model.NewsItem) []News {
	out := make([]News, 0, len(items))
	for _, n := range items {
		out = append(out, NewsFromModel(n))
	}
	return out
}

// Message is the body of mutations that return no resource
type Message struct {
	Message string `json:"message"`
}

// Health is the response for GET /health
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage"`
}

func playerIDPtr(id *model.PlayerID) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func participantIDs(ids []model.PlayerID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
