package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the request body for changing one's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// CreateUserRequest is the request body for creating an account
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin member"`
	Status   string `json:"status" validate:"omitempty,oneof=approved pending disabled"`
	PlayerID *int64 `json:"player_id"`
}

// UpdateUserRequest is the request body for rewriting an account.
// Status and Password are left unchanged when omitted.
type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=admin member"`
	PlayerID *int64  `json:"player_id"`
	Status   *string `json:"status" validate:"omitempty,oneof=approved pending disabled"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// PlayerRequest is the request body for creating a player
type PlayerRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone"`
	LevelOfficial   *string `json:"level_official"`
	LevelApero      int     `json:"level_apero" validate:"min=0"`
	RatingTechnical int     `json:"rating_technical" validate:"min=0"`
	Avatar          *string `json:"avatar"`
}

// UpdatePlayerRequest is the request body for rewriting a player and its totals
type UpdatePlayerRequest struct {
	PlayerRequest
	MatchesPlayed int `json:"matches_played" validate:"min=0"`
	Wins          int `json:"wins" validate:"min=0"`
}

// EventRequest is the request body for creating an event
type EventRequest struct {
	Name            string  `json:"name" validate:"required"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description     *string `json:"description"`
	Location        *string `json:"location"`
	MaxParticipants *int    `json:"max_participants" validate:"omitempty,min=1"`
}

// TournamentRequest is the request body for creating a tournament
type TournamentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Format      string  `json:"format" validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// TournamentStatusRequest is the request body for changing a tournament's status
type TournamentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=upcoming ongoing completed cancelled"`
}

// NewsRequest is the request body for publishing news
type NewsRequest struct {
	Title   string  `json:"title" validate:"required"`
	Content string  `json:"content" validate:"required"`
	Image   *string `json:"image"`
}
