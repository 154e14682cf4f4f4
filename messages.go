package main

// Messages coming from clients
type ClientMessage struct {
	Type      string          `json:"type"`                // "setUsername", "quickQueue", "createRoom", "joinRoom", "leaveRoom", "updateGameSettings", "startGame", "submitAnswer", "endGame", "chatMessage"
	Username  string          `json:"username,omitempty"`  // setUsername
	RoomCode  string          `json:"roomCode,omitempty"`  // joinRoom
	CoasterID int             `json:"coasterId,omitempty"` // submitAnswer
	Message   string          `json:"message,omitempty"`   // chatMessage
	Config    *SettingsUpdate `json:"config,omitempty"`    // createRoom
	Settings  *SettingsUpdate `json:"settings,omitempty"`  // updateGameSettings
}

// SettingsUpdate carries optional room settings. Nil fields are left at
// their defaults (createRoom) or unchanged (updateGameSettings).
type SettingsUpdate struct {
	MaxPlayers     *int    `json:"maxPlayers,omitempty"`
	StartingHealth *int    `json:"startingHealth,omitempty"`
	RoundTime      *int    `json:"roundTime,omitempty"` // milliseconds
	UseImperial    *bool   `json:"useImperial,omitempty"`
	DifficultyMode *string `json:"difficultyMode,omitempty"`
}

// Messages sent to clients

type UserIDAssignedMessage struct {
	Type   string `json:"type"` // "userIdAssigned"
	UserID int    `json:"userId"`
}

type UsernameSetMessage struct {
	Type     string `json:"type"` // "usernameSet"
	Username string `json:"username"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type RoomCreatedMessage struct {
	Type     string `json:"type"` // "roomCreated"
	RoomCode string `json:"roomCode"`
	IsHost   bool   `json:"isHost"`
}

type JoinedRoomMessage struct {
	Type      string    `json:"type"` // "joinedRoom"
	RoomCode  string    `json:"roomCode"`
	GameState RoomState `json:"gameState"`
	IsPublic  bool      `json:"isPublic"`
}

type RoomAlreadyJoinedMessage struct {
	Type     string `json:"type"` // "roomAlreadyJoined"
	RoomCode string `json:"roomCode"`
}

type LeftRoomMessage struct {
	Type string `json:"type"` // "leftRoom"
}

// RoomUser is one row of the room snapshot.
type RoomUser struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
	HP       int    `json:"hp"`
}

// RoomUsersUpdateMessage is the full room snapshot broadcast after every
// membership, host, settings, or game-state change.
type RoomUsersUpdateMessage struct {
	Type           string     `json:"type"` // "roomUsersUpdate"
	Users          []RoomUser `json:"users"`
	RoomLimit      int        `json:"roomLimit"`
	CurrentCount   int        `json:"currentCount"`
	GameState      RoomState  `json:"gameState"`
	StartingHealth int        `json:"startingHealth"`
	RoundTime      int        `json:"roundTime"` // seconds
	UseImperial    bool       `json:"useImperial"`
	IsPublic       bool       `json:"isPublic"`
}

type NewHostAssignedMessage struct {
	Type   string `json:"type"` // "newHostAssigned"
	UserID int    `json:"userId"`
}

type ChatMessageOut struct {
	Type     string `json:"type"`   // "chatMessage"
	UserID   string `json:"userId"` // numeric id, or "System"
	Username string `json:"username"`
	Message  string `json:"message"`
}

type GameStartedMessage struct {
	Type    string `json:"type"` // "gameStarted"
	Message string `json:"message"`
}

// CriterionDisplay is the player-facing half of a criterion: the question
// type and the revealed value formatted for the room's unit system.
type CriterionDisplay struct {
	Type         string `json:"type"`
	DisplayValue string `json:"displayValue"`
}

type NewRoundMessage struct {
	Type        string           `json:"type"` // "newRound"
	RoundNumber int              `json:"roundNumber"`
	Coasters    []CoasterPublic  `json:"coasters"`
	Criterion   CriterionDisplay `json:"criterion"`
	TimeLimit   int              `json:"timeLimit"` // milliseconds
}

type PlayerAnsweredMessage struct {
	Type     string `json:"type"` // "playerAnswered"
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}

// PlayerResult is one member's outcome for a finished round.
type PlayerResult struct {
	UserID          int      `json:"userId"`
	Username        string   `json:"username"`
	Answer          int      `json:"answer,omitempty"`
	AnsweredCoaster *Coaster `json:"answeredCoaster,omitempty"`
	IsCorrect       bool     `json:"isCorrect"`
	TooSlow         bool     `json:"tooSlow"`
	HP              int      `json:"hp"`
	Streak          int      `json:"streak"`
}

// CriterionReveal identifies the attribute a finished round asked about.
type CriterionReveal struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

type RoundEndedMessage struct {
	Type             string          `json:"type"` // "roundEnded"
	CorrectCoasterID int             `json:"correctCoasterId"`
	CorrectCoaster   *Coaster        `json:"correctCoaster"`
	AllCoasters      []Coaster       `json:"allCoasters"`
	Results          []PlayerResult  `json:"results"`
	Criterion        CriterionReveal `json:"criterion"`
	IsLandmark       bool            `json:"isLandmark"`
}

// Winner identifies the last member standing.
type Winner struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}

type GameEndedMessage struct {
	Type    string  `json:"type"` // "gameEnded"
	Message string  `json:"message"`
	Winner  *Winner `json:"winner"`
}
