package main

import (
	"math/rand"
	"time"
)

type RoomState string

const (
	StateLobby   RoomState = "lobby"
	StatePlaying RoomState = "playing"
)

// RoomConfig is the room's settings. Mutable in the lobby by the host;
// health and timing changes take effect on the next game start.
type RoomConfig struct {
	MaxPlayers     int
	StartingHealth int
	RoundTime      time.Duration
	UseImperial    bool
	IsPublic       bool
	Difficulty     Difficulty
}

func defaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:     defaultMaxPlayers,
		StartingHealth: defaultStartingHealth,
		RoundTime:      defaultRoundTime,
		UseImperial:    true,
		Difficulty:     DifficultyMedium,
	}
}

// gameData holds per-game state. Health and streaks persist across rounds
// within one game and are reset wholesale by startGame. The generation
// counter fences timer callbacks: every arm or cancel bumps it, so a stale
// callback firing against newer state sees a mismatch and does nothing.
type gameData struct {
	health  map[int]int
	streaks map[int]int

	roundNumber int
	roundActive bool
	roundTime   time.Duration
	useImperial bool
	difficulty  Difficulty

	candidates []Coaster
	criterion  Criterion
	answers    map[int]int
	roundStart time.Time

	timer      *time.Timer
	generation int
}

// Room is one isolated game session. All fields are guarded by the
// Registry mutex; rooms have no locking of their own.
type Room struct {
	code    string
	config  RoomConfig
	members []int // user ids in join order; index 0 is next in line for host
	hostID  int   // 0 while vacant
	state   RoomState
	game    *gameData
}

func newRoom(code string, config RoomConfig) *Room {
	return &Room{
		code:   code,
		config: config,
		state:  StateLobby,
		game: &gameData{
			health:  make(map[int]int),
			streaks: make(map[int]int),
		},
	}
}

func (r *Room) hasMember(userID int) bool {
	for _, id := range r.members {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Room) removeMember(userID int) {
	dst := r.members[:0]
	for _, id := range r.members {
		if id != userID {
			dst = append(dst, id)
		}
	}
	r.members = dst
}

// aliveMembers returns the ids of members still in the game.
func (r *Room) aliveMembers() []int {
	alive := make([]int, 0, len(r.members))
	for _, id := range r.members {
		if r.game.health[id] > 0 {
			alive = append(alive, id)
		}
	}
	return alive
}

// cancelTimer stops any outstanding scheduled transition and fences off
// callbacks already in flight.
func (r *Room) cancelTimer() {
	if r.game.timer != nil {
		r.game.timer.Stop()
		r.game.timer = nil
	}
	r.game.generation++
}

// roomCodeLength matches the web client's join field.
const roomCodeLength = 6

// generateRoomCode builds a random numeric code, collision-checked by the
// caller against live rooms.
func generateRoomCode(rng *rand.Rand) string {
	const digits = "0123456789"
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = digits[rng.Intn(len(digits))]
	}
	return string(code)
}
