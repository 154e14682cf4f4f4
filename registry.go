package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Registry owns every piece of shared mutable state: rooms by code, the
// public matchmaking pool, and the connection-to-user mapping. A single
// mutex serializes all of it, so room mutations never interleave — the
// same guarantee the web client relies on. Timer callbacks re-enter
// through the same mutex and are fenced by the room's generation counter.
type Registry struct {
	mu  sync.Mutex
	cfg *Config

	catalog []Coaster
	rng     *rand.Rand

	rooms       map[string]*Room
	publicRooms []string // codes in creation order; scanned front to back

	clients    map[int]*Client
	usernames  map[int]string
	memberOf   map[int]string // user id -> room code
	nextUserID int
}

func newRegistry(cfg *Config, catalog []Coaster, rng *rand.Rand) *Registry {
	r := &Registry{
		cfg:        cfg,
		catalog:    catalog,
		rng:        rng,
		rooms:      make(map[string]*Room),
		clients:    make(map[int]*Client),
		usernames:  make(map[int]string),
		memberOf:   make(map[int]string),
		nextUserID: 1,
	}

	// Seed the pool so the first quickQueue always has somewhere to land.
	r.createPublicRoom()

	return r
}

// ---- Connection lifecycle ----

func (r *Registry) connect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.userID = r.nextUserID
	r.nextUserID++
	r.clients[c.userID] = c

	r.deliver(c, UserIDAssignedMessage{Type: "userIdAssigned", UserID: c.userID})
	logf(r.cfg, "GAMES: Assigned user ID %d", c.userID)
}

func (r *Registry) disconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.memberOf[c.userID]; ok {
		if room, live := r.rooms[code]; live {
			name := r.displayName(c.userID)
			r.detachFromRoom(room, c.userID)
			if _, still := r.rooms[code]; still {
				r.systemChat(room, fmt.Sprintf("- %s has disconnected! 😭", name))
			}
		}
		delete(r.memberOf, c.userID)
	}

	delete(r.clients, c.userID)
	delete(r.usernames, c.userID)
	c.shutdown()
	logf(r.cfg, "GAMES: User ID %d disconnected", c.userID)
}

// ---- Delivery helpers ----

// deliver hands a message to one client without blocking. A client whose
// send buffer is full is shut down rather than allowed to stall the room.
func (r *Registry) deliver(c *Client, msg any) {
	if c == nil || c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.shutdown()
	}
}

func (r *Registry) deliverTo(userID int, msg any) {
	r.deliver(r.clients[userID], msg)
}

func (r *Registry) sendError(c *Client, text string) {
	r.deliver(c, ErrorMessage{Type: "error", Message: text})
}

func (r *Registry) broadcast(room *Room, msg any) {
	for _, id := range room.members {
		r.deliverTo(id, msg)
	}
}

func (r *Registry) systemChat(room *Room, text string) {
	r.broadcast(room, ChatMessageOut{
		Type:     "chatMessage",
		UserID:   "System",
		Username: "System",
		Message:  text,
	})
}

func (r *Registry) displayName(userID int) string {
	if name, ok := r.usernames[userID]; ok {
		return name
	}
	return fmt.Sprintf("User %d", userID)
}

// broadcastRoomUsers pushes the full room snapshot to every member, then
// keeps the matchmaking pool topped up: once a public room fills, players
// queueing in need a fresh lobby to land in.
func (r *Registry) broadcastRoomUsers(room *Room) {
	users := make([]RoomUser, 0, len(room.members))
	for _, id := range room.members {
		hp, ok := room.game.health[id]
		if !ok {
			hp = room.config.StartingHealth
		}
		users = append(users, RoomUser{
			UserID:   id,
			Username: r.displayName(id),
			IsHost:   id == room.hostID,
			HP:       hp,
		})
	}

	r.broadcast(room, RoomUsersUpdateMessage{
		Type:           "roomUsersUpdate",
		Users:          users,
		RoomLimit:      room.config.MaxPlayers,
		CurrentCount:   len(room.members),
		GameState:      room.state,
		StartingHealth: room.config.StartingHealth,
		RoundTime:      int(room.config.RoundTime / time.Second),
		UseImperial:    room.config.UseImperial,
		IsPublic:       room.config.IsPublic,
	})

	if room.config.IsPublic && len(room.members) >= room.config.MaxPlayers {
		r.ensurePublicRoom(room.code)
	}
}

// ---- Room registry ----

func (r *Registry) newRoomCode() string {
	for {
		code := generateRoomCode(r.rng)
		if _, exists := r.rooms[code]; !exists {
			return code
		}
	}
}

func (r *Registry) createPublicRoom() *Room {
	config := defaultRoomConfig()
	config.MaxPlayers = publicMaxPlayers
	config.IsPublic = true

	room := newRoom(r.newRoomCode(), config)
	r.rooms[room.code] = room
	r.publicRooms = append(r.publicRooms, room.code)

	logf(r.cfg, "GAMES: Created public room %s", room.code)
	return room
}

// availablePublicRoom returns the oldest public room still accepting
// players, skipping the excluded code.
func (r *Registry) availablePublicRoom(exclude string) *Room {
	for _, code := range r.publicRooms {
		if code == exclude {
			continue
		}
		room, ok := r.rooms[code]
		if !ok {
			continue
		}
		if room.state == StateLobby && len(room.members) < room.config.MaxPlayers {
			return room
		}
	}
	return nil
}

// ensurePublicRoom guarantees the matchmaking pool is never empty of
// joinable rooms.
func (r *Registry) ensurePublicRoom(exclude string) {
	if r.availablePublicRoom(exclude) == nil {
		r.createPublicRoom()
	}
}

// cleanupRoom destroys an emptied room: outstanding timers are cancelled so
// nothing fires against dead state, and the public pool is backfilled.
func (r *Registry) cleanupRoom(room *Room) {
	room.cancelTimer()
	delete(r.rooms, room.code)

	if room.config.IsPublic {
		dst := r.publicRooms[:0]
		for _, code := range r.publicRooms {
			if code != room.code {
				dst = append(dst, code)
			}
		}
		r.publicRooms = dst

		logf(r.cfg, "GAMES: Public room %s has been cleaned up (empty)", room.code)
		r.ensurePublicRoom("")
	} else {
		logf(r.cfg, "GAMES: Room %s has been cleaned up (empty)", room.code)
	}
}

// assignNewHost promotes the earliest-joined remaining member.
func (r *Registry) assignNewHost(room *Room) {
	if len(room.members) == 0 {
		r.cleanupRoom(room)
		return
	}

	room.hostID = room.members[0]
	name := r.displayName(room.hostID)
	r.broadcast(room, NewHostAssignedMessage{Type: "newHostAssigned", UserID: room.hostID})
	r.systemChat(room, fmt.Sprintf("%s is now the host!", name))
	r.broadcastRoomUsers(room)
	logf(r.cfg, "GAMES: User ID %d (%s) is now the host of room %s", room.hostID, name, room.code)
}

// detachFromRoom removes one member, migrating the host or tearing the room
// down as needed. Callers announce the departure themselves, since the
// wording differs per path.
func (r *Registry) detachFromRoom(room *Room, userID int) {
	room.removeMember(userID)
	delete(room.game.health, userID)
	delete(room.game.streaks, userID)
	delete(r.memberOf, userID)
	if room.game.answers != nil {
		delete(room.game.answers, userID)
	}

	if len(room.members) == 0 {
		r.cleanupRoom(room)
		return
	}

	if room.hostID == userID {
		r.assignNewHost(room)
	} else {
		r.broadcastRoomUsers(room)
	}
}

// leaveCurrentRoom detaches the user from whatever room they are in, if
// any, before they move elsewhere.
func (r *Registry) leaveCurrentRoom(userID int) {
	code, ok := r.memberOf[userID]
	if !ok {
		return
	}
	if room, live := r.rooms[code]; live {
		r.detachFromRoom(room, userID)
	} else {
		delete(r.memberOf, userID)
	}
}

// addToRoom performs the shared join bookkeeping: membership, host seat if
// vacant, starting health, snapshot.
func (r *Registry) addToRoom(room *Room, userID int) {
	if room.hostID == 0 || len(room.members) == 0 {
		room.hostID = userID
		logf(r.cfg, "GAMES: User ID %d (%s) is now the host of room %s", userID, r.displayName(userID), room.code)
	}

	room.members = append(room.members, userID)
	room.game.health[userID] = room.config.StartingHealth
	r.memberOf[userID] = room.code

	r.broadcastRoomUsers(room)
}

// ---- Inbound events ----

func (r *Registry) handleSetUsername(c *Client, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		r.sendError(c, "Please enter a username!")
		return
	}
	if len(trimmed) > 20 {
		trimmed = trimmed[:20]
	}

	r.usernames[c.userID] = trimmed
	r.deliver(c, UsernameSetMessage{Type: "usernameSet", Username: trimmed})
	logf(r.cfg, "GAMES: User ID %d set username to %q", c.userID, trimmed)

	if code, ok := r.memberOf[c.userID]; ok {
		if room, live := r.rooms[code]; live {
			r.broadcastRoomUsers(room)
			r.systemChat(room, fmt.Sprintf("%s updated their username", trimmed))
		}
	}
}

func (r *Registry) handleQuickQueue(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usernames[c.userID]; !ok {
		r.sendError(c, "Please enter a username!")
		return
	}

	previous := r.memberOf[c.userID]
	r.leaveCurrentRoom(c.userID)

	room := r.availablePublicRoom("")
	if room == nil {
		room = r.createPublicRoom()
	}
	r.addToRoom(room, c.userID)

	r.deliver(c, JoinedRoomMessage{
		Type:      "joinedRoom",
		RoomCode:  room.code,
		GameState: room.state,
		IsPublic:  true,
	})

	name := r.displayName(c.userID)
	logf(r.cfg, "GAMES: User ID %d (%s) quick queued into room %s (was in %q)", c.userID, name, room.code, previous)
	r.systemChat(room, fmt.Sprintf("%s joined the room!", name))
}

func (r *Registry) handleCreateRoom(c *Client, settings *SettingsUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usernames[c.userID]; !ok {
		r.sendError(c, "Please enter a username!")
		return
	}

	config := defaultRoomConfig()
	if settings != nil {
		if settings.MaxPlayers != nil {
			config.MaxPlayers = *settings.MaxPlayers
		}
		if settings.StartingHealth != nil {
			config.StartingHealth = *settings.StartingHealth
		}
		if settings.RoundTime != nil {
			config.RoundTime = time.Duration(*settings.RoundTime) * time.Millisecond
		}
		if settings.UseImperial != nil {
			config.UseImperial = *settings.UseImperial
		}
		if settings.DifficultyMode != nil {
			config.Difficulty = Difficulty(*settings.DifficultyMode)
		}
	}

	if config.MaxPlayers < minPlayers || config.MaxPlayers > maxPlayers {
		r.sendError(c, "Max Players must be between 2 and 8.")
		return
	}

	r.leaveCurrentRoom(c.userID)

	room := newRoom(r.newRoomCode(), config)
	r.rooms[room.code] = room
	r.addToRoom(room, c.userID)

	r.deliver(c, RoomCreatedMessage{Type: "roomCreated", RoomCode: room.code, IsHost: true})
	logf(r.cfg, "GAMES: User ID %d (%s) created room %s", c.userID, r.displayName(c.userID), room.code)
}

func (r *Registry) handleJoinRoom(c *Client, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usernames[c.userID]; !ok {
		r.sendError(c, "Please set a username first")
		return
	}

	roomCode = strings.TrimSpace(roomCode)
	if roomCode == "" {
		r.sendError(c, "Please enter a room code")
		return
	}

	room, ok := r.rooms[roomCode]
	if !ok {
		r.sendError(c, "Room not found!")
		return
	}

	if r.memberOf[c.userID] == roomCode {
		r.deliver(c, RoomAlreadyJoinedMessage{Type: "roomAlreadyJoined", RoomCode: roomCode})
		return
	}

	// All preconditions are checked before touching any state, so a failed
	// join leaves the user exactly where they were.
	if room.state == StatePlaying {
		r.sendError(c, "Game is in progress. Cannot join right now.")
		return
	}

	if len(room.members) >= room.config.MaxPlayers {
		r.sendError(c, "This room is full!")
		return
	}

	r.leaveCurrentRoom(c.userID)
	r.addToRoom(room, c.userID)

	r.deliver(c, JoinedRoomMessage{
		Type:      "joinedRoom",
		RoomCode:  room.code,
		GameState: room.state,
		IsPublic:  room.config.IsPublic,
	})

	name := r.displayName(c.userID)
	logf(r.cfg, "GAMES: User ID %d (%s) joined room %s", c.userID, name, room.code)
	r.systemChat(room, fmt.Sprintf("+ %s joined the room!", name))
}

func (r *Registry) handleLeaveRoom(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.memberOf[c.userID]
	if !ok {
		r.sendError(c, "You are not in a room!")
		return
	}

	room, live := r.rooms[code]
	if !live {
		delete(r.memberOf, c.userID)
		r.deliver(c, LeftRoomMessage{Type: "leftRoom"})
		return
	}

	name := r.displayName(c.userID)
	r.detachFromRoom(room, c.userID)
	if _, still := r.rooms[code]; still {
		r.systemChat(room, fmt.Sprintf("- %s left the room!", name))
	}

	r.deliver(c, LeftRoomMessage{Type: "leftRoom"})
}

func (r *Registry) handleChatMessage(c *Client, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.memberOf[c.userID]
	if !ok {
		r.sendError(c, "You are not in a room!")
		return
	}

	room, live := r.rooms[code]
	if !live {
		return
	}

	r.broadcast(room, ChatMessageOut{
		Type:     "chatMessage",
		UserID:   strconv.Itoa(c.userID),
		Username: r.displayName(c.userID),
		Message:  message,
	})
}

// currentRoom resolves the caller's room under the lock already held.
func (r *Registry) currentRoom(userID int) *Room {
	code, ok := r.memberOf[userID]
	if !ok {
		return nil
	}
	return r.rooms[code]
}
