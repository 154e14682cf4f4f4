package main

import (
	"fmt"
	"time"
)

// Delays between game phases, matching the web client's animations.
const (
	gameStartDelay     = 2 * time.Second // "game started" splash before round one
	selectionRetryWait = 2 * time.Second // backoff after an undiscriminating triple
	answerGracePeriod  = 1 * time.Second // pause once every alive player has answered
	roundDisplayDelay  = 5 * time.Second // results screen before the next round or game end
	tripleAttempts     = 20              // fresh candidate triples per round start
)

// schedule arms the room's single outstanding timer. The callback re-enters
// through the registry mutex and is fenced against the room having been torn
// down, replaced, or moved on: it only runs if the room is still registered
// and nothing has re-armed or cancelled the timer since.
func (r *Registry) schedule(room *Room, delay time.Duration, fn func()) {
	room.cancelTimer()
	gen := room.game.generation
	code := room.code

	room.game.timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		current, live := r.rooms[code]
		if !live || current != room || room.game.generation != gen {
			return
		}
		fn()
	})
}

func (r *Registry) handleStartGame(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.currentRoom(c.userID)
	if room == nil {
		r.sendError(c, "You are not in a room.")
		return
	}
	if c.userID != room.hostID {
		r.sendError(c, "Only the room host can start the game.")
		return
	}
	if room.state == StatePlaying {
		r.sendError(c, "Game is already in progress.")
		return
	}
	if len(room.members) < minPlayers {
		r.sendError(c, "Need at least 2 players to start.")
		return
	}

	room.state = StatePlaying

	// Fresh game: health and streaks for the members present right now,
	// round counter back to zero. Settings are frozen for this game.
	g := room.game
	g.health = make(map[int]int, len(room.members))
	g.streaks = make(map[int]int, len(room.members))
	for _, id := range room.members {
		g.health[id] = room.config.StartingHealth
		g.streaks[id] = 0
	}
	g.roundNumber = 0
	g.roundActive = false
	g.answers = nil
	g.roundTime = room.config.RoundTime
	g.useImperial = room.config.UseImperial
	g.difficulty = room.config.Difficulty

	r.broadcast(room, GameStartedMessage{
		Type:    "gameStarted",
		Message: fmt.Sprintf("Game started in room %s!", room.code),
	})
	r.broadcastRoomUsers(room)
	logf(r.cfg, "GAMES: Game started in room %s", room.code)

	r.schedule(room, gameStartDelay, func() { r.startNewRound(room) })
}

// startNewRound draws candidate triples until one admits a uniquely
// answerable question, then opens the round. Runs under the registry mutex.
func (r *Registry) startNewRound(room *Room) {
	if room.state != StatePlaying {
		return
	}

	g := room.game
	g.roundNumber++

	var (
		candidates []Coaster
		criterion  Criterion
		found      bool
	)
	for attempt := 0; attempt < tripleAttempts; attempt++ {
		candidates = drawThree(r.rng, r.catalog)
		criterion, found = selectCriterion(r.rng, candidates, g.roundNumber, g.difficulty)
		if found {
			break
		}
	}

	if !found {
		// Never fatal: wait and try again with fresh candidates.
		logf(r.cfg, "GAMES: Could not find valid criterion for round %d in room %s, retrying", g.roundNumber, room.code)
		r.schedule(room, selectionRetryWait, func() { r.startNewRound(room) })
		return
	}

	g.candidates = candidates
	g.criterion = criterion
	g.answers = make(map[int]int)
	g.roundStart = time.Now()
	g.roundActive = true

	shown := make([]CoasterPublic, 0, len(candidates))
	for _, c := range candidates {
		shown = append(shown, c.public())
	}

	r.broadcast(room, NewRoundMessage{
		Type:        "newRound",
		RoundNumber: g.roundNumber,
		Coasters:    shown,
		Criterion: CriterionDisplay{
			Type:         criterion.Name,
			DisplayValue: criterion.display(g.useImperial),
		},
		TimeLimit: int(g.roundTime / time.Millisecond),
	})

	r.schedule(room, g.roundTime, func() { r.endRound(room) })
}

func (r *Registry) handleSubmitAnswer(c *Client, coasterID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.currentRoom(c.userID)
	if room == nil {
		r.sendError(c, "You are not in a room!")
		return
	}

	g := room.game
	if !g.roundActive {
		r.sendError(c, "No active round!")
		return
	}
	if g.health[c.userID] <= 0 {
		r.sendError(c, "You are eliminated!")
		return
	}
	if _, answered := g.answers[c.userID]; answered {
		// First answer wins; nothing is overwritten.
		r.sendError(c, "You already answered this round!")
		return
	}

	g.answers[c.userID] = coasterID

	r.broadcast(room, PlayerAnsweredMessage{
		Type:     "playerAnswered",
		UserID:   c.userID,
		Username: r.displayName(c.userID),
	})

	for _, id := range room.aliveMembers() {
		if _, ok := g.answers[id]; !ok {
			return
		}
	}

	// Everyone alive has answered: swap the deadline for a short grace
	// period so the last answer is visible before results come in.
	r.schedule(room, answerGracePeriod, func() { r.endRound(room) })
}

// endRound resolves the current round: scores every member, broadcasts the
// results, and decides whether the game continues. Runs under the registry
// mutex, fired by the deadline or grace timer.
func (r *Registry) endRound(room *Room) {
	g := room.game
	if !g.roundActive {
		return
	}

	room.cancelTimer()
	g.roundActive = false

	correctID := g.criterion.CorrectCoasterID
	var correctCoaster *Coaster
	for i := range g.candidates {
		if g.candidates[i].ID == correctID {
			correctCoaster = &g.candidates[i]
			break
		}
	}

	results := make([]PlayerResult, 0, len(room.members))
	for _, id := range room.members {
		if g.health[id] <= 0 {
			// Already out; nothing further to lose.
			continue
		}

		answer, answered := g.answers[id]
		correct := answered && answer == correctID

		if correct {
			g.streaks[id]++
		} else {
			g.health[id]--
			g.streaks[id] = 0
		}

		var answeredCoaster *Coaster
		for i := range g.candidates {
			if answered && g.candidates[i].ID == answer {
				answeredCoaster = &g.candidates[i]
				break
			}
		}

		results = append(results, PlayerResult{
			UserID:          id,
			Username:        r.displayName(id),
			Answer:          answer,
			AnsweredCoaster: answeredCoaster,
			IsCorrect:       correct,
			TooSlow:         !answered,
			HP:              g.health[id],
			Streak:          g.streaks[id],
		})
	}

	r.broadcast(room, RoundEndedMessage{
		Type:             "roundEnded",
		CorrectCoasterID: correctID,
		CorrectCoaster:   correctCoaster,
		AllCoasters:      g.candidates,
		Results:          results,
		Criterion:        CriterionReveal{Key: g.criterion.Key, Type: g.criterion.Name},
		IsLandmark:       g.criterion.Landmark,
	})

	r.broadcastRoomUsers(room)

	alive := room.aliveMembers()
	switch len(alive) {
	case 0:
		r.schedule(room, roundDisplayDelay, func() {
			r.finishGame(room, "Game over! Nobody won!", nil)
		})
	case 1:
		winner := &Winner{UserID: alive[0], Username: r.displayName(alive[0])}
		r.schedule(room, roundDisplayDelay, func() {
			r.finishGame(room, fmt.Sprintf("%s wins!", winner.Username), winner)
		})
	default:
		r.schedule(room, roundDisplayDelay, func() { r.startNewRound(room) })
	}
}

// finishGame returns the room to the lobby and announces the outcome.
// Runs under the registry mutex.
func (r *Registry) finishGame(room *Room, message string, winner *Winner) {
	room.cancelTimer()
	room.game.roundActive = false
	room.state = StateLobby

	r.broadcast(room, GameEndedMessage{Type: "gameEnded", Message: message, Winner: winner})
	r.broadcastRoomUsers(room)
	logf(r.cfg, "GAMES: Game ended in room %s", room.code)
}

func (r *Registry) handleEndGame(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.currentRoom(c.userID)
	if room == nil {
		r.sendError(c, "You are not in a room.")
		return
	}
	if c.userID != room.hostID {
		r.sendError(c, "Only the room host can end the game.")
		return
	}
	if room.state != StatePlaying {
		r.sendError(c, "No game is currently in progress.")
		return
	}

	r.finishGame(room, "Game has been ended by the host.", nil)
}

func (r *Registry) handleUpdateGameSettings(c *Client, settings *SettingsUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.currentRoom(c.userID)
	if room == nil {
		r.sendError(c, "You are not in a room.")
		return
	}
	if c.userID != room.hostID {
		r.sendError(c, "Only the room host can change settings.")
		return
	}
	if settings == nil {
		return
	}

	if settings.MaxPlayers != nil {
		// Growing a public room mid-matchmaking would stuff more strangers
		// into games already forming, so capacity is only adjustable for
		// private rooms or a public room the host has to themselves.
		if !room.config.IsPublic || len(room.members) == 1 {
			requested := *settings.MaxPlayers
			if requested < len(room.members) {
				requested = len(room.members)
			}
			room.config.MaxPlayers = requested
		}
	}
	if settings.StartingHealth != nil {
		room.config.StartingHealth = *settings.StartingHealth
	}
	if settings.RoundTime != nil {
		room.config.RoundTime = time.Duration(*settings.RoundTime) * time.Millisecond
	}
	if settings.UseImperial != nil {
		room.config.UseImperial = *settings.UseImperial
	}
	if settings.DifficultyMode != nil {
		room.config.Difficulty = Difficulty(*settings.DifficultyMode)
	}

	r.broadcastRoomUsers(room)
	logf(r.cfg, "GAMES: Settings updated for room %s", room.code)
}
