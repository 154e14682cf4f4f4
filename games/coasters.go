package games

// Players join a shared room, by code or through the quick queue, and each
// round are shown three roller coasters alongside a revealed criterion
// ("Height: 42m", "Fastest Coaster")
// They pick the coaster matching the criterion before the round timer runs out
// A wrong pick, or no pick at all, costs one health point; correct picks
// extend the player's streak
// Players at zero health are eliminated; the last one standing wins

// Question families:
// Range rounds reveal a numeric value and ask which coaster is closest to it
// Landmark rounds (every fourth round) ask for a superlative: tallest,
// fastest, most inversions, longest

// Implementation details:
// - One websocket per client; rooms are isolated sessions keyed by 6-digit codes
// - Public rooms form a matchmaking pool; the quick queue fills the oldest
//   lobby with spare seats and tops the pool back up when rooms fill or empty
// - The host (earliest member) controls settings, game start, and early end;
//   the seat migrates on departure

// How to play
// - Set a username, then create a room, join by code, or quick queue
// - The host starts the game once at least two players are in
// - Each round, tap a coaster before the timer expires; watch your health
// - Shrinking tolerance windows make rounds harder as the game goes on
