package models

// GameType identifies which game a stake or stats row belongs to
type GameType string

const (
	GameTypeBlackjack GameType = "blackjack"
	GameTypeBaccarat  GameType = "baccarat"
	GameTypeGuessSize GameType = "guesssize"
	GameTypeSlots     GameType = "slots"
)

// GameStats is one aggregate row, either the per-user rollup or a
// (user, game_type) row. Counters only ever grow.
type GameStats struct {
	UserID   int64    `db:"user_id"`
	GameType GameType `db:"game_type"`
	TotalBet int64    `db:"bet"`
	Wins     int64    `db:"wins"`
	Losses   int64    `db:"losses"`
	Profit   int64    `db:"profit"`
	Games    int64    `db:"games"`
}

// UserStats represents combined statistics for a user
type UserStats struct {
	User    *User
	Total   *GameStats
	PerGame map[GameType]*GameStats
}

// LeaderboardEntry represents a user's entry on the profit leaderboard
type LeaderboardEntry struct {
	Rank     int
	UserID   int64
	Username string
	Profit   int64
}
