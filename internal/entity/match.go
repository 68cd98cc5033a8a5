package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/game"
)

const (
	ResultWin     = "win"
	ResultTie     = "tie"
	ResultForfeit = "forfeit"
)

// StartedMatch - a pairing ticket minted by the matchmaker.
type StartedMatch struct {
	ID        uuid.UUID `json:"match_id"`
	Seed      uint64    `json:"seed"`
	Time      uint64    `json:"time"`
	Initiator uuid.UUID `json:"initiator"`
	Other     uuid.UUID `json:"other"`
	CreatedAt time.Time `json:"created_at"`
}

// Between - the match was started by exactly these two players.
func (that StartedMatch) Between(a, b uuid.UUID) bool {
	return (that.Initiator == a && that.Other == b) || (that.Initiator == b && that.Other == a)
}

// MatchResult - a replayed and scored match. Player1 is the submitting player.
// Winner is uuid.Nil for a tie.
type MatchResult struct {
	MatchID     uuid.UUID `json:"match_id"`
	Seed        uint64    `json:"seed"`
	Time        uint64    `json:"time"`
	Player1     uuid.UUID `json:"player1"`
	Player2     uuid.UUID `json:"player2"`
	Winner      uuid.UUID `json:"winner"`
	Result      string    `json:"result"`
	PointsP1    uint32    `json:"points_p1"`
	PointsP2    uint32    `json:"points_p2"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Moves       []Move    `json:"moves"`
}

type Move struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Number    uint8     `json:"number"`
	Column    uint16    `json:"x"`
	Seq       uint32    `json:"seq"`
	Timestamp uint64    `json:"now"`
}

// GameBody - a finished match submitted by one of its players. Keys are
// base64, Starting tells whether YourKey moved first.
type GameBody struct {
	Seed        uint64             `json:"seed"`
	Time        uint64             `json:"time"`
	YourKey     string             `json:"your_key"`
	OpponentKey string             `json:"opponent_key"`
	Starting    bool               `json:"starting"`
	Signature   string             `json:"signature"`
	Moves       []game.HistoryItem `json:"moves"`
}

// UserUpdate - a signed rename request.
type UserUpdate struct {
	PubKey    string `json:"pub_key"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

// Standing - a player's totals over finished matches.
type Standing struct {
	PlayerID    uuid.UUID
	TotalPoints uint64
	TotalGames  uint64
	TotalWins   uint64
}

type LeaderBoardEntry struct {
	Name        string `json:"name"`
	TotalPoints uint64 `json:"total_points"`
	TotalGames  uint64 `json:"total_games"`
	TotalWins   uint64 `json:"total_wins"`
}

type LeaderBoard struct {
	Total   int                `json:"total"`
	Entries []LeaderBoardEntry `json:"entries"`
}
