package game

// Side - one of the two players of a game instance, seen from that instance.
type Side int

const (
	Me Side = iota
	Opponent
)

func (that Side) Other() Side {
	if that == Me {
		return Opponent
	}

	return Me
}

func (that Side) String() string {
	if that == Me {
		return "me"
	}

	return "opponent"
}

func (that Side) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

// DeckSize - dimensions of each player's deck.
type DeckSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (that DeckSize) Cells() int {
	return that.Width * that.Height
}

// ServerGameInfo - the part of the pairing ticket a game instance is built from.
type ServerGameInfo struct {
	Seed     uint64 `json:"seed"`
	Starting bool   `json:"starting"`
}

// Columns - per column values for both sides.
type Columns struct {
	Me    []uint32 `json:"me"`
	Other []uint32 `json:"other"`
}

// GameEnd - outcome of a completed game from "my" side.
type GameEnd struct {
	Winner       bool `json:"winner"`
	WinByTie     bool `json:"win_by_tie"`
	WinByForfeit bool `json:"win_by_forfeit"`
}

// BoardData - read only snapshot of a game.
type BoardData struct {
	Points      Columns       `json:"points"`
	Decks       Columns       `json:"decks"`
	History     []HistoryItem `json:"history"`
	Seq         uint32        `json:"seq"`
	DeckSize    DeckSize      `json:"deck_size"`
	NextDice    uint8         `json:"next_dice"`
	YourTurn    bool          `json:"your_turn"`
	IsCompleted bool          `json:"is_completed"`
	Winner      *GameEnd      `json:"winner,omitempty"`
}

// TrustedMove - a validated history record with what it did to the board.
// Number is the rolled value, zero for a forfeit.
type TrustedMove struct {
	Seq       uint32 `json:"seq"`
	Timestamp uint64 `json:"now"`
	Column    uint16 `json:"x"`
	Number    uint8  `json:"number"`
	Side      Side   `json:"side"`
}
