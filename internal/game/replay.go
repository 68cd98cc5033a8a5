package game

import (
	"crypto/ed25519"
	"fmt"
)

// ValidateEntireGame - replays a submitted match log with public keys only and
// returns the final board with the trusted moves. The first invalid record
// aborts the replay.
func ValidateEntireGame(
	myKey, opponentKey ed25519.PublicKey,
	size DeckSize,
	info ServerGameInfo,
	history []HistoryItem,
) (BoardData, []TrustedMove, error) {
	replay := New(VerifyOnlyKeys{My: myKey, Opponent: opponentKey}, size, info)

	for _, item := range history {
		if err := replay.AddOpponentMove(item); err != nil {
			return BoardData{}, nil, fmt.Errorf("failed to replay move %d: %w", item.Seq, err)
		}
	}

	return replay.BoardData(), replay.Moves(), nil
}
