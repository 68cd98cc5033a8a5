package game

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
)

var deck3x3 = DeckSize{Width: 3, Height: 3}

// stubDice rolls the given values, then ones.
type stubDice struct {
	values []uint8
}

func (that *stubDice) Roll() uint8 {
	value := that.Peek()
	if len(that.values) > 0 {
		that.values = that.values[1:]
	}

	return value
}

func (that *stubDice) Peek() uint8 {
	if len(that.values) == 0 {
		return 1
	}

	return that.values[0]
}

func testKey(b byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
}

func publicOf(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}

// newPair returns the games of the starting player A and of player B.
func newPair(seed uint64) (*Game, *Game) {
	a, b := testKey(1), testKey(2)

	gameA := New(SignKeys{My: a, Opponent: publicOf(b)}, deck3x3, ServerGameInfo{Seed: seed, Starting: true})
	gameB := New(SignKeys{My: b, Opponent: publicOf(a)}, deck3x3, ServerGameInfo{Seed: seed, Starting: false})

	return gameA, gameB
}

func TestGame_New(t *testing.T) {
	// When: a new game is created
	gameA, gameB := newPair(0)

	// Then: it is empty and the first die is already visible
	board := gameA.BoardData()
	assert.Equal(t, uint8(2), board.NextDice)
	assert.Equal(t, deck3x3, board.DeckSize)
	assert.Equal(t, uint32(0), board.Seq)
	assert.Empty(t, board.History)
	assert.True(t, board.YourTurn)
	assert.False(t, board.IsCompleted)
	assert.Nil(t, board.Winner)

	assert.False(t, gameB.BoardData().YourTurn)
}

func TestGame_ExchangeMoves(t *testing.T) {
	// Given: both players of a match with seed 0
	gameA, gameB := newPair(0)

	// When: A places in column 2, B ingests it and places in column 1
	moveA, err := gameA.Place(2)
	require.NoError(t, err)
	require.NoError(t, gameB.AddOpponentMove(moveA))

	moveB, err := gameB.Place(1)
	require.NoError(t, err)
	require.NoError(t, gameA.AddOpponentMove(moveB))

	// Then: both instances see the same scores from their side
	boardA := gameA.BoardData()
	assert.Equal(t, []uint32{0, 0, 2}, boardA.Points.Me)
	assert.Equal(t, []uint32{0, 3, 0}, boardA.Points.Other)

	boardB := gameB.BoardData()
	assert.Equal(t, []uint32{0, 3, 0}, boardB.Points.Me)
	assert.Equal(t, []uint32{0, 0, 2}, boardB.Points.Other)

	assert.Equal(t, boardA.Decks.Me, boardB.Decks.Other)
	assert.Equal(t, boardA.Decks.Other, boardB.Decks.Me)
	assert.Equal(t, boardA.History, boardB.History)
	assert.Equal(t, uint32(2), boardA.Seq)

	// Then: the next placement uses the visible die
	next := boardA.NextDice
	_, err = gameA.Place(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(next), gameA.BoardData().Points.Me[0])
}

func TestGame_SignedPayload(t *testing.T) {
	gameA, _ := newPair(0)

	item, err := gameA.Place(1)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), item.Seq)
	assert.Equal(t, uint16(1), item.Column)
	assert.True(t, ed25519.Verify(publicOf(testKey(1)), MovePayload(item.Seq, item.Timestamp, item.Column), item.Signature))
}

func TestGame_Capture(t *testing.T) {
	t.Run("removes every matching value of the column", func(t *testing.T) {
		// Given: the opponent holds two threes and a five in column 0
		gameA, _ := newPair(0)
		gameA.dice = &stubDice{values: []uint8{3}}
		gameA.opponentDeck = []uint32{
			3, 0, 0,
			3, 0, 0,
			5, 0, 0,
		}

		// When: A rolls a three into column 0
		_, err := gameA.Place(0)
		require.NoError(t, err)

		// Then: both threes are knocked out and the five floats up
		board := gameA.BoardData()
		assert.Equal(t, []uint32{
			5, 0, 0,
			0, 0, 0,
			0, 0, 0,
		}, board.Decks.Other)
		assert.Equal(t, []uint32{
			0, 0, 0,
			0, 0, 0,
			3, 0, 0,
		}, board.Decks.Me)
	})

	t.Run("leaves other columns alone", func(t *testing.T) {
		gameA, _ := newPair(0)
		gameA.dice = &stubDice{values: []uint8{4}}
		gameA.opponentDeck = []uint32{
			4, 4, 0,
			0, 0, 0,
			0, 0, 0,
		}

		_, err := gameA.Place(1)
		require.NoError(t, err)

		assert.Equal(t, []uint32{
			4, 0, 0,
			0, 0, 0,
			0, 0, 0,
		}, gameA.BoardData().Decks.Other)
	})

	t.Run("opponent moves capture my dice", func(t *testing.T) {
		// Given: my column 2 holds a six
		gameA, gameB := newPair(0)
		gameA.dice = &stubDice{values: []uint8{6, 6}}
		gameB.dice = &stubDice{values: []uint8{6, 6}}

		moveA, err := gameA.Place(2)
		require.NoError(t, err)
		require.NoError(t, gameB.AddOpponentMove(moveA))

		// When: the opponent rolls a six into the same column
		moveB, err := gameB.Place(2)
		require.NoError(t, err)
		require.NoError(t, gameA.AddOpponentMove(moveB))

		// Then: my six is gone
		assert.Equal(t, make([]uint32, 9), gameA.BoardData().Decks.Me)
		assert.Equal(t, []uint32{0, 0, 0, 0, 0, 0, 0, 0, 6}, gameA.BoardData().Decks.Other)
	})
}

func TestGame_Collision(t *testing.T) {
	t.Run("my full column", func(t *testing.T) {
		gameA, _ := newPair(0)
		gameA.deck = []uint32{
			1, 0, 0,
			2, 0, 0,
			3, 0, 0,
		}

		_, err := gameA.Place(0)
		require.ErrorIs(t, err, apperror.ErrCollision)
		assert.ErrorIs(t, gameA.CanPlace(0), apperror.ErrCollision)
		assert.NoError(t, gameA.CanPlace(1))
	})

	t.Run("opponent move into a full column", func(t *testing.T) {
		gameA, gameB := newPair(0)

		moveA, err := gameA.Place(0)
		require.NoError(t, err)
		require.NoError(t, gameB.AddOpponentMove(moveA))

		gameA.opponentDeck = []uint32{
			0, 1, 0,
			0, 2, 0,
			0, 3, 0,
		}

		moveB, err := gameB.Place(1)
		require.NoError(t, err)

		err = gameA.AddOpponentMove(moveB)
		require.ErrorIs(t, err, apperror.ErrCollision)
		assert.Equal(t, uint32(1), gameA.BoardData().Seq)
	})

	t.Run("column out of range", func(t *testing.T) {
		gameA, _ := newPair(0)

		_, err := gameA.Place(3)
		require.ErrorIs(t, err, apperror.ErrInvalidColumn)
	})
}

func TestGame_TurnOrder(t *testing.T) {
	gameA, gameB := newPair(0)

	// B does not start
	_, err := gameB.Place(0)
	require.ErrorIs(t, err, apperror.ErrNotYourTurn)

	_, err = gameA.Place(0)
	require.NoError(t, err)

	// A can't move twice
	_, err = gameA.Place(0)
	require.ErrorIs(t, err, apperror.ErrNotYourTurn)
}

func TestGame_AddOpponentMove_Rejects(t *testing.T) {
	t.Run("tampered signature", func(t *testing.T) {
		gameA, gameB := newPair(0)

		moveA, err := gameA.Place(0)
		require.NoError(t, err)

		moveA.Signature = append(Signature(nil), moveA.Signature...)
		moveA.Signature[0] ^= 1

		require.ErrorIs(t, gameB.AddOpponentMove(moveA), apperror.ErrInvalidSignature)
		assert.Empty(t, gameB.History())
	})

	t.Run("tampered column", func(t *testing.T) {
		gameA, gameB := newPair(0)

		moveA, err := gameA.Place(0)
		require.NoError(t, err)

		moveA.Column = 1

		require.ErrorIs(t, gameB.AddOpponentMove(moveA), apperror.ErrInvalidSignature)
	})

	t.Run("move signed by the wrong side", func(t *testing.T) {
		gameA, gameB := newPair(0)

		// Given: B signs a record for seq 1 although A starts
		item := HistoryItem{Seq: 1, Timestamp: 10, Column: 0}
		item.Signature = ed25519.Sign(testKey(2), item.Payload())

		require.ErrorIs(t, gameA.AddOpponentMove(item), apperror.ErrInvalidSignature)
		require.ErrorIs(t, gameB.AddOpponentMove(item), apperror.ErrInvalidSignature)
	})

	t.Run("skipped sequence number", func(t *testing.T) {
		_, gameB := newPair(0)

		// Given: a correctly signed record of A that skips seq 1 and 2
		item := HistoryItem{Seq: 3, Timestamp: 10, Column: 0}
		item.Signature = ed25519.Sign(testKey(1), item.Payload())

		err := gameB.AddOpponentMove(item)
		require.ErrorIs(t, err, apperror.ErrOutOfOrder)
		assert.ErrorIs(t, err, apperror.ErrInvalidSignature)
	})
}

func TestGame_VerifyOnlyCanNotSign(t *testing.T) {
	game := New(VerifyOnlyKeys{My: publicOf(testKey(1)), Opponent: publicOf(testKey(2))}, deck3x3, ServerGameInfo{Starting: true})

	_, err := game.Place(0)
	require.ErrorIs(t, err, apperror.ErrVerifyOnly)

	_, err = game.Forfeit()
	require.ErrorIs(t, err, apperror.ErrVerifyOnly)

	assert.Empty(t, game.History())
}

func TestGame_DisableVerify(t *testing.T) {
	// Given: a game without signature checks
	game := New(VerifyOnlyKeys{My: publicOf(testKey(1)), Opponent: publicOf(testKey(2))}, deck3x3, ServerGameInfo{Starting: true})
	game.DisableVerify()
	game.dice = &stubDice{values: []uint8{4, 5}}

	// When: unsigned records are ingested
	require.NoError(t, game.AddOpponentMove(HistoryItem{Seq: 1, Column: 0}))
	require.NoError(t, game.AddOpponentMove(HistoryItem{Seq: 2, Column: 2}))

	// Then: they are applied by turn order
	board := game.BoardData()
	assert.Equal(t, []uint32{4, 0, 0}, board.Points.Me)
	assert.Equal(t, []uint32{0, 0, 5}, board.Points.Other)
}

func TestGame_IsCompleted(t *testing.T) {
	full := []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1}

	gameA, _ := newPair(0)
	assert.False(t, gameA.IsCompleted())

	gameA.deck = full
	assert.True(t, gameA.IsCompleted())

	gameA, _ = newPair(0)
	gameA.opponentDeck = full
	assert.True(t, gameA.IsCompleted())

	_, err := gameA.Place(0)
	require.ErrorIs(t, err, apperror.ErrAlreadyCompleted)
}

func TestGame_Outcome(t *testing.T) {
	t.Run("higher total wins", func(t *testing.T) {
		gameA, _ := newPair(0)
		gameA.deck = []uint32{6, 6, 6, 6, 6, 6, 6, 6, 6}
		gameA.opponentDeck = []uint32{1, 0, 0, 0, 0, 0, 0, 0, 0}

		board := gameA.BoardData()
		require.True(t, board.IsCompleted)
		assert.Equal(t, &GameEnd{Winner: true}, board.Winner)
	})

	t.Run("lower total loses", func(t *testing.T) {
		gameA, _ := newPair(0)
		gameA.deck = []uint32{1, 0, 0, 0, 0, 0, 0, 0, 0}
		gameA.opponentDeck = []uint32{6, 6, 6, 6, 6, 6, 6, 6, 6}

		assert.Equal(t, &GameEnd{}, gameA.BoardData().Winner)
	})

	t.Run("equal totals tie", func(t *testing.T) {
		gameA, _ := newPair(0)
		gameA.deck = []uint32{2, 2, 2, 2, 2, 2, 2, 2, 2}
		gameA.opponentDeck = []uint32{2, 2, 2, 2, 2, 2, 2, 2, 2}

		assert.Equal(t, &GameEnd{WinByTie: true}, gameA.BoardData().Winner)
	})
}

func TestGame_Forfeit(t *testing.T) {
	t.Run("forfeiting player loses on both sides", func(t *testing.T) {
		// Given: A has a clear lead
		gameA, gameB := newPair(0)
		gameA.dice = &stubDice{values: []uint8{6}}
		gameB.dice = &stubDice{values: []uint8{6}}

		moveA, err := gameA.Place(0)
		require.NoError(t, err)
		require.NoError(t, gameB.AddOpponentMove(moveA))

		// When: A forfeits on B's turn
		forfeit, err := gameA.Forfeit()
		require.NoError(t, err)
		assert.True(t, forfeit.IsForfeit())
		require.NoError(t, gameB.AddOpponentMove(forfeit))

		// Then: the match is over and B wins by forfeit
		boardA, boardB := gameA.BoardData(), gameB.BoardData()
		require.True(t, boardA.IsCompleted)
		require.True(t, boardB.IsCompleted)
		assert.Equal(t, &GameEnd{WinByForfeit: true}, boardA.Winner)
		assert.Equal(t, &GameEnd{Winner: true, WinByForfeit: true}, boardB.Winner)
		assert.Equal(t, boardA.Decks.Me, boardB.Decks.Other)
	})

	t.Run("nothing is accepted after a forfeit", func(t *testing.T) {
		gameA, gameB := newPair(0)

		forfeit, err := gameB.Forfeit()
		require.NoError(t, err)
		require.NoError(t, gameA.AddOpponentMove(forfeit))

		_, err = gameA.Place(0)
		require.ErrorIs(t, err, apperror.ErrAlreadyCompleted)

		_, err = gameB.Forfeit()
		require.ErrorIs(t, err, apperror.ErrAlreadyCompleted)

		assert.Equal(t, &GameEnd{Winner: true, WinByForfeit: true}, gameA.BoardData().Winner)
	})

	t.Run("forged forfeit", func(t *testing.T) {
		gameA, _ := newPair(0)

		item := HistoryItem{Seq: 1, Timestamp: 1, Column: ForfeitColumn}
		item.Signature = ed25519.Sign(testKey(9), item.Payload())

		require.ErrorIs(t, gameA.AddOpponentMove(item), apperror.ErrInvalidSignature)
		assert.False(t, gameA.IsCompleted())
	})
}
