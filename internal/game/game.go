package game

import (
	"crypto/ed25519"
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/dice"
)

type roller interface {
	Roll() uint8
	Peek() uint8
}

// Game - the match state machine of one participant, or of the server replaying a match.
// A Game is not safe for concurrent use.
type Game struct {
	keys Keys
	info ServerGameInfo
	size DeckSize
	dice roller

	deck         []uint32
	opponentDeck []uint32

	seq       uint32
	history   []HistoryItem
	moves     []TrustedMove
	forfeiter Side

	verify bool
	now    func() time.Time
}

func New(keys Keys, size DeckSize, info ServerGameInfo) *Game {
	return &Game{
		keys:         keys,
		info:         info,
		size:         size,
		dice:         dice.New(info.Seed),
		deck:         make([]uint32, size.Cells()),
		opponentDeck: make([]uint32, size.Cells()),
		verify:       true,
		now:          time.Now,
	}
}

// DisableVerify - turns off signature checks. Only meant for tests.
func (that *Game) DisableVerify() {
	that.verify = false
}

// Place - signs a placement into column for my side and applies it.
func (that *Game) Place(column uint16) (HistoryItem, error) {
	if err := that.CanPlace(column); err != nil {
		return HistoryItem{}, err
	}

	item, err := that.sign(column)
	if err != nil {
		return HistoryItem{}, err
	}

	if err = that.play(item, Me); err != nil {
		return HistoryItem{}, fmt.Errorf("failed to play move: %w", err)
	}

	return item, nil
}

// CanPlace - runs the checks of Place without changing the game.
func (that *Game) CanPlace(column uint16) error {
	if that.IsCompleted() {
		return apperror.ErrAlreadyCompleted
	}

	if that.turnOf(that.seq+1) != Me {
		return apperror.ErrNotYourTurn
	}

	if column == ForfeitColumn {
		return apperror.ErrInvalidColumn
	}

	if _, err := that.freeCell(that.deck, column); err != nil {
		return err
	}

	return nil
}

// Forfeit - signs and records a forfeit of my side.
func (that *Game) Forfeit() (HistoryItem, error) {
	if that.IsCompleted() {
		return HistoryItem{}, apperror.ErrAlreadyCompleted
	}

	item, err := that.sign(ForfeitColumn)
	if err != nil {
		return HistoryItem{}, err
	}

	if err = that.play(item, Me); err != nil {
		return HistoryItem{}, fmt.Errorf("failed to forfeit: %w", err)
	}

	return item, nil
}

// AddOpponentMove - validates and applies a record received from outside.
func (that *Game) AddOpponentMove(item HistoryItem) error {
	return that.play(item, that.turnOf(item.Seq))
}

// IsCompleted - the last record is a forfeit or one of the decks is full.
func (that *Game) IsCompleted() bool {
	if n := len(that.history); n > 0 && that.history[n-1].IsForfeit() {
		return true
	}

	return isFull(that.deck) || isFull(that.opponentDeck)
}

// History - the signed records applied so far.
func (that *Game) History() []HistoryItem {
	return slices.Clone(that.history)
}

// Moves - the applied records with their rolled values.
func (that *Game) Moves() []TrustedMove {
	return slices.Clone(that.moves)
}

func (that *Game) BoardData() BoardData {
	board := BoardData{
		Points: Columns{
			Me:    Points(that.deck, that.size.Width),
			Other: Points(that.opponentDeck, that.size.Width),
		},
		Decks: Columns{
			Me:    slices.Clone(that.deck),
			Other: slices.Clone(that.opponentDeck),
		},
		History:     that.History(),
		Seq:         that.seq,
		DeckSize:    that.size,
		NextDice:    that.dice.Peek(),
		YourTurn:    that.turnOf(that.seq+1) == Me,
		IsCompleted: that.IsCompleted(),
	}

	if board.IsCompleted {
		end := that.outcome(board.Points)
		board.Winner = &end
	}

	return board
}

func (that *Game) outcome(points Columns) GameEnd {
	if n := len(that.history); n > 0 && that.history[n-1].IsForfeit() {
		return GameEnd{Winner: that.forfeiter != Me, WinByForfeit: true}
	}

	mine, theirs := Total(points.Me), Total(points.Other)
	if mine == theirs {
		return GameEnd{WinByTie: true}
	}

	return GameEnd{Winner: mine > theirs}
}

// turnOf - the side that moves at seq. Sides alternate; Starting makes me
// the side of odd sequence numbers.
func (that *Game) turnOf(seq uint32) Side {
	if that.info.Starting != (seq%2 == 0) {
		return Me
	}

	return Opponent
}

func (that *Game) sign(column uint16) (HistoryItem, error) {
	item := HistoryItem{
		Seq:       that.seq + 1,
		Timestamp: uint64(that.now().UnixMilli()),
		Column:    column,
	}

	signature, err := Sign(that.keys, item.Payload())
	if err != nil {
		return HistoryItem{}, err
	}

	item.Signature = signature

	return item, nil
}

// play - validates item and applies it. origin is the side assumed to have
// produced a forfeit when signatures are not checked.
func (that *Game) play(item HistoryItem, origin Side) error {
	mover, cell, err := that.validate(item, origin)
	if err != nil {
		return err
	}

	move := TrustedMove{
		Seq:       item.Seq,
		Timestamp: item.Timestamp,
		Column:    item.Column,
		Side:      mover,
	}

	if item.IsForfeit() {
		that.forfeiter = mover
	} else {
		move.Number = that.dice.Roll()
		that.apply(mover, cell, uint32(move.Number))
	}

	that.history = append(that.history, item)
	that.moves = append(that.moves, move)
	that.seq = item.Seq

	return nil
}

// validate - returns the side that produced item and, for placements, the
// cell of its deck that receives the die.
func (that *Game) validate(item HistoryItem, origin Side) (Side, int, error) {
	if that.IsCompleted() {
		return 0, 0, apperror.ErrAlreadyCompleted
	}

	if item.Seq != that.seq+1 {
		return 0, 0, fmt.Errorf("%w: expected seq %d, got %d", apperror.ErrOutOfOrder, that.seq+1, item.Seq)
	}

	if item.IsForfeit() {
		mover, err := that.forfeitSigner(item, origin)
		return mover, 0, err
	}

	mover := that.turnOf(item.Seq)
	if that.verify && !Verify(that.publicKey(mover), item.Payload(), item.Signature) {
		return 0, 0, apperror.ErrInvalidSignature
	}

	cell, err := that.freeCell(that.deckOf(mover), item.Column)
	if err != nil {
		return 0, 0, err
	}

	return mover, cell, nil
}

// forfeitSigner - a forfeit may be signed by either side at any time.
func (that *Game) forfeitSigner(item HistoryItem, origin Side) (Side, error) {
	if !that.verify {
		return origin, nil
	}

	for _, side := range []Side{Me, Opponent} {
		if Verify(that.publicKey(side), item.Payload(), item.Signature) {
			return side, nil
		}
	}

	return 0, apperror.ErrInvalidSignature
}

// freeCell - index of the first empty row of column, scanning from row 0.
func (that *Game) freeCell(deck []uint32, column uint16) (int, error) {
	col := int(column)
	if col >= that.size.Width {
		return 0, fmt.Errorf("%w: %d", apperror.ErrInvalidColumn, column)
	}

	for row := range that.size.Height {
		if i := row*that.size.Width + col; deck[i] == 0 {
			return i, nil
		}
	}

	return 0, apperror.ErrCollision
}

// apply - writes value for mover, knocks every equal value out of the same
// column of the other deck, then lets both decks settle.
func (that *Game) apply(mover Side, cell int, value uint32) {
	own, other := that.deckOf(mover), that.deckOf(mover.Other())
	own[cell] = value

	col := cell % that.size.Width
	for row := range that.size.Height {
		if i := row*that.size.Width + col; other[i] == value {
			other[i] = 0
		}
	}

	ShiftColumns(other, that.size.Height, FloatUp)
	ShiftColumns(own, that.size.Height, FloatDown)
}

func (that *Game) deckOf(side Side) []uint32 {
	if side == Me {
		return that.deck
	}

	return that.opponentDeck
}

func (that *Game) publicKey(side Side) ed25519.PublicKey {
	if side == Me {
		return that.keys.MyPublicKey()
	}

	return that.keys.OpponentPublicKey()
}

func isFull(deck []uint32) bool {
	return len(deck) > 0 && !slices.Contains(deck, 0)
}
