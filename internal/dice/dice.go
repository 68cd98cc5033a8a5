package dice

const Faces = 6

// Dice - a reproducible sequence of die values with a one-value lookahead.
// Two Dice built from the same seed roll the same values on every platform.
type Dice struct {
	next uint8
	rng  *chacha12
}

// New - seeds the generator and draws the first lookahead value.
func New(seed uint64) *Dice {
	d := &Dice{rng: newChaCha12FromSeed(seed)}
	d.next = d.draw()

	return d
}

// Roll - returns the lookahead value and draws the next one.
func (that *Dice) Roll() uint8 {
	value := that.next
	that.next = that.draw()

	return value
}

// Peek - returns the value the next Roll will produce.
func (that *Dice) Peek() uint8 {
	return that.next
}

func (that *Dice) draw() uint8 {
	return uint8(that.rng.nextUint32()%Faces) + 1
}
