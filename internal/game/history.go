package game

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ForfeitColumn marks a history record as a forfeit instead of a placement.
const ForfeitColumn uint16 = math.MaxUint16

// HistoryItemSize is the length of a binary encoded HistoryItem.
const HistoryItemSize = 4 + 8 + 2 + ed25519.SignatureSize

var ErrInvalidHistoryItem = errors.New("invalid history item encoding")

// HistoryItem - one signed record of the match log.
type HistoryItem struct {
	Seq       uint32    `json:"seq"`
	Timestamp uint64    `json:"now"`
	Column    uint16    `json:"x"`
	Signature Signature `json:"signature"`
}

// IsForfeit - reports whether the record is a forfeit marker.
func (that HistoryItem) IsForfeit() bool {
	return that.Column == ForfeitColumn
}

// Payload - the exact bytes covered by the record's signature.
func (that HistoryItem) Payload() []byte {
	return MovePayload(that.Seq, that.Timestamp, that.Column)
}

// MovePayload - "{seq}:{timestamp}:{column}" in ASCII decimal.
func MovePayload(seq uint32, timestamp uint64, column uint16) []byte {
	payload := make([]byte, 0, 32)
	payload = strconv.AppendUint(payload, uint64(seq), 10)
	payload = append(payload, ':')
	payload = strconv.AppendUint(payload, timestamp, 10)
	payload = append(payload, ':')
	payload = strconv.AppendUint(payload, uint64(column), 10)

	return payload
}

// MarshalBinary - fixed little-endian layout: seq, timestamp, column, signature.
func (that HistoryItem) MarshalBinary() ([]byte, error) {
	if len(that.Signature) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes", ErrInvalidHistoryItem, len(that.Signature))
	}

	buf := make([]byte, 0, HistoryItemSize)
	buf = binary.LittleEndian.AppendUint32(buf, that.Seq)
	buf = binary.LittleEndian.AppendUint64(buf, that.Timestamp)
	buf = binary.LittleEndian.AppendUint16(buf, that.Column)
	buf = append(buf, that.Signature...)

	return buf, nil
}

func (that *HistoryItem) UnmarshalBinary(data []byte) error {
	if len(data) != HistoryItemSize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidHistoryItem, len(data))
	}

	that.Seq = binary.LittleEndian.Uint32(data[0:4])
	that.Timestamp = binary.LittleEndian.Uint64(data[4:12])
	that.Column = binary.LittleEndian.Uint16(data[12:14])
	that.Signature = append(Signature(nil), data[14:]...)

	return nil
}

// Signature - raw signature bytes. Encoded in JSON as an array of byte values;
// a base64 string is accepted as well.
type Signature []byte

func (that Signature) MarshalJSON() ([]byte, error) {
	values := make([]uint16, len(that))
	for i, b := range that {
		values[i] = uint16(b)
	}

	return json.Marshal(values)
}

func (that *Signature) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return fmt.Errorf("failed to decode signature: %w", err)
		}

		*that = raw

		return nil
	}

	var numbers []uint16
	if err := json.Unmarshal(data, &numbers); err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	values := make([]byte, len(numbers))
	for i, n := range numbers {
		if n > math.MaxUint8 {
			return fmt.Errorf("failed to decode signature: byte %d out of range", n)
		}

		values[i] = byte(n)
	}

	*that = values

	return nil
}
