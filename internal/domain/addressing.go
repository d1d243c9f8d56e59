package domain

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ad/fsub-archive-bot/internal/encoding"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrRangeTooLarge    = errors.New("range exceeds the delivery limit")
)

const payloadTag = "id"

// MaxMessageID is the largest archive message id Telegram hands out
const MaxMessageID = math.MaxInt32

// MaxRangeSize caps how many messages one link may deliver
const MaxRangeSize = 10000

// ArchiveRef is a parsed payload: one message, or an inclusive range whose
// direction follows the order of its bounds
type ArchiveRef struct {
	Start   int
	End     int
	IsRange bool
}

// Len returns how many message ids the reference expands to
func (r ArchiveRef) Len() int {
	if !r.IsRange {
		return 1
	}
	if r.Start <= r.End {
		return r.End - r.Start + 1
	}
	return r.Start - r.End + 1
}

// MessageIDs expands the reference. Ranges are inclusive and count down
// when Start > End.
func (r ArchiveRef) MessageIDs() []int {
	if !r.IsRange {
		return []int{r.Start}
	}

	ids := make([]int, 0, r.Len())
	if r.Start <= r.End {
		for id := r.Start; id <= r.End; id++ {
			ids = append(ids, id)
		}
		return ids
	}
	for id := r.Start; id >= r.End; id-- {
		ids = append(ids, id)
	}
	return ids
}

// ArchiveAddressing maps archive message ids to payload strings and back.
// Every id is multiplied by the archive chat id's magnitude before it is
// embedded, so links issued under one archive chat do not resolve under
// another.
type ArchiveAddressing struct {
	scale *big.Int
}

// NewArchiveAddressing creates addressing for the given archive chat
func NewArchiveAddressing(archiveChatID int64) (*ArchiveAddressing, error) {
	if archiveChatID == 0 {
		return nil, ErrArchiveNotSet
	}
	scale := new(big.Int).Abs(big.NewInt(archiveChatID))
	return &ArchiveAddressing{scale: scale}, nil
}

// Scale returns the multiplier as a decimal string
func (a *ArchiveAddressing) Scale() string {
	return a.scale.String()
}

func (a *ArchiveAddressing) absolute(archiveID int) string {
	abs := new(big.Int).Mul(big.NewInt(int64(archiveID)), a.scale)
	return abs.String()
}

// SinglePayload builds the payload for one archive message
func (a *ArchiveAddressing) SinglePayload(archiveID int) string {
	return payloadTag + "-" + a.absolute(archiveID)
}

// RangePayload builds the payload for an inclusive range of archive messages
func (a *ArchiveAddressing) RangePayload(first, last int) string {
	return payloadTag + "-" + a.absolute(first) + "-" + a.absolute(last)
}

// ParsePayload recovers the archive reference from a payload
func (a *ArchiveAddressing) ParsePayload(payload string) (ArchiveRef, error) {
	parts := strings.Split(payload, "-")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != payloadTag {
		return ArchiveRef{}, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}

	start, err := a.unscale(parts[1])
	if err != nil {
		return ArchiveRef{}, err
	}
	if len(parts) == 2 {
		return ArchiveRef{Start: start, End: start}, nil
	}

	end, err := a.unscale(parts[2])
	if err != nil {
		return ArchiveRef{}, err
	}
	return ArchiveRef{Start: start, End: end, IsRange: true}, nil
}

// unscale divides an absolute id by the scale. The absolute id must be an
// exact positive multiple that maps to a valid message id.
func (a *ArchiveAddressing) unscale(part string) (int, error) {
	if part == "" || strings.TrimLeft(part, "0123456789") != "" {
		return 0, fmt.Errorf("%w: non-numeric id %q", ErrMalformedPayload, part)
	}

	abs, ok := new(big.Int).SetString(part, 10)
	if !ok {
		return 0, fmt.Errorf("%w: non-numeric id %q", ErrMalformedPayload, part)
	}

	quo, rem := new(big.Int).QuoRem(abs, a.scale, new(big.Int))
	if rem.Sign() != 0 {
		return 0, fmt.Errorf("%w: %s is not a multiple of the archive scale", ErrMalformedPayload, part)
	}
	if quo.Sign() <= 0 || !quo.IsInt64() || quo.Int64() > MaxMessageID {
		return 0, fmt.Errorf("%w: message id out of range", ErrMalformedPayload)
	}
	return int(quo.Int64()), nil
}

// Resolve decodes a start token into the ordered archive message ids to
// deliver. References expanding to more than maxCount ids are rejected;
// maxCount <= 0 disables the limit.
func (a *ArchiveAddressing) Resolve(token string, maxCount int) ([]int, error) {
	payload, err := encoding.DecodeToken(token)
	if err != nil {
		return nil, err
	}
	ref, err := a.ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	if maxCount > 0 && ref.Len() > maxCount {
		return nil, fmt.Errorf("%w: %d messages", ErrRangeTooLarge, ref.Len())
	}
	return ref.MessageIDs(), nil
}

// SingleToken is EncodeToken(SinglePayload(archiveID))
func (a *ArchiveAddressing) SingleToken(archiveID int) string {
	return encoding.EncodeToken(a.SinglePayload(archiveID))
}

// RangeToken is EncodeToken(RangePayload(first, last))
func (a *ArchiveAddressing) RangeToken(first, last int) string {
	return encoding.EncodeToken(a.RangePayload(first, last))
}
