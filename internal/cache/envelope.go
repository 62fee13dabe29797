package cache

import "time"

// Envelope wraps a payload with its write instant in epoch milliseconds.
// Past the TTL the payload must be treated as absent; there is no partial
// or stale read. Envelopes are replaced wholesale, never mutated.
type Envelope[T any] struct {
	WrittenAt int64 `json:"written_at"`
	Payload   T     `json:"payload"`
}

func Wrap[T any](payload T, now time.Time) Envelope[T] {
	return Envelope[T]{
		WrittenAt: now.UnixMilli(),
		Payload:   payload,
	}
}

// Expired reports whether the envelope is past ttl at now. An envelope
// exactly ttl old is still readable.
func (e Envelope[T]) Expired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.WrittenAt > ttl.Milliseconds()
}
