package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const recordVersionV1 = 1

// Session is a bounded-lifetime authorization grant for a user.
// Timestamps are unix milliseconds.
type Session struct {
	ID           string
	UserID       string
	CreatedAt    int64
	LastActiveAt int64
}

// ValidAt reports whether the session is still valid at the given instant
// under the absolute and inactivity caps. The absolute cap always wins:
// recent activity cannot save a session past TotalDuration.
func (s Session) ValidAt(now time.Time, total, inactive time.Duration) bool {
	ms := now.UnixMilli()
	if ms-s.CreatedAt > total.Milliseconds() {
		return false
	}
	if ms-s.LastActiveAt > inactive.Milliseconds() {
		return false
	}
	return true
}

// encode renders the session record in the v1 binary layout. LastActiveAt is
// deliberately the final 8 bytes so Touch can rewrite it in place with a
// single SETRANGE inside a Lua script.
func encode(s *Session) ([]byte, error) {
	if len(s.UserID) == 0 || len(s.UserID) > 255 {
		return nil, errors.New("invalid user id length")
	}

	var buf bytes.Buffer
	buf.WriteByte(recordVersionV1)
	buf.WriteByte(byte(len(s.UserID)))
	buf.WriteString(s.UserID)
	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastActiveAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decode(id string, data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid session record version")
	}

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}

	s := &Session{ID: id, UserID: string(userID)}
	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LastActiveAt); err != nil {
		return nil, err
	}

	return s, nil
}
