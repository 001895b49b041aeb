// Серверные модели
package models

import (
	"time"

	"github.com/google/uuid"
)

// Session — серверная сессия. Token есть только в момент выдачи,
// в хранилище лежит его хэш.
type Session struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}
