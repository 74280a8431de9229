package sessions

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Username  string
	Remember  bool
	CreatedAt time.Time
}
