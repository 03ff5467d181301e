package search

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
)

var ErrInvalidCursor = errors.New("invalid pagination cursor")

type cursorBody struct {
	CreatedAt time.Time `json:"c"`
	ID        uuid.UUID `json:"i"`
}

// EncodeCursor returns the opaque token for the page ending at p.
func EncodeCursor(p *models.Property) string {
	raw, _ := json.Marshal(cursorBody{CreatedAt: p.CreatedAt, ID: p.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor returns nil for the empty cursor.
func DecodeCursor(s string) (*repositories.PageAfter, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var body cursorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.ID == uuid.Nil {
		return nil, ErrInvalidCursor
	}
	return &repositories.PageAfter{CreatedAt: body.CreatedAt, ID: body.ID}, nil
}
