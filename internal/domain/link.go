package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Link state machine errors
var (
	ErrLinkAlreadyLinked = errors.New("chat is already linked to an account")
	ErrLinkNotAwaiting   = errors.New("chat is not awaiting a username")
)

// LinkState is the state of an external chat's account-link flow. Each chat
// moves through an explicit machine instead of a process-wide lookup table:
//
//	unlinked -> awaiting_username -> linked
//
// Unlink returns the chat to unlinked from any state.
type LinkState string

// Possible link states
const (
	LinkStateUnlinked         LinkState = "unlinked"
	LinkStateAwaitingUsername LinkState = "awaiting_username"
	LinkStateLinked           LinkState = "linked"
)

// TelegramLink associates an external chat with a user account and tracks
// the multi-step link flow for that chat. The ChatID is the identity of the
// external channel; UserID is only meaningful once State is linked.
type TelegramLink struct {
	ChatID    int64     `json:"chat_id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	State     LinkState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTelegramLink creates a link record in the unlinked state.
func NewTelegramLink(chatID int64) *TelegramLink {
	now := time.Now().UTC()
	return &TelegramLink{
		ChatID:    chatID,
		State:     LinkStateUnlinked,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BeginLink transitions the chat into awaiting_username. Starting over while
// already awaiting is allowed; a linked chat must be unlinked first.
func (l *TelegramLink) BeginLink(now time.Time) error {
	if l.State == LinkStateLinked {
		return ErrLinkAlreadyLinked
	}
	l.State = LinkStateAwaitingUsername
	l.UpdatedAt = now.UTC()
	return nil
}

// CompleteLink binds the chat to the resolved user and moves it to linked.
// Only valid while awaiting a username.
func (l *TelegramLink) CompleteLink(userID uuid.UUID, username string, now time.Time) error {
	if l.State != LinkStateAwaitingUsername {
		return ErrLinkNotAwaiting
	}
	l.UserID = userID
	l.Username = username
	l.State = LinkStateLinked
	l.UpdatedAt = now.UTC()
	return nil
}

// Unlink clears the account binding and returns the chat to unlinked.
// Safe to call from any state.
func (l *TelegramLink) Unlink(now time.Time) {
	l.UserID = uuid.Nil
	l.Username = ""
	l.State = LinkStateUnlinked
	l.UpdatedAt = now.UTC()
}

// Linked reports whether the chat currently has a bound user account.
func (l *TelegramLink) Linked() bool {
	return l.State == LinkStateLinked && l.UserID != uuid.Nil
}
