package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTelegramLink(t *testing.T) {
	link := NewTelegramLink(12345)

	if link.ChatID != 12345 {
		t.Errorf("Expected chat ID 12345, got %d", link.ChatID)
	}

	if link.State != LinkStateUnlinked {
		t.Errorf("Expected state %s, got %s", LinkStateUnlinked, link.State)
	}

	if link.UserID != uuid.Nil {
		t.Error("Expected nil user ID on a new link")
	}

	if link.Linked() {
		t.Error("Expected new link to not be linked")
	}
}

func TestTelegramLinkFlow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	link := NewTelegramLink(12345)

	// unlinked -> awaiting_username
	if err := link.BeginLink(now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if link.State != LinkStateAwaitingUsername {
		t.Errorf("Expected state %s, got %s", LinkStateAwaitingUsername, link.State)
	}

	// Restarting while awaiting is allowed
	if err := link.BeginLink(now); err != nil {
		t.Errorf("Expected restart while awaiting to succeed, got %v", err)
	}

	// awaiting_username -> linked
	if err := link.CompleteLink(userID, "alice", now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if link.State != LinkStateLinked {
		t.Errorf("Expected state %s, got %s", LinkStateLinked, link.State)
	}
	if link.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, link.UserID)
	}
	if !link.Linked() {
		t.Error("Expected link to report linked")
	}

	// Starting the flow again while linked is rejected
	if err := link.BeginLink(now); err != ErrLinkAlreadyLinked {
		t.Errorf("Expected error %v, got %v", ErrLinkAlreadyLinked, err)
	}

	// linked -> unlinked clears the binding
	link.Unlink(now)
	if link.State != LinkStateUnlinked {
		t.Errorf("Expected state %s, got %s", LinkStateUnlinked, link.State)
	}
	if link.UserID != uuid.Nil {
		t.Error("Expected user ID to be cleared")
	}
	if link.Username != "" {
		t.Error("Expected username to be cleared")
	}
}

func TestTelegramLinkCompleteWithoutBegin(t *testing.T) {
	link := NewTelegramLink(12345)

	err := link.CompleteLink(uuid.New(), "alice", time.Now())
	if err != ErrLinkNotAwaiting {
		t.Errorf("Expected error %v, got %v", ErrLinkNotAwaiting, err)
	}

	if link.State != LinkStateUnlinked {
		t.Errorf("Expected state to stay %s, got %s", LinkStateUnlinked, link.State)
	}
}

func TestTelegramLinkUnlinkFromAnyState(t *testing.T) {
	now := time.Now()

	// Unlink on a fresh link is a no-op
	link := NewTelegramLink(1)
	link.Unlink(now)
	if link.State != LinkStateUnlinked {
		t.Errorf("Expected state %s, got %s", LinkStateUnlinked, link.State)
	}

	// Unlink while awaiting abandons the flow
	link = NewTelegramLink(2)
	if err := link.BeginLink(now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	link.Unlink(now)
	if link.State != LinkStateUnlinked {
		t.Errorf("Expected state %s, got %s", LinkStateUnlinked, link.State)
	}
}
