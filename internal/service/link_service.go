package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Link flow errors surfaced to the chat-bot layer.
var (
	// ErrUnknownUsername indicates the supplied username matched no account.
	ErrUnknownUsername = errors.New("username does not match any account")

	// ErrEmptyUsername indicates the supplied username was blank.
	ErrEmptyUsername = errors.New("username cannot be empty")
)

// LinkService drives the account-link flow for external chats. Each chat's
// progress lives in its persisted link record rather than a process-wide
// map, so the flow survives restarts and never leaks state between chats.
type LinkService struct {
	links  store.LinkStore
	users  store.UserDirectory
	logger *slog.Logger
}

// NewLinkService creates a LinkService.
func NewLinkService(
	links store.LinkStore,
	users store.UserDirectory,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{
		links:  links,
		users:  users,
		logger: logger.With("component", "link_service"),
	}
}

// Begin starts (or restarts) the link flow for a chat, moving it to
// awaiting_username. Returns domain.ErrLinkAlreadyLinked when the chat is
// already bound to an account.
func (s *LinkService) Begin(ctx context.Context, chatID int64) error {
	link, err := s.getOrCreate(ctx, chatID)
	if err != nil {
		return err
	}

	if err := link.BeginLink(time.Now()); err != nil {
		return err
	}

	if err := s.links.Save(ctx, link); err != nil {
		return fmt.Errorf("failed to save link state: %w", err)
	}

	s.logger.Info("link flow started", "chat_id", chatID)
	return nil
}

// ProvideUsername completes the link flow with the username supplied by the
// chat. Returns domain.ErrLinkNotAwaiting if the chat never started the
// flow, and ErrUnknownUsername when no account matches.
func (s *LinkService) ProvideUsername(
	ctx context.Context,
	chatID int64,
	username string,
) (*domain.TelegramLink, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	link, err := s.links.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrLinkNotAwaiting
		}
		return nil, err
	}

	if link.State != domain.LinkStateAwaitingUsername {
		return nil, domain.ErrLinkNotAwaiting
	}

	userID, err := s.users.GetIDByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUsername
		}
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}

	if err := link.CompleteLink(userID, username, time.Now()); err != nil {
		return nil, err
	}

	if err := s.links.Save(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save link state: %w", err)
	}

	s.logger.Info("chat linked to account",
		"chat_id", chatID,
		"user_id", userID)
	return link, nil
}

// Status returns the chat's current link state. An unknown chat is reported
// as unlinked rather than an error.
func (s *LinkService) Status(ctx context.Context, chatID int64) (domain.LinkState, error) {
	link, err := s.links.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LinkStateUnlinked, nil
		}
		return "", err
	}
	return link.State, nil
}

// Unlink clears the chat's account binding. Safe to call for a chat in any
// state, including one never seen before.
func (s *LinkService) Unlink(ctx context.Context, chatID int64) error {
	link, err := s.links.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	link.Unlink(time.Now())
	if err := s.links.Save(ctx, link); err != nil {
		return fmt.Errorf("failed to save link state: %w", err)
	}

	s.logger.Info("chat unlinked", "chat_id", chatID)
	return nil
}

func (s *LinkService) getOrCreate(ctx context.Context, chatID int64) (*domain.TelegramLink, error) {
	link, err := s.links.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewTelegramLink(chatID), nil
		}
		return nil, err
	}
	return link, nil
}
