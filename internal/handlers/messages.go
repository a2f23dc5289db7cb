// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"codeberg.org/oliverandrich/truefeedback/internal/services/suggest"
	"github.com/labstack/echo/v4"
)

type sendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

type acceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

// SendMessage delivers an anonymous message to a user's mailbox.
func (h *Handlers) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return RespondError(c, err)
	}

	if _, err := h.gate.Submit(c.Request().Context(), req.Username, req.Content); err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "message_sent", nil)
}

// GetAcceptMessages returns the acceptance flag of the session's account.
func (h *Handlers) GetAcceptMessages(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return RespondError(c, err)
	}

	accepting, err := h.preferences.GetAcceptance(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "acceptance_status", echo.Map{
		"isAcceptingMessages": accepting,
	})
}

// SetAcceptMessages updates the acceptance flag of the session's account.
func (h *Handlers) SetAcceptMessages(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req acceptMessagesRequest
	if err := bind(c, &req); err != nil {
		return RespondError(c, err)
	}
	if req.AcceptMessages == nil {
		return RespondError(c, apperr.ErrInvalidInput)
	}

	accepting, err := h.preferences.SetAcceptance(c.Request().Context(), id, *req.AcceptMessages)
	if err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "acceptance_updated", echo.Map{
		"isAcceptingMessages": accepting,
	})
}

// GetMessages lists the session account's messages in receipt order.
func (h *Handlers) GetMessages(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return RespondError(c, err)
	}

	messages, err := h.mailbox.List(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return Respond(c, http.StatusOK, "messages_listed", echo.Map{
		"messages": messages,
	})
}

// DeleteMessage removes one message from the session account's mailbox.
func (h *Handlers) DeleteMessage(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return RespondError(c, err)
	}

	if err := h.mailbox.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "message_deleted", nil)
}

// SuggestMessages returns conversation starters. It never fails.
func (h *Handlers) SuggestMessages(c echo.Context) error {
	suggestions := h.suggest.Suggest(c.Request().Context())
	return Respond(c, http.StatusOK, "suggestions_ready", echo.Map{
		"data":        suggest.Join(suggestions),
		"suggestions": suggestions,
	})
}
