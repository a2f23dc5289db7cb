// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	authsvc "codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"github.com/labstack/echo/v4"
)

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"verifyCode"`
}

type resendCodeRequest struct {
	Username string `json:"username"`
}

// CheckUsernameUnique reports whether the username in the query is free.
func (h *Handlers) CheckUsernameUnique(c echo.Context) error {
	if err := h.auth.CheckUsername(c.Request().Context(), c.QueryParam("username")); err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "username_available", nil)
}

// SignUp registers an account and sends the verification code.
func (h *Handlers) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bind(c, &req); err != nil {
		return RespondError(c, err)
	}

	account, err := h.auth.SignUp(c.Request().Context(), authsvc.SignUpParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return Respond(c, http.StatusCreated, "signup_success", echo.Map{
		"username": account.Username,
	})
}

// VerifyCode checks a verification code.
func (h *Handlers) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := bind(c, &req); err != nil {
		return RespondError(c, err)
	}

	if err := h.verifier.Verify(c.Request().Context(), req.Username, req.Code); err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "verify_success", nil)
}

// ResendCode issues a fresh code for an unverified account.
func (h *Handlers) ResendCode(c echo.Context) error {
	var req resendCodeRequest
	if err := bind(c, &req); err != nil {
		return RespondError(c, err)
	}

	if err := h.auth.ResendCode(c.Request().Context(), req.Username); err != nil {
		return RespondError(c, err)
	}
	return Respond(c, http.StatusOK, "code_resent", nil)
}
