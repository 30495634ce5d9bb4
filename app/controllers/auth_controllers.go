package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/pkg/bind"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
	"github.com/shashiranjanraj/enventory/pkg/response"
	"github.com/shashiranjanraj/enventory/pkg/session"
)

// AuthController handles login, logout, session checks, and worker
// registration.
type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func (c *AuthController) login(role rbac.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.LoginInput
		if errs, err := bind.JSON(r, &in); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		} else if errs != nil {
			response.ValidationError(w, errs)
			return
		}

		acc, err := c.Auth.Login(r.Context(), role, in)
		if err != nil {
			fail(w, r, err)
			return
		}

		principal := acc.Principal()

		sess, ok := session.FromCtx(r.Context())
		if !ok {
			fail(w, r, models.ErrInternal)
			return
		}
		if err := sess.SetPrincipal(principal); err != nil {
			fail(w, r, err)
			return
		}
		if err := sess.Save(r.Context(), w); err != nil {
			logger.WithCtx(r.Context()).Warn("session save failed, client must use the bearer token",
				"error", err.Error())
			// A cookie from an earlier login would still point at stale
			// session state; expire it.
			if derr := sess.Destroy(r.Context(), w); derr != nil {
				logger.WithCtx(r.Context()).Warn("session destroy failed", "error", derr.Error())
			}
		}

		// Bearer token for clients that cannot hold the cookie.
		token, err := c.Auth.Token(acc)
		if err != nil {
			fail(w, r, err)
			return
		}

		response.Success(w, map[string]interface{}{
			"user":  principal,
			"token": token,
		})
	}
}

// WorkerLogin handles POST /auth/worker-login.
func (c *AuthController) WorkerLogin(w http.ResponseWriter, r *http.Request) {
	c.login(rbac.RoleWorker)(w, r)
}

// AdminLogin handles POST /auth/admin-login.
func (c *AuthController) AdminLogin(w http.ResponseWriter, r *http.Request) {
	c.login(rbac.RoleAdmin)(w, r)
}

// Logout handles POST /auth/logout. Destroy failures surface as 500; the
// client must know its session may still exist.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromCtx(r.Context())
	if !ok {
		response.Message(w, "Logged out")
		return
	}
	if err := sess.Destroy(r.Context(), w); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Logged out")
}

// CheckAuth handles GET /auth/check-auth: returns the session principal
// or 401.
func (c *AuthController) CheckAuth(w http.ResponseWriter, r *http.Request) {
	p, ok := rbac.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}
	response.Success(w, map[string]interface{}{"user": p})
}

// RegisterWorker handles POST /auth/worker-register; admin only, enforced
// at the route level.
func (c *AuthController) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	acc, err := c.Auth.Register(r.Context(), rbac.RoleWorker, in)
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Created(w, map[string]interface{}{"user": acc.Principal()})
}
