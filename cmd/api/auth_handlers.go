package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/markbates/goth/gothic"
	"github.com/safar/go-storefront/internal/auth"
	"github.com/safar/go-storefront/internal/store"
)

const magicLinkTTL = 24 * time.Hour

func handleSignin(db *sql.DB, mailer *auth.Mailer, siteURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		token, err := store.IssueVerificationToken(ctx, db, req.Email, req.Name, magicLinkTTL)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		link := fmt.Sprintf("%s/api/auth/callback?token=%s", siteURL, url.QueryEscape(token.Token))
		if err := mailer.SendMagicLink(req.Email, link); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"sent": true})
	}
}

func handleSigninCallback(db *sql.DB, sessions *auth.Sessions, siteURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodGet {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		email, name, err := store.ConsumeVerificationToken(ctx, db, r.URL.Query().Get("token"))
		if err != nil {
			respondStoreError(w, err)
			return
		}

		user, err := store.UpsertUserByEmail(ctx, db, email, name)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if err := sessions.SignIn(w, r, user.ID); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		http.Redirect(w, r, siteURL, http.StatusFound)
	}
}

func handleSignout(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if err := sessions.SignOut(w, r); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
	}
}

func handleGoogleAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = gothic.GetContextWithProvider(r, "google")
		gothic.BeginAuthHandler(w, r)
	}
}

func handleGoogleCallback(db *sql.DB, sessions *auth.Sessions, siteURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		r = gothic.GetContextWithProvider(r, "google")
		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := store.UpsertUserByEmail(ctx, db, gothUser.Email, gothUser.Name)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if err := sessions.SignIn(w, r, user.ID); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		http.Redirect(w, r, siteURL, http.StatusFound)
	}
}
