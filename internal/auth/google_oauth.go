package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/paramedtrack/paramedtrack/internal/config"
)

func googleOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoints.Google,
	}
}

// GET /auth/google/login → redirect to Google.
func GoogleLoginHandler(cfg config.Config) http.HandlerFunc {
	oc := googleOAuthConfig(cfg)
	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("redirect")
		if next == "" {
			next = strings.TrimRight(cfg.PublicURL, "/") + "/"
		}
		// Only allow same-origin redirects (or localhost in dev).
		if u, err := url.Parse(next); err == nil {
			if base, err2 := url.Parse(cfg.PublicURL); err2 == nil && base.Host != "" {
				if !(u.Host == "" || (u.Scheme == base.Scheme && u.Host == base.Host) || strings.HasPrefix(u.Host, "localhost")) {
					http.Error(w, "bad redirect", http.StatusBadRequest)
					return
				}
			}
		}

		state := fmt.Sprintf("s-%d", time.Now().UnixNano())
		http.SetCookie(w, &http.Cookie{
			Name:     "pt_oauth_state",
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})
		http.SetCookie(w, &http.Cookie{
			Name:     "pt_post_auth_redirect",
			Value:    url.QueryEscape(next),
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})

		opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
		if cfg.GoogleAllowedHD != "" {
			opts = append(opts, oauth2.SetAuthURLParam("hd", cfg.GoogleAllowedHD))
		}
		http.Redirect(w, r, oc.AuthCodeURL(state, opts...), http.StatusFound)
	}
}

// GET /auth/google/callback → exchange code, fetch profile, provision on
// first sign-in, mint internal JWT.
func GoogleCallbackHandler(a *AuthService, db *sql.DB, cfg config.Config) http.HandlerFunc {
	oc := googleOAuthConfig(cfg)
	type userInfo struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Hd            string `json:"hd"`
		Name          string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("pt_oauth_state"); err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "code required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		tok, err := oc.Exchange(ctx, code)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			return
		}

		resp, err := oc.Client(ctx, tok).Get("https://openidconnect.googleapis.com/v1/userinfo")
		if err != nil {
			http.Error(w, "userinfo failed", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		var ui userInfo
		if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil || ui.Email == "" {
			http.Error(w, "bad userinfo", http.StatusBadGateway)
			return
		}
		if !ui.EmailVerified {
			http.Error(w, "email not verified", http.StatusForbidden)
			return
		}
		if cfg.GoogleAllowedHD != "" && ui.Hd != cfg.GoogleAllowedHD {
			http.Error(w, "domain not allowed", http.StatusForbidden)
			return
		}

		id, role, err := provisionGoogleUser(ctx, db, ui.Email, ui.Name)
		if err != nil {
			http.Error(w, "provision: "+err.Error(), http.StatusInternalServerError)
			return
		}

		jwtStr, err := a.IssueJWT(id, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}

		next := "/"
		if c, err := r.Cookie("pt_post_auth_redirect"); err == nil {
			if v, err := url.QueryUnescape(c.Value); err == nil && v != "" {
				next = v
			}
		}
		sep := "?"
		if strings.Contains(next, "?") {
			sep = "&"
		}
		http.Redirect(w, r, next+sep+"token="+url.QueryEscape(jwtStr), http.StatusFound)
	}
}

// provisionGoogleUser looks the account up by email and creates a student
// account on first sign-in. Roles are upgraded by an admin afterwards.
func provisionGoogleUser(ctx context.Context, db *sql.DB, email, name string) (id, role string, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT id, role FROM users WHERE email=$1`, email,
	).Scan(&id, &role)
	if err == nil {
		return id, role, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", "", err
	}

	id = uuid.NewString()
	role = "student"
	// The full address doubles as the username; local-part prefixes collide.
	username := email
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, full_name, role, password_hash, created_at)
		 VALUES ($1,$2,$3,$4,$5,'',$6)`,
		id, username, email, name, role, time.Now().Unix())
	if err != nil {
		return "", "", err
	}
	return id, role, nil
}
