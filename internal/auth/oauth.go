package auth

import (
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

// ConfigureGoogle registers the Google OAuth provider when credentials are
// present; with none configured the OAuth routes simply fail provider lookup.
func ConfigureGoogle(clientID, clientSecret, siteURL string) {
	if clientID == "" || clientSecret == "" {
		return
	}
	goth.UseProviders(
		google.New(clientID, clientSecret, siteURL+"/auth/google/callback"),
	)
}
