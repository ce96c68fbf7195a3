package yammer

import (
	"net/url"

	"golang.org/x/oauth2"
)

// LoginURL builds the provider's authorization redirect for the login UI.
// returnPath is baked into the callback URL as redirect_path so the
// callback can send the browser back to the page it came from.
func LoginURL(baseURL, clientID, callbackURL, returnPath string) string {
	redirect := callbackURL
	if returnPath != "" {
		query := url.Values{}
		query.Set("redirect_path", returnPath)
		redirect = callbackURL + "?" + query.Encode()
	}

	cfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:  baseURL + authorizePath,
			TokenURL: baseURL + accessTokenPath,
		},
	}

	// The provider keys the flow on client_id and redirect_uri alone;
	// no state parameter is carried.
	return cfg.AuthCodeURL("")
}
