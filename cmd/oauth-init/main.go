// Command oauth-init runs the one-time OAuth flow that produces the token
// the spreadsheet exporter needs. It starts a local callback server, prints
// the authorization URL and writes the exchanged token to disk.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const authTimeout = 5 * time.Minute

func main() {
	cfg, err := loadOAuthConfig()
	if err != nil {
		log.Fatal(err)
	}

	// The OAuth client must list this URI among its authorized redirects.
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	codeCh := make(chan string, 1)
	srv := startCallbackServer(port, codeCh)

	fmt.Printf("Open this URL to authorize:\n%s\n",
		cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		path, err := saveToken(tok)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Saved token to %s\n", path)
	case <-time.After(authTimeout):
		log.Fatal("authorization timed out")
	case <-interrupt:
		log.Fatal("interrupted")
	}

	_ = srv.Close()
}

func loadOAuthConfig() (*oauth2.Config, error) {
	var b []byte
	switch {
	case os.Getenv("GOOGLE_OAUTH_CLIENT_JSON") != "":
		b = []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	case os.Getenv("GOOGLE_OAUTH_CLIENT_FILE") != "":
		var err error
		b, err = os.ReadFile(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
	default:
		return nil, fmt.Errorf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

func startCallbackServer(port string, codeCh chan<- string) *http.Server {
	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- r.URL.Query().Get("code")
	})

	go func() { _ = srv.ListenAndServe() }()
	return srv
}

func saveToken(tok *oauth2.Token) (string, error) {
	path := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if path == "" {
		path = "token.json"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return "", fmt.Errorf("write token: %w", err)
	}
	return path, nil
}
