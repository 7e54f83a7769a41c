// Command oauth-init walks one user through the Gmail OAuth consent flow and
// stores the resulting tokens in the database so the mail-worker can read
// their bank notification mails.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"

	"finsum/internal/config"
	"finsum/internal/storage"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		stdlog.Fatalf("usage: oauth-init <user-email>")
	}
	email := os.Args[1]

	appCfg := config.Load()
	if appCfg.GoogleClientID == "" || appCfg.GoogleClientSecret == "" {
		stdlog.Fatalf("set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	repo, err := storage.NewSQLiteRepository(appCfg.SQLiteDBPath)
	if err != nil {
		stdlog.Fatalf("open database: %v", err)
	}
	defer repo.Close()

	user, err := repo.GetUserByEmail(context.Background(), email)
	if err != nil {
		stdlog.Fatalf("look up user: %v", err)
	}

	// Start local server for redirect_uri http://localhost:8085/callback
	// The OAuth client must list this URI in its authorized redirect URIs.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}

	cfg := &oauth2.Config{
		ClientID:     appCfg.GoogleClientID,
		ClientSecret: appCfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.MailGoogleComScope},
		RedirectURL:  "http://localhost:" + redirectPort + "/callback",
	}

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- code
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this URL to authorize:\n%s\n", url)

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			stdlog.Fatalf("token exchange: %v", err)
		}
		if tok.RefreshToken == "" {
			stdlog.Fatalf("no refresh token granted; revoke access and retry")
		}
		if err := repo.SaveUserTokens(context.Background(), user.ID, tok.AccessToken, tok.RefreshToken); err != nil {
			stdlog.Fatalf("save tokens: %v", err)
		}
		fmt.Printf("Saved Gmail tokens for %s\n", email)
	case <-time.After(5 * time.Minute):
		stdlog.Fatalf("authorization timed out")
	case <-signalChan():
		stdlog.Fatalf("interrupted")
	}
}

func signalChan() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}
