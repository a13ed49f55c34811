package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tasktrack/internal/backend/googletasks"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

const (
	oauthCallbackTimeout = 5 * time.Minute
	tokenExchangeTimeout = 30 * time.Second

	// Loopback ports tried for the redirect, in order.
	oauthStartPort       = 8085
	oauthMaxPortAttempts = 5

	callbackPath = "/callback"
)

const setupHelp = `To mirror tasks to Google Tasks, you need OAuth credentials:

1. Go to https://console.cloud.google.com/apis/credentials
2. Create a project (or select an existing one)
3. Enable the Google Tasks API:
   https://console.cloud.google.com/apis/library/tasks.googleapis.com
4. Create an OAuth client ID of type 'Desktop app' and download the JSON
5. Save it as:
   %s

Then run 'tasktrack login' again.
`

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with Google for sync" }
func (c *LoginCmd) Usage() string     { return "tasktrack login" }
func (c *LoginCmd) NeedsStore() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		fmt.Fprintf(errOut, setupHelp, cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	if cfg.HasToken() {
		err := googletasks.TokenUsable(ctx, cfg)
		if err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}
		cfg.Log().Debug("stored token unusable; logging in again", "error", err)
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	cb, err := listenLoopback()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for OAuth callback")
		return exitcode.AuthError
	}
	defer cb.close()

	oauthConfig.RedirectURL = cb.redirectURL()
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL(cb.state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	cfg.Log().Debug("waiting for oauth callback", "port", cb.port)
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	waitCtx, cancelWait := context.WithTimeout(ctx, oauthCallbackTimeout)
	defer cancelWait()
	code, err := cb.wait(waitCtx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	cfg.Log().Debug("saved token", "path", cfg.TokenPath())
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// loopbackCallback receives the OAuth redirect on a local port.
type loopbackCallback struct {
	port     int
	state    string
	listener net.Listener
	server   *http.Server

	codeCh chan string
	errCh  chan error
}

// listenLoopback binds the first free port from oauthStartPort and starts
// serving the callback.
func listenLoopback() (*loopbackCallback, error) {
	var lastErr error
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			lastErr = err
			continue
		}
		cb := newLoopbackCallback(port, uuid.NewString())
		cb.listener = listener
		go func() {
			if err := cb.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				cb.fail(err)
			}
		}()
		return cb, nil
	}
	return nil, fmt.Errorf("no available port found: %w", lastErr)
}

func newLoopbackCallback(port int, state string) *loopbackCallback {
	cb := &loopbackCallback{
		port:   port,
		state:  state,
		codeCh: make(chan string, 1),
		errCh:  make(chan error, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handle)
	cb.server = &http.Server{Handler: mux}
	return cb
}

func (cb *loopbackCallback) redirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", cb.port, callbackPath)
}

func (cb *loopbackCallback) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != cb.state {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		cb.fail(errors.New("oauth state mismatch"))
		return
	}
	if reason := q.Get("error"); reason != "" {
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		cb.fail(fmt.Errorf("authorization denied: %s", reason))
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code in callback", http.StatusBadRequest)
		cb.fail(errors.New("no code in callback"))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
	select {
	case cb.codeCh <- code:
	default:
	}
}

// fail records the first error; later ones are dropped.
func (cb *loopbackCallback) fail(err error) {
	select {
	case cb.errCh <- err:
	default:
	}
}

// wait blocks until the callback delivers a code, fails, or ctx ends.
func (cb *loopbackCallback) wait(ctx context.Context) (string, error) {
	select {
	case code := <-cb.codeCh:
		return code, nil
	case err := <-cb.errCh:
		return "", err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("oauth callback timed out")
		}
		return "", errors.New("cancelled")
	}
}

func (cb *loopbackCallback) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cb.server.Shutdown(ctx)
	if cb.listener != nil {
		cb.listener.Close()
	}
}
