package auth

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
)

// DefaultAddr is where the authorize page redirects after the user grants access.
const DefaultAddr = "127.0.0.1:5555"

// CallbackServer captures an OAuth2 authorization code from the browser redirect.
// It implements api.AuthCodeProvider.
type CallbackServer struct {
	ClientID string

	// Addr is the listen address. Defaults to DefaultAddr.
	Addr string
	// Listener, if set, is used instead of listening on Addr.
	Listener net.Listener
	// Out receives the instructions printed for the user. Defaults to os.Stderr.
	Out io.Writer
}

var _ api.AuthCodeProvider = (*CallbackServer)(nil)

// NewCallbackServer creates a server on DefaultAddr for clientID.
func NewCallbackServer(clientID string) *CallbackServer {
	return &CallbackServer{ClientID: clientID, Addr: DefaultAddr}
}

// callbackParams are the query parameters of the authorize redirect.
type callbackParams struct {
	Code             string `schema:"code"`
	State            string `schema:"state"`
	Error            string `schema:"error"`
	ErrorDescription string `schema:"error_description"`
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type callbackResult struct {
	code string
	err  error
}

// AuthCode opens the authorize page and blocks until the redirect delivers a
// code or ctx is done. The listener is shut down before returning.
func (s *CallbackServer) AuthCode(ctx context.Context) (string, error) {
	listener := s.Listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", s.addr())
		if err != nil {
			return "", &api.AuthError{Reason: "failed to start callback server", Err: err}
		}
	}

	results := make(chan callbackResult, 1)
	router := mux.NewRouter()
	router.HandleFunc("/", s.handleCallback(results)).Methods(http.MethodGet)
	router.HandleFunc("/oauth2/callback", s.handleCallback(results)).Methods(http.MethodGet)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		_ = server.Serve(listener)
	}()
	defer shutdown(server)

	authURL := api.AuthorizeURL(s.ClientID)
	out := s.out()
	_, _ = fmt.Fprintf(out, "Open this URL in your browser to authorize access:\n  %s\n", authURL)
	_, _ = fmt.Fprintf(out, "Waiting for the redirect on http://%s/oauth2/callback\n", listener.Addr())
	if err := openBrowser(authURL); err != nil {
		_, _ = fmt.Fprintf(out, "Could not open browser automatically: %v\n", err)
	}

	select {
	case result := <-results:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// handleCallback answers the redirect. Requests without a code keep the
// server waiting; an OAuth error parameter ends the wait.
func (s *CallbackServer) handleCallback(results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params callbackParams
		if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
			renderPage(w, http.StatusBadRequest, "Invalid redirect", err.Error())
			return
		}

		if params.Error != "" {
			reason := params.Error
			if params.ErrorDescription != "" {
				reason += ": " + params.ErrorDescription
			}
			deliver(results, callbackResult{err: &api.AuthError{Reason: "authorization denied (" + reason + ")"}})
			renderPage(w, http.StatusOK, "Authorization failed", reason)
			return
		}

		if params.Code == "" {
			renderPage(w, http.StatusBadRequest, "Missing code", "The redirect did not include an authorization code.")
			return
		}

		deliver(results, callbackResult{code: params.Code})
		renderPage(w, http.StatusOK, "Authorization received", "Received code "+params.Code+". You can close this window.")
	}
}

func deliver(results chan<- callbackResult, result callbackResult) {
	select {
	case results <- result:
	default:
	}
}

func renderPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackTemplate.Execute(w, map[string]string{"Title": title, "Message": message})
}

var callbackTemplate = template.Must(template.New("callback").Parse(callbackPage))

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		_ = server.Close() // Force close if graceful shutdown fails
	}
}

func (s *CallbackServer) addr() string {
	if s.Addr != "" {
		return s.Addr
	}
	return DefaultAddr
}

func (s *CallbackServer) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stderr
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	if shouldSkipAutoBrowserOpen() {
		return nil
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

func shouldSkipAutoBrowserOpen() bool {
	// Always skip browser launch when running under `go test`.
	if flag.Lookup("test.v") != nil {
		return true
	}

	noBrowser := strings.TrimSpace(strings.ToLower(os.Getenv("FIELDCLIMATE_NO_BROWSER")))
	return noBrowser == "1" || noBrowser == "true" || noBrowser == "yes"
}
