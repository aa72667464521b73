package host

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/floaties-dev/floaties/pkg/auth"
)

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p>{{.Message}}</p>
<script>window.close()</script>
</body>
</html>
`))

// handleLogin starts the browser side of a callback login. With an
// authorize URL configured it forwards the state there; otherwise it
// completes the login on the spot with the development token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		http.Error(w, "missing state", http.StatusBadRequest)
		return
	}

	if s.config.AuthorizeURL == "" {
		q := url.Values{"state": {state}, "token": {s.config.DevToken}}
		http.Redirect(w, r, CallbackPath+"?"+q.Encode(), http.StatusFound)
		return
	}

	target, err := url.Parse(s.config.AuthorizeURL)
	if err != nil {
		s.logger.Error("invalid authorize URL", "url", s.config.AuthorizeURL, "error", err)
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}
	q := target.Query()
	q.Set("state", state)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// handleCallback delivers the outcome of a login to the waiting
// connection. A missing token or an error parameter denies the login.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")
	token := q.Get("token")

	var err error
	if token == "" || q.Get("error") != "" {
		err = s.callbacks.Deny(state)
		if err == nil {
			err = auth.ErrUnauthorized
		}
	} else {
		err = s.callbacks.Deliver(state, auth.Token(token))
	}

	status := http.StatusOK
	message := "You are logged in. You can close this window."
	if err != nil {
		code, ok := auth.StatusCode(err)
		if !ok {
			code = http.StatusInternalServerError
		}
		status = code
		message = "The login did not complete. You can close this window."
		s.logger.Warn("login callback failed", "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, map[string]string{
		"Lang":    s.config.Locale.String(),
		"Title":   s.config.Name,
		"Message": message,
	})
}
