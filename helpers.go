package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

type envelope map[string]any

func (b *Blog) logError(r *http.Request, err error) {
	b.logger.Error(err.Error(), slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()))
}

func (b *Blog) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.logError(r, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (b *Blog) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	js, err := json.Marshal(data)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// render executes page with data, adding the session state every page
// shows. Pending flashes are consumed by the render.
func (b *Blog) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	t, ok := b.templates[page]
	if !ok {
		b.serverError(w, r, errUnknownPage(page))
		return
	}

	s := b.session(r)
	data["LoggedIn"] = isLoggedIn(s)
	data["Flashes"] = popFlashes(s)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		b.serverError(w, r, err)
		return
	}

	if err := s.Save(r, w); err != nil {
		b.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errUnknownPage string

func (e errUnknownPage) Error() string {
	return "unknown page " + string(e)
}
