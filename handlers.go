package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func (b *Blog) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := listPosts(r.Context(), b.db)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, "index.html", map[string]any{
		"Title":   "Home",
		"Entries": posts,
	})
}

func (b *Blog) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	// Empty values are accepted; only a missing field is rejected.
	_, hasTitle := r.PostForm["title"]
	_, hasText := r.PostForm["text"]
	if !hasTitle || !hasText {
		http.Error(w, "Title and text are required", http.StatusBadRequest)
		return
	}

	post, err := createPost(r.Context(), b.db, r.PostForm.Get("title"), r.PostForm.Get("text"))
	if err != nil {
		b.serverError(w, r, err)
		return
	}
	b.logger.Info("post created", "id", post.ID)

	s := b.session(r)
	addFlash(s, "success", "New entry was successfully posted")
	if err := s.Save(r, w); err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Login",
		"Error": "",
	}

	if r.Method == http.MethodGet {
		b.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	// A submission without the fields at all is malformed, not a failed login.
	_, hasUsername := r.PostForm["username"]
	_, hasPassword := r.PostForm["password"]
	if !hasUsername || !hasPassword {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if err := authenticate(b.cfg, r.PostForm.Get("username"), r.PostForm.Get("password")); err != nil {
		data["Error"] = "Invalid password"
		if errors.Is(err, ErrInvalidUsername) {
			data["Error"] = "Invalid username"
		}
		b.logger.Warn("failed login", "remote_addr", r.RemoteAddr, "reason", err.Error())
		b.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	s := b.session(r)
	s.Values[loggedInKey] = true
	addFlash(s, "success", "You were logged in.")
	if err := s.Save(r, w); err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	s := b.session(r)
	delete(s.Values, loggedInKey)
	addFlash(s, "success", "You were logged out.")
	if err := s.Save(r, w); err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete removes a post and reports the outcome as JSON. A storage failure
// is reported in the body rather than as an HTTP error.
func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := deletePost(r.Context(), b.db, id); err != nil {
		b.logError(r, err)
		b.writeJSON(w, r, http.StatusOK, deleteResult{Status: 0, Message: err.Error()})
		return
	}

	s := b.session(r)
	addFlash(s, "success", "The entry was deleted.")
	if err := s.Save(r, w); err != nil {
		b.serverError(w, r, err)
		return
	}

	b.writeJSON(w, r, http.StatusOK, deleteResult{Status: 1, Message: "Post Deleted"})
}

func (b *Blog) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	posts, err := searchPosts(r.Context(), b.db, query)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, "search.html", map[string]any{
		"Title":   "Search",
		"Query":   query,
		"Entries": posts,
	})
}

func (b *Blog) Healthz(w http.ResponseWriter, r *http.Request) {
	b.writeJSON(w, r, http.StatusOK, envelope{
		"status":      "available",
		"environment": b.cfg.Environment,
	})
}

// requireIntID answers 404 unless the :id parameter is a non-negative
// integer, so malformed ids never reach the login guard.
func requireIntID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := readIDParam(r); err != nil {
			http.NotFound(w, r)
			return
		}
		next(w, r)
	}
}

// readIDParam parses the non-negative integer :id route parameter.
func readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseUint(params.ByName("id"), 10, 63)
	if err != nil {
		return 0, errors.New("invalid id parameter")
	}
	return int64(id), nil
}
