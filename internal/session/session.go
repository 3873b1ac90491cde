// Package session handles saving/loading dashboard users to/from cookie
// sessions
package session

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/dense-analysis/coinvault/internal/env"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/storage"
)

var sessionStore *sessions.CookieStore

// InitSessionStorage starts up session storage or crashes the program with an error
func InitSessionStorage() {
	sessionStore = sessions.NewCookieStore([]byte(env.Require("SECRET_KEY")))
}

// LoadUserFromSession finds the wallet user the session cookie points at.
//
// A missing or broken cookie yields a nil user, not an error.
func LoadUserFromSession(repository *storage.PostgresRepository, request *http.Request) (*model.User, error) {
	session, sessionError := sessionStore.Get(request, "sessionid")

	if sessionError != nil {
		return nil, nil
	}

	if username, ok := session.Values["username"].(string); ok {
		return repository.LoadUser(username)
	}

	return nil, nil
}

// SaveUserInSession stores the user in the session cookie.
func SaveUserInSession(writer http.ResponseWriter, request *http.Request, user *model.User) error {
	session, _ := sessionStore.Get(request, "sessionid")
	session.Values["username"] = user.Username

	return session.Save(request, writer)
}

// ClearSession logs the session out.
func ClearSession(writer http.ResponseWriter, request *http.Request) error {
	session, _ := sessionStore.Get(request, "sessionid")

	for key := range session.Values {
		delete(session.Values, key)
	}

	return session.Save(request, writer)
}
