package auth

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dense-analysis/coinvault/internal/route/util"
	"github.com/dense-analysis/coinvault/internal/session"
	"github.com/dense-analysis/coinvault/internal/storage"
	"github.com/dense-analysis/coinvault/internal/template"
)

type LoginPageData struct {
	ErrorMessage string
}

func HandleViewLoginForm(writer http.ResponseWriter, request *http.Request) {
	data := LoginPageData{}

	if request.Method == "POST" {
		data.ErrorMessage = "Invalid login!"
	}

	template.Render(template.Login, writer, data)
}

// HandleLogin checks the login form against the stored password hash.
//
// A wrong password and an unknown username render the same login failure.
func HandleLogin(repository *storage.PostgresRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		request.ParseForm()
		username := request.Form.Get("username")
		password := request.Form.Get("password")

		loginValid := false

		if len(username) > 0 && len(password) > 0 {
			user, err := repository.LoadUser(username)

			if err != nil {
				util.RespondInternalServerError(writer, err)

				return
			}

			if user != nil {
				if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
					loginValid = true

					session.SaveUserInSession(writer, request, user)
				}
			}
		}

		if loginValid {
			http.Redirect(writer, request, "/portfolio", http.StatusFound)
		} else {
			HandleViewLoginForm(writer, request)
		}
	}
}

func HandleLogout(writer http.ResponseWriter, request *http.Request) {
	session.ClearSession(writer, request)
	http.Redirect(writer, request, "/login", http.StatusFound)
}
