// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"holidaze/internal/app"
	"holidaze/internal/domain"
	"holidaze/internal/forms"
	"holidaze/internal/session"
)

// maxUpload bounds the multipart body of the add-establishment form.
const maxUpload = 10 << 20

type Handlers struct {
	Auth           *app.AuthService
	Establishments *app.EstablishmentService
	Sessions       *session.Manager
	Views          *Views
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Handle("/static/*", staticHandler())

	s.mux.Group(func(r chi.Router) {
		r.Use(h.Sessions.Middleware)
		r.Use(NoStore)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/login", http.StatusFound) })
		r.Get("/login", h.loginPage)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(session.RequireAuth)
			r.Get("/", h.adminHome)
			r.Get("/establishments/new", h.addEstablishmentPage)
			r.Post("/establishments/new", h.addEstablishment)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func page(r *http.Request, title string, form any) Page {
	s := session.FromContext(r.Context())
	return Page{Title: title, Authenticated: s != nil && s.Authenticated(), Form: form}
}

// ---- login ----

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "login", page(r, "Login", LoginForm{}))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed form body")
		return
	}
	creds := domain.LoginCredentials{
		Identifier: r.PostForm.Get("identifier"),
		Password:   r.PostForm.Get("password"),
	}
	sess := session.FromContext(r.Context())

	errs, err := h.Auth.Login(r.Context(), sess, creds)
	if errs.Any() || err != nil {
		form := LoginForm{Identifier: creds.Identifier, Errors: errs}
		status := http.StatusUnprocessableEntity
		if err != nil {
			form.LoginError = MsgInvalidLogin
			status = http.StatusUnauthorized
		}
		h.Views.Render(w, status, "login", page(r, "Login", form))
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		if err := sess.Clear(r.Context()); err != nil {
			log.Error().Err(err).Msg("clear session failed")
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ---- admin ----

func (h *Handlers) adminHome(w http.ResponseWriter, r *http.Request) {
	var who struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	// the payload belongs to the backend; a shape we don't know just hides the name
	_ = json.Unmarshal(session.FromContext(r.Context()).Auth(), &who)
	h.Views.Render(w, http.StatusOK, "admin", page(r, "Admin", AdminHome{Username: who.User.Username}))
}

func (h *Handlers) addEstablishmentPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "add_establishment", page(r, "Add establishment", EstablishmentForm{}))
}

func (h *Handlers) addEstablishment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "image must be at most 10 MB")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	vals := EstablishmentValues{
		Name:              r.PostForm.Get("name"),
		Price:             r.PostForm.Get("price"),
		Description:       r.PostForm.Get("description"),
		Hotel:             forms.Checked(r.PostForm.Get("hotel")),
		BedAndBreakfast:   forms.Checked(r.PostForm.Get("bed_and_breakfast")),
		Guesthouse:        forms.Checked(r.PostForm.Get("guesthouse")),
		ParkingAvailable:  forms.Checked(r.PostForm.Get("parking_available")),
		BreakfastIncluded: forms.Checked(r.PostForm.Get("breakfast_included")),
		Restaurant:        forms.Checked(r.PostForm.Get("restaurant")),
		PetFriendly:       forms.Checked(r.PostForm.Get("pet_friendly")),
		Bar:               forms.Checked(r.PostForm.Get("bar")),
	}
	draft := domain.EstablishmentDraft{
		Name:              vals.Name,
		Price:             vals.Price,
		Description:       vals.Description,
		Hotel:             vals.Hotel,
		BedAndBreakfast:   vals.BedAndBreakfast,
		Guesthouse:        vals.Guesthouse,
		ParkingAvailable:  vals.ParkingAvailable,
		BreakfastIncluded: vals.BreakfastIncluded,
		Restaurant:        vals.Restaurant,
		PetFriendly:       vals.PetFriendly,
		Bar:               vals.Bar,
	}

	file, hdr, err := r.FormFile("files")
	switch {
	case err == nil:
		defer file.Close()
		draft.Image = &domain.Image{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "unreadable image")
		return
	}

	sess := session.FromContext(r.Context())
	errs, err := h.Establishments.Create(r.Context(), sess, draft)

	form := EstablishmentForm{Values: vals, Errors: errs}
	status := http.StatusOK
	switch {
	case errs.Any():
		status = http.StatusUnprocessableEntity
	case err != nil:
		form.Warning = MsgSubmitFailed
		status = http.StatusBadGateway
	default:
		form.Submitted = true
	}
	h.Views.Render(w, status, "add_establishment", page(r, "Add establishment", form))
}
