package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"holidaze/internal/forms"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

// Each page is parsed together with the shared layout and footer so every
// page can define its own "content" block.
var pages = []string{"login", "admin", "add_establishment"}

type Views struct{ t map[string]*template.Template }

func NewViews() (*Views, error) {
	v := &Views{t: map[string]*template.Template{}}
	for _, p := range pages {
		t, err := template.New(p).ParseFS(templateFS,
			"web/templates/layout.html",
			"web/templates/footer.html",
			"web/templates/"+p+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		v.t[p] = t
	}
	return v, nil
}

// Render buffers the page so a template error never leaves half a response.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := v.t[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("page", page).Msg("write page failed")
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// ---- view models ----

// Fixed user-facing messages; backend failures never reach the page.
const (
	MsgInvalidLogin = "Invalid login values. Please try again!"
	MsgSubmitFailed = "Something went wrong. Please make sure all fields are properly filled out. If the problem persists, contact support."
)

type Page struct {
	Title         string
	Authenticated bool
	Form          any
}

// Busy state (disabled inputs, "Logging in..." label) is handled in the
// browser by static/app.js while the POST is in flight.
type LoginForm struct {
	Identifier string
	Errors     forms.Errors
	LoginError string
}

type EstablishmentForm struct {
	Values    EstablishmentValues
	Errors    forms.Errors
	Submitted bool
	Warning   string
}

// EstablishmentValues echoes the submitted inputs back into the form.
type EstablishmentValues struct {
	Name, Price, Description string

	Hotel, BedAndBreakfast, Guesthouse                                bool
	ParkingAvailable, BreakfastIncluded, Restaurant, PetFriendly, Bar bool
}

type AdminHome struct {
	Username string
}
