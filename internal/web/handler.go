// Package web serves the HTML portal: the public pages, the signup and
// login flows and the role-gated members and admin areas.
package web

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tkarolak/greenroom/internal/domain"
	"github.com/tkarolak/greenroom/internal/identity"
	"github.com/tkarolak/greenroom/internal/pkg/ctxlog"
	"github.com/tkarolak/greenroom/internal/pkg/httputil"
	"github.com/tkarolak/greenroom/internal/sessions"
)

// User-facing flow messages. Login failures share one message on
// purpose: the response must not reveal whether the email is registered.
const (
	msgInvalidCredentials = "Invalid email or password combination."
	msgEmailExists        = "That email address is already registered."
	msgThrottled          = "Too many login attempts. Wait a minute and try again."
)

// Config contains handler configuration.
type Config struct {
	LoginRPS   float64
	LoginBurst int
}

// DefaultConfig returns default handler configuration.
func DefaultConfig() Config {
	return Config{
		LoginRPS:   1,
		LoginBurst: 5,
	}
}

// Handler handles HTTP requests for the portal.
type Handler struct {
	identity  *identity.Service
	sessions  *sessions.Manager
	renderer  *Renderer
	validator *validator.Validate
	limiter   *loginLimiter
}

// NewHandler creates a new portal handler.
func NewHandler(config Config, identityService *identity.Service, sessionManager *sessions.Manager, renderer *Renderer) *Handler {
	return &Handler{
		identity:  identityService,
		sessions:  sessionManager,
		renderer:  renderer,
		validator: validator.New(),
		limiter:   newLoginLimiter(config.LoginRPS, config.LoginBurst),
	}
}

// RegisterRoutes registers portal routes. Unmatched paths and unmatched
// methods both fall through to the 404 view.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/signup", h.SignupForm)
	r.Post("/signup", h.Signup)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireLogin)
		r.Get("/members", h.Members)
	})

	// The admin page redirects anonymous visitors to login first; the
	// role actions below skip that and refuse outright.
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireLogin)
		r.Use(httputil.RequireAdmin(http.HandlerFunc(h.Forbidden)))
		r.Get("/admin", h.Admin)
	})

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireAdmin(http.HandlerFunc(h.Forbidden)))
		r.Get("/promote/{id}", h.Promote)
		r.Get("/demote/{id}", h.Demote)
	})

	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
}

// page is the data every view receives.
type page struct {
	Title   string
	Session *domain.Session
}

// formPage is the data for the signup and login views. Password values
// are never echoed back.
type formPage struct {
	page
	Error string
	Name  string
	Email string
}

// membersPage is the data for the members view.
type membersPage struct {
	page
	Resources []Resource
}

// adminPage is the data for the admin view.
type adminPage struct {
	page
	Users []domain.User
}

// Resource is an item shown in the members area.
type Resource struct {
	Name        string
	Description string
}

// memberResources is the fixed list every member sees. The selection is
// deterministic so the page renders the same for everyone.
var memberResources = []Resource{
	{Name: "Rehearsal schedule", Description: "Weekly run-through times for the current production."},
	{Name: "Callboard", Description: "Announcements, cast notes and cover assignments."},
	{Name: "Prop inventory", Description: "Checked-out props and who currently holds them."},
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", h.page(r, "Home"))
}

// SignupForm handles GET /signup.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", formPage{page: h.page(r, "Sign up")})
}

// SignupRequest represents a signup form submission.
type SignupRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Signup handles POST /signup. Invalid input re-renders the form with
// an inline message and status 200; success opens a session and sends
// the new member to the members area.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseSignup(w, r)
	if !ok {
		return
	}

	user, err := h.identity.Register(r.Context(), identity.RegisterInput(req))
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			h.render(w, r, http.StatusOK, "signup", formPage{
				page:  h.page(r, "Sign up"),
				Error: msgEmailExists,
				Name:  req.Name,
				Email: req.Email,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/members", http.StatusFound)
}

func (h *Handler) parseSignup(w http.ResponseWriter, r *http.Request) (SignupRequest, bool) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusOK, "signup", formPage{
			page:  h.page(r, "Sign up"),
			Error: "The submission could not be read.",
		})
		return SignupRequest{}, false
	}

	req := SignupRequest{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if err := h.validator.Struct(req); err != nil {
		h.render(w, r, http.StatusOK, "signup", formPage{
			page:  h.page(r, "Sign up"),
			Error: formErrorMessage(err),
			Name:  req.Name,
			Email: req.Email,
		})
		return SignupRequest{}, false
	}

	return req, true
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", formPage{page: h.page(r, "Log in")})
}

// LoginRequest represents a login form submission.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login handles POST /login. Unknown email and wrong password produce
// the same inline message with status 200; a throttled client gets 429
// before any credentials are checked.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.allow(clientAddr(r)) {
		h.render(w, r, http.StatusTooManyRequests, "login", formPage{
			page:  h.page(r, "Log in"),
			Error: msgThrottled,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusOK, "login", formPage{
			page:  h.page(r, "Log in"),
			Error: "The submission could not be read.",
		})
		return
	}

	req := LoginRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if err := h.validator.Struct(req); err != nil {
		h.render(w, r, http.StatusOK, "login", formPage{
			page:  h.page(r, "Log in"),
			Error: formErrorMessage(err),
			Email: req.Email,
		})
		return
	}

	user, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.render(w, r, http.StatusOK, "login", formPage{
				page:  h.page(r, "Log in"),
				Error: msgInvalidCredentials,
				Email: req.Email,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/members", http.StatusFound)
}

// Logout handles GET /logout. It destroys the session, clears the
// cookie and goes home. Running it without a session is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.sessions.CookieName()); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			ctxlog.From(r.Context()).Warn("logout error", "error", err)
		}
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	http.Redirect(w, r, "/", http.StatusFound)
}

// Members handles GET /members.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "members", membersPage{
		page:      h.page(r, "Members"),
		Resources: memberResources,
	})
}

// Admin handles GET /admin.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	users, err := h.identity.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "admin", adminPage{
		page:  h.page(r, "Admin"),
		Users: users,
	})
}

// Promote handles GET /promote/{id}.
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, domain.RoleAdmin)
}

// Demote handles GET /demote/{id}.
func (h *Handler) Demote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, domain.RoleUser)
}

// setRole applies a role change and returns to the admin page. The id
// came from a previously rendered user list, so a malformed or stale
// one is not worth an error page; the refreshed list tells the admin
// what actually happened.
func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, role domain.Role) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err == nil {
		if err := h.identity.SetRole(r.Context(), id, role); err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// Forbidden renders the 403 view. RequireAdmin uses it for every
// refused request.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "forbidden", h.page(r, "Forbidden"))
}

// NotFound renders the 404 view for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound", h.page(r, "Not found"))
}

// startSession opens a session for the user and hands the signed token
// to the browser. The snapshot taken here is what every later request
// is authorized against, until the session ends and the user logs in
// again.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	_, token, err := h.sessions.Create(r.Context(), domain.Identity{
		Name: user.Name,
		Role: user.Role,
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, h.sessions.NewCookie(token))
	return nil
}

func (h *Handler) page(r *http.Request, title string) page {
	return page{
		Title:   title,
		Session: httputil.CurrentSession(r.Context()),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, view string, data interface{}) {
	if err := h.renderer.Render(w, status, view, data); err != nil {
		ctxlog.From(r.Context()).Error("failed to render view", "view", view, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.From(r.Context()).Error("internal error", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// formErrorMessage turns the first validation failure into a sentence
// for the inline form error.
func formErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input."
	}

	e := verrs[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return "The " + field + " field must not be empty."
	case "email":
		return "The email address does not look valid."
	default:
		return "The " + field + " field is invalid."
	}
}

// clientAddr extracts the client address for throttling. RealIP
// middleware upstream has already folded proxy headers into RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
