package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"authdemo/models"
	"authdemo/utils"

	"github.com/cyclopcam/www"
	"go.uber.org/zap"
)

const (
	invalidCredentialsMessage = "Invalid email or password. Try demo@example.com / password123"
	tooManyAttemptsMessage    = "Too many login attempts. Try again later."

	backgroundTimeout = 10 * time.Second
)

type Authenticator interface {
	Authenticate(email, password string) (models.Identity, error)
	DemoEmail() string
}

type AttemptLimiter interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

type AuditRecorder interface {
	RecordLogin(ctx context.Context, attempt models.LoginAttempt) error
}

type SignInNotifier interface {
	NotifySignIn(ctx context.Context, identity models.Identity, ip, userAgent string, at time.Time) error
}

// Auth serves the login page, the login form post, the logout endpoint and the
// session guard. Limiter, Audit and Notifier are optional.
type Auth struct {
	Log       *zap.Logger
	Pages     *Pages
	Directory Authenticator
	Codec     utils.SessionCodec
	Secure    bool

	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool

	Limiter  AttemptLimiter
	Audit    AuditRecorder
	Notifier SignInNotifier

	notices sync.WaitGroup
}

// Wait blocks until every sign-in notice already started has finished.
func (a *Auth) Wait() {
	a.notices.Wait()
}

func (a *Auth) clientIP(r *http.Request) string {
	return utils.ClientIP(r, a.TrustProxy)
}

func (a *Auth) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	a.Pages.Render(w, http.StatusOK, "login.html", models.LoginPageData{
		DemoEmail: a.Directory.DemoEmail(),
	})
}

func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	cred := models.Credential{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		RememberMe: parseRememberMe(r.PostFormValue("rememberMe")),
	}

	if fieldErrs := utils.ValidateCredential(cred.Email, cred.Password); len(fieldErrs) > 0 {
		a.Log.Debug("login form rejected", zap.Any("fields", fieldErrs))
		a.loginFailed(w, r, http.StatusBadRequest, cred, fieldErrs, "")
		return
	}

	ip := a.clientIP(r)
	userAgent := utils.GetUserAgent(r)
	log := a.Log.With(zap.String("email", cred.Email), zap.String("ip", ip))

	if a.Limiter != nil {
		err := a.Limiter.Check(r.Context(), cred.Email, ip)
		if errors.Is(err, utils.ErrTooManyAttempts) {
			log.Warn("login rate limited")
			a.audit(r.Context(), cred.Email, ip, userAgent, models.OutcomeRateLimited)
			a.loginFailed(w, r, http.StatusTooManyRequests, cred, nil, tooManyAttemptsMessage)
			return
		}
		if err != nil {
			log.Warn("login limiter unavailable", zap.Error(err))
		}
	}

	identity, err := a.Directory.Authenticate(cred.Email, cred.Password)
	if err != nil {
		log.Info("login failed", zap.Error(err))
		if a.Limiter != nil {
			if err := a.Limiter.RecordFailure(r.Context(), cred.Email, ip); err != nil {
				log.Warn("recording login failure", zap.Error(err))
			}
		}
		a.audit(r.Context(), cred.Email, ip, userAgent, models.OutcomeInvalid)
		a.loginFailed(w, r, http.StatusBadRequest, cred, nil, invalidCredentialsMessage)
		return
	}

	maxAge := utils.SessionMaxAgeFor(cred.RememberMe)
	value, err := a.Codec.Encode(identity, time.Duration(maxAge)*time.Second)
	if err != nil {
		log.Error("encoding session", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	utils.SetSessionCookie(w, value, maxAge, a.Secure)

	if a.Limiter != nil {
		if err := a.Limiter.Reset(r.Context(), cred.Email, ip); err != nil {
			log.Warn("resetting login limiter", zap.Error(err))
		}
	}
	a.audit(r.Context(), cred.Email, ip, userAgent, models.OutcomeSuccess)
	a.notify(identity, ip, userAgent)

	log.Info("login successful", zap.Bool("remember_me", cred.RememberMe))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// LogOutHandler always succeeds, whether or not a session cookie was sent.
func (a *Auth) LogOutHandler(w http.ResponseWriter, r *http.Request) {
	hadSession := utils.CookieExists(r, utils.SessionCookieName)
	utils.ClearSessionCookie(w, a.Secure)
	a.Log.Info("logout", zap.Bool("had_session", hadSession), zap.String("ip", a.clientIP(r)))
	www.SendJSON(w, map[string]bool{"success": true})
}

func (a *Auth) loginFailed(w http.ResponseWriter, r *http.Request, status int, cred models.Credential, fieldErrs utils.FieldErrors, message string) {
	if wantsJSON(r) {
		body := map[string]any{}
		if len(fieldErrs) > 0 {
			body["errors"] = fieldErrs
		}
		if message != "" {
			body["error"] = message
		}
		sendJSONStatus(w, status, body)
		return
	}

	a.Pages.Render(w, status, "login.html", models.LoginPageData{
		DemoEmail:   a.Directory.DemoEmail(),
		Email:       cred.Email,
		RememberMe:  cred.RememberMe,
		FieldErrors: fieldErrs,
		Error:       message,
	})
}

func (a *Auth) audit(ctx context.Context, email, ip, userAgent, outcome string) {
	if a.Audit == nil {
		return
	}
	err := a.Audit.RecordLogin(ctx, models.LoginAttempt{
		Email:     email,
		IPAddress: ip,
		UserAgent: userAgent,
		Outcome:   outcome,
	})
	if err != nil {
		a.Log.Warn("recording login audit", zap.Error(err))
	}
}

// notify runs after the response is decided; the request context may already be gone.
func (a *Auth) notify(identity models.Identity, ip, userAgent string) {
	if a.Notifier == nil {
		return
	}
	at := time.Now()
	a.notices.Add(1)
	go func() {
		defer a.notices.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := a.Notifier.NotifySignIn(ctx, identity, ip, userAgent, at); err != nil {
			a.Log.Warn("sending sign-in notice", zap.String("email", identity.Email), zap.Error(err))
		}
	}()
}

func parseRememberMe(value string) bool {
	if value == "on" {
		return true
	}
	remember, err := strconv.ParseBool(value)
	return err == nil && remember
}
