// Package session executes login and self-registration against the API,
// holds the bearer tokens for one simulated user, and transparently
// re-authenticates when an authenticated call is rejected.
package session

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/hirewire/loadgen/internal/domain"
	"github.com/hirewire/loadgen/internal/fabricate"
	"github.com/hirewire/loadgen/internal/httpx"
	"github.com/hirewire/loadgen/internal/refdata"
)

type Session struct {
	exec       *httpx.Executor
	ref        *refdata.Cache
	fab        *fabricate.Source
	personaKey string

	defaultCityID     int
	defaultIndustryID int

	resumeUploadEnabled bool

	email    string
	password string
	tokens   domain.Tokens
	authed   bool
}

type Options struct {
	DefaultCityID       int
	DefaultIndustryID   int
	ResumeUploadEnabled bool
}

func New(exec *httpx.Executor, ref *refdata.Cache, fab *fabricate.Source, personaKey string, opts Options) *Session {
	return &Session{
		exec:                exec,
		ref:                 ref,
		fab:                 fab,
		personaKey:          personaKey,
		defaultCityID:       opts.DefaultCityID,
		defaultIndustryID:   opts.DefaultIndustryID,
		resumeUploadEnabled: opts.ResumeUploadEnabled,
	}
}

func (s *Session) name(action string) string {
	return httpx.FormatActionName(s.personaKey, action)
}

func (s *Session) Email() string { return s.email }

func (s *Session) AccessToken() (string, error) {
	if !s.authed {
		return "", domain.ErrNotAuthenticated
	}
	return s.tokens.Access, nil
}

// parseTokens tolerates the three token field-name conventions the API has
// used over time.
func parseTokens(payload map[string]any) (domain.Tokens, error) {
	if payload == nil {
		return domain.Tokens{}, fmt.Errorf("unexpected token response shape")
	}
	access := firstString(payload, "access", "token", "access_token")
	if access == "" {
		return domain.Tokens{}, domain.ErrMissingAccessToken
	}
	return domain.Tokens{
		Access:  access,
		Refresh: firstString(payload, "refresh", "refresh_token"),
	}, nil
}

func firstString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Login authenticates with the given credentials and stores them for later
// re-authentication.
func (s *Session) Login(ctx context.Context, email, password string) error {
	tokens, err := s.loginRequest(ctx, email, password)
	if err != nil {
		return err
	}
	s.email = email
	s.password = password
	s.tokens = tokens
	s.authed = true
	return nil
}

func (s *Session) loginRequest(ctx context.Context, email, password string) (domain.Tokens, error) {
	res, err := s.exec.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		Path:   "/api/users/login/",
		Name:   s.name("users.login"),
		JSON:   map[string]any{"email": email, "password": password},
	})
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("login: %w", err)
	}
	if res.Status != http.StatusOK {
		return domain.Tokens{}, fmt.Errorf("login failed (%d): %s", res.Status, res.BodyString())
	}
	return parseTokens(res.JSONMap())
}

func (s *Session) resolveCityID(ctx context.Context) (int, error) {
	if s.defaultCityID != 0 {
		return s.defaultCityID, nil
	}
	cities := s.ref.Cities(ctx)
	if id := refdata.PickID(cities); id != 0 {
		return id, nil
	}
	return 0, fmt.Errorf("no cities available for registration; seed cities or set DEFAULT_CITY_ID")
}

func (s *Session) resolveIndustryID(ctx context.Context) (int, error) {
	if s.defaultIndustryID != 0 {
		return s.defaultIndustryID, nil
	}
	industries := s.ref.Industries(ctx)
	if id := refdata.PickID(industries); id != 0 {
		return id, nil
	}
	return 0, fmt.Errorf("no industries available for registration; seed industries or set DEFAULT_INDUSTRY_ID")
}

func uuidHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func freshCredentials(role string) (email, password string) {
	email = fmt.Sprintf("loadtest+%s-%s@example.com", role, uuidHex())
	password = fmt.Sprintf("LoadTest-%s!", uuidHex()[:12])
	return email, password
}

// RegisterCandidate runs the onboarding discovery sequence and registers a
// fresh candidate account. Registration fails hard when no city can be
// resolved: silently skipping would leave the user unusable for the run.
func (s *Session) RegisterCandidate(ctx context.Context) error {
	s.ref.Countries(ctx) // onboarding forms fetch countries first

	cityID, err := s.resolveCityID(ctx)
	if err != nil {
		return err
	}

	email, password := freshCredentials("candidate")
	payload := map[string]any{
		"first_name":   s.fab.FirstName(),
		"last_name":    s.fab.LastName(),
		"email":        email,
		"password":     password,
		"phone_number": s.fab.Phone(),
		"city":         cityID,
	}

	res, err := s.exec.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		Path:   "/api/candidates/register/",
		Name:   s.name("candidates.register"),
		JSON:   payload,
	})
	if err != nil {
		return fmt.Errorf("candidate register: %w", err)
	}
	if res.Status != http.StatusOK && res.Status != http.StatusCreated {
		return fmt.Errorf("candidate register failed (%d): %s", res.Status, res.BodyString())
	}

	tokens, err := parseTokens(res.JSONMap())
	if err != nil {
		return err
	}
	s.email = email
	s.password = password
	s.tokens = tokens
	s.authed = true
	return nil
}

// RegisterEmployer is the employer variant; it additionally needs a
// resolved industry id.
func (s *Session) RegisterEmployer(ctx context.Context) error {
	s.ref.Countries(ctx)

	cityID, err := s.resolveCityID(ctx)
	if err != nil {
		return err
	}
	industryID, err := s.resolveIndustryID(ctx)
	if err != nil {
		return err
	}

	email, password := freshCredentials("employer")
	payload := map[string]any{
		"first_name":   s.fab.FirstName(),
		"last_name":    s.fab.LastName(),
		"email":        email,
		"password":     password,
		"phone_number": s.fab.Phone(),
		"company_name": fmt.Sprintf("%s %s", s.fab.Company(), uuidHex()[:6]),
		"description":  s.fab.Sentence(12),
		"website_url":  fmt.Sprintf("https://%s.example.com", uuidHex()[:10]),
		"city":         cityID,
		"industry":     industryID,
	}

	res, err := s.exec.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		Path:   "/api/employers/register/",
		Name:   s.name("employers.register"),
		JSON:   payload,
	})
	if err != nil {
		return fmt.Errorf("employer register: %w", err)
	}
	if res.Status != http.StatusOK && res.Status != http.StatusCreated {
		return fmt.Errorf("employer register failed (%d): %s", res.Status, res.BodyString())
	}

	tokens, err := parseTokens(res.JSONMap())
	if err != nil {
		return err
	}
	s.email = email
	s.password = password
	s.tokens = tokens
	s.authed = true
	return nil
}

// do attaches the bearer header and recovers from a single 401/403 by
// re-logging-in with the stored credentials and retrying exactly once.
// There is no token-refresh endpoint, so re-login is the only recovery
// path; a second rejection is returned to the caller as-is.
func (s *Session) do(ctx context.Context, req httpx.Request) (*httpx.Result, error) {
	if !s.authed {
		return nil, domain.ErrNotAuthenticated
	}

	res, err := s.exec.Do(ctx, s.withBearer(req))
	if err != nil {
		return res, err
	}
	if res.Status != http.StatusUnauthorized && res.Status != http.StatusForbidden {
		return res, nil
	}

	tokens, loginErr := s.loginRequest(ctx, s.email, s.password)
	if loginErr != nil {
		return res, nil
	}
	s.tokens = tokens // replaced wholesale

	return s.exec.Do(ctx, s.withBearer(req))
}

func (s *Session) withBearer(req httpx.Request) httpx.Request {
	header := http.Header{}
	for k, vs := range req.Header {
		header[k] = vs
	}
	header.Set("Authorization", "Bearer "+s.tokens.Access)
	req.Header = header
	return req
}

func (s *Session) Get(ctx context.Context, path, action string, query url.Values) (*httpx.Result, error) {
	return s.do(ctx, httpx.Request{Method: http.MethodGet, Path: path, Name: s.name(action), Query: query})
}

func (s *Session) Post(ctx context.Context, path, action string, payload any) (*httpx.Result, error) {
	return s.do(ctx, httpx.Request{Method: http.MethodPost, Path: path, Name: s.name(action), JSON: payload})
}

func (s *Session) Patch(ctx context.Context, path, action string, payload any) (*httpx.Result, error) {
	return s.do(ctx, httpx.Request{Method: http.MethodPatch, Path: path, Name: s.name(action), JSON: payload})
}

// DummyPDF builds a minimal in-memory PDF so multipart upload paths can be
// exercised without a file fixture.
func DummyPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj<<>>endobj\n")
	buf.WriteString("trailer<<>>\n%%EOF\n")
	return buf.Bytes()
}

// MaybeUploadResume uploads the dummy PDF when the deployment accepts
// resume uploads. Rejections are reported as "not uploaded", not errors.
func (s *Session) MaybeUploadResume(ctx context.Context) (bool, error) {
	if !s.resumeUploadEnabled {
		return false, nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("resume", "resume.pdf")
	if err != nil {
		return false, fmt.Errorf("build resume upload: %w", err)
	}
	if _, err := part.Write(DummyPDF()); err != nil {
		return false, fmt.Errorf("build resume upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return false, fmt.Errorf("build resume upload: %w", err)
	}

	res, err := s.do(ctx, httpx.Request{
		Method:      http.MethodPatch,
		Path:        "/api/candidates/profile/",
		Name:        s.name("candidates.profile.resume_upload"),
		Body:        body.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
	if err != nil {
		return false, err
	}
	return res.Status == http.StatusOK || res.Status == http.StatusAccepted, nil
}
