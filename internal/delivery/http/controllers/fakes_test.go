package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

const (
	testUserID       = "6f1c2a10-8d7e-4c55-9a3b-1d2e3f405060"
	testInvitationID = "0b9f8e7d-6c5b-4a39-8281-7f6e5d4c3b2a"
	testGuestID      = "a1b2c3d4-e5f6-4789-8abc-def012345678"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// envelope mirrors helpers.APIResponse with Data left raw for typed decoding.
type envelope struct {
	Success bool                    `json:"success"`
	Data    json.RawMessage         `json:"data"`
	Error   *string                 `json:"error"`
	Code    string                  `json:"code"`
	Errors  []string                `json:"errors"`
	Meta    *helpers.PaginationMeta `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// withParams attaches chi URL parameters the way the router would.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withUser(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.SetClaims(req.Context(), &domain.Claims{Subject: id, Role: domain.RoleUser}))
}

func withAdmin(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.SetClaims(req.Context(), &domain.Claims{Subject: id, Role: domain.RoleAdmin}))
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	inv    *domain.Invitation
	page   domain.Page[*domain.Invitation]
	stats  *domain.InvitationStats
	err    error
	viewed []string

	lastUserID  string
	lastID      string
	lastCreate  domain.CreateInvitationInput
	lastFilter  domain.InvitationFilter
	lastParams  domain.PaginationParams
	lastPatch   domain.InvitationPatch
	lastPublish domain.PublishOptions
	lastTitle   *string
	lastStatus  domain.InvitationStatus
	lastSlug    string
}

func (f *fakeInvitationService) Create(ctx context.Context, userID string, in domain.CreateInvitationInput) (*domain.Invitation, error) {
	f.lastUserID, f.lastCreate = userID, in
	return f.inv, f.err
}

func (f *fakeInvitationService) Get(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	f.lastID, f.lastUserID = id, userID
	return f.inv, f.err
}

func (f *fakeInvitationService) List(ctx context.Context, filter domain.InvitationFilter, params domain.PaginationParams) (domain.Page[*domain.Invitation], error) {
	f.lastFilter, f.lastParams = filter, params
	return f.page, f.err
}

func (f *fakeInvitationService) Update(ctx context.Context, id, userID string, patch domain.InvitationPatch) (*domain.Invitation, error) {
	f.lastID, f.lastUserID, f.lastPatch = id, userID, patch
	return f.inv, f.err
}

func (f *fakeInvitationService) Publish(ctx context.Context, id, userID string, opts domain.PublishOptions) (*domain.Invitation, error) {
	f.lastID, f.lastUserID, f.lastPublish = id, userID, opts
	return f.inv, f.err
}

func (f *fakeInvitationService) Unpublish(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	f.lastID, f.lastUserID = id, userID
	return f.inv, f.err
}

func (f *fakeInvitationService) Delete(ctx context.Context, id, userID string) error {
	f.lastID, f.lastUserID = id, userID
	return f.err
}

func (f *fakeInvitationService) Duplicate(ctx context.Context, id, userID string, title *string) (*domain.Invitation, error) {
	f.lastID, f.lastUserID, f.lastTitle = id, userID, title
	return f.inv, f.err
}

func (f *fakeInvitationService) Stats(ctx context.Context, userID string) (*domain.InvitationStats, error) {
	f.lastUserID = userID
	return f.stats, f.err
}

func (f *fakeInvitationService) GetPublished(ctx context.Context, slug, visitorHash string) (*domain.Invitation, error) {
	f.lastSlug = slug
	f.viewed = append(f.viewed, visitorHash)
	return f.inv, f.err
}

func (f *fakeInvitationService) TrackView(ctx context.Context, id, visitorHash string) {
	f.viewed = append(f.viewed, visitorHash)
}

func (f *fakeInvitationService) AdminGet(ctx context.Context, id string) (*domain.Invitation, error) {
	f.lastID = id
	return f.inv, f.err
}

func (f *fakeInvitationService) AdminGetBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
	f.lastSlug = slug
	return f.inv, f.err
}

func (f *fakeInvitationService) AdminSetStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	f.lastID, f.lastStatus = id, status
	return f.inv, f.err
}

func (f *fakeInvitationService) AdminDelete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

// fakeGuestService implements domain.GuestService for handler tests.
type fakeGuestService struct {
	guest  *domain.InvitationGuest
	page   domain.Page[*domain.InvitationGuest]
	result *domain.SendInvitationsResult
	err    error

	lastInvitationID string
	lastGuestID      string
	lastUserID       string
	lastResponse     domain.GuestResponse
	lastAdded        *domain.InvitationGuest
	lastPatch        domain.GuestPatch
	lastSlug         string
	lastRSVP         domain.RSVPInput
}

func (f *fakeGuestService) List(ctx context.Context, invitationID, userID string, response domain.GuestResponse, params domain.PaginationParams) (domain.Page[*domain.InvitationGuest], error) {
	f.lastInvitationID, f.lastUserID, f.lastResponse = invitationID, userID, response
	return f.page, f.err
}

func (f *fakeGuestService) Add(ctx context.Context, invitationID, userID string, g *domain.InvitationGuest) error {
	f.lastInvitationID, f.lastUserID, f.lastAdded = invitationID, userID, g
	if f.err == nil {
		g.ID = testGuestID
	}
	return f.err
}

func (f *fakeGuestService) Update(ctx context.Context, invitationID, guestID, userID string, patch domain.GuestPatch) (*domain.InvitationGuest, error) {
	f.lastInvitationID, f.lastGuestID, f.lastUserID, f.lastPatch = invitationID, guestID, userID, patch
	return f.guest, f.err
}

func (f *fakeGuestService) Remove(ctx context.Context, invitationID, guestID, userID string) error {
	f.lastInvitationID, f.lastGuestID, f.lastUserID = invitationID, guestID, userID
	return f.err
}

func (f *fakeGuestService) SendInvitations(ctx context.Context, invitationID, userID string) (*domain.SendInvitationsResult, error) {
	f.lastInvitationID, f.lastUserID = invitationID, userID
	return f.result, f.err
}

func (f *fakeGuestService) RSVP(ctx context.Context, slug string, in domain.RSVPInput) (*domain.InvitationGuest, error) {
	f.lastSlug, f.lastRSVP = slug, in
	return f.guest, f.err
}

// fakeTemplateService implements domain.TemplateService for handler tests.
type fakeTemplateService struct {
	tmpl    *domain.Template
	page    domain.Page[*domain.Template]
	items   []*domain.Template
	buckets []domain.CountBucket
	stats   *domain.TemplateStats
	err     error

	lastID     string
	lastFilter domain.TemplateFilter
	lastLimit  int
	lastPatch  domain.TemplatePatch
	created    *domain.Template
}

func (f *fakeTemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	f.lastID = id
	return f.tmpl, f.err
}

func (f *fakeTemplateService) List(ctx context.Context, filter domain.TemplateFilter, params domain.PaginationParams) (domain.Page[*domain.Template], error) {
	f.lastFilter = filter
	return f.page, f.err
}

func (f *fakeTemplateService) Popular(ctx context.Context, limit int) ([]*domain.Template, error) {
	f.lastLimit = limit
	return f.items, f.err
}

func (f *fakeTemplateService) Related(ctx context.Context, id string, limit int) ([]*domain.Template, error) {
	f.lastID, f.lastLimit = id, limit
	return f.items, f.err
}

func (f *fakeTemplateService) CategoriesWithCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return f.buckets, f.err
}

func (f *fakeTemplateService) StylesWithCounts(ctx context.Context) ([]domain.CountBucket, error) {
	return f.buckets, f.err
}

func (f *fakeTemplateService) Create(ctx context.Context, t *domain.Template) error {
	f.created = t
	if f.err == nil {
		t.ID = "tpl-1"
	}
	return f.err
}

func (f *fakeTemplateService) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.Template, error) {
	f.lastID, f.lastPatch = id, patch
	return f.tmpl, f.err
}

func (f *fakeTemplateService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeTemplateService) Stats(ctx context.Context) (*domain.TemplateStats, error) {
	return f.stats, f.err
}

// fakeResellerService implements domain.ResellerService for handler tests.
type fakeResellerService struct {
	reseller *domain.Reseller
	page     domain.Page[*domain.Reseller]
	stats    *domain.ResellerStats
	err      error

	lastID     string
	lastCode   string
	lastCreate domain.CreateResellerInput
	lastFilter domain.ResellerFilter
	lastPatch  domain.ResellerPatch
}

func (f *fakeResellerService) Create(ctx context.Context, in domain.CreateResellerInput) (*domain.Reseller, error) {
	f.lastCreate = in
	return f.reseller, f.err
}

func (f *fakeResellerService) Get(ctx context.Context, id string) (*domain.Reseller, error) {
	f.lastID = id
	return f.reseller, f.err
}

func (f *fakeResellerService) GetByReferralCode(ctx context.Context, code string) (*domain.Reseller, error) {
	f.lastCode = code
	return f.reseller, f.err
}

func (f *fakeResellerService) List(ctx context.Context, filter domain.ResellerFilter, params domain.PaginationParams) (domain.Page[*domain.Reseller], error) {
	f.lastFilter = filter
	return f.page, f.err
}

func (f *fakeResellerService) Update(ctx context.Context, id string, patch domain.ResellerPatch) (*domain.Reseller, error) {
	f.lastID, f.lastPatch = id, patch
	return f.reseller, f.err
}

func (f *fakeResellerService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeResellerService) Stats(ctx context.Context) (*domain.ResellerStats, error) {
	return f.stats, f.err
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user  *domain.User
	token string
	page  domain.Page[*domain.User]
	stats *domain.UserStats
	err   error

	lastEmail    string
	lastPassword string
	lastName     string
	lastReferral string
	lastID       string
	lastFilter   domain.UserFilter
}

func (f *fakeUserService) SignUp(ctx context.Context, email, password, name, referralCode string) (*domain.User, error) {
	f.lastEmail, f.lastPassword, f.lastName, f.lastReferral = email, password, name, referralCode
	return f.user, f.err
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.lastID = id
	return f.user, f.err
}

func (f *fakeUserService) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.Page[*domain.User], error) {
	f.lastFilter = filter
	return f.page, f.err
}

func (f *fakeUserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	return f.stats, f.err
}

// fakeAdminAuthService implements domain.AdminAuthService for handler tests.
type fakeAdminAuthService struct {
	admin  *domain.AdminUser
	token  string
	expiry time.Duration
	err    error

	lastID    string
	lastEmail string
	lastName  string
}

func (f *fakeAdminAuthService) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.admin, nil
}

func (f *fakeAdminAuthService) Me(ctx context.Context, id string) (*domain.AdminUser, error) {
	f.lastID = id
	return f.admin, f.err
}

func (f *fakeAdminAuthService) Refresh(ctx context.Context, id string) (string, error) {
	f.lastID = id
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeAdminAuthService) CreateAdmin(ctx context.Context, email, password, name string) (*domain.AdminUser, error) {
	f.lastEmail, f.lastName = email, name
	return f.admin, f.err
}

func (f *fakeAdminAuthService) TokenExpiry() time.Duration {
	return f.expiry
}
