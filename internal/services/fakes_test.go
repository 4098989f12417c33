package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"invitationadmin/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeInvitationRepo is an in-memory InvitationRepository for tests.
type fakeInvitationRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Invitation
	nextID int
	// stolenSlugs makes the next Create calls fail with ErrDuplicateSlug as if a
	// concurrent request inserted the same slug first.
	stolenSlugs   int
	slugCheckErr  error
	updateErr     error
	viewIncrErr   error
	viewCalls     int
	uniqueCalls   int
	rsvpCalls     int
	confirmedRSVP int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*domain.Invitation), nextID: 1}
}

func copyInvitation(inv *domain.Invitation) *domain.Invitation {
	cp := *inv
	cp.FormData = inv.FormData.Clone()
	return &cp
}

func (f *fakeInvitationRepo) slugTaken(slug string) bool {
	for _, inv := range f.byID {
		if inv.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stolenSlugs > 0 {
		f.stolenSlugs--
		thief := copyInvitation(inv)
		thief.ID = fmt.Sprintf("other-%d", f.nextID)
		f.nextID++
		f.byID[thief.ID] = thief
		return domain.ErrDuplicateSlug
	}
	if f.slugTaken(inv.Slug) {
		return domain.ErrDuplicateSlug
	}
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	f.byID[inv.ID] = copyInvitation(inv)
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.byID[id]; ok {
		return copyInvitation(inv), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetByIDForOwner(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	inv, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byID {
		if inv.Slug == slug {
			return copyInvitation(inv), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugCheckErr != nil {
		return false, f.slugCheckErr
	}
	return f.slugTaken(slug), nil
}

func (f *fakeInvitationRepo) List(ctx context.Context, filter domain.InvitationFilter, params domain.PaginationParams) (domain.Page[*domain.Invitation], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*domain.Invitation
	for _, inv := range f.byID {
		if filter.UserID != "" && inv.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Category != "" && inv.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(inv.Title), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, copyInvitation(inv))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return domain.Page[*domain.Invitation]{Items: items, Total: len(items)}, nil
}

func (f *fakeInvitationRepo) Update(ctx context.Context, inv *domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[inv.ID] = copyInvitation(inv)
	return nil
}

func (f *fakeInvitationRepo) DeleteForOwner(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok || inv.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeInvitationRepo) IncrementViewCount(ctx context.Context, id string, unique bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewIncrErr != nil {
		return f.viewIncrErr
	}
	f.viewCalls++
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ViewCount++
	if unique {
		f.uniqueCalls++
		inv.UniqueViewCount++
	}
	return nil
}

func (f *fakeInvitationRepo) IncrementRSVPCount(ctx context.Context, id string, confirmed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.rsvpCalls++
	inv.RSVPCount++
	if confirmed {
		f.confirmedRSVP++
		inv.ConfirmedCount++
	}
	return nil
}

func (f *fakeInvitationRepo) Stats(ctx context.Context, userID string) (*domain.InvitationStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.InvitationStats{}
	for _, inv := range f.byID {
		if userID != "" && inv.UserID != userID {
			continue
		}
		stats.Total++
		switch inv.Status {
		case domain.StatusDraft:
			stats.Draft++
		case domain.StatusPublished:
			stats.Published++
		}
		stats.TotalViews += inv.ViewCount
	}
	return stats, nil
}

func (f *fakeInvitationRepo) views(id string) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.byID[id]
	return inv.ViewCount, inv.UniqueViewCount
}

// fakeTemplateRepo is an in-memory TemplateRepository for tests.
type fakeTemplateRepo struct {
	byID       map[string]*domain.Template
	nextID     int
	usage      map[string]int
	inUse      map[string]bool
	usageErr   error
	byCategory []domain.CountBucket
	byStyle    []domain.CountBucket
	lastLimit  int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		byID:   make(map[string]*domain.Template),
		nextID: 1,
		usage:  make(map[string]int),
		inUse:  make(map[string]bool),
	}
}

func (f *fakeTemplateRepo) add(t *domain.Template) *domain.Template {
	if t.ID == "" {
		t.ID = fmt.Sprintf("tpl-%d", f.nextID)
		f.nextID++
	}
	f.byID[t.ID] = t
	return t
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	f.add(t)
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTemplateRepo) List(ctx context.Context, filter domain.TemplateFilter, params domain.PaginationParams) (domain.Page[*domain.Template], error) {
	var items []*domain.Template
	for _, t := range f.byID {
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		items = append(items, t)
	}
	return domain.Page[*domain.Template]{Items: items, Total: len(items)}, nil
}

func (f *fakeTemplateRepo) Popular(ctx context.Context, limit int) ([]*domain.Template, error) {
	f.lastLimit = limit
	var items []*domain.Template
	for _, t := range f.byID {
		items = append(items, t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PopularityScore > items[j].PopularityScore })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeTemplateRepo) Related(ctx context.Context, t *domain.Template, limit int) ([]*domain.Template, error) {
	f.lastLimit = limit
	var items []*domain.Template
	for _, other := range f.byID {
		if other.ID != t.ID && (other.Category == t.Category || other.Style == t.Style) {
			items = append(items, other)
		}
	}
	return items, nil
}

func (f *fakeTemplateRepo) CountByCategory(ctx context.Context) ([]domain.CountBucket, error) {
	return f.byCategory, nil
}

func (f *fakeTemplateRepo) CountByStyle(ctx context.Context) ([]domain.CountBucket, error) {
	return f.byStyle, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t *domain.Template) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.inUse[id] {
		return domain.ErrTemplateInUse
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTemplateRepo) IncrementUsage(ctx context.Context, id string) error {
	if f.usageErr != nil {
		return f.usageErr
	}
	f.usage[id]++
	return nil
}

func (f *fakeTemplateRepo) Stats(ctx context.Context) (*domain.TemplateStats, error) {
	return &domain.TemplateStats{Total: len(f.byID)}, nil
}

// fakeResellerRepo is an in-memory ResellerRepository for tests.
type fakeResellerRepo struct {
	byID   map[string]*domain.Reseller
	nextID int
	codes  map[string]bool
	checks int
}

func newFakeResellerRepo() *fakeResellerRepo {
	return &fakeResellerRepo{byID: make(map[string]*domain.Reseller), nextID: 1, codes: make(map[string]bool)}
}

func (f *fakeResellerRepo) add(r *domain.Reseller) *domain.Reseller {
	if r.ID == "" {
		r.ID = fmt.Sprintf("res-%d", f.nextID)
		f.nextID++
	}
	f.byID[r.ID] = r
	f.codes[r.ReferralCode] = true
	return r
}

func (f *fakeResellerRepo) Create(ctx context.Context, r *domain.Reseller) error {
	if f.codes[r.ReferralCode] {
		return domain.ErrDuplicateCode
	}
	for _, existing := range f.byID {
		if existing.Email == r.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.add(r)
	return nil
}

func (f *fakeResellerRepo) GetByID(ctx context.Context, id string) (*domain.Reseller, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeResellerRepo) GetByReferralCode(ctx context.Context, code string) (*domain.Reseller, error) {
	for _, r := range f.byID {
		if r.ReferralCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeResellerRepo) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	f.checks++
	return f.codes[code], nil
}

func (f *fakeResellerRepo) List(ctx context.Context, filter domain.ResellerFilter, params domain.PaginationParams) (domain.Page[*domain.Reseller], error) {
	var items []*domain.Reseller
	for _, r := range f.byID {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		items = append(items, r)
	}
	return domain.Page[*domain.Reseller]{Items: items, Total: len(items)}, nil
}

func (f *fakeResellerRepo) Update(ctx context.Context, r *domain.Reseller) error {
	if _, ok := f.byID[r.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeResellerRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeResellerRepo) Stats(ctx context.Context) (*domain.ResellerStats, error) {
	return &domain.ResellerStats{Total: len(f.byID)}, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
	getErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), byEmail: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.Page[*domain.User], error) {
	var items []*domain.User
	for _, u := range f.byID {
		if filter.ResellerID != "" && (u.ResellerID == nil || *u.ResellerID != filter.ResellerID) {
			continue
		}
		items = append(items, u)
	}
	return domain.Page[*domain.User]{Items: items, Total: len(items)}, nil
}

func (f *fakeUserRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	return &domain.UserStats{Total: len(f.byID)}, nil
}

// fakeAdminRepo is an in-memory AdminUserRepository for tests.
type fakeAdminRepo struct {
	byID     map[string]*domain.AdminUser
	nextID   int
	touched  map[string]time.Time
	touchErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byID: make(map[string]*domain.AdminUser), nextID: 1, touched: make(map[string]time.Time)}
}

func (f *fakeAdminRepo) Create(ctx context.Context, a *domain.AdminUser) error {
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
	}
	a.ID = fmt.Sprintf("admin-%d", f.nextID)
	f.nextID++
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAdminRepo) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAdminRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched[id] = at
	return nil
}

// fakeGuestRepo is an in-memory GuestRepository for tests.
type fakeGuestRepo struct {
	byID    map[string]*domain.InvitationGuest
	nextID  int
	invited []string
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{byID: make(map[string]*domain.InvitationGuest), nextID: 1}
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.InvitationGuest) error {
	g.ID = fmt.Sprintf("guest-%d", f.nextID)
	f.nextID++
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, invitationID, guestID string) (*domain.InvitationGuest, error) {
	g, ok := f.byID[guestID]
	if !ok || g.InvitationID != invitationID {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGuestRepo) List(ctx context.Context, invitationID string, response domain.GuestResponse, params domain.PaginationParams) (domain.Page[*domain.InvitationGuest], error) {
	var items []*domain.InvitationGuest
	for _, g := range f.byID {
		if g.InvitationID != invitationID {
			continue
		}
		if response != "" && g.Response != response {
			continue
		}
		items = append(items, g)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return domain.Page[*domain.InvitationGuest]{Items: items, Total: len(items)}, nil
}

func (f *fakeGuestRepo) ListWithEmail(ctx context.Context, invitationID string) ([]*domain.InvitationGuest, error) {
	page, _ := f.List(ctx, invitationID, "", domain.PaginationParams{})
	var out []*domain.InvitationGuest
	for _, g := range page.Items {
		if g.Email != "" {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) Update(ctx context.Context, g *domain.InvitationGuest) error {
	if _, ok := f.byID[g.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) MarkInvited(ctx context.Context, guestIDs []string, at time.Time) error {
	for _, id := range guestIDs {
		if g, ok := f.byID[id]; ok {
			t := at
			g.InvitedAt = &t
		}
	}
	f.invited = append(f.invited, guestIDs...)
	return nil
}

func (f *fakeGuestRepo) Delete(ctx context.Context, invitationID, guestID string) error {
	g, ok := f.byID[guestID]
	if !ok || g.InvitationID != invitationID {
		return domain.ErrNotFound
	}
	delete(f.byID, guestID)
	return nil
}

// fakeAnalyticsRepo is an in-memory AnalyticsRepository for tests.
type fakeAnalyticsRepo struct {
	mu          sync.Mutex
	events      []*domain.AnalyticsEvent
	visitors    map[string]bool
	recordErr   error
	invitations *fakeInvitationRepo
}

// newFakeAnalyticsRepo returns a fake whose CountView bumps counters on invitations when non-nil.
func newFakeAnalyticsRepo(invitations *fakeInvitationRepo) *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{visitors: make(map[string]bool), invitations: invitations}
}

func (f *fakeAnalyticsRepo) Record(ctx context.Context, ev *domain.AnalyticsEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAnalyticsRepo) CountView(ctx context.Context, invitationID, visitorHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := invitationID + "|" + visitorHash
	first := visitorHash != "" && !f.visitors[key]
	if f.invitations != nil {
		if err := f.invitations.IncrementViewCount(ctx, invitationID, first); err != nil {
			return false, err
		}
	}
	if first {
		f.visitors[key] = true
	}
	return first, nil
}

func (f *fakeAnalyticsRepo) eventCount(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err    error
	last   domain.Claims
	expiry time.Duration
}

func (f *fakeTokenIssuer) Issue(claims domain.Claims, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.last = claims
	f.expiry = expiry
	return "token-" + claims.Role + "-" + claims.Subject, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	guestInvites []*domain.GuestInvitationEmailData
	welcomes     []*domain.WelcomeMessageEmailData
	failFor      map[string]bool
	welcomeErr   error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failFor: make(map[string]bool)}
}

func (f *fakeEmailService) SendGuestInvitation(ctx context.Context, data *domain.GuestInvitationEmailData) error {
	if f.failFor[data.Email] {
		return errors.New("smtp rejected")
	}
	f.guestInvites = append(f.guestInvites, data)
	return nil
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.welcomeErr != nil {
		return f.welcomeErr
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

// recordingTracker captures views instead of recording them.
type recordingTracker struct {
	mu    sync.Mutex
	views []domain.PageView
}

func (r *recordingTracker) Track(view domain.PageView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}
