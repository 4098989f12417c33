package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/domain"
)

func TestAdminInvitationController_ListIsUnscoped(t *testing.T) {
	fake := &fakeInvitationService{page: domain.Page[*domain.Invitation]{Items: []*domain.Invitation{}}}
	ctrl := NewAdminInvitationController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.List(rr, withAdmin(newRequest(t, http.MethodGet, "/admin/invitations?status=published", nil), "admin-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, fake.lastFilter.UserID)
	assert.Equal(t, domain.StatusPublished, fake.lastFilter.Status)
}

func TestAdminInvitationController_StatsAcrossUsers(t *testing.T) {
	fake := &fakeInvitationService{stats: &domain.InvitationStats{Total: 9}, lastUserID: "sentinel"}
	ctrl := NewAdminInvitationController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.Stats(rr, newRequest(t, http.MethodGet, "/admin/invitations/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, fake.lastUserID)
}

func TestAdminInvitationController_SetStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "archive", body: map[string]any{"status": "archived"}, wantStatus: http.StatusOK},
		{name: "unknown status", body: map[string]any{"status": "gone"}, wantStatus: http.StatusBadRequest},
		{name: "missing status", body: map[string]any{}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{inv: sampleInvitation()}
			ctrl := NewAdminInvitationController(testLogger, fake)

			req := withParams(newRequest(t, http.MethodPatch, "/", tt.body), "id", testInvitationID)
			rr := httptest.NewRecorder()
			ctrl.SetStatus(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, domain.StatusArchived, fake.lastStatus)
			}
		})
	}
}

func TestAdminInvitationController_GetBySlugAndDelete(t *testing.T) {
	fake := &fakeInvitationService{inv: sampleInvitation()}
	ctrl := NewAdminInvitationController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.GetBySlug(rr, withParams(newRequest(t, http.MethodGet, "/", nil), "slug", "ana-luis"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ana-luis", fake.lastSlug)

	fake.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.Delete(rr, withParams(newRequest(t, http.MethodDelete, "/", nil), "id", testInvitationID))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
