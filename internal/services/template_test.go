package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/domain"
)

func TestTemplateService_Create(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		template domain.Template
		wantErrs []string
	}{
		{
			name:     "valid free template",
			template: domain.Template{Name: " Rose ", Category: domain.CategoryWedding, Style: domain.StyleFloral},
		},
		{
			name:     "valid premium template",
			template: domain.Template{Name: "Gold", Category: domain.CategoryBusiness, Style: domain.StyleElegant, IsPremium: true, Price: 9.99},
		},
		{
			name:     "missing fields",
			template: domain.Template{},
			wantErrs: []string{"name is required", "category is invalid", "style is invalid"},
		},
		{
			name:     "priced free template",
			template: domain.Template{Name: "Cheap", Category: domain.CategoryParty, Style: domain.StyleModern, Price: 1},
			wantErrs: []string{"price must be 0 for free templates"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTemplateRepo()
			svc := NewTemplateService(repo, time.Second)
			tpl := tt.template
			err := svc.Create(ctx, &tpl)
			if tt.wantErrs != nil {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantErrs, verr.Errors)
				assert.Empty(t, repo.byID)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tpl.ID)
			assert.NotNil(t, tpl.Config)
			assert.NotEqual(t, "", tpl.Name)
			assert.Equal(t, tpl.Name, repo.byID[tpl.ID].Name)
		})
	}
}

func TestTemplateService_Update(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTemplateRepo()
	tpl := repo.add(&domain.Template{Name: "Rose", Category: domain.CategoryWedding, Style: domain.StyleFloral, IsActive: true})
	svc := NewTemplateService(repo, time.Second)

	inactive := false
	style := domain.StyleRustic
	got, err := svc.Update(ctx, tpl.ID, domain.TemplatePatch{IsActive: &inactive, Style: &style})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, domain.StyleRustic, got.Style)
	assert.Equal(t, domain.CategoryWedding, got.Category)

	bad := domain.TemplateStyle("gothic")
	_, err = svc.Update(ctx, tpl.ID, domain.TemplatePatch{Style: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Update(ctx, "missing", domain.TemplatePatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTemplateRepo()
	used := repo.add(&domain.Template{Name: "Used", Category: domain.CategoryWedding, Style: domain.StyleFloral})
	free := repo.add(&domain.Template{Name: "Free", Category: domain.CategoryWedding, Style: domain.StyleFloral})
	repo.inUse[used.ID] = true
	svc := NewTemplateService(repo, time.Second)

	assert.ErrorIs(t, svc.Delete(ctx, used.ID), domain.ErrTemplateInUse)
	require.NoError(t, svc.Delete(ctx, free.ID))
	assert.ErrorIs(t, svc.Delete(ctx, free.ID), domain.ErrNotFound)
}

func TestTemplateService_PopularAndRelated(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTemplateRepo()
	a := repo.add(&domain.Template{Name: "A", Category: domain.CategoryWedding, Style: domain.StyleFloral, PopularityScore: 5})
	repo.add(&domain.Template{Name: "B", Category: domain.CategoryWedding, Style: domain.StyleModern, PopularityScore: 9})
	repo.add(&domain.Template{Name: "C", Category: domain.CategoryParty, Style: domain.StyleFloral, PopularityScore: 1})
	repo.add(&domain.Template{Name: "D", Category: domain.CategoryParty, Style: domain.StyleRustic, PopularityScore: 3})
	svc := NewTemplateService(repo, time.Second)

	popular, err := svc.Popular(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultPopularLimit, repo.lastLimit)
	require.Len(t, popular, 4)
	assert.Equal(t, "B", popular[0].Name)

	_, err = svc.Popular(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxTemplateLimit, repo.lastLimit)

	related, err := svc.Related(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, related, 2)
	for _, r := range related {
		assert.NotEqual(t, a.ID, r.ID)
	}

	_, err = svc.Related(ctx, "missing", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateService_CountsIncludeEveryKey(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTemplateRepo()
	repo.byCategory = []domain.CountBucket{{Key: "party", Count: 2}, {Key: "wedding", Count: 5}}
	repo.byStyle = []domain.CountBucket{{Key: "floral", Count: 3}}
	svc := NewTemplateService(repo, time.Second)

	categories, err := svc.CategoriesWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(domain.Categories))
	assert.Equal(t, domain.CountBucket{Key: "wedding", Count: 5}, categories[0])
	assert.Equal(t, domain.CountBucket{Key: "birthday", Count: 0}, categories[1])
	assert.Equal(t, domain.CountBucket{Key: "party", Count: 2}, categories[len(categories)-1])

	styles, err := svc.StylesWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, styles, len(domain.Styles))
	assert.Equal(t, domain.CountBucket{Key: "floral", Count: 3}, styles[3])
}

func TestTemplateService_List_rejects_unknown_filters(t *testing.T) {
	svc := NewTemplateService(newFakeTemplateRepo(), time.Second)
	_, err := svc.List(context.Background(), domain.TemplateFilter{Category: "funeral"}, domain.PaginationParams{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err := svc.List(context.Background(), domain.TemplateFilter{}, domain.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
}
