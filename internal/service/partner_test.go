package service

import (
	"context"
	"testing"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerService_CRUD(t *testing.T) {
	svc := NewPartnerService(setupTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.PartnerRequest{
		Name:    " Fixit Labs ",
		Email:   "Ops@Fixit.example",
		Contact: "080-5550100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fixit Labs", created.Name)
	assert.Equal(t, "ops@fixit.example", created.Email)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	updated, err := svc.Update(ctx, created.ID, &model.PartnerRequest{
		Name:    "Fixit Labs Pvt",
		Email:   "ops@fixit.example",
		Website: "https://fixit.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fixit Labs Pvt", updated.Name)
	assert.Equal(t, "https://fixit.example", updated.Website)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPartnerService_DuplicateEmail(t *testing.T) {
	svc := NewPartnerService(setupTestDB(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, &model.PartnerRequest{Name: "A", Email: "hello@partner.example"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &model.PartnerRequest{Name: "B", Email: "other@partner.example"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &model.PartnerRequest{Name: "C", Email: "HELLO@partner.example"})
	assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)

	_, err = svc.Update(ctx, second.ID, &model.PartnerRequest{Name: "B", Email: first.Email})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Update(ctx, "missing", &model.PartnerRequest{Name: "X", Email: "x@partner.example"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(ctx, &model.PartnerRequest{Name: "", Email: "y@partner.example"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
