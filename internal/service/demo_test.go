package service

import (
	"context"
	"testing"

	"github.com/deppfellow/client-directory/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	svc, store, rec, _ := newTestService(t)

	report, err := svc.RunDemo(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Clients, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{report.Clients[0].ID, report.Clients[1].ID, report.Clients[2].ID})
	require.Len(t, report.Phones, 3)
	assert.Equal(t, int64(2), report.Phones[2].ClientID)

	assert.Equal(t, "Taty", report.Updated.FirstName)
	assert.Equal(t, "shirokova@mail.ru", *report.Updated.Email)

	require.Len(t, report.DeletedPhones, 2)
	assert.Equal(t, "89993790000", report.DeletedPhones[0].PhoneNumber)
	assert.Equal(t, "83332323055", report.DeletedPhones[1].PhoneNumber)

	assert.True(t, report.ClientDeleted)

	require.NotNil(t, report.Found)
	assert.Equal(t, int64(3), report.Found.ID)
	assert.Equal(t, "Shirokova", report.Found.LastName)
	assert.Nil(t, report.Found.PhoneNumber)

	remaining := store.Clients()
	require.Len(t, remaining, 2)
	assert.Equal(t, "Alexandr", remaining[0].FirstName)
	assert.Empty(t, store.PhoneNumbers())

	for _, op := range []string{"initialize_schema", "add_client", "add_phone", "update_client", "delete_phone", "delete_client", "find_client"} {
		assert.True(t, rec.has(op, true), op)
	}
}

func TestRunDemoIsRepeatable(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RunDemo(ctx)
	require.NoError(t, err)
	report, err := svc.RunDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Clients[0].ID)
}

func TestRunDemoRollsBackOnFailure(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	existing, err := svc.AddClient(ctx, model.NewClient{FirstName: "Keep", LastName: "Me"})
	require.NoError(t, err)

	// A failing store aborts the run before any step commits.
	store.Err = assert.AnError
	_, err = svc.RunDemo(ctx)
	require.ErrorIs(t, err, assert.AnError)

	store.Err = nil
	got, err := svc.GetClient(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.FirstName)
}
