package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/deppfellow/client-directory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store    *testutil.MemStore
	opened   int
	released int
}

func (h *harness) open(_ context.Context, _ io.Writer) (*service.ClientService, func(), error) {
	h.opened++
	return service.NewClientService(h.store, nil, nil, 0), func() { h.released++ }, nil
}

func newHarness() *harness {
	return &harness{store: testutil.NewMemStore()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(h.open)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON[T any](t *testing.T, h *harness, args ...string) T {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestClientCommands(t *testing.T) {
	h := newHarness()

	added := runJSON[model.Client](t, h, "client", "add", "--first-name", "Nikolay", "--last-name", "Shirokov", "--email", "nsh@internet.ru")
	assert.Equal(t, int64(1), added.ID)
	require.NotNil(t, added.Email)

	noEmail := runJSON[model.Client](t, h, "client", "add", "--first-name", "Alexandr", "--last-name", "Zubarev")
	assert.Nil(t, noEmail.Email)

	updated := runJSON[model.Client](t, h, "client", "update", "1", "--last-name", "Shirokova")
	assert.Equal(t, "Nikolay", updated.FirstName)
	assert.Equal(t, "Shirokova", updated.LastName)
	assert.Equal(t, "nsh@internet.ru", *updated.Email)

	got := runJSON[model.Client](t, h, "client", "get", "1")
	assert.Equal(t, *updated, got)

	phone := runJSON[model.Phone](t, h, "phone", "add", "2", "89993790000")
	assert.Equal(t, int64(2), phone.ClientID)

	found := runJSON[model.ClientRecord](t, h, "client", "find", "--phone-number", "89993790000")
	assert.Equal(t, int64(2), found.ID)

	all := runJSON[[]model.ClientRecord](t, h, "client", "search")
	assert.Len(t, all, 2)

	phones := runJSON[[]model.Phone](t, h, "phone", "list", "2")
	assert.Len(t, phones, 1)

	deletedPhones := runJSON[[]model.Phone](t, h, "phone", "delete", "2")
	assert.Equal(t, phones, deletedPhones)

	deleted := runJSON[deleteResult](t, h, "client", "delete", "2")
	assert.True(t, deleted.Deleted)

	again := runJSON[deleteResult](t, h, "client", "delete", "2")
	assert.False(t, again.Deleted)

	assert.Equal(t, h.opened, h.released)
}

func TestClientFindNoMatch(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "client", "find", "--first-name", "Nobody")
	assert.ErrorIs(t, err, errNoMatch)
}

func TestClientAddRequiresNames(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "client", "add", "--first-name", "Nikolay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last-name")
	assert.Zero(t, h.opened)
}

func TestInvalidClientID(t *testing.T) {
	h := newHarness()

	for _, arg := range []string{"abc", "0", "2147483648", "3000000000", "99999999999999999999"} {
		_, err := h.run(t, "client", "get", arg)
		require.Error(t, err, arg)
		assert.Contains(t, FormatError(err), "invalid client id")
	}
	assert.Zero(t, h.opened)
}

func TestParseClientIDAcceptsLargestInteger(t *testing.T) {
	id, err := parseClientID("2147483647")
	require.NoError(t, err)
	assert.Equal(t, int64(2147483647), id)

	_, err = parseClientID("2147483648")
	assert.EqualError(t, err, `invalid client id "2147483648": must be between 1 and 2147483647`)
}

func TestDatabaseErrorsAreReadable(t *testing.T) {
	h := newHarness()
	runJSON[model.Client](t, h, "client", "add", "--first-name", "K", "--last-name", "S", "--email", "ks@internet.ru")

	_, err := h.run(t, "client", "add", "--first-name", "K", "--last-name", "S", "--email", "ks@internet.ru")
	require.Error(t, err)
	assert.Equal(t, "error: A client with this Email already exists\n  email: already exists", FormatError(err))

	_, err = h.run(t, "phone", "add", "42", "80000000000")
	require.Error(t, err)
	assert.Equal(t, "error: The referenced client does not exist", FormatError(err))

	_, err = h.run(t, "client", "get", "42")
	require.Error(t, err)
	assert.Equal(t, "error: Client not found", FormatError(err))
}

func TestSchemaInitAndDemo(t *testing.T) {
	h := newHarness()
	h.store.Uninitialize()

	_, err := h.run(t, "client", "search")
	require.Error(t, err)

	status := runJSON[statusResult](t, h, "schema", "init")
	assert.Equal(t, "initialized", status.Status)

	report := runJSON[service.DemoReport](t, h, "demo")
	assert.Len(t, report.Clients, 3)
	assert.True(t, report.ClientDeleted)
	require.NotNil(t, report.Found)
	assert.Equal(t, "Ksenya", report.Found.FirstName)
}

func TestOpenFailureIsReturned(t *testing.T) {
	boom := errors.New("connection refused")
	cmd := NewRootCommand(func(context.Context, io.Writer) (*service.ClientService, func(), error) {
		return nil, nil, boom
	})
	cmd.SetArgs([]string{"client", "search"})
	cmd.SetOut(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "error: connection refused", FormatError(err))
}
