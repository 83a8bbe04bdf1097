package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/client-directory/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ID        int64   `param:"id" json:"-" validate:"min=1"`
	FirstName string  `json:"first_name" validate:"required,max=5"`
	Email     *string `json:"email" validate:"omitempty,max=8"`
}

func (r *sampleRequest) Validate() error {
	return Struct(r)
}

type customRequest struct{}

func (r *customRequest) Validate() error {
	return CustomValidationErrors{{Field: "phone_number", Message: "already taken"}}
}

func newContext(method, body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c
}

func TestBindAndValidateOK(t *testing.T) {
	req := &sampleRequest{}
	err := BindAndValidate(newContext(http.MethodPost, `{"first_name":"Taty"}`), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, "Taty", req.FirstName)
	assert.Nil(t, req.Email)
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"first_name":"Nikolay","email":"too-long@mail.ru"}`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "first_name", Error: "must not exceed 5 characters"},
		{Field: "email", Error: "must not exceed 8 characters"},
	}, httpErr.Errors)
}

func TestBindAndValidateMissingRequired(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{}`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, []errs.FieldError{{Field: "first_name", Error: "is required"}}, httpErr.Errors)
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"first_name":`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidateCustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{}`), &customRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, []errs.FieldError{{Field: "phone_number", Error: "already taken"}}, httpErr.Errors)
}
