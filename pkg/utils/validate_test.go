package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country" validate:"omitempty,len=2"`
}

func TestValidate(t *testing.T) {
	_, err := Validate(sampleRequest{Name: "ok", Country: "IT"})
	assert.NoError(t, err)

	_, err = Validate(sampleRequest{Country: "ITA"})
	require.Error(t, err)
	assert.Equal(t, "field 'name' failed rule 'required'; field 'country' failed rule 'len=2'", err.Error())
}

func TestValidateSlice(t *testing.T) {
	err := ValidateSlice([]sampleRequest{{Name: "a"}, {}})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "item 1:"))
}

func TestBindRequest(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Giulia"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	v, err := BindRequest[sampleRequest](e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "Giulia", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	_, err = BindRequest[sampleRequest](e.NewContext(req, httptest.NewRecorder()))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}
