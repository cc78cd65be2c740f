package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/contacts/internal/validation"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]string{"a": "b"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":"b"}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	resp := GeneralError(errors.New("boom"))
	assert.Equal(t, Response{Status: StatusError, Error: "boom"}, resp)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, string(data))
}

func TestValidationError(t *testing.T) {
	resp := ValidationError(validation.Contact("Bob", "12-3", "b@x.com"))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, string(validation.KindInvalidPhone), resp.Kind)
	assert.Equal(t, []string{"phone"}, resp.Fields)
	assert.Equal(t, validation.ErrInvalidPhone.Error(), resp.Error)

	assert.Equal(t, GeneralError(errors.New("x")), ValidationError(errors.New("x")))
}
