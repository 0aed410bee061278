package account

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_Lifecycle(t *testing.T) {
	r := NewResource("v1")
	assert.Equal(t, "v1", r.Current())
	assert.False(t, r.Pending())

	require.NoError(t, r.Apply("v2"))
	assert.Equal(t, "v2", r.Current())
	assert.Equal(t, "v1", r.Committed())
	assert.True(t, r.Pending())
	assert.ErrorIs(t, r.Apply("v3"), ErrPending)

	r.Commit("v2-server")
	assert.Equal(t, State[string]{Current: "v2-server"}, r.State())

	require.NoError(t, r.Apply("v4"))
	r.Fail("boom")
	assert.Equal(t, State[string]{Current: "v2-server", LastError: "boom"}, r.State())

	// a new attempt clears the previous error
	require.NoError(t, r.Apply("v5"))
	assert.Empty(t, r.LastError())
	r.Rollback()
	assert.Equal(t, "v2-server", r.Current())
	assert.False(t, r.Pending())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		locale string
		want   string
	}{
		{name: "nil", err: nil, locale: "it", want: ""},
		{name: "server message passes through", err: &APIError{StatusCode: 409, Message: "slot taken"}, locale: "en", want: "slot taken"},
		{name: "server error is generic", err: &APIError{StatusCode: 500, Message: "pq: relation does not exist"}, locale: "en", want: messages["en"][msgGeneric]},
		{name: "bad request without message", err: &APIError{StatusCode: 400}, locale: "en", want: messages["en"][msgInvalid]},
		{name: "unauthorized", err: &APIError{StatusCode: 401, Message: "missing token"}, locale: "it", want: messages["it"][msgUnauthorized]},
		{name: "locked", err: fmt.Errorf("save: %w", booking.ErrLocked), locale: "en-GB", want: messages["en"][msgLocked]},
		{name: "validation", err: &ValidationError{Err: errors.New("field 'city' failed rule 'required'")}, locale: "it", want: messages["it"][msgInvalid]},
		{name: "transport error", err: errors.New("dial tcp: refused"), locale: "it", want: messages["it"][msgGeneric]},
		{name: "unknown locale falls back to italian", err: errors.New("x"), locale: "fr", want: messages["it"][msgGeneric]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, tt.locale))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", errorMessage([]byte(`{"message":"nope","request_id":"r"}`)))
	assert.Equal(t, "nested", errorMessage([]byte(`{"error":{"message":"nested"}}`)))
	assert.Equal(t, "flat", errorMessage([]byte(`{"error":"flat"}`)))
	assert.Empty(t, errorMessage([]byte(`<html>bad gateway</html>`)))
	assert.Empty(t, errorMessage([]byte(`{"message":42}`)))
}
