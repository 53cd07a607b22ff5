package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("bad request"), false},
		{"transient error", NewTransientError(errors.New("busy"), 503), true},
		{"wrapped transient", fmt.Errorf("call: %w", NewTransientError(errors.New("busy"), 429)), true},
		{"eris wrapped transient", eris.Wrap(NewTransientError(errors.New("busy"), 502), "apollo: search"), true},
		{"conn reset syscall", syscall.ECONNRESET, true},
		{"conn refused syscall", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"reset by message", errors.New("read tcp: connection reset by peer"), true},
		{"dns by message", errors.New("lookup api.apollo.io: no such host"), true},
		{"io timeout by message", errors.New("read: i/o timeout"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgDup := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("syntax error")))
	assert.True(t, IsUniqueViolation(pgDup))
	assert.True(t, IsUniqueViolation(eris.Wrap(pgDup, "store: create prospect")))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: prospects.contact_id")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
