package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{AlreadyRegistered("email is already registered"), http.StatusConflict},
		{NotFound("user not found"), http.StatusNotFound},
		{Forbidden("you are not authorised"), http.StatusForbidden},
		{NotSignedIn(), http.StatusUnauthorized},
		{WrongPassword(), http.StatusForbidden},
		{BookNotAvailable(), http.StatusConflict},
		{OverdueBooks(), http.StatusConflict},
		{BookExists(), http.StatusConflict},
		{InvalidToken(), http.StatusUnauthorized},
		{TokenVerification(), http.StatusUnauthorized},
		{Unexpected("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "status for %v", tc.err)
	}
}

func TestUnknownErrorsAreUnexpected(t *testing.T) {
	err := errors.New("driver: bad connection")
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(err))
	assert.Equal(t, "internal server error", PublicMessage(err))
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("borrow failed: %w", OverdueBooks())
	assert.True(t, Is(err, KindOverdueBooks))
	assert.Equal(t, http.StatusConflict, Status(err))
	assert.Equal(t, "user has overdue books", PublicMessage(err))
}

func TestUnexpectedMessageIsHidden(t *testing.T) {
	err := Unexpected("dsn user:pass@tcp leaked")
	assert.Equal(t, "internal server error", PublicMessage(err))
}
