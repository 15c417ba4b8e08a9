package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"qr_menu/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedChain(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("insert: %w", apperr.Wrap(apperr.KindWriteFailure, "store.Insert", base))

	assert.Equal(t, apperr.KindWriteFailure, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.KindWriteFailure))
	assert.ErrorIs(t, err, base)
}

func TestKindOf_PlainErrorIsUnknown(t *testing.T) {
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(errors.New("boom")))
	assert.False(t, apperr.Is(nil, apperr.KindUnknown))
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.NoError(t, apperr.Wrap(apperr.KindReadFailure, "op", nil))
}

func TestMessage(t *testing.T) {
	err := apperr.New(apperr.KindValidation, "PlaceOrder", "qr_id is too long")
	assert.Equal(t, "qr_id is too long", apperr.Message(err, "fallback"))
	assert.Equal(t, "fallback", apperr.Message(errors.New("x"), "fallback"))
	assert.Equal(t, "PlaceOrder: qr_id is too long", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:        http.StatusBadRequest,
		apperr.KindNotFound:          http.StatusNotFound,
		apperr.KindForbidden:         http.StatusForbidden,
		apperr.KindMigrationRequired: http.StatusInternalServerError,
		apperr.KindWriteFailure:      http.StatusInternalServerError,
		apperr.KindReadFailure:       http.StatusInternalServerError,
		apperr.KindUnknown:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, apperr.HTTPStatus(kind), kind.String())
	}
}
