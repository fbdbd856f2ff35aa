// internal/pkg/apperror/apperror_test.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewNotFound("product", 7), http.StatusNotFound},
		{NewDuplicateCode("A001"), http.StatusConflict},
		{NewAuthExpired("token expired"), http.StatusUnauthorized},
		{NewValidation("bad input"), http.StatusBadRequest},
		{NewInsufficientStock("A001", 5, 3), http.StatusBadRequest},
		{NewInvalidTransition("completed", "pending"), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, HTTPStatus(c.err), c.err.Error())
	}
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("issuing: %w", NewInsufficientStock("A001", 5, 3))

	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestDetailMessages(t *testing.T) {
	assert.EqualError(t, NewInsufficientStock("A001", 5, 3),
		"insufficient stock for product A001: requested 5, available 3")
	assert.EqualError(t, NewDuplicateCode("A001"), "product with code A001 already exists")
	assert.EqualError(t, NewNotFound("product", 7), "product 7 not found")
	assert.EqualError(t, NewInvalidTransition("completed", "pending"),
		"cannot transition task from completed to pending")
}

func TestValidationFields(t *testing.T) {
	err := NewValidationFields(map[string]string{"name": "required"})
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "required", err.Fields["name"])
}
