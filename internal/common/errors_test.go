package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDocumentErrors(t *testing.T) {
	readErr := DocumentReadError("a.pdf", errors.New("bad xref"))
	assert.ErrorIs(t, readErr, ErrDocumentRead)
	assert.NotErrorIs(t, readErr, ErrEmptyDocument)
	assert.Contains(t, readErr.Error(), "bad xref")
	assert.Contains(t, readErr.Error(), CodeDocumentRead)

	emptyErr := EmptyDocumentError("b.pdf")
	assert.ErrorIs(t, emptyErr, ErrEmptyDocument)

	wrapped := fmt.Errorf("extract: %w", emptyErr)
	assert.True(t, IsDocumentError(wrapped))
	assert.False(t, IsDocumentError(errors.New("other")))
}

func TestGRPCHelpers(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, status.Code(InvalidArgumentErrorf("bad %s", "x")))
	assert.Equal(t, codes.FailedPrecondition, status.Code(FailedPreconditionError("empty")))
	assert.Equal(t, codes.Internal, status.Code(InternalErrorf("boom")))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("question", "  ", Required).
		Field("full_contract_text", "ok", Required, MaxLength(1)).
		Field("pdf", []byte{}, Required)

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	err := ValidateAndReturnError(v)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.NoError(t, ValidateAndReturnError(NewValidator().Field("q", "fine", Required, MaxLength(10))))
}

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{EmptyDocumentError("a.pdf"), codes.FailedPrecondition},
		{fmt.Errorf("extract: %w", DocumentReadError("a.pdf", errors.New("bad"))), codes.FailedPrecondition},
		{fmt.Errorf("%w: question", ErrInvalidInput), codes.InvalidArgument},
		{fmt.Errorf("extract a.pdf: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{InvalidArgumentError("keep me"), codes.InvalidArgument},
		{errors.New("disk on fire"), codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(StatusFromError(tc.err)), tc.err.Error())
	}
	assert.NoError(t, StatusFromError(nil))
	assert.NotContains(t, status.Convert(StatusFromError(errors.New("secret dsn"))).Message(), "secret")
}
