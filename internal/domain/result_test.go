package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixshop/internal/imaging"
)

func TestResultIsNeverBoth(t *testing.T) {
	img := testImage(t, 2, 2)

	ok := Succeeded(img, SourcePrimary, "gemini")
	require.True(t, ok.OK())
	assert.Nil(t, ok.Failure())
	assert.NoError(t, ok.Err())
	got, present := ok.Image()
	require.True(t, present)
	assert.True(t, got.Equal(img))

	failed := Failed(NewFailure(Blocked, "gemini", "Request was blocked.", nil))
	assert.False(t, failed.OK())
	_, present = failed.Image()
	assert.False(t, present)
	assert.Equal(t, Blocked, failed.Failure().Kind)
	assert.Equal(t, "gemini", failed.Provider())
}

func TestZeroResultIsFailure(t *testing.T) {
	var r Result
	assert.False(t, r.OK())
	assert.Equal(t, EmptyResponse, r.Failure().Kind)

	empty := Succeeded(imaging.Resource{}, SourcePrimary, "gemini")
	assert.False(t, empty.OK())
	assert.Equal(t, Malformed, empty.Failure().Kind)

	assert.Equal(t, EmptyResponse, Failed(nil).Failure().Kind)
}

func TestWithSourceOnlyRetagsSuccess(t *testing.T) {
	img := testImage(t, 2, 2)
	r := Succeeded(img, SourcePrimary, "fal").WithSource(SourceSecondary)
	assert.Equal(t, SourceSecondary, r.Source())

	f := Failed(NewFailure(TransportError, "fal", "down", nil)).WithSource(SourceSecondary)
	assert.Equal(t, Source(""), f.Source())
}

func TestFailureClassification(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := NewFailure(TransportError, "fal", "", cause)
	wrapped := fmt.Errorf("collage branch: %w", f)

	assert.Equal(t, TransportError, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "dial tcp: connection refused", MessageOf(wrapped))
	assert.Equal(t, "fal: dial tcp: connection refused", f.Error())
	assert.Equal(t, FailureKind(0), KindOf(cause))
	assert.Equal(t, "all_providers_exhausted", AllProvidersExhausted.String())
}
