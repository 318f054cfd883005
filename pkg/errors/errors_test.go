package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "plain",
			err:  New(ErrorTypeElementNotFound, `no element matches "div.title"`),
			want: `element_not_found error: no element matches "div.title"`,
		},
		{
			name: "with code",
			err:  WithCode(ErrorTypeDownload, "unexpected status", 404),
			want: "download error (code 404): unexpected status",
		},
		{
			name: "wrapped",
			err:  Wrap(ErrorTypePersist, "failed to write file", io.ErrShortWrite),
			want: "persist error: failed to write file: short write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsFollowsWrapping(t *testing.T) {
	base := New(ErrorTypeNotInitialized, "session not open")
	wrapped := fmt.Errorf("visit failed: %w", base)

	assert.True(t, Is(wrapped, ErrorTypeNotInitialized))
	assert.False(t, Is(wrapped, ErrorTypeNavigation))
	assert.False(t, Is(nil, ErrorTypeNavigation))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))

	cause := io.ErrUnexpectedEOF
	err := Wrap(ErrorTypePersist, "copy", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsItemLocal(t *testing.T) {
	assert.True(t, IsItemLocal(ErrorTypeNavigation))
	assert.True(t, IsItemLocal(ErrorTypeElementNotFound))
	assert.True(t, IsItemLocal(ErrorTypeDownload))
	assert.True(t, IsItemLocal(ErrorTypePersist))
	assert.False(t, IsItemLocal(ErrorTypeNotInitialized))
	assert.False(t, IsItemLocal(ErrorTypeConfig))
	assert.False(t, IsItemLocal(ErrorTypeUnknown))
}

func TestIsSuccessStatusCode(t *testing.T) {
	for _, code := range []int{200, 201, 204, 299} {
		assert.True(t, IsSuccessStatusCode(code), "code %d", code)
	}
	for _, code := range []int{0, 199, 301, 404, 500} {
		assert.False(t, IsSuccessStatusCode(code), "code %d", code)
	}
}
