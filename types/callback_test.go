package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCallback(t *testing.T) {
	cases := []struct {
		data    string
		want    Action
		wantErr bool
	}{
		{data: "download|https://youtu.be/abc", want: Download("https://youtu.be/abc")},
		{data: "check_membership", want: CheckMembership()},
		{data: "check_membership|ignored", want: CheckMembership()},
		{data: "download|https://youtu.be/abc|extra", want: Download("https://youtu.be/abc")},
		{data: "download", wantErr: true},
		{data: "download|", wantErr: true},
		{data: "menu_sub", wantErr: true},
		{data: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			got, err := DecodeCallback(tc.data)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestActionEncode(t *testing.T) {
	assert.Equal(t, "download|https://youtu.be/abc", Download("https://youtu.be/abc").Encode())
	assert.Equal(t, "check_membership", CheckMembership().Encode())

	decoded, err := DecodeCallback(Download("https://www.youtube.com/watch?v=abc").Encode())
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", decoded.Link)
}

func TestContentErrorClassification(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := error(NewTransportError("metadata API unreachable", cause))

	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, "metadata API unreachable", UserReason(err))

	up := NewUpstreamError("Video unavailable", nil)
	assert.True(t, errors.Is(up, ErrUpstream))
	assert.Equal(t, "Video unavailable", UserReason(up))
	assert.Equal(t, "Unknown error", UserReason(nil))
}

func TestRateLimitErrorUnwrap(t *testing.T) {
	err := error(&RateLimitError{Remaining: 4})
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "4 seconds")
}

func TestEventAccessors(t *testing.T) {
	msg := Event{Message: &MessageEvent{UserID: 7}}
	assert.Equal(t, EventMessage, msg.Kind())
	assert.Equal(t, UserID(7), msg.UserID())

	cb := Event{Callback: &CallbackEvent{UserID: 9}}
	assert.Equal(t, EventCallback, cb.Kind())
	assert.Equal(t, UserID(9), cb.UserID())
	assert.Equal(t, "9", cb.UserID().String())
}
