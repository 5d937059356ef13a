package domain

import (
	"testing"

	apperrors "chat-relay/errors"
	"github.com/stretchr/testify/require"
)

func TestParseWhisper_TargetAndBody(t *testing.T) {
	req := require.New(t)

	target, body, err := ParseWhisper("/w bob hi there")
	req.NoError(err)
	req.Equal("bob", target)
	req.Equal("hi there", body)
}

func TestParseWhisper_BodySpacingSurvives(t *testing.T) {
	req := require.New(t)

	// Inner spacing must round-trip through split/join untouched.
	target, body, err := ParseWhisper("/w bob hi   there ")
	req.NoError(err)
	req.Equal("bob", target)
	req.Equal("hi   there ", body)
}

func TestParseWhisper_EmptyBody(t *testing.T) {
	req := require.New(t)

	target, body, err := ParseWhisper("/w bob")
	req.NoError(err)
	req.Equal("bob", target)
	req.Empty(body)
}

func TestParseWhisper_MissingTarget(t *testing.T) {
	req := require.New(t)

	_, _, err := ParseWhisper("/w ")
	req.ErrorIs(err, apperrors.ErrMalformedWhisper)

	_, _, err = ParseWhisper("/w")
	req.ErrorIs(err, apperrors.ErrMalformedWhisper)
}

func TestIsWhisper(t *testing.T) {
	req := require.New(t)

	req.True(IsWhisper("/w bob hello"))
	req.False(IsWhisper("hello /w bob"))
	// A bare "/w" has no marker space and stays a broadcast.
	req.False(IsWhisper("/w"))
}

func TestWireLines(t *testing.T) {
	req := require.New(t)

	req.Equal("alice: hello", BroadcastLine("alice", "hello"))
	req.Equal("[private] alice: hi there", PrivateLine("alice", "hi there"))
	req.Equal("[-> bob] hi there", ConfirmationLine("bob", "hi there"))
	req.Equal("[online users] alice, bob", PresenceLine([]string{"alice", "bob"}))
	req.Equal("user carol is offline", OfflineLine("carol"))
}

func TestReplayLine_ByReceiver(t *testing.T) {
	req := require.New(t)

	req.Equal("alice: hello", NewBroadcast("alice", "hello").ReplayLine())
	req.Equal("[private] alice: psst", NewWhisper("alice", "bob", "psst").ReplayLine())
}
