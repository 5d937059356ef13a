// Package domain contains core concepts of the chat relay.
// This file defines the Message record and the textual wire format.
// Messages are immutable once created.
package domain

import (
	"fmt"
	"strings"

	apperrors "chat-relay/errors"
)

// ReceiverAll is the sentinel receiver for messages addressed to everyone.
const ReceiverAll = "ALL"

// whisperMarker prefixes a directed message: "/w <target> <body...>".
const whisperMarker = "/w "

// UsageLine is sent back to a client whose whisper could not be parsed.
const UsageLine = "usage: /w <user> <message>"

// Message represents one durable chat record. Receiver is either
// ReceiverAll or the display name of a single recipient.
type Message struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Body     string `json:"body"`
}

func NewBroadcast(sender, body string) Message {
	return Message{Sender: sender, Receiver: ReceiverAll, Body: body}
}

func NewWhisper(sender, target, body string) Message {
	return Message{Sender: sender, Receiver: target, Body: body}
}

// Broadcast reports whether the record was addressed to everyone.
func (m Message) Broadcast() bool {
	return m.Receiver == ReceiverAll
}

// ReplayLine formats a stored record the way it is replayed to a
// reconnecting client: broadcast rows keep the plain form, directed
// rows carry the private prefix.
func (m Message) ReplayLine() string {
	if m.Broadcast() {
		return BroadcastLine(m.Sender, m.Body)
	}
	return PrivateLine(m.Sender, m.Body)
}

func BroadcastLine(sender, body string) string {
	return fmt.Sprintf("%s: %s", sender, body)
}

func PrivateLine(sender, body string) string {
	return fmt.Sprintf("[private] %s: %s", sender, body)
}

// ConfirmationLine echoes a routed whisper back to its sender.
func ConfirmationLine(target, body string) string {
	return fmt.Sprintf("[-> %s] %s", target, body)
}

func PresenceLine(names []string) string {
	return fmt.Sprintf("[online users] %s", strings.Join(names, ", "))
}

func OfflineLine(target string) string {
	return fmt.Sprintf("user %s is offline", target)
}

// IsWhisper reports whether a raw inbound line uses the directed-message
// marker. Anything else is a broadcast, including a bare "/w".
func IsWhisper(raw string) bool {
	return strings.HasPrefix(raw, whisperMarker)
}

// ParseWhisper splits "/w <target> <body...>" into its target and body.
// The target is the second whitespace-separated token; the body is the
// remainder, space-joined, so inner spacing survives the round trip.
// A missing or empty target yields ErrMalformedWhisper.
func ParseWhisper(raw string) (target, body string, err error) {
	tokens := strings.Split(raw, " ")
	if len(tokens) < 2 || tokens[1] == "" {
		return "", "", apperrors.ErrMalformedWhisper
	}
	return tokens[1], strings.Join(tokens[2:], " "), nil
}
