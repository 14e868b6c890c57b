// Package model holds the chat data types.
package model

import (
	"encoding/json"
	"time"
)

// Role is the role of a chat participant.
type Role string

const (
	// RoleMember is an ordinary participant.
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Priority orders messages.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// User is a chat participant.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`

	password string
}

// Message is a posted chat message.
type Message struct {
	Base
	Author   *User           `json:"author"`
	Text     string          `json:"text"`
	Tags     []string        `json:"tags,omitempty"`
	Priority Priority        `json:"priority"`
	SentAt   time.Time       `json:"sentAt"`
	Extra    json.RawMessage `json:"extra,omitempty"`
	Internal string          `json:"-"`
}

// Base holds fields shared by stored records.
type Base struct {
	Version int `json:"version"`
}

// Page is one page of results.
type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

// Thread is a recursive reply tree.
type Thread struct {
	Root    Message   `json:"root"`
	Replies []*Thread `json:"replies"`
}

// Token serializes as text.
type Token [16]byte

func (t Token) MarshalText() ([]byte, error) { return t[:], nil }

// IDs is a list of identifiers.
type IDs []string
