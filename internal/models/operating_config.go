package models

import (
	"fmt"
	"sort"
	"time"
)

// Mode is the process-wide authentication mode.
type Mode string

const (
	ModeDirectLogin      Mode = "direct"
	ModeSharedSession    Mode = "shared"
	ModeKeyImpersonation Mode = "api"
)

const CurrentConfigVersion = 2

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDirectLogin, ModeSharedSession, ModeKeyImpersonation:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) Title() string {
	switch m {
	case ModeDirectLogin:
		return "Direct login"
	case ModeSharedSession:
		return "Shared session"
	case ModeKeyImpersonation:
		return "API key"
	}
	return string(m)
}

// ChannelLocator points at the primary group chat (and optional forum topic).
type ChannelLocator struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`
}

type UserEntry struct {
	AllowListed bool      `json:"allow_listed"`
	Blocked     bool      `json:"blocked"`
	IsAdmin     bool      `json:"is_admin"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// OperatingConfig is the singleton record that survives restarts.
type OperatingConfig struct {
	Version        int                  `json:"version"`
	Mode           Mode                 `json:"mode"`
	GroupMode      bool                 `json:"group_mode"`
	PrimaryChannel *ChannelLocator      `json:"primary_channel"`
	Users          map[int64]*UserEntry `json:"users"`
}

func NewOperatingConfig(mode Mode) *OperatingConfig {
	cfg := &OperatingConfig{Mode: mode}
	cfg.Normalize(mode)
	return cfg
}

// Normalize fills missing optional fields and restores the invariants.
func (c *OperatingConfig) Normalize(defaultMode Mode) {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		c.Mode = defaultMode
	}
	if c.Users == nil {
		c.Users = make(map[int64]*UserEntry)
	}
	for id, u := range c.Users {
		if u == nil {
			delete(c.Users, id)
		}
	}
	if !c.GroupMode {
		c.PrimaryChannel = nil
	}
	c.Version = CurrentConfigVersion
}

func (c *OperatingConfig) HasAdmin() bool {
	for _, u := range c.Users {
		if u.IsAdmin {
			return true
		}
	}
	return false
}

func (c *OperatingConfig) User(id int64) (*UserEntry, bool) {
	u, ok := c.Users[id]
	return u, ok
}

// UserIDs returns user ids in ascending order.
func (c *OperatingConfig) UserIDs() []int64 {
	ids := make([]int64, 0, len(c.Users))
	for id := range c.Users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *OperatingConfig) AllowListedCount() int {
	n := 0
	for _, u := range c.Users {
		if u.AllowListed && !u.Blocked {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand out to readers.
func (c *OperatingConfig) Clone() *OperatingConfig {
	out := &OperatingConfig{
		Version:   c.Version,
		Mode:      c.Mode,
		GroupMode: c.GroupMode,
		Users:     make(map[int64]*UserEntry, len(c.Users)),
	}
	if c.PrimaryChannel != nil {
		pc := *c.PrimaryChannel
		out.PrimaryChannel = &pc
	}
	for id, u := range c.Users {
		cp := *u
		out.Users[id] = &cp
	}
	return out
}
