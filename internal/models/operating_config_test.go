package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"direct", "shared", "api"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("token")
	assert.Error(t, err)
}

func TestNewOperatingConfig_Defaults(t *testing.T) {
	cfg := NewOperatingConfig(ModeSharedSession)
	assert.Equal(t, ModeSharedSession, cfg.Mode)
	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.NotNil(t, cfg.Users)
	assert.False(t, cfg.HasAdmin())
}

func TestNormalize_RepairsInvalidRecord(t *testing.T) {
	cfg := &OperatingConfig{
		Mode:           "bogus",
		PrimaryChannel: &ChannelLocator{ChatID: -100},
		Users:          map[int64]*UserEntry{1: nil, 2: {AllowListed: true}},
	}
	cfg.Normalize(ModeDirectLogin)

	assert.Equal(t, ModeDirectLogin, cfg.Mode)
	assert.Nil(t, cfg.PrimaryChannel, "channel is meaningless without group mode")
	assert.Len(t, cfg.Users, 1)
	assert.Equal(t, CurrentConfigVersion, cfg.Version)
}

func TestNormalize_KeepsChannelInGroupMode(t *testing.T) {
	cfg := &OperatingConfig{Mode: ModeKeyImpersonation, GroupMode: true, PrimaryChannel: &ChannelLocator{ChatID: -100, ThreadID: 7}}
	cfg.Normalize(ModeDirectLogin)
	require.NotNil(t, cfg.PrimaryChannel)
	assert.Equal(t, 7, cfg.PrimaryChannel.ThreadID)
	assert.Equal(t, ModeKeyImpersonation, cfg.Mode)
}

func TestUserIDs_Sorted(t *testing.T) {
	cfg := NewOperatingConfig(ModeDirectLogin)
	for _, id := range []int64{30, 10, 20} {
		cfg.Users[id] = &UserEntry{AllowListed: true}
	}
	assert.Equal(t, []int64{10, 20, 30}, cfg.UserIDs())
}

func TestAllowListedCount_SkipsBlocked(t *testing.T) {
	cfg := NewOperatingConfig(ModeDirectLogin)
	cfg.Users[1] = &UserEntry{AllowListed: true}
	cfg.Users[2] = &UserEntry{AllowListed: true, Blocked: true}
	cfg.Users[3] = &UserEntry{}
	assert.Equal(t, 1, cfg.AllowListedCount())
}

func TestClone_IsDeep(t *testing.T) {
	cfg := NewOperatingConfig(ModeDirectLogin)
	cfg.GroupMode = true
	cfg.PrimaryChannel = &ChannelLocator{ChatID: -1}
	cfg.Users[1] = &UserEntry{AllowListed: true}

	cp := cfg.Clone()
	cp.Users[1].Blocked = true
	cp.PrimaryChannel.ChatID = -2
	cp.Users[2] = &UserEntry{}

	assert.False(t, cfg.Users[1].Blocked)
	assert.Equal(t, int64(-1), cfg.PrimaryChannel.ChatID)
	assert.Len(t, cfg.Users, 1)
}
