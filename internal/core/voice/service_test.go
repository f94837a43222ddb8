package voice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

func setup(t *testing.T, tier string) (database.Database, *Service, *database.Channel, *database.User, *database.User) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	author := &database.User{Email: "author@example.com", Password: "x"}
	peer := &database.User{Email: "peer@example.com", Password: "x"}
	require.NoError(t, db.CreateUser(ctx, author))
	require.NoError(t, db.CreateUser(ctx, peer))
	channel := &database.Channel{Name: "store", OwnerID: author.ID, SubscriptionTier: tier}
	require.NoError(t, db.CreateChannel(ctx, channel))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: peer.ID, Role: cnst.RoleStaff}))

	return db, NewService(db, authz.NewOracle(db), zap.NewNop()), channel, author, peer
}

func TestRetentionWindowsByTier(t *testing.T) {
	cases := []struct {
		tier        string
		audioWindow time.Duration
		textExpires bool
	}{
		{cnst.TierFree, freeAudioRetention, true},
		{cnst.TierStandard, standardAudioRetention, false},
		{cnst.TierPremium, premiumAudioRetention, false},
	}
	for _, tc := range cases {
		t.Run(tc.tier, func(t *testing.T) {
			_, svc, channel, author, _ := setup(t, tc.tier)
			url := "https://cdn.example.com/memo.m4a"
			memo, err := svc.Create(context.Background(), channel.ID, author.ID, "closing checklist", &url, true)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(tc.audioWindow), memo.AudioExpiresAt, time.Minute)
			if tc.textExpires {
				require.NotNil(t, memo.TextExpiresAt)
				assert.WithinDuration(t, time.Now().Add(freeTextRetention), *memo.TextExpiresAt, time.Minute)
			} else {
				assert.Nil(t, memo.TextExpiresAt)
			}
		})
	}
}

func TestSharingAndVisibility(t *testing.T) {
	_, svc, channel, author, peer := setup(t, cnst.TierFree)
	ctx := context.Background()

	private, err := svc.Create(ctx, channel.ID, author.ID, "private thought", nil, true)
	require.NoError(t, err)

	// peer sees nothing until the memo is shared
	memos, err := svc.List(ctx, channel.ID, peer.ID)
	require.NoError(t, err)
	assert.Empty(t, memos)

	// only the author may share
	_, err = svc.SetShared(ctx, private.ID, peer.ID, true)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	_, err = svc.SetShared(ctx, private.ID, author.ID, true)
	require.NoError(t, err)
	memos, err = svc.List(ctx, channel.ID, peer.ID)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, "private thought", memos[0].Content)

	// editing and deleting stay author-only
	_, err = svc.UpdateContent(ctx, private.ID, peer.ID, "vandalism")
	assert.ErrorIs(t, err, errorx.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, private.ID, peer.ID), errorx.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, private.ID, author.ID))
}

func TestCleanupExpiresAudioAndText(t *testing.T) {
	db, svc, channel, author, _ := setup(t, cnst.TierFree)
	ctx := context.Background()

	url := "https://cdn.example.com/memo.m4a"
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	staleAudio := &database.VoiceMemo{UserID: author.ID, ChannelID: channel.ID, Content: "keep text", AudioURL: &url, AudioExpiresAt: past, TextExpiresAt: &future}
	goneText := &database.VoiceMemo{UserID: author.ID, ChannelID: channel.ID, Content: "gone", AudioExpiresAt: future, TextExpiresAt: &past}
	fresh := &database.VoiceMemo{UserID: author.ID, ChannelID: channel.ID, Content: "fresh", AudioURL: &url, AudioExpiresAt: future}
	require.NoError(t, db.CreateVoiceMemo(ctx, staleAudio))
	require.NoError(t, db.CreateVoiceMemo(ctx, goneText))
	require.NoError(t, db.CreateVoiceMemo(ctx, fresh))

	require.NoError(t, svc.Cleanup(ctx))

	got, err := db.GetVoiceMemo(ctx, staleAudio.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AudioURL)
	assert.Equal(t, "keep text", got.Content)

	_, err = db.GetVoiceMemo(ctx, goneText.ID)
	assert.Error(t, err)

	got, err = db.GetVoiceMemo(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.AudioURL)
}
