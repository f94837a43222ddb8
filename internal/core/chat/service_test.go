package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/apiserver/notifier"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

type fixture struct {
	db      database.Database
	svc     *Service
	channel *database.Channel
	alice   *database.User
	bob     *database.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	alice := &database.User{Email: "alice@example.com", Password: "x", DisplayName: "Alice"}
	bob := &database.User{Email: "bob@example.com", Password: "x", DisplayName: "Bob"}
	require.NoError(t, db.CreateUser(ctx, alice))
	require.NoError(t, db.CreateUser(ctx, bob))

	channel := &database.Channel{Name: "store", OwnerID: alice.ID}
	require.NoError(t, db.CreateChannel(ctx, channel))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: bob.ID, Role: cnst.RoleStaff}))

	svc := NewService(db, authz.NewOracle(db), notifier.NewMemoryNotifier(zap.NewNop()), zap.NewNop())
	return &fixture{db: db, svc: svc, channel: channel, alice: alice, bob: bob}
}

func (f *fixture) topicWithMembers(t *testing.T, name string) *database.Topic {
	t.Helper()
	ctx := context.Background()
	topic, err := f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, name, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.AddTopicMember(ctx, topic.ID, f.alice.ID, f.bob.ID))
	return topic
}

func TestChatRoundtripWithUnread(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	topic := f.topicWithMembers(t, "general")

	msg, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "hello", nil, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)

	page, err := f.svc.ListMessages(ctx, topic.ID, f.bob.ID, 50, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "hello", page[0].Content)
	assert.Equal(t, f.alice.ID, page[0].UserID)

	summaries, err := f.svc.ListTopics(ctx, f.channel.ID, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].UnreadCount)

	require.NoError(t, f.svc.MarkRead(ctx, topic.ID, f.bob.ID))
	summaries, err = f.svc.ListTopics(ctx, f.channel.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summaries[0].UnreadCount)

	// the sender's own messages never count as unread for the sender
	summaries, err = f.svc.ListTopics(ctx, f.channel.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summaries[0].UnreadCount)
}

func TestUnreadCountCapped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	topic := f.topicWithMembers(t, "busy")

	for i := 0; i < cnst.MaxUnreadCount+5; i++ {
		_, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "ping", nil, "")
		require.NoError(t, err)
	}

	summaries, err := f.svc.ListTopics(ctx, f.channel.ID, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, cnst.MaxUnreadCount, summaries[0].UnreadCount)
}

func TestTopicVisibilityGate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// bob is a channel member but not a topic member
	topic, err := f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, "managers only", nil)
	require.NoError(t, err)

	summaries, err := f.svc.ListTopics(ctx, f.channel.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = f.svc.AppendMessage(ctx, topic.ID, f.bob.ID, "let me in", nil, "")
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	_, err = f.svc.ListMessages(ctx, topic.ID, f.bob.ID, 50, nil)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	// removal revokes access immediately but keeps the log intact
	require.NoError(t, f.svc.AddTopicMember(ctx, topic.ID, f.alice.ID, f.bob.ID))
	_, err = f.svc.AppendMessage(ctx, topic.ID, f.bob.ID, "hi", nil, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveTopicMember(ctx, topic.ID, f.alice.ID, f.bob.ID))
	_, err = f.svc.ListMessages(ctx, topic.ID, f.bob.ID, 50, nil)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	page, err := f.svc.ListMessages(ctx, topic.ID, f.alice.ID, 50, nil)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestAppendMessageValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	topic := f.topicWithMembers(t, "general")

	_, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "   ", nil, "")
	assert.ErrorIs(t, err, errorx.ErrValidation)

	url := "https://cdn.example.com/receipt.jpg"
	msg, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "", &url, "")
	require.NoError(t, err)
	require.NotNil(t, msg.ImageURL)
}

func TestMessageFanout(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	topic := f.topicWithMembers(t, "general")

	events, err := f.svc.notifier.Subscribe(ctx)
	require.NoError(t, err)

	_, err = f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "hello", nil, "client-7")
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, cnst.EventInsert, event.Event)
		assert.Equal(t, cnst.TableMessages, event.Table)
		assert.Equal(t, "client-7", event.ClientID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fanout")
	}
}

func TestSearchMessages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	topic := f.topicWithMembers(t, "general")

	_, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "Freezer defrost at NOON", nil, "")
	require.NoError(t, err)
	_, err = f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "unrelated", nil, "")
	require.NoError(t, err)

	found, err := f.svc.SearchMessages(ctx, f.channel.ID, f.bob.ID, "noon")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = f.svc.SearchMessages(ctx, f.channel.ID, f.bob.ID, " ")
	assert.ErrorIs(t, err, errorx.ErrValidation)
}

func TestReorderAssignsContiguousScores(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, "a", nil)
	require.NoError(t, err)
	_, err = f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, "b", nil)
	require.NoError(t, err)
	c, err := f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, "c", nil)
	require.NoError(t, err)

	ops := "ops"
	require.NoError(t, f.svc.Reorder(ctx, c.ID, f.alice.ID, 0, &ops))

	topics, err := f.svc.ListAllTopics(ctx, f.channel.ID, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, c.ID, topics[0].ID)
	assert.Equal(t, 3, topics[0].DisplayOrder)
	require.NotNil(t, topics[0].Category)
	assert.Equal(t, "ops", *topics[0].Category)
	assert.Greater(t, topics[0].DisplayOrder, topics[1].DisplayOrder)
	assert.Greater(t, topics[1].DisplayOrder, topics[2].DisplayOrder)

	// staff may not reorder
	assert.ErrorIs(t, f.svc.Reorder(ctx, a.ID, f.bob.ID, 1, nil), errorx.ErrForbidden)
	_, err = f.svc.ListAllTopics(ctx, f.channel.ID, f.bob.ID)
	assert.ErrorIs(t, err, errorx.ErrForbidden)
}

func TestCategoryRenameRebindsTopics(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	category, err := f.svc.CreateCategory(ctx, f.channel.ID, f.alice.ID, "ops")
	require.NoError(t, err)

	ops := "ops"
	topic, err := f.svc.CreateTopic(ctx, f.channel.ID, f.alice.ID, "closing", &ops)
	require.NoError(t, err)

	// staff may not rename
	assert.ErrorIs(t, f.svc.RenameCategory(ctx, category.ID, f.bob.ID, "operations"), errorx.ErrForbidden)

	require.NoError(t, f.svc.RenameCategory(ctx, category.ID, f.alice.ID, "operations"))
	got, err := f.db.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "operations", *got.Category)

	// deleting leaves the topic's name dangling
	require.NoError(t, f.svc.DeleteCategory(ctx, category.ID, f.alice.ID))
	got, err = f.db.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
}

func TestAttachmentOnlyMessageGetsLabel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	topic := f.topicWithMembers(t, "media")

	cases := []struct {
		url   string
		label string
	}{
		{"https://cdn.example.com/clip.mp4?token=abc", "[동영상]"},
		{"https://cdn.example.com/photo.JPG", "[이미지]"},
		{"https://cdn.example.com/report.pdf", "[파일 첨부]"},
	}
	for _, tc := range cases {
		url := tc.url
		msg, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "", &url, "")
		require.NoError(t, err)
		assert.Equal(t, tc.label, msg.Content)
	}

	// explicit content wins over the label
	url := "https://cdn.example.com/photo.png"
	msg, err := f.svc.AppendMessage(ctx, topic.ID, f.alice.ID, "look at this", &url, "")
	require.NoError(t, err)
	assert.Equal(t, "look at this", msg.Content)
}
