package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"messenger-api/dto"
	"messenger-api/dto/req"
	"messenger-api/enum"
	"messenger-api/exception"
)

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	_, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Text: "   "})
	assert.True(t, exception.Is(err, exception.KindValidation))

	_, err = f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: alice.UserID, Text: "me"})
	assert.True(t, exception.Is(err, exception.KindValidation))

	_, err = f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: "missing", Text: "hi"})
	assert.True(t, exception.Is(err, exception.KindNotFound))

	withImage, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Image: "http://files.test/a.png"})
	require.NoError(t, err)
	assert.Empty(t, withImage.Text)
	assert.Equal(t, "http://files.test/a.png", withImage.Image)
}

func TestSendThenRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	sent, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Text: " hi "})
	require.NoError(t, err)
	assert.Equal(t, "hi", sent.Text)
	assert.Equal(t, string(enum.MessageStatusSent), sent.Status)
	assert.Empty(t, sent.ReadAt)

	event := f.Notifier.last()
	assert.Equal(t, bob.UserID, event.UserID)
	assert.Equal(t, enum.EventMessageNew, event.Event.Type)

	read, err := f.Message.MarkMessagesAsRead(ctx, bob, &req.MessageReadRequest{ContactID: alice.UserID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, read.Updated)
	assert.Equal(t, alice.UserID, f.Notifier.last().UserID)
	assert.Equal(t, enum.EventMessageRead, f.Notifier.last().Event.Type)

	messages, err := f.Message.GetMessages(ctx, bob, alice.UserID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.NotEmpty(t, messages[0].ReadAt)
	assert.Equal(t, string(enum.MessageStatusRead), messages[0].Status)
}

func TestMarkReadIsIdempotentAndMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.Message.now = func() time.Time { return first }

	f.createMessage(t, alice, bob, "one", first.Add(-time.Minute))
	f.createMessage(t, bob, alice, "mine", first.Add(-time.Second))

	read, err := f.Message.MarkMessagesAsRead(ctx, bob, &req.MessageReadRequest{ContactID: alice.UserID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, read.Updated)
	before, err := f.Message.GetMessages(ctx, bob, alice.UserID)
	require.NoError(t, err)

	f.Message.now = func() time.Time { return first.Add(time.Hour) }
	events := len(f.Notifier.events)
	read, err = f.Message.MarkMessagesAsRead(ctx, bob, &req.MessageReadRequest{ContactID: alice.UserID})
	require.NoError(t, err)
	assert.Zero(t, read.Updated)
	assert.Len(t, f.Notifier.events, events)

	after, err := f.Message.GetMessages(ctx, bob, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.Len(t, after, 2)
	assert.NotEmpty(t, after[0].ReadAt)
	assert.Empty(t, after[1].ReadAt, "the reader's own messages stay unread")
}

func TestGetMessagesOnlyReturnsThePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")
	carol := f.createUser(t, "c@x.com")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.createMessage(t, alice, bob, "1", base)
	f.createMessage(t, carol, alice, "x", base.Add(time.Second))
	f.createMessage(t, bob, alice, "2", base.Add(2*time.Second))
	f.createMessage(t, bob, carol, "y", base.Add(3*time.Second))
	f.createMessage(t, alice, bob, "3", base.Add(4*time.Second))

	messages, err := f.Message.GetMessages(ctx, alice, bob.UserID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	texts := make([]string, 0, len(messages))
	for _, message := range messages {
		pair := []string{message.SenderID, message.ReceiverID}
		assert.ElementsMatch(t, []string{alice.UserID, bob.UserID}, pair)
		texts = append(texts, message.Text)
	}
	assert.Equal(t, []string{"1", "2", "3"}, texts)
}

func TestEditAndDeleteOnlyBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	sent, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Text: "hi"})
	require.NoError(t, err)

	_, err = f.Message.EditMessage(ctx, bob, sent.ID, &req.EditMessageRequest{Text: "hacked"})
	assert.True(t, exception.Is(err, exception.KindForbidden))
	err = f.Message.DeleteMessage(ctx, bob, sent.ID)
	assert.True(t, exception.Is(err, exception.KindForbidden))

	edited, err := f.Message.EditMessage(ctx, alice, sent.ID, &req.EditMessageRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Text)
	assert.Equal(t, enum.EventMessageUpdated, f.Notifier.last().Event.Type)

	_, err = f.Message.EditMessage(ctx, alice, sent.ID, &req.EditMessageRequest{Text: ""})
	assert.True(t, exception.Is(err, exception.KindValidation))

	require.NoError(t, f.Message.DeleteMessage(ctx, alice, sent.ID))
	last := f.Notifier.last()
	assert.Equal(t, bob.UserID, last.UserID)
	assert.Equal(t, dto.MessageDeletedEvent{MessageID: sent.ID, SenderID: alice.UserID}, last.Event.Data)

	err = f.Message.DeleteMessage(ctx, alice, sent.ID)
	assert.True(t, exception.Is(err, exception.KindNotFound))
}

func TestReactionOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")
	carol := f.createUser(t, "c@x.com")

	sent, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Text: "hi"})
	require.NoError(t, err)

	_, err = f.Message.React(ctx, bob, &req.ReactionRequest{MessageID: sent.ID, Reaction: "👍"})
	require.NoError(t, err)
	reacted, err := f.Message.React(ctx, bob, &req.ReactionRequest{MessageID: sent.ID, Reaction: "❤️"})
	require.NoError(t, err)
	require.Len(t, reacted.Reactions, 1)
	assert.Equal(t, "❤️", reacted.Reactions[0].Emoji)
	assert.Equal(t, bob.UserID, reacted.Reactions[0].UserID)
	assert.Equal(t, alice.UserID, f.Notifier.last().UserID)

	reacted, err = f.Message.React(ctx, alice, &req.ReactionRequest{MessageID: sent.ID, Reaction: "😂"})
	require.NoError(t, err)
	assert.Len(t, reacted.Reactions, 2)

	_, err = f.Message.React(ctx, carol, &req.ReactionRequest{MessageID: sent.ID, Reaction: "👍"})
	assert.True(t, exception.Is(err, exception.KindForbidden))

	_, err = f.Message.React(ctx, bob, &req.ReactionRequest{MessageID: "missing", Reaction: "👍"})
	assert.True(t, exception.Is(err, exception.KindNotFound))
}

func TestUploadImageAndDeleteRemovesObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	_, err := f.Message.UploadImage(ctx, alice, "doc.pdf", "application/pdf", 10, imageBody(10))
	assert.True(t, exception.Is(err, exception.KindValidation))
	_, err = f.Message.UploadImage(ctx, alice, "big.png", "image/png", MaxImageSize+1, imageBody(1))
	assert.True(t, exception.Is(err, exception.KindValidation))

	uploaded, err := f.Message.UploadImage(ctx, alice, "Cat.PNG", "image/png", 128, imageBody(128))
	require.NoError(t, err)
	key, ok := f.Store.KeyFromURL(uploaded.URL)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "messages/"+alice.UserID+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.True(t, f.Store.has(key))

	sent, err := f.Message.SendMessage(ctx, alice, &req.MessageRequest{ReceiverID: bob.UserID, Image: uploaded.URL})
	require.NoError(t, err)
	require.NoError(t, f.Message.DeleteMessage(ctx, alice, sent.ID))
	assert.False(t, f.Store.has(key))
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newFixture(t)
	f.Message.Storage = nil
	alice := f.createUser(t, "a@x.com")

	_, err := f.Message.UploadImage(context.Background(), alice, "a.png", "image/png", 1, imageBody(1))
	assert.True(t, exception.Is(err, exception.KindUnavailable))
}
