package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"messenger-api/dto/req"
	"messenger-api/enum"
	"messenger-api/exception"
)

func TestAddContactIsMutual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	added, err := f.Contact.AddContact(ctx, alice, &req.ContactRequest{Email: "B@x.com"})
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, added.ID)

	ok, err := f.Contacts.IsContact(ctx, f.DB, bob.UserID, alice.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	event := f.Notifier.last()
	assert.Equal(t, bob.UserID, event.UserID)
	assert.Equal(t, enum.EventContactNew, event.Event.Type)
}

func TestAddContactErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")

	_, err := f.Contact.AddContact(ctx, alice, &req.ContactRequest{ContactID: bob.UserID})
	require.NoError(t, err)

	_, err = f.Contact.AddContact(ctx, alice, &req.ContactRequest{ContactID: bob.UserID})
	assert.True(t, exception.Is(err, exception.KindConflict))

	_, err = f.Contact.AddContact(ctx, bob, &req.ContactRequest{ContactID: alice.UserID})
	assert.True(t, exception.Is(err, exception.KindConflict))

	_, err = f.Contact.AddContact(ctx, alice, &req.ContactRequest{ContactID: alice.UserID})
	assert.True(t, exception.Is(err, exception.KindValidation))

	_, err = f.Contact.AddContact(ctx, alice, &req.ContactRequest{Email: "nobody@x.com"})
	assert.True(t, exception.Is(err, exception.KindNotFound))

	_, err = f.Contact.AddContact(ctx, alice, &req.ContactRequest{})
	assert.Error(t, err)
}

func TestGetContactsOrderAndUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")
	bob := f.createUser(t, "b@x.com")
	carol := f.createUser(t, "c@x.com")
	dave := f.createUser(t, "d@x.com")

	for _, other := range []string{bob.UserID, carol.UserID, dave.UserID} {
		_, err := f.Contact.AddContact(ctx, alice, &req.ContactRequest{ContactID: other})
		require.NoError(t, err)
	}

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	f.createMessage(t, bob, alice, "old", base)
	f.createMessage(t, carol, alice, "new", base.Add(time.Hour))
	f.createMessage(t, carol, alice, "newer", base.Add(2*time.Hour))
	f.createMessage(t, alice, carol, "reply", base.Add(3*time.Hour))

	contacts, err := f.Contact.GetContacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, contacts, 3)

	assert.Equal(t, carol.UserID, contacts[0].ID)
	require.NotNil(t, contacts[0].LastMessage)
	assert.Equal(t, "reply", contacts[0].LastMessage.Text)
	assert.EqualValues(t, 2, contacts[0].UnreadCount)

	assert.Equal(t, bob.UserID, contacts[1].ID)
	assert.EqualValues(t, 1, contacts[1].UnreadCount)

	assert.Equal(t, dave.UserID, contacts[2].ID)
	assert.Nil(t, contacts[2].LastMessage)
	assert.Zero(t, contacts[2].UnreadCount)
}

func TestGetContactsQueryCountDoesNotGrowWithContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "a@x.com")

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, email := range []string{"b@x.com", "c@x.com", "d@x.com", "e@x.com", "f@x.com", "g@x.com"} {
		other := f.createUser(t, email)
		_, err := f.Contact.AddContact(ctx, alice, &req.ContactRequest{ContactID: other.UserID})
		require.NoError(t, err)
		f.createMessage(t, other, alice, email, base.Add(time.Duration(i)*time.Minute))
	}

	queries := 0
	count := func(*gorm.DB) { queries++ }
	require.NoError(t, f.DB.Callback().Query().After("gorm:query").Register("test:count_query", count))
	require.NoError(t, f.DB.Callback().Row().After("gorm:row").Register("test:count_row", count))

	contacts, err := f.Contact.GetContacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, contacts, 6)
	assert.Equal(t, "g@x.com", contacts[0].LastMessage.Text)
	assert.EqualValues(t, 1, contacts[0].UnreadCount)

	// contacts, their users, last messages, their reactions, unread counts
	assert.LessOrEqual(t, queries, 5)
}
