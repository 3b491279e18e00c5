package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestSubscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	author := testhelpers.CreateTestUser(t, db, "author")

	got, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	// Following the same author twice is an error.
	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "author", verr.Field)
}

func TestSubscribeToSelf(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)

	user := testhelpers.CreateTestUser(t, db, "narcissist")

	_, err := svc.Subscribe(context.Background(), user.ID, user.ID)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "author", verr.Field)
}

func TestSubscribeMissingAuthor(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)

	user := testhelpers.CreateTestUser(t, db, "follower")

	_, err := svc.Subscribe(context.Background(), user.ID, uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSubscribeInsertFailureIsNotReportedAsDuplicate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)

	author := testhelpers.CreateTestUser(t, db, "author")

	// The follower id violates the foreign key; that must not read as the
	// already-following 400.
	_, err := svc.Subscribe(context.Background(), uuid.New(), author.ID)
	require.Error(t, err)
	var verr *service.ValidationError
	assert.False(t, errors.As(err, &verr), "got %v", err)
}

func TestUnsubscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	author := testhelpers.CreateTestUser(t, db, "author")

	_, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, author.ID))

	// Removing an absent follow is an error.
	err = svc.Unsubscribe(ctx, follower.ID, author.ID)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)

	err = svc.Unsubscribe(ctx, follower.ID, uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSubscriptions(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")
	testhelpers.CreateTestUser(t, db, "unfollowed")

	_, err := svc.Subscribe(ctx, follower.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, alice.ID)
	require.NoError(t, err)

	authors, total, err := svc.Subscriptions(ctx, follower.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Username)
	assert.Equal(t, "bob", authors[1].Username)
}

func TestIsSubscribed(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewFollowService(db)
	ctx := context.Background()

	follower := testhelpers.CreateTestUser(t, db, "follower")
	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")

	_, err := svc.Subscribe(ctx, follower.ID, alice.ID)
	require.NoError(t, err)

	flags, err := svc.IsSubscribed(ctx, follower.ID, []uuid.UUID{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.True(t, flags[alice.ID])
	assert.False(t, flags[bob.ID])
}
