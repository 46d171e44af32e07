package services

import (
	"testing"
	"time"

	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubscribeCreatesPendingSubscriber(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	outcome, err := Subscribe(gdb, org.ID, "Reader@Example.com")
	require.NoError(t, err)
	assert.Equal(t, SubscribeCreated, outcome)

	var subscriber models.Subscriber
	require.NoError(t, gdb.Where("org_id = ?", org.ID).First(&subscriber).Error)

	assert.Equal(t, "reader@example.com", subscriber.Email)
	assert.Equal(t, types.SubscriberPending, subscriber.Status)
	assert.False(t, subscriber.IsVerified)
	assert.NotEmpty(t, subscriber.VerificationCode)
	assert.NotEmpty(t, subscriber.UnsubscribeCode)
	assert.WithinDuration(t, time.Now().Add(verificationCodeTTL), subscriber.VerificationCodeExpiresAt, 5*time.Second)
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubscribeWithinExpiryWindowRejected(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)

	_, err = Subscribe(gdb, org.ID, "reader@example.com")
	require.ErrorIs(t, err, ErrConflict)

	// No second code issued
	var count int64
	require.NoError(t, gdb.Model(&models.Subscriber{}).Where("org_id = ?", org.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscribeAfterExpiryIssuesFreshCode(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)

	var before models.Subscriber
	require.NoError(t, gdb.Where("org_id = ?", org.ID).First(&before).Error)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, gdb.Model(&before).Update("verification_code_expires_at", expired).Error)

	outcome, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, SubscribeCodeResent, outcome)

	var after models.Subscriber
	require.NoError(t, gdb.Where("org_id = ?", org.ID).First(&after).Error)

	assert.NotEqual(t, before.VerificationCode, after.VerificationCode)
	assert.True(t, after.VerificationCodeExpiresAt.After(time.Now()))
}

func TestVerifySubscriber(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)

	var pending models.Subscriber
	require.NoError(t, gdb.Where("org_id = ?", org.ID).First(&pending).Error)

	verified, err := VerifySubscriber(gdb, org.ID, pending.Email, pending.VerificationCode)
	require.NoError(t, err)

	assert.Equal(t, types.SubscriberSubscribed, verified.Status)
	assert.True(t, verified.IsVerified)
	assert.NotNil(t, verified.VerifiedAt)
	assert.NotNil(t, verified.SubscribedAt)
}

func TestVerifySubscriberBadCode(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)

	_, err = VerifySubscriber(gdb, org.ID, "reader@example.com", "wrong-code")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeWhileSubscribedRejected(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	subscribeAndVerify(t, gdb, org.ID, "reader@example.com")

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUnsubscribeAndResubscribe(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	subscriber := subscribeAndVerify(t, gdb, org.ID, "reader@example.com")

	unsubscribed, err := UnsubscribeSubscriber(gdb, org.ID, subscriber.Email, subscriber.UnsubscribeCode)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriberUnsubscribed, unsubscribed.Status)
	assert.NotNil(t, unsubscribed.UnsubscribedAt)

	// A verified address resubscribes without a new verification round
	outcome, err := Subscribe(gdb, org.ID, subscriber.Email)
	require.NoError(t, err)
	assert.Equal(t, SubscribeResubscribed, outcome)

	var restored models.Subscriber
	require.NoError(t, gdb.Where("org_id = ? AND email = ?", org.ID, subscriber.Email).First(&restored).Error)
	assert.Equal(t, types.SubscriberSubscribed, restored.Status)
	assert.Nil(t, restored.UnsubscribedAt)
}

func TestUnsubscribeBadCode(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	subscriber := subscribeAndVerify(t, gdb, org.ID, "reader@example.com")

	_, err := UnsubscribeSubscriber(gdb, org.ID, subscriber.Email, "wrong-code")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSubscriber(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	subscriber := subscribeAndVerify(t, gdb, org.ID, "reader@example.com")

	require.NoError(t, DeleteSubscriber(gdb, subscriber.ID, org.ID))

	subscribers, err := ListSubscribers(gdb, org.ID)
	require.NoError(t, err)
	assert.Empty(t, subscribers)
}

func TestSubscribeAgainAfterOperatorDelete(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	subscriber := subscribeAndVerify(t, gdb, org.ID, "reader@example.com")

	require.NoError(t, DeleteSubscriber(gdb, subscriber.ID, org.ID))

	// A deleted address must be free to subscribe from scratch
	outcome, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, SubscribeCreated, outcome)

	var recreated models.Subscriber
	require.NoError(t, gdb.Where("org_id = ? AND email = ?", org.ID, "reader@example.com").First(&recreated).Error)
	assert.Equal(t, types.SubscriberPending, recreated.Status)
	assert.False(t, recreated.IsVerified)
}

func TestVerifyAndUnsubscribeNormalizeEmailCasing(t *testing.T) {
	gdb := openTestDB(t)
	org, _ := seedOrg(t, gdb)

	_, err := Subscribe(gdb, org.ID, "reader@example.com")
	require.NoError(t, err)

	var pending models.Subscriber
	require.NoError(t, gdb.Where("org_id = ?", org.ID).First(&pending).Error)

	verified, err := VerifySubscriber(gdb, org.ID, " Reader@Example.COM ", pending.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriberSubscribed, verified.Status)

	unsubscribed, err := UnsubscribeSubscriber(gdb, org.ID, "READER@example.com", verified.UnsubscribeCode)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriberUnsubscribed, unsubscribed.Status)
}

func subscribeAndVerify(t *testing.T, gdb *gorm.DB, orgID uint, email string) *models.Subscriber {
	t.Helper()

	_, err := Subscribe(gdb, orgID, email)
	require.NoError(t, err)

	var pending models.Subscriber
	require.NoError(t, gdb.Where("org_id = ? AND email = ?", orgID, email).First(&pending).Error)

	verified, err := VerifySubscriber(gdb, orgID, pending.Email, pending.VerificationCode)
	require.NoError(t, err)

	return verified
}
