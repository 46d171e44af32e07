package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
)

// Verification codes expire after this window; a repeat subscribe request
// inside it is rejected, one after it issues fresh codes and restarts the
// timer.
const verificationCodeTTL = 15 * time.Minute

type SubscribeOutcome int

const (
	SubscribeCreated SubscribeOutcome = iota
	SubscribeResubscribed
	SubscribeCodeResent
)

// Subscribe registers an email for an organization's notifications.
// New addresses get a PENDING subscriber with verification and unsubscribe
// codes and a verification email. Known addresses follow the state machine:
// verified+unsubscribed resubscribes, pending+expired gets fresh codes,
// pending+valid and already-subscribed are conflicts.
func Subscribe(gdb *gorm.DB, orgID uint, email string) (SubscribeOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}

	var existing models.Subscriber

	err := gdb.Where("org_id = ? AND email = ?", orgID, email).First(&existing).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if err == nil {
		switch {
		case existing.IsVerified && existing.Status == types.SubscriberUnsubscribed:
			now := time.Now()
			existing.Status = types.SubscriberSubscribed
			existing.SubscribedAt = &now
			existing.UnsubscribedAt = nil

			if err := gdb.Save(&existing).Error; err != nil {
				return 0, err
			}

			return SubscribeResubscribed, nil

		case existing.IsVerified && existing.Status == types.SubscriberSubscribed:
			return 0, fmt.Errorf("%w: email already subscribed", ErrConflict)

		case !existing.IsVerified && existing.VerificationCodeExpiresAt.Before(time.Now()):
			existing.VerificationCode = uuid.NewString()
			existing.UnsubscribeCode = uuid.NewString()
			existing.VerificationCodeExpiresAt = time.Now().Add(verificationCodeTTL)
			existing.Status = types.SubscriberPending

			if err := gdb.Save(&existing).Error; err != nil {
				return 0, err
			}

			SendVerificationEmail(existing.Email, orgID, existing.VerificationCode, existing.UnsubscribeCode)

			return SubscribeCodeResent, nil

		default:
			return 0, fmt.Errorf("%w: verification email already sent", ErrConflict)
		}
	}

	subscriber := models.Subscriber{
		OrgID:                     orgID,
		Email:                     email,
		Status:                    types.SubscriberPending,
		VerificationCode:          uuid.NewString(),
		UnsubscribeCode:           uuid.NewString(),
		VerificationCodeExpiresAt: time.Now().Add(verificationCodeTTL),
	}

	if err := gdb.Create(&subscriber).Error; err != nil {
		return 0, err
	}

	SendVerificationEmail(subscriber.Email, orgID, subscriber.VerificationCode, subscriber.UnsubscribeCode)

	return SubscribeCreated, nil
}

// VerifySubscriber confirms a verification code and moves the subscriber to
// SUBSCRIBED. An unknown (org, email, code) triple and an already-verified
// subscriber both report not found, leaking nothing about which was wrong.
func VerifySubscriber(gdb *gorm.DB, orgID uint, email, code string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var subscriber models.Subscriber

	err := gdb.Where("org_id = ? AND email = ? AND verification_code = ?", orgID, email, code).
		First(&subscriber).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if subscriber.IsVerified && subscriber.Status == types.SubscriberSubscribed {
		return nil, ErrNotFound
	}

	now := time.Now()
	subscriber.Status = types.SubscriberSubscribed
	subscriber.IsVerified = true
	subscriber.VerifiedAt = &now
	subscriber.SubscribedAt = &now

	if err := gdb.Save(&subscriber).Error; err != nil {
		return nil, err
	}

	SendSubscriptionConfirmation(subscriber.Email, orgID, subscriber.UnsubscribeCode)

	return &subscriber, nil
}

// UnsubscribeSubscriber opts a verified subscriber out using the unsubscribe
// code.
func UnsubscribeSubscriber(gdb *gorm.DB, orgID uint, email, code string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var subscriber models.Subscriber

	err := gdb.Where("org_id = ? AND email = ? AND unsubscribe_code = ?", orgID, email, code).
		First(&subscriber).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !subscriber.IsVerified || subscriber.Status != types.SubscriberSubscribed {
		return nil, ErrNotFound
	}

	now := time.Now()
	subscriber.Status = types.SubscriberUnsubscribed
	subscriber.UnsubscribedAt = &now

	if err := gdb.Save(&subscriber).Error; err != nil {
		return nil, err
	}

	SendUnsubscribeConfirmation(subscriber.Email)

	return &subscriber, nil
}

func ListSubscribers(gdb *gorm.DB, orgID uint) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber

	err := gdb.Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&subscribers).Error

	return subscribers, err
}

// DeleteSubscriber removes the row outright. A soft delete would keep the
// (org_id, email) unique index occupied and block the address from ever
// subscribing again.
func DeleteSubscriber(gdb *gorm.DB, subscriberID, orgID uint) error {
	var subscriber models.Subscriber

	if err := gdb.Where("id = ? AND org_id = ?", subscriberID, orgID).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return gdb.Unscoped().Delete(&subscriber).Error
}
