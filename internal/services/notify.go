package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/statusdeck/statusdeck/internal/emails"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
)

const resendEndpoint = "https://api.resend.com/emails"

type ResendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NotificationEnvelope is the payload handed to notification consumers.
// Type discriminates the shape of Data: "component", "incident" or
// "maintenance".
type NotificationEnvelope struct {
	Type   string      `json:"type"`
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

type NotifyInput struct {
	OrgID       uint
	EntityType  string
	EntityID    uint
	Action      string
	Title       string
	Description string
	Status      string
	Data        interface{}
}

// NotifySubscribers emails every verified subscriber of the organization and
// records the dispatch. Failures are logged and swallowed: notification
// delivery must never fail the lifecycle operation that triggered it.
func NotifySubscribers(gdb *gorm.DB, in NotifyInput) {
	var subscribers []models.Subscriber

	err := gdb.Where("org_id = ? AND status = ?", in.OrgID, types.SubscriberSubscribed).
		Find(&subscribers).Error

	if err != nil {
		log.Printf("Failed to load subscribers for org %d: %v", in.OrgID, err)
		return
	}

	sent := 0

	for _, subscriber := range subscribers {
		html, err := emails.RenderNotification(emails.NotificationData{
			EntityType:      in.EntityType,
			Action:          in.Action,
			Title:           in.Title,
			Description:     in.Description,
			Status:          in.Status,
			StatusColor:     emails.StatusColor(in.Status),
			UnsubscribeLink: unsubscribeLink(subscriber.Email, in.OrgID, subscriber.UnsubscribeCode),
		})

		if err != nil {
			log.Printf("Failed to render notification email for %s: %v", subscriber.Email, err)
			continue
		}

		subject := fmt.Sprintf("Status Update: %s %s", in.EntityType, in.Action)

		if err := sendEmail(subscriber.Email, subject, html); err != nil {
			log.Printf("Failed to send notification to %s: %v", subscriber.Email, err)
			continue
		}

		sent++
	}

	recordNotification(gdb, in, sent)
}

func recordNotification(gdb *gorm.DB, in NotifyInput, sent int) {
	payload, err := json.Marshal(NotificationEnvelope{
		Type:   in.EntityType,
		Action: in.Action,
		Data:   in.Data,
	})

	if err != nil {
		log.Printf("Failed to marshal notification payload for org %d: %v", in.OrgID, err)
		return
	}

	dispatchStatus := "sent"

	if sent == 0 {
		dispatchStatus = "skipped"
	}

	now := time.Now()

	notification := models.Notification{
		OrgID:      in.OrgID,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Action:     in.Action,
		Channel:    "email",
		Status:     dispatchStatus,
		Recipients: sent,
		Payload:    payload,
		SentAt:     &now,
	}

	if err := gdb.Create(&notification).Error; err != nil {
		log.Printf("Failed to record notification for org %d: %v", in.OrgID, err)
	}
}

// SendVerificationEmail delivers the double-opt-in email. Fire and forget:
// the subscribe operation succeeds even when delivery does not.
func SendVerificationEmail(email string, orgID uint, verificationCode, unsubscribeCode string) {
	link := fmt.Sprintf("%s/verify?email=%s&orgId=%d&verificationCode=%s",
		clientBaseURL(), url.QueryEscape(email), orgID, verificationCode)

	html, err := emails.RenderVerification(emails.VerificationData{
		VerificationLink: link,
		UnsubscribeLink:  unsubscribeLink(email, orgID, unsubscribeCode),
	})

	if err != nil {
		log.Printf("Failed to render verification email for %s: %v", email, err)
		return
	}

	if err := sendEmail(email, "Verify your email address", html); err != nil {
		log.Printf("Failed to send verification email to %s: %v", email, err)
	}
}

func SendSubscriptionConfirmation(email string, orgID uint, unsubscribeCode string) {
	html, err := emails.RenderSubscriptionConfirmed(emails.ConfirmationData{
		UnsubscribeLink: unsubscribeLink(email, orgID, unsubscribeCode),
	})

	if err != nil {
		log.Printf("Failed to render confirmation email for %s: %v", email, err)
		return
	}

	if err := sendEmail(email, "Subscription Confirmed", html); err != nil {
		log.Printf("Failed to send confirmation email to %s: %v", email, err)
	}
}

func SendUnsubscribeConfirmation(email string) {
	html, err := emails.RenderUnsubscribed()

	if err != nil {
		log.Printf("Failed to render unsubscribe email for %s: %v", email, err)
		return
	}

	if err := sendEmail(email, "Unsubscribe Confirmation", html); err != nil {
		log.Printf("Failed to send unsubscribe email to %s: %v", email, err)
	}
}

func sendEmail(to, subject, html string) error {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY is not set")
	}

	from := os.Getenv("EMAIL_FROM")

	if from == "" {
		from = "status@statusdeck.dev"
	}

	payload := ResendEmailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}

	body, err := json.Marshal(payload)

	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewBuffer(body))

	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	return nil
}

func clientBaseURL() string {
	if base := os.Getenv("CLIENT_URL"); base != "" {
		return base
	}
	return "http://localhost:3000"
}

func unsubscribeLink(email string, orgID uint, code string) string {
	return fmt.Sprintf("%s/unsubscribe?email=%s&orgId=%d&code=%s",
		clientBaseURL(), url.QueryEscape(email), orgID, code)
}
