package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "clabs/internal/errors"
	"clabs/internal/external"
	"clabs/internal/logger"
	"clabs/internal/models"
)

var (
	mobilePattern     = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	nationalIDPattern = regexp.MustCompile(`^[0-9]{12}$`)
)

// normalizeRegistrant trims the form and enforces the registrant contract
// shared by paid and free registration.
func normalizeRegistrant(r models.Registrant) (models.Registrant, error) {
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.GuardianName = strings.TrimSpace(r.GuardianName)
	r.Institution = strings.TrimSpace(r.Institution)
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.MobileNumber = strings.ReplaceAll(strings.TrimSpace(r.MobileNumber), " ", "")
	r.NationalIDNumber = strings.ReplaceAll(strings.TrimSpace(r.NationalIDNumber), " ", "")
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)

	if r.StudentName == "" {
		return r, apperrors.Validation("studentName is required")
	}
	if r.MobileNumber == "" {
		return r, apperrors.Validation("mobileNumber is required")
	}
	if !mobilePattern.MatchString(r.MobileNumber) {
		return r, apperrors.Validation("mobileNumber must contain 10 to 15 digits")
	}
	if r.NationalIDNumber != "" && !nationalIDPattern.MatchString(r.NationalIDNumber) {
		return r, apperrors.Validation("nationalIdNumber must contain 12 digits")
	}
	return r, nil
}

func newRegistration(id string, eventID int64, r models.Registrant) *models.Registration {
	return &models.Registration{
		ID:               id,
		EventID:          eventID,
		StudentName:      r.StudentName,
		GuardianName:     r.GuardianName,
		Institution:      r.Institution,
		ClassName:        r.ClassName,
		MobileNumber:     r.MobileNumber,
		NationalIDNumber: r.NationalIDNumber,
		City:             r.City,
		State:            r.State,
	}
}

// gatewayError maps a gateway client failure onto the error taxonomy.
func gatewayError(err error) error {
	if errors.Is(err, external.ErrNotConfigured) {
		return apperrors.Configuration("payment gateway credentials are not configured")
	}

	var gwErr *external.GatewayError
	if errors.As(err, &gwErr) {
		return apperrors.Upstream(gwErr.Code, gwErr.Description, err)
	}
	return apperrors.Upstream("GATEWAY_UNREACHABLE", "payment gateway did not respond", err)
}

// publish sends an audit record; failures are logged and never fail the caller.
func publish(ctx context.Context, p Publisher, subject string, record models.AuditRecord) {
	if p == nil {
		return
	}

	record.Type = subject
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := p.Publish(subject, record); err != nil {
		logger.WithContext(ctx).Error("Failed to publish audit event",
			"error", err,
			"event_type", subject,
			"order_id", record.OrderID,
			"payment_id", record.PaymentID)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// file stores a copy of a paid registration in the contact inbox. It runs
// detached from the request: the request context may already be cancelled
// when the write happens, and its outcome is only logged.
func (b *inboxBackup) file(ctx context.Context, reg *models.Registration, eventTitle string) {
	if b == nil || b.inbox == nil {
		return
	}

	msg := &models.ContactMessage{
		Name:    reg.StudentName,
		Phone:   reg.MobileNumber,
		Subject: fmt.Sprintf("Event registration: %s", eventTitle),
		Message: fmt.Sprintf(
			"Registration %s for event %d\nStudent: %s\nGuardian: %s\nInstitution: %s\nClass: %s\nMobile: %s\nCity: %s, %s\nOrder: %s\nPayment: %s\nAmount paid (minor units): %d",
			reg.ID, reg.EventID, reg.StudentName, reg.GuardianName, reg.Institution, reg.ClassName,
			reg.MobileNumber, reg.City, reg.State,
			derefString(reg.OrderID), derefString(reg.PaymentID), reg.AmountPaidMinor),
		Source: models.ContactSourceRegistration,
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		backupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()

		if err := b.inbox.Create(backupCtx, msg); err != nil {
			b.metrics.InboxBackupFailed()
			logger.WithContext(backupCtx).Error("Failed to file registration backup into inbox",
				"error", err,
				"registration_id", reg.ID,
				"event_id", reg.EventID)
		}
	}()
}
