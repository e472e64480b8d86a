package entity

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingCreated                       NotificationType = "booking_created"
	NotificationBookingAccepted                      NotificationType = "booking_accepted"
	NotificationBookingCancelledByUser               NotificationType = "booking_cancelled_by_user"
	NotificationBookingReassignedAfterBeingCancelled NotificationType = "booking_reassigned_after_cancelled"
	NotificationBookingReassignedAfterBeingRejected  NotificationType = "booking_reassigned_after_rejected"
	NotificationBookingCompleted                     NotificationType = "booking_completed"
	NotificationBookingReviewed                      NotificationType = "booking_reviewed"
)

type Notification struct {
	BaseSimple
	UserID    uuid.UUID        `db:"user_id"`
	BookingID *uuid.UUID       `db:"booking_id"`
	Type      NotificationType `db:"type"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	IsRead    bool             `db:"is_read"`
}
