package triggers

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

type notificationCreator interface {
	CreateFromTrigger(ctx context.Context, params notifications.TriggerParams) (*models.Notification, error)
}

// Comment previews are clipped so one long comment cannot blow up push
// payload size.
const maxCommentPreview = 140

// Service is the typed trigger surface application code calls. Each helper
// maps a domain event to its trigger, so callers never hand-assemble event
// names or placeholder maps. Suppressed notifications return (nil, nil).
type Service struct {
	factory notificationCreator
	logg    *logger.Logger
}

// NewService wires the trigger helpers.
func NewService(factory notificationCreator, logg *logger.Logger) (*Service, error) {
	if factory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification factory required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Service{factory: factory, logg: logg}, nil
}

func (s *Service) fire(ctx context.Context, userID uuid.UUID, event string, text map[string]string, data map[string]any) (*models.Notification, error) {
	return s.factory.CreateFromTrigger(ctx, notifications.TriggerParams{
		UserID:       userID,
		TriggerEvent: event,
		TitleData:    text,
		BodyData:     text,
		Data:         data,
	})
}

// trip_updates

func (s *Service) BookingConfirmed(ctx context.Context, userID uuid.UUID, destination, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "booking_confirmed",
		map[string]string{"destination": destination},
		map[string]any{"bookingId": bookingID, "destination": destination})
}

func (s *Service) BookingCancelled(ctx context.Context, userID uuid.UUID, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "booking_cancelled", nil, map[string]any{"bookingId": bookingID})
}

func (s *Service) FlightDelayed(ctx context.Context, userID uuid.UUID, destination, newTime, flightID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "flight_delayed",
		map[string]string{"destination": destination, "new_time": newTime},
		map[string]any{"flightId": flightID, "destination": destination})
}

func (s *Service) ItineraryChanged(ctx context.Context, userID uuid.UUID, destination, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "itinerary_changed",
		map[string]string{"destination": destination},
		map[string]any{"bookingId": bookingID})
}

func (s *Service) TripStartingSoon(ctx context.Context, userID uuid.UUID, destination string, days int) (*models.Notification, error) {
	return s.fire(ctx, userID, "trip_starting_soon",
		map[string]string{"destination": destination, "days": strconv.Itoa(days)},
		map[string]any{"destination": destination})
}

// price_alerts

func (s *Service) PriceDrop(ctx context.Context, userID uuid.UUID, destination, price, url string) (*models.Notification, error) {
	data := map[string]any{"destination": destination, "price": price}
	if url != "" {
		data["url"] = url
	}
	return s.fire(ctx, userID, "price_drop",
		map[string]string{"destination": destination, "price": price}, data)
}

func (s *Service) DealExpiringSoon(ctx context.Context, userID uuid.UUID, destination string, hours int) (*models.Notification, error) {
	return s.fire(ctx, userID, "deal_expiring_soon",
		map[string]string{"destination": destination, "hours": strconv.Itoa(hours)},
		map[string]any{"destination": destination})
}

// promotions

func (s *Service) SpecialOffer(ctx context.Context, userID uuid.UUID, offerDescription, offerID string) (*models.Notification, error) {
	data := map[string]any{}
	if offerID != "" {
		data["offerId"] = offerID
	}
	return s.fire(ctx, userID, "special_offer",
		map[string]string{"offer_description": offerDescription}, data)
}

func (s *Service) SeasonalSale(ctx context.Context, userID uuid.UUID, discount, destination string) (*models.Notification, error) {
	return s.fire(ctx, userID, "seasonal_sale",
		map[string]string{"discount": discount, "destination": destination},
		map[string]any{"discount": discount, "destination": destination})
}

func (s *Service) ReferralBonus(ctx context.Context, userID uuid.UUID, amount string) (*models.Notification, error) {
	return s.fire(ctx, userID, "referral_bonus",
		map[string]string{"amount": amount},
		map[string]any{"amount": amount})
}

// social

func (s *Service) NewFollower(ctx context.Context, userID uuid.UUID, username, followerID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "new_follower",
		map[string]string{"username": username},
		map[string]any{"followerId": followerID, "username": username})
}

func (s *Service) VideoLiked(ctx context.Context, userID uuid.UUID, username, videoTitle, videoID, likerID string) (*models.Notification, error) {
	title := videoTitle
	if title == "" {
		title = "your video"
	}
	return s.fire(ctx, userID, "video_liked",
		map[string]string{"username": username, "video_title": title},
		map[string]any{"likerId": likerID, "videoId": videoID, "username": username, "videoTitle": videoTitle})
}

func (s *Service) CommentReceived(ctx context.Context, userID uuid.UUID, username, commentContent, videoID, commentID, commenterID string) (*models.Notification, error) {
	preview := truncate(commentContent, maxCommentPreview)
	return s.fire(ctx, userID, "comment_received",
		map[string]string{"username": username, "comment_content": preview},
		map[string]any{"commenterId": commenterID, "commentId": commentID, "videoId": videoID, "commentContent": preview, "username": username})
}

func (s *Service) MentionReceived(ctx context.Context, userID uuid.UUID, username, commentContent, videoID, commentID, mentionerID string) (*models.Notification, error) {
	preview := truncate(commentContent, maxCommentPreview)
	return s.fire(ctx, userID, "mention_received",
		map[string]string{"username": username, "comment_content": preview},
		map[string]any{"mentionerId": mentionerID, "commentId": commentID, "videoId": videoID, "commentContent": preview, "username": username})
}

// system

func (s *Service) SecurityAlert(ctx context.Context, userID uuid.UUID) (*models.Notification, error) {
	return s.fire(ctx, userID, "security_alert", nil, nil)
}

func (s *Service) AccountVerified(ctx context.Context, userID uuid.UUID) (*models.Notification, error) {
	return s.fire(ctx, userID, "account_verified", nil, nil)
}

func (s *Service) PasswordChanged(ctx context.Context, userID uuid.UUID) (*models.Notification, error) {
	return s.fire(ctx, userID, "password_changed", nil, nil)
}

// booking

func (s *Service) PaymentReceived(ctx context.Context, userID uuid.UUID, amount, destination, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "payment_received",
		map[string]string{"amount": amount, "destination": destination},
		map[string]any{"bookingId": bookingID, "amount": amount})
}

func (s *Service) BookingReminder(ctx context.Context, userID uuid.UUID, destination, date, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "booking_reminder",
		map[string]string{"destination": destination, "date": date},
		map[string]any{"bookingId": bookingID})
}

func (s *Service) CheckInOpen(ctx context.Context, userID uuid.UUID, destination, flightID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "check_in_open",
		map[string]string{"destination": destination},
		map[string]any{"flightId": flightID})
}

// reminder

func (s *Service) FlightWithin24Hours(ctx context.Context, userID uuid.UUID, destination, flightID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "24_hour_flight",
		map[string]string{"destination": destination},
		map[string]any{"flightId": flightID})
}

func (s *Service) TripEndReminder(ctx context.Context, userID uuid.UUID, destination, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "trip_end_reminder",
		map[string]string{"destination": destination},
		map[string]any{"bookingId": bookingID})
}

func (s *Service) ReviewRequest(ctx context.Context, userID uuid.UUID, destination, bookingID string) (*models.Notification, error) {
	return s.fire(ctx, userID, "review_request",
		map[string]string{"destination": destination},
		map[string]any{"bookingId": bookingID})
}

// Broadcast fans one trigger out to many users, typically for announcements.
// Per-user failures are collected instead of aborting the rest; the result
// map has one entry per input user.
func (s *Service) Broadcast(ctx context.Context, userIDs []uuid.UUID, event string, text map[string]string, data map[string]any) map[uuid.UUID]error {
	results := make(map[uuid.UUID]error, len(userIDs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := s.fire(ctx, userID, event, text, data)
			mu.Lock()
			results[userID] = err
			mu.Unlock()
		}(userID)
	}
	wg.Wait()

	return results
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
