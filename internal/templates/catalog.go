package templates

import (
	"github.com/alanwtom/travora-backend/pkg/db/models"
	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
)

func channels(chs ...enums.NotificationChannel) dbtypes.ChannelArray {
	return dbtypes.ChannelArray(chs)
}

// Catalog returns the built-in template catalog. It mirrors the seed shipped
// in the migrations and backs the resolver when the database copy is
// unavailable.
func Catalog() []models.NotificationTemplate {
	push := enums.ChannelPush
	email := enums.ChannelEmail
	inApp := enums.ChannelInApp

	return []models.NotificationTemplate{
		// trip_updates
		{
			TriggerEvent:    "booking_confirmed",
			Category:        enums.CategoryTripUpdates,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Booking confirmed",
			BodyTemplate:    "Your trip to {destination} is confirmed. See you soon!",
		},
		{
			TriggerEvent:    "booking_cancelled",
			Category:        enums.CategoryTripUpdates,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Booking cancelled",
			BodyTemplate:    "Your booking was cancelled. Any refund will be processed within 5-7 business days.",
		},
		{
			TriggerEvent:    "flight_delayed",
			Category:        enums.CategoryTripUpdates,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Flight to {destination} delayed",
			BodyTemplate:    "Your flight is delayed. New departure time: {new_time}.",
		},
		{
			TriggerEvent:    "itinerary_changed",
			Category:        enums.CategoryTripUpdates,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Itinerary updated",
			BodyTemplate:    "Your itinerary for {destination} has changed. Review the latest details.",
		},
		{
			TriggerEvent:    "trip_starting_soon",
			Category:        enums.CategoryTripUpdates,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Trip starting soon",
			BodyTemplate:    "Your trip to {destination} starts in {days} days. Time to start packing!",
		},

		// price_alerts
		{
			TriggerEvent:    "price_drop",
			Category:        enums.CategoryPriceAlerts,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Price drop: {destination}",
			BodyTemplate:    "Flights to {destination} just dropped to {price}. Book before fares change.",
		},
		{
			TriggerEvent:    "deal_expiring_soon",
			Category:        enums.CategoryPriceAlerts,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Deal ending soon",
			BodyTemplate:    "Your saved deal for {destination} expires in {hours} hours.",
		},

		// promotions
		{
			TriggerEvent:    "special_offer",
			Category:        enums.CategoryPromotions,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Special offer",
			BodyTemplate:    "{offer_description}",
		},
		{
			TriggerEvent:    "seasonal_sale",
			Category:        enums.CategoryPromotions,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(email, inApp),
			TitleTemplate:   "Seasonal sale",
			BodyTemplate:    "Save {discount} on trips to {destination} for a limited time.",
		},
		{
			TriggerEvent:    "referral_bonus",
			Category:        enums.CategoryPromotions,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Referral bonus earned",
			BodyTemplate:    "You earned {amount} for referring a friend. It has been added to your account.",
		},

		// social
		{
			TriggerEvent:    "new_follower",
			Category:        enums.CategorySocial,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "New follower",
			BodyTemplate:    "{username} started following you.",
		},
		{
			TriggerEvent:    "video_liked",
			Category:        enums.CategorySocial,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "New like",
			BodyTemplate:    "{username} liked {video_title}.",
		},
		{
			TriggerEvent:    "comment_received",
			Category:        enums.CategorySocial,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "{username} commented",
			BodyTemplate:    "{username}: {comment_content}",
		},
		{
			TriggerEvent:    "mention_received",
			Category:        enums.CategorySocial,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "{username} mentioned you",
			BodyTemplate:    "{username} mentioned you in a comment: {comment_content}",
		},

		// system
		{
			TriggerEvent:    "security_alert",
			Category:        enums.CategorySystem,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Security alert",
			BodyTemplate:    "We noticed a new sign-in to your account. If this was not you, change your password now.",
		},
		{
			TriggerEvent:    "account_verified",
			Category:        enums.CategorySystem,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Account verified",
			BodyTemplate:    "Your account has been verified. Welcome aboard!",
		},
		{
			TriggerEvent:    "password_changed",
			Category:        enums.CategorySystem,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(email, inApp),
			TitleTemplate:   "Password changed",
			BodyTemplate:    "Your password was changed. If you did not do this, contact support immediately.",
		},

		// booking
		{
			TriggerEvent:    "payment_received",
			Category:        enums.CategoryBooking,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, email, inApp),
			TitleTemplate:   "Payment received",
			BodyTemplate:    "We received your payment of {amount} for {destination}.",
		},
		{
			TriggerEvent:    "booking_reminder",
			Category:        enums.CategoryBooking,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Upcoming booking",
			BodyTemplate:    "Reminder: your booking for {destination} is on {date}.",
		},
		{
			TriggerEvent:    "check_in_open",
			Category:        enums.CategoryBooking,
			Priority:        enums.PriorityMedium,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Check-in open",
			BodyTemplate:    "Online check-in for your trip to {destination} is now open.",
		},

		// reminder
		{
			TriggerEvent:    "24_hour_flight",
			Category:        enums.CategoryReminder,
			Priority:        enums.PriorityHigh,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Flight tomorrow",
			BodyTemplate:    "Your flight to {destination} departs in 24 hours. Safe travels!",
		},
		{
			TriggerEvent:    "trip_end_reminder",
			Category:        enums.CategoryReminder,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "Trip ending soon",
			BodyTemplate:    "Your trip to {destination} ends soon. Double-check your checkout time.",
		},
		{
			TriggerEvent:    "review_request",
			Category:        enums.CategoryReminder,
			Priority:        enums.PriorityLow,
			DefaultChannels: channels(push, inApp),
			TitleTemplate:   "How was your trip?",
			BodyTemplate:    "Tell other travelers about {destination}. Leave a quick review.",
		},
	}
}
