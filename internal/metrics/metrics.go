package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeTooLow   = "too_low"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// visitorTypeInvalid labels bookings whose visitor type is not a known class.
const visitorTypeInvalid = "invalid"

var (
	bidSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_bid_submissions_total",
			Help: "Bid submissions by outcome",
		},
		[]string{"outcome"},
	)

	bookingCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_booking_creations_total",
			Help: "Booking creations by outcome and visitor type",
		},
		[]string{"outcome", "visitor_type"},
	)

	referenceCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_booking_reference_collisions_total",
			Help: "Generated booking references that were already taken",
		},
	)

	bidSettleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_bid_settle_duration_seconds",
			Help:    "Time spent holding an item while settling a bid",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

func ObserveBid(outcome string, started time.Time) {
	bidSubmissions.WithLabelValues(outcome).Inc()
	bidSettleDuration.Observe(time.Since(started).Seconds())
}

func ObserveBooking(outcome string, class domain.VisitorClass) {
	label := string(class)
	if !class.Valid() {
		label = visitorTypeInvalid
	}
	bookingCreations.WithLabelValues(outcome, label).Inc()
}

func ReferenceCollision() {
	referenceCollisions.Inc()
}

func RateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}
