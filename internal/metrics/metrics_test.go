package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

func TestObserveBooking_UnknownVisitorTypesShareOneLabel(t *testing.T) {
	invalid := bookingCreations.WithLabelValues(OutcomeInvalid, visitorTypeInvalid)
	before := testutil.ToFloat64(invalid)
	series := testutil.CollectAndCount(bookingCreations)

	for _, class := range []domain.VisitorClass{"resident", "tourist-1", "tourist-2", ""} {
		ObserveBooking(OutcomeInvalid, class)
	}

	assert.Equal(t, before+4, testutil.ToFloat64(invalid))
	assert.Equal(t, series, testutil.CollectAndCount(bookingCreations))
}

func TestObserveBooking_KnownVisitorType(t *testing.T) {
	local := bookingCreations.WithLabelValues(OutcomeAccepted, string(domain.VisitorLocal))
	before := testutil.ToFloat64(local)

	ObserveBooking(OutcomeAccepted, domain.VisitorLocal)

	assert.Equal(t, before+1, testutil.ToFloat64(local))
}
