package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

func accept(amount int64) domain.BidDecision {
	return func(domain.CatalogItem) (domain.Bid, error) {
		return domain.Bid{Amount: decimal.NewFromInt(amount)}, nil
	}
}

func TestStore_PlaceBid(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	item, err := s.CreateItem(ctx, domain.CatalogItem{BasePrice: decimal.NewFromInt(10), Status: domain.ItemAvailable})
	require.NoError(t, err)

	first, err := s.PlaceBid(ctx, item.ID, accept(20))
	require.NoError(t, err)
	second, err := s.PlaceBid(ctx, item.ID, accept(30))
	require.NoError(t, err)

	bids, err := s.ListBids(ctx, item.ID, 0)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, second.ID, bids[0].ID)
	assert.True(t, bids[0].IsWinning)
	assert.Equal(t, first.ID, bids[1].ID)
	assert.False(t, bids[1].IsWinning)

	got, err := s.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemBidding, got.Status)
	assert.True(t, got.CurrentBid.Decimal.Equal(decimal.NewFromInt(30)))
}

func TestStore_PlaceBid_DecisionErrorLeavesStateUntouched(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	item, err := s.CreateItem(ctx, domain.CatalogItem{Status: domain.ItemAvailable})
	require.NoError(t, err)

	_, err = s.PlaceBid(ctx, item.ID, func(domain.CatalogItem) (domain.Bid, error) {
		return domain.Bid{}, &domain.BidTooLowError{}
	})
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	bids, err := s.ListBids(ctx, item.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, bids)

	got, err := s.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.CurrentBid.Valid)
	assert.Equal(t, domain.ItemAvailable, got.Status)
}

func TestStore_PlaceBid_NotFound(t *testing.T) {
	_, err := NewStore().PlaceBid(context.Background(), 42, accept(1))

	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestStore_PlaceBid_DifferentItemsDoNotBlock(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, err := s.CreateItem(ctx, domain.CatalogItem{})
	require.NoError(t, err)
	b, err := s.CreateItem(ctx, domain.CatalogItem{})
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = s.PlaceBid(ctx, a.ID, func(domain.CatalogItem) (domain.Bid, error) {
			close(entered)
			<-release
			return domain.Bid{Amount: decimal.NewFromInt(1)}, nil
		})
	}()
	<-entered

	finished := make(chan error, 1)
	go func() {
		_, err := s.PlaceBid(ctx, b.ID, accept(5))
		finished <- err
	}()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bid on another item was blocked")
	}

	close(release)
	<-done
}

func TestStore_ListBids_Ordering(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	item, err := s.CreateItem(ctx, domain.CatalogItem{})
	require.NoError(t, err)

	for _, amount := range []int64{10, 30, 20, 30} {
		_, err := s.PlaceBid(ctx, item.ID, accept(amount))
		require.NoError(t, err)
	}

	bids, err := s.ListBids(ctx, item.ID, 3)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	assert.Equal(t, uint(4), bids[0].ID, "later of two equal amounts first")
	assert.Equal(t, uint(2), bids[1].ID)
	assert.Equal(t, uint(3), bids[2].ID)
}

func TestStore_CreateBooking_SkipsTakenCodes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	codes := []string{"MKWAAAAAAAA", "MKWAAAAAAAA", "MKWBBBBBBBB"}
	issue := func(ctx context.Context, claim domain.ReferenceClaim) (string, error) {
		for _, c := range codes {
			ok, err := claim(ctx, c)
			if err != nil {
				return "", err
			}
			if ok {
				codes = codes[1:]
				return c, nil
			}
			codes = codes[1:]
		}
		return "", domain.ErrReferenceExhausted
	}

	first, err := s.CreateBooking(ctx, domain.Booking{Status: domain.BookingPending}, issue)
	require.NoError(t, err)
	assert.Equal(t, "MKWAAAAAAAA", first.Reference)

	second, err := s.CreateBooking(ctx, domain.Booking{Status: domain.BookingPending}, issue)
	require.NoError(t, err)
	assert.Equal(t, "MKWBBBBBBBB", second.Reference)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_CreateBooking_ConcurrentSameCode(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wins, losses int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateBooking(ctx, domain.Booking{}, func(ctx context.Context, claim domain.ReferenceClaim) (string, error) {
				ok, err := claim(ctx, "MKW00000000")
				if err != nil {
					return "", err
				}
				if !ok {
					return "", domain.ErrReferenceExhausted
				}
				return "MKW00000000", nil
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				losses++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 49, losses)
}

func TestStore_UpdateBooking(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateBooking(ctx, domain.Booking{Status: domain.BookingPending}, func(ctx context.Context, claim domain.ReferenceClaim) (string, error) {
		_, err := claim(ctx, "MKW12345678")
		return "MKW12345678", err
	})
	require.NoError(t, err)

	updated, err := s.UpdateBooking(ctx, created.Reference, func(b domain.Booking) (domain.Booking, error) {
		b.Status = domain.BookingConfirmed
		return b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	found, err := s.FindBookingByReference(ctx, created.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, found.Status)

	_, err = s.UpdateBooking(ctx, "MKWFFFFFFFF", func(b domain.Booking) (domain.Booking, error) { return b, nil })
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestStore_Staff(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.Create(ctx, domain.Staff{Email: "curator@example.com"})
	require.NoError(t, err)

	_, err = s.Create(ctx, domain.Staff{Email: "curator@example.com"})
	assert.ErrorIs(t, err, domain.ErrStaffEmailExists)

	found, err := s.FindByEmail(ctx, "curator@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrStaffNotFound)
}

func TestStore_Sites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	site, err := s.CreateSite(ctx, domain.TourismSite{Name: "Kalenga", IsActive: true})
	require.NoError(t, err)

	found, err := s.FindSite(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kalenga", found.Name)

	_, err = s.FindSite(ctx, site.ID+1)
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestStore_SiteSlugsAndActiveListing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, site := range []domain.TourismSite{
		{Name: "Kalenga Museum", Slug: "kalenga-museum", SiteType: "museum", IsActive: true},
		{Name: "Ruaha", Slug: "ruaha", SiteType: "game_reserve", IsActive: true},
		{Name: "Old fort", Slug: "old-fort", SiteType: "museum"},
	} {
		_, err := s.CreateSite(ctx, site)
		require.NoError(t, err)
	}

	_, err := s.CreateSite(ctx, domain.TourismSite{Name: "Ruaha again", Slug: "ruaha"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	active, err := s.FindActiveSites(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "kalenga-museum", active[0].Slug)

	museums, err := s.FindActiveSites(ctx, "museum")
	require.NoError(t, err)
	require.Len(t, museums, 1)
	assert.Equal(t, "Kalenga Museum", museums[0].Name)

	found, err := s.FindSiteBySlug(ctx, "old-fort")
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	_, err = s.FindSiteBySlug(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestStore_FindItems(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, item := range []domain.CatalogItem{
		{Name: "Hehe shield", Slug: "hehe-shield", ProductType: domain.ProductPhysical, Status: domain.ItemAvailable, ArtistName: "Iringa Carvers"},
		{Name: "Chief portrait", Slug: "chief-portrait", ProductType: domain.ProductNFT, Status: domain.ItemBidding, Description: "Painting of Chief Mkwawa"},
		{Name: "Woven basket", Slug: "woven-basket", ProductType: domain.ProductPhysical, Status: domain.ItemSold, ArtistName: "Kalenga Weavers"},
	} {
		_, err := s.CreateItem(ctx, item)
		require.NoError(t, err)
	}

	_, err := s.CreateItem(ctx, domain.CatalogItem{Name: "Shield", Slug: "hehe-shield"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	items, total, err := s.FindItems(ctx, domain.ItemFilter{ExcludeStatus: domain.ItemSold}, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "chief-portrait", items[0].Slug, "newest first")

	items, _, err = s.FindItems(ctx, domain.ItemFilter{Search: "mkwawa"}, 12, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chief portrait", items[0].Name)

	items, _, err = s.FindItems(ctx, domain.ItemFilter{ProductType: domain.ProductPhysical, Search: "WEAVERS"}, 12, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "woven-basket", items[0].Slug)

	items, total, err = s.FindItems(ctx, domain.ItemFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 1)
	assert.Equal(t, "hehe-shield", items[0].Slug)

	items, _, err = s.FindItems(ctx, domain.ItemFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	found, err := s.FindItemBySlug(ctx, "woven-basket")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemSold, found.Status)
}
