// Package memory keeps the marketplace state in process. Bid settlement is
// serialised per item with a mutex keyed by item id; writes to the shared
// maps are short and happen under a single store lock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

type itemEntry struct {
	item domain.CatalogItem
	bids []domain.Bid
}

type Store struct {
	mu       sync.RWMutex
	items    map[uint]*itemEntry
	sites    map[uint]domain.TourismSite
	bookings map[string]domain.Booking
	staff    map[uint]domain.Staff

	itemLocks sync.Map

	lastItemID    uint
	lastBidID     uint
	lastSiteID    uint
	lastBookingID uint
	lastStaffID   uint

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		items:    make(map[uint]*itemEntry),
		sites:    make(map[uint]domain.TourismSite),
		bookings: make(map[string]domain.Booking),
		staff:    make(map[uint]domain.Staff),
		now:      time.Now,
	}
}

func (s *Store) itemLock(id uint) *sync.Mutex {
	l, _ := s.itemLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *Store) CreateItem(_ context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.items {
		if item.Slug != "" && e.item.Slug == item.Slug {
			return domain.CatalogItem{}, domain.ErrSlugTaken
		}
	}

	s.lastItemID++
	item.ID = s.lastItemID
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt
	item.RecentBids = nil
	s.items[item.ID] = &itemEntry{item: item}

	return item, nil
}

func (s *Store) FindItem(_ context.Context, id uint) (domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return domain.CatalogItem{}, domain.ErrItemNotFound
	}

	return e.item, nil
}

func (s *Store) FindItemBySlug(_ context.Context, slug string) (domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.items {
		if e.item.Slug == slug {
			return e.item, nil
		}
	}

	return domain.CatalogItem{}, domain.ErrItemNotFound
}

// FindItems returns the limit items after offset among those matching
// filter, newest first, and the total number of matches.
func (s *Store) FindItems(_ context.Context, filter domain.ItemFilter, limit, offset int) ([]domain.CatalogItem, int64, error) {
	search := strings.ToLower(filter.Search)

	s.mu.RLock()
	matched := make([]domain.CatalogItem, 0, len(s.items))
	for _, e := range s.items {
		if matchesItem(e.item, filter, search) {
			matched = append(matched, e.item)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.CatalogItem{}, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total, nil
}

func matchesItem(item domain.CatalogItem, f domain.ItemFilter, search string) bool {
	switch {
	case f.ProductType != "" && item.ProductType != f.ProductType:
		return false
	case f.Status != "" && item.Status != f.Status:
		return false
	case f.ExcludeStatus != "" && item.Status == f.ExcludeStatus:
		return false
	}
	if search == "" {
		return true
	}

	return strings.Contains(strings.ToLower(item.Name), search) ||
		strings.Contains(strings.ToLower(item.Description), search) ||
		strings.Contains(strings.ToLower(item.ArtistName), search)
}

func (s *Store) ListBids(_ context.Context, itemID uint, limit int) ([]domain.Bid, error) {
	s.mu.RLock()
	e, ok := s.items[itemID]
	if !ok {
		s.mu.RUnlock()
		return nil, domain.ErrItemNotFound
	}
	bids := make([]domain.Bid, len(e.bids))
	copy(bids, e.bids)
	s.mu.RUnlock()

	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].Amount.Equal(bids[j].Amount) {
			return bids[i].Amount.GreaterThan(bids[j].Amount)
		}
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.After(bids[j].CreatedAt)
		}
		return bids[i].ID > bids[j].ID
	})
	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}

	return bids, nil
}

// PlaceBid holds the item's lock from the floor read in decide until the new
// winner is stored. Bids on different items proceed independently.
func (s *Store) PlaceBid(ctx context.Context, itemID uint, decide domain.BidDecision) (domain.Bid, error) {
	l := s.itemLock(itemID)
	l.Lock()
	defer l.Unlock()

	item, err := s.FindItem(ctx, itemID)
	if err != nil {
		return domain.Bid{}, err
	}

	bid, err := decide(item)
	if err != nil {
		return domain.Bid{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.items[itemID]
	for i := range e.bids {
		e.bids[i].IsWinning = false
	}

	s.lastBidID++
	bid.ID = s.lastBidID
	bid.ItemID = itemID
	bid.IsWinning = true
	bid.CreatedAt = s.now()
	e.bids = append(e.bids, bid)

	e.item = e.item.ApplyWinningBid(bid.Amount)
	e.item.UpdatedAt = bid.CreatedAt

	return bid, nil
}

func (s *Store) CreateSite(_ context.Context, site domain.TourismSite) (domain.TourismSite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sites {
		if site.Slug != "" && existing.Slug == site.Slug {
			return domain.TourismSite{}, domain.ErrSlugTaken
		}
	}

	s.lastSiteID++
	site.ID = s.lastSiteID
	site.CreatedAt = s.now()
	site.UpdatedAt = site.CreatedAt
	s.sites[site.ID] = site

	return site, nil
}

func (s *Store) FindSite(_ context.Context, id uint) (domain.TourismSite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[id]
	if !ok {
		return domain.TourismSite{}, domain.ErrSiteNotFound
	}

	return site, nil
}

func (s *Store) FindSiteBySlug(_ context.Context, slug string) (domain.TourismSite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, site := range s.sites {
		if site.Slug == slug {
			return site, nil
		}
	}

	return domain.TourismSite{}, domain.ErrSiteNotFound
}

func (s *Store) FindActiveSites(_ context.Context, siteType string) ([]domain.TourismSite, error) {
	s.mu.RLock()
	sites := make([]domain.TourismSite, 0, len(s.sites))
	for _, site := range s.sites {
		if site.IsActive && (siteType == "" || site.SiteType == siteType) {
			sites = append(sites, site)
		}
	}
	s.mu.RUnlock()

	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })

	return sites, nil
}

// CreateBooking checks and stores each claimed reference in one critical
// section, so two creations can never both take the same code.
func (s *Store) CreateBooking(ctx context.Context, booking domain.Booking, issue domain.ReferenceIssuer) (domain.Booking, error) {
	var created domain.Booking

	_, err := issue(ctx, func(_ context.Context, code string) (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, taken := s.bookings[code]; taken {
			return false, nil
		}

		s.lastBookingID++
		created = booking
		created.ID = s.lastBookingID
		created.Reference = code
		created.CreatedAt = s.now()
		created.UpdatedAt = created.CreatedAt
		s.bookings[code] = created

		return true, nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	return created, nil
}

func (s *Store) FindBookingByReference(_ context.Context, reference string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[reference]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	return b, nil
}

func (s *Store) UpdateBooking(_ context.Context, reference string, mutate func(domain.Booking) (domain.Booking, error)) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[reference]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}

	next, err := mutate(b)
	if err != nil {
		return domain.Booking{}, err
	}

	b.Status = next.Status
	b.UpdatedAt = s.now()
	s.bookings[reference] = b

	return b, nil
}

func (s *Store) Create(_ context.Context, staff domain.Staff) (domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.staff {
		if existing.Email == staff.Email {
			return domain.Staff{}, domain.ErrStaffEmailExists
		}
	}

	s.lastStaffID++
	staff.ID = s.lastStaffID
	staff.CreatedAt = s.now()
	staff.UpdatedAt = staff.CreatedAt
	s.staff[staff.ID] = staff

	return staff, nil
}

func (s *Store) FindByID(_ context.Context, id uint) (domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, ok := s.staff[id]
	if !ok {
		return domain.Staff{}, domain.ErrStaffNotFound
	}

	return staff, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, staff := range s.staff {
		if staff.Email == email {
			return staff, nil
		}
	}

	return domain.Staff{}, domain.ErrStaffNotFound
}
