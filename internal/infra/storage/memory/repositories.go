package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

// PropertyRepository keeps properties in memory. Reads hand out copies
// so callers never mutate shared state outside Save.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return copyProperty(p), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version++
	r.items[p.ID] = copyProperty(p)
	return nil
}

func copyProperty(p *domainproperty.Property) *domainproperty.Property {
	clone := *p
	if p.Rates != nil {
		rates := *p.Rates
		clone.Rates = &rates
	}
	return &clone
}

// AdjustmentRepository stores per-date price overrides keyed by
// property and normalized day.
type AdjustmentRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]map[int64]domainproperty.PriceAdjustment
}

func NewAdjustmentRepository() *AdjustmentRepository {
	return &AdjustmentRepository{items: make(map[domainproperty.PropertyID]map[int64]domainproperty.PriceAdjustment)}
}

func (r *AdjustmentRepository) InRange(ctx context.Context, id domainproperty.PropertyID, dr domainrange.DateRange) ([]domainproperty.PriceAdjustment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	days, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	var out []domainproperty.PriceAdjustment
	for _, adj := range days {
		if dr.ContainsDate(adj.Date) {
			out = append(out, adj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AdjustmentRepository) Upsert(ctx context.Context, adj domainproperty.PriceAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	adj.Date = domainrange.NormalizeToDay(adj.Date)
	days, ok := r.items[adj.PropertyID]
	if !ok {
		days = make(map[int64]domainproperty.PriceAdjustment)
		r.items[adj.PropertyID] = days
	}
	days[adj.Date.Unix()] = adj
	return nil
}

// BookingRepository stores bookings in memory with a version check on
// save mirroring the document store's optimistic write.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
	byRef map[string]domainbooking.BookingID
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
		byRef: make(map[string]domainbooking.BookingID),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[reference]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return copyBooking(r.items[id]), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return domainbooking.ErrStaleState
	}
	b.Version++
	r.items[b.ID] = copyBooking(b)
	r.byRef[b.Reference] = b.ID
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.GuestID == guestID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func copyBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := *b
	clone.Price = b.Price.Copy()
	clone.ClearEvents()
	return &clone
}

// OccupancyRepository keeps calendars in memory and persists them with
// a compare-and-set on the calendar version, so racing confirmations
// behave exactly as they would against the document store.
type OccupancyRepository struct {
	mu        sync.RWMutex
	calendars map[domainproperty.PropertyID]*domainavailability.OccupancyCalendar
}

func NewOccupancyRepository() *OccupancyRepository {
	return &OccupancyRepository{calendars: make(map[domainproperty.PropertyID]*domainavailability.OccupancyCalendar)}
}

// Calendar retrieves the property's calendar, lazily creating it.
func (r *OccupancyRepository) Calendar(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.OccupancyCalendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal, ok := r.calendars[id]
	if !ok {
		cal = domainavailability.NewCalendar(id)
		r.calendars[id] = cal
	}
	return copyCalendar(cal), nil
}

func (r *OccupancyRepository) Save(ctx context.Context, calendar *domainavailability.OccupancyCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.calendars[calendar.PropertyID]
	if ok && stored.Version != calendar.Version {
		return domainavailability.ErrVersionConflict
	}
	calendar.Version++
	r.calendars[calendar.PropertyID] = copyCalendar(calendar)
	return nil
}

func copyCalendar(c *domainavailability.OccupancyCalendar) *domainavailability.OccupancyCalendar {
	clone := &domainavailability.OccupancyCalendar{
		PropertyID: c.PropertyID,
		Blocks:     append([]domainavailability.Block(nil), c.Blocks...),
		Version:    c.Version,
	}
	return clone
}
