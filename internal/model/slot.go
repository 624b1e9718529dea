package model

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// SlotLength is the fixed size of every delivery window.
	SlotLength = 30 * time.Minute

	// EstimatedDeliveryLag is added to a slot's end time to estimate
	// when the courier actually arrives.
	EstimatedDeliveryLag = 15 * time.Minute
)

// SlotUnavailableReason explains why a reservation was refused.
type SlotUnavailableReason string

const (
	SlotFull        SlotUnavailableReason = "full"
	SlotExpired     SlotUnavailableReason = "expired"
	SlotDeactivated SlotUnavailableReason = "deactivated"
)

// SlotUnavailableError is returned by ReserveOrErr when capacity cannot
// be consumed. It carries the concrete reason so callers can report it.
type SlotUnavailableError struct {
	SlotID string
	Reason SlotUnavailableReason
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("delivery slot %s unavailable: %s", e.SlotID, e.Reason)
}

// DeliverySlot is a 30-minute delivery window with bounded capacity.
// reservedCount is only ever touched under mu, so concurrent reservations
// on a nearly full slot cannot both succeed past maxCapacity.
type DeliverySlot struct {
	ID           string
	RestaurantID string
	StartTime    time.Time
	EndTime      time.Time

	mu            sync.Mutex
	maxCapacity   int
	reservedCount int
	available     bool
}

func NewDeliverySlot(restaurantID string, start, end time.Time, maxCapacity int) *DeliverySlot {
	return &DeliverySlot{
		ID:           NewID(),
		RestaurantID: restaurantID,
		StartTime:    start,
		EndTime:      end,
		maxCapacity:  maxCapacity,
		available:    true,
	}
}

// IsPast reports whether the window has already closed.
func (s *DeliverySlot) IsPast() bool {
	return s.EndTime.Before(time.Now())
}

func (s *DeliverySlot) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservedCount >= s.maxCapacity
}

// IsAvailable reports whether the slot can accept one more reservation:
// it must be active, not full and not in the past.
func (s *DeliverySlot) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available && s.reservedCount < s.maxCapacity && !s.IsPast()
}

// Reserve consumes one unit of capacity. It returns false without
// mutating anything if the slot is not available.
func (s *DeliverySlot) Reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available || s.reservedCount >= s.maxCapacity || s.IsPast() {
		return false
	}
	s.reservedCount++
	return true
}

// ReserveOrErr consumes one unit of capacity or reports why it could not.
func (s *DeliverySlot) ReserveOrErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.available:
		return &SlotUnavailableError{SlotID: s.ID, Reason: SlotDeactivated}
	case s.IsPast():
		return &SlotUnavailableError{SlotID: s.ID, Reason: SlotExpired}
	case s.reservedCount >= s.maxCapacity:
		return &SlotUnavailableError{SlotID: s.ID, Reason: SlotFull}
	}
	s.reservedCount++
	return nil
}

// Release returns one unit of capacity. Releasing an empty slot is a
// no-op so retried failure paths can never drive the count negative.
func (s *DeliverySlot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reservedCount > 0 {
		s.reservedCount--
	}
}

// SetMaxCapacity adjusts capacity. It refuses to shrink below the number
// of reservations already committed.
func (s *DeliverySlot) SetMaxCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < s.reservedCount {
		return fmt.Errorf("cannot set capacity %d below %d committed reservations", n, s.reservedCount)
	}
	s.maxCapacity = n
	return nil
}

func (s *DeliverySlot) MaxCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxCapacity
}

func (s *DeliverySlot) ReservedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservedCount
}

// Deactivate takes the slot out of rotation without touching capacity.
func (s *DeliverySlot) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = false
}

func (s *DeliverySlot) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = true
}

// DeliveryTime is the estimated hand-off time for orders in this slot.
func (s *DeliverySlot) DeliveryTime() time.Time {
	return s.EndTime.Add(EstimatedDeliveryLag)
}

// DeliverySchedule owns the delivery slots of a single restaurant and
// indexes them by id and by window start. Regenerating a day that was
// already generated is a no-op for existing buckets.
type DeliverySchedule struct {
	RestaurantID string

	mu       sync.RWMutex
	byID     map[string]*DeliverySlot
	byBucket map[string]*DeliverySlot
}

func NewDeliverySchedule(restaurantID string) *DeliverySchedule {
	return &DeliverySchedule{
		RestaurantID: restaurantID,
		byID:         make(map[string]*DeliverySlot),
		byBucket:     make(map[string]*DeliverySlot),
	}
}

// GenerateDailySlots creates one slot per 30-minute bucket between
// opening and closing. Buckets that already exist are kept as-is, so the
// call is safe to repeat for the same day.
func (d *DeliverySchedule) GenerateDailySlots(opening, closing time.Time, capacityPerSlot int) []*DeliverySlot {
	d.mu.Lock()
	defer d.mu.Unlock()

	var created []*DeliverySlot
	for start := opening; start.Add(SlotLength).Before(closing) || start.Add(SlotLength).Equal(closing); start = start.Add(SlotLength) {
		key := start.UTC().Format(time.RFC3339)
		if _, ok := d.byBucket[key]; ok {
			continue
		}
		slot := NewDeliverySlot(d.RestaurantID, start, start.Add(SlotLength), capacityPerSlot)
		d.byID[slot.ID] = slot
		d.byBucket[key] = slot
		created = append(created, slot)
	}
	return created
}

func (d *DeliverySchedule) FindSlotByID(id string) (*DeliverySlot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byID[id]
	return s, ok
}

// AvailableSlotsOn returns the slots of the given calendar day that can
// still take a reservation, ordered by start time.
func (d *DeliverySchedule) AvailableSlotsOn(date time.Time) []*DeliverySlot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	y, m, day := date.Date()
	var out []*DeliverySlot
	for _, s := range d.byID {
		sy, sm, sd := s.StartTime.Date()
		if sy == y && sm == m && sd == day && s.IsAvailable() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// ReleaseSlot forwards to the slot's Release. It reports whether the
// slot exists; releasing an unknown id is not an error for callers that
// only clean up.
func (d *DeliverySchedule) ReleaseSlot(id string) bool {
	d.mu.RLock()
	s, ok := d.byID[id]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	s.Release()
	return true
}

func (d *DeliverySchedule) Slots() []*DeliverySlot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*DeliverySlot, 0, len(d.byID))
	for _, s := range d.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}
