package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrSlotTaken           = errors.New("time slot already booked")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrUnauthorized        = errors.New("access token required")
	ErrForbidden           = errors.New("admin access required")
)

// SlotTakenError names the active appointment that already holds the slot.
type SlotTakenError struct {
	ExistingID int64
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("%s by appointment %d", ErrSlotTaken, e.ExistingID)
}

func (e *SlotTakenError) Unwrap() error {
	return ErrSlotTaken
}

// Publisher receives committed changes. Publish must not block.
type Publisher interface {
	Publish(ev ChangeEvent)
}

const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReadThrough makes reads load from the store instead of the last
// snapshot this process committed. Use it when other processes write to
// the same store.
func WithReadThrough() Option {
	return func(s *Service) { s.readThrough = true }
}

type Service struct {
	store       Store
	locker      Locker
	pub         Publisher
	metrics     Metrics
	now         func() time.Time
	readThrough bool

	seq    uint64 // guarded by locker
	latest atomic.Pointer[Snapshot]
}

func NewService(store Store, locker Locker, pub Publisher, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locker:  locker,
		pub:     pub,
		metrics: nopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a slot. Validation happens before the lock; the conflict
// check is repeated against the freshest snapshot inside the same critical
// section that persists the booking.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	valid, err := req.Validate()
	if err != nil {
		s.metrics.Mutation("create", outcomeOf(err))
		return nil, err
	}

	ev, err := s.mutate(ctx, "create", func(snap *Snapshot, now time.Time) (*ChangeEvent, error) {
		slot := Slot{
			Doctor: canonicalDoctor(CatalogOf(snap), valid.Doctor),
			Date:   valid.Date,
			Time:   valid.Time,
		}
		if res := CheckSlot(snap, slot); !res.Available() {
			return nil, &SlotTakenError{ExistingID: res.ExistingID}
		}

		appt := Appointment{
			ID:        snap.allocateID(),
			Reference: uniqueReference(snap),
			PatientID: "PAT-" + gonanoid.MustGenerate(referenceAlphabet, 10),
			Doctor:    slot.Doctor,
			FullName:  valid.FullName,
			Email:     valid.Email,
			Phone:     valid.Phone,
			Date:      slot.Date,
			Time:      slot.Time,
			Notes:     valid.Notes,
			Status:    StatusConfirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		snap.Appointments = append(snap.Appointments, appt)

		return &ChangeEvent{
			Kind:          ChangeCreated,
			AppointmentID: appt.ID,
			Status:        appt.Status,
			Appointment:   &appt,
			Timestamp:     now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	created := *ev.Appointment
	return &created, nil
}

// UpdateStatus applies a lifecycle transition. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, p *Principal, id int64, status string) (*Appointment, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(status); err != nil {
		s.metrics.Mutation("update_status", outcomeOf(err))
		return nil, err
	}

	ev, err := s.mutate(ctx, "update_status", func(snap *Snapshot, now time.Time) (*ChangeEvent, error) {
		idx := snap.findAppointment(id)
		if idx < 0 {
			return nil, ErrAppointmentNotFound
		}

		appt := &snap.Appointments[idx]
		if err := Transition(appt, status, now); err != nil {
			return nil, err
		}

		updated := *appt
		return &ChangeEvent{
			Kind:          ChangeStatusUpdated,
			AppointmentID: updated.ID,
			Status:        updated.Status,
			Appointment:   &updated,
			Timestamp:     now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	updated := *ev.Appointment
	return &updated, nil
}

// Delete removes an appointment for good. Admin only.
func (s *Service) Delete(ctx context.Context, p *Principal, id int64) error {
	if err := authorizeAdmin(p); err != nil {
		return err
	}

	_, err := s.mutate(ctx, "delete", func(snap *Snapshot, now time.Time) (*ChangeEvent, error) {
		idx := snap.findAppointment(id)
		if idx < 0 {
			return nil, ErrAppointmentNotFound
		}

		snap.Appointments = append(snap.Appointments[:idx], snap.Appointments[idx+1:]...)

		return &ChangeEvent{
			Kind:          ChangeDeleted,
			AppointmentID: id,
			Timestamp:     now,
		}, nil
	})
	return err
}

// mutate is the single write path: lock, load, change, save, then publish
// after the lock is released. fn mutates snap in place and returns the
// event describing the change.
func (s *Service) mutate(ctx context.Context, op string, fn func(snap *Snapshot, now time.Time) (*ChangeEvent, error)) (*ChangeEvent, error) {
	var ev *ChangeEvent

	waitStart := time.Now()
	err := s.locker.WithLock(ctx, func(lockCtx context.Context) error {
		s.metrics.LockWait(time.Since(waitStart))

		if err := lockCtx.Err(); err != nil {
			return err
		}
		// From here on the operation runs to completion so that no
		// half-applied change is left behind when the caller goes away.
		runCtx := context.WithoutCancel(lockCtx)

		snap, err := s.store.Load(runCtx)
		if err != nil {
			return loadError(err)
		}

		now := s.now()
		change, err := fn(&snap, now)
		if err != nil {
			return err
		}

		if err := s.store.Save(runCtx, snap); err != nil {
			return saveError(err)
		}

		s.latest.Store(&snap)
		s.seq++
		change.Seq = s.seq
		ev = change
		return nil
	})
	if err != nil {
		s.metrics.Mutation(op, outcomeOf(err))
		return nil, err
	}

	s.metrics.Mutation(op, "ok")
	s.pub.Publish(*ev)
	return ev, nil
}

// snapshot returns the last committed state without taking the write lock.
// The result is shared and must not be modified.
func (s *Service) snapshot(ctx context.Context) (*Snapshot, error) {
	if s.readThrough {
		snap, err := s.store.Load(ctx)
		if err != nil {
			return nil, loadError(err)
		}
		return &snap, nil
	}
	if snap := s.latest.Load(); snap != nil {
		return snap, nil
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, loadError(err)
	}
	s.latest.CompareAndSwap(nil, &snap)
	return s.latest.Load(), nil
}

// Get returns one appointment. Admin only.
func (s *Service) Get(ctx context.Context, p *Principal, id int64) (*Appointment, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	idx := snap.findAppointment(id)
	if idx < 0 {
		return nil, ErrAppointmentNotFound
	}
	appt := snap.Appointments[idx]
	return &appt, nil
}

// List filters and paginates appointments. Admin only.
func (s *Service) List(ctx context.Context, p *Principal, f ListFilter) (*Page, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10 // default
	}
	if f.Limit > 100 {
		f.Limit = 100 // max
	}

	matched := make([]Appointment, 0, len(snap.Appointments))
	for _, a := range snap.Appointments {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Doctor != "" && !strings.Contains(a.Doctor, f.Doctor) {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		matched = append(matched, a)
	}

	// compare before multiplying so huge page numbers cannot overflow
	start := len(matched)
	if f.Page-1 <= len(matched)/f.Limit {
		start = min((f.Page-1)*f.Limit, len(matched))
	}
	end := min(start+f.Limit, len(matched))

	return &Page{
		Data:       matched[start:end],
		Current:    f.Page,
		TotalPages: (len(matched) + f.Limit - 1) / f.Limit,
		TotalCount: len(matched),
	}, nil
}

// Statistics summarises the current state. today is a YYYY-MM-DD date.
func (s *Service) Statistics(ctx context.Context, p *Principal, today string) (*Statistics, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	st := Statistics{
		TotalAppointments: len(snap.Appointments),
		TotalDoctors:      len(snap.Doctors),
	}
	for _, a := range snap.Appointments {
		if a.Date == today {
			st.TodayAppointments++
		}
		switch a.Status {
		case StatusConfirmed:
			st.ConfirmedAppointments++
		case StatusCompleted:
			st.CompletedAppointments++
		case StatusCancelled:
			st.CancelledAppointments++
		}
	}
	for _, d := range snap.Doctors {
		if d.Available {
			st.AvailableDoctors++
		}
	}
	return &st, nil
}

func (s *Service) Doctors(ctx context.Context) ([]Doctor, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Doctor, len(snap.Doctors))
	copy(out, snap.Doctors)
	return out, nil
}

func (s *Service) Doctor(ctx context.Context, id int64) (*Doctor, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range snap.Doctors {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func authorizeAdmin(p *Principal) error {
	if p == nil {
		return ErrUnauthorized
	}
	if p.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func uniqueReference(snap *Snapshot) string {
	for {
		ref := "APT-" + gonanoid.MustGenerate(referenceAlphabet, 10)
		taken := false
		for _, a := range snap.Appointments {
			if a.Reference == ref {
				taken = true
				break
			}
		}
		if !taken {
			return ref
		}
	}
}

func loadError(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return fmt.Errorf("load snapshot: %w: %v", ErrStorageUnavailable, err)
}

func saveError(err error) error {
	if errors.Is(err, ErrStorageWriteFailed) {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return fmt.Errorf("save snapshot: %w: %v", ErrStorageWriteFailed, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidationFailed):
		return "invalid"
	case errors.Is(err, ErrSlotTaken):
		return "conflict"
	case errors.Is(err, ErrAppointmentNotFound):
		return "not_found"
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrStorageWriteFailed):
		return "storage_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "aborted"
	default:
		return "error"
	}
}
