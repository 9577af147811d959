package services

import (
	"context"
	"strings"
	"time"

	"petshop/internal/apperrors"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"

	"go.uber.org/zap"
)

const maxBookingCodeAttempts = 5

// CreateAppointmentsInput books one service slot for several pets.
type CreateAppointmentsInput struct {
	PetIDs    []uint
	ServiceID uint
	Date      string // YYYY-MM-DD
	Time      string // HH:MM or HH:MM:SS
	Notes     string
}

// AppointmentService handles booking and cancelling care appointments.
type AppointmentService struct {
	store       repositories.Store
	locks       *KeyLocker
	mapper      *dto.Mapper
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
	bookingCode func(now time.Time) string
}

// NewAppointmentService creates a new AppointmentService. publisher may be nil.
func NewAppointmentService(store repositories.Store, locks *KeyLocker, mapper *dto.Mapper, publisher EventPublisher, logger *zap.Logger) *AppointmentService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	return &AppointmentService{
		store:       store,
		locks:       locks,
		mapper:      mapper,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
		bookingCode: newBookingCode,
	}
}

func parseAppointmentDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid appointment date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// parseAppointmentTime normalizes HH:MM[:SS] to HH:MM.
func parseAppointmentTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dto.TimeLayout), nil
		}
	}
	return "", apperrors.InvalidInput("invalid appointment time %q, expected HH:MM", s)
}

// CreateAppointments books every listed pet under one booking code. If any
// pet is missing or owned by someone else nothing is created.
func (s *AppointmentService) CreateAppointments(ctx context.Context, userID uint, in CreateAppointmentsInput) ([]dto.AppointmentResponse, error) {
	if len(in.PetIDs) == 0 {
		return nil, apperrors.InvalidInput("at least one pet is required")
	}
	seen := make(map[uint]struct{}, len(in.PetIDs))
	for _, id := range in.PetIDs {
		if _, dup := seen[id]; dup {
			return nil, apperrors.InvalidInput("pet %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	var created []models.Appointment
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		if _, err := r.Users().GetByID(ctx, userID); err != nil {
			return notFoundAs(err, "user %d not found", userID)
		}
		service, err := r.CareServices().GetByID(ctx, in.ServiceID)
		if err != nil {
			return notFoundAs(err, "service %d not found", in.ServiceID)
		}
		date, err := parseAppointmentDate(in.Date)
		if err != nil {
			return err
		}
		clock, err := parseAppointmentTime(in.Time)
		if err != nil {
			return err
		}

		code, err := s.unusedBookingCode(ctx, r)
		if err != nil {
			return err
		}
		pets := make([]models.Pet, 0, len(in.PetIDs))
		batch := make([]models.Appointment, 0, len(in.PetIDs))
		for _, petID := range in.PetIDs {
			pet, err := r.Pets().GetByID(ctx, petID)
			if err != nil {
				return notFoundAs(err, "pet %d not found", petID)
			}
			if pet.OwnerID != userID {
				return apperrors.Forbidden("pet %d does not belong to user %d", petID, userID)
			}
			pets = append(pets, *pet)
			batch = append(batch, models.Appointment{
				UserID:          userID,
				PetID:           pet.ID,
				ServiceID:       service.ID,
				AppointmentDate: date,
				AppointmentTime: clock,
				Status:          models.AppointmentStatusPending,
				BookingCode:     code,
				Notes:           in.Notes,
			})
		}

		if err := r.Appointments().CreateBatch(ctx, batch); err != nil {
			return err
		}
		for i := range batch {
			batch[i].Pet = pets[i]
			batch[i].Service = *service
		}
		created = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	code := created[0].BookingCode
	s.logger.Info("appointments booked",
		zap.String("booking_code", code),
		zap.Uint("user_id", userID),
		zap.Int("pets", len(created)),
	)
	publishEvent(s.publisher, s.logger, RoutingAppointmentsBooked, AppointmentsEvent{
		BookingCode:    code,
		UserID:         userID,
		AppointmentIDs: appointmentIDs(created),
	})
	return s.mapper.Appointments(created), nil
}

// unusedBookingCode draws booking codes until one is not in use, so a
// booking group never mixes appointments of different bookings.
func (s *AppointmentService) unusedBookingCode(ctx context.Context, r repositories.Repositories) (string, error) {
	for attempt := 1; attempt <= maxBookingCodeAttempts; attempt++ {
		code := s.bookingCode(s.now())
		exists, err := r.Appointments().ExistsByBookingCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.Warn("booking code collision, retrying", zap.String("booking_code", code), zap.Int("attempt", attempt))
	}
	return "", apperrors.New(apperrors.KindConflict, "could not allocate a unique booking code after %d attempts", maxBookingCodeAttempts)
}

// GetAppointmentsByUser returns the user's appointments, latest date first.
func (s *AppointmentService) GetAppointmentsByUser(ctx context.Context, userID uint) ([]dto.AppointmentResponse, error) {
	list, err := s.store.Appointments().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.mapper.Appointments(list), nil
}

// CancelAppointment cancels the whole booking the appointment belongs to
// and returns the appointments whose status actually changed.
func (s *AppointmentService) CancelAppointment(ctx context.Context, appointmentID, userID uint) ([]dto.AppointmentResponse, error) {
	appt, err := s.store.Appointments().GetByID(ctx, appointmentID)
	if err != nil {
		return nil, notFoundAs(err, "appointment %d not found", appointmentID)
	}
	if appt.UserID != userID {
		return nil, apperrors.Unauthorized("appointment %d belongs to another user", appointmentID)
	}

	changed, err := s.cancelBooking(ctx, appt.BookingCode, appt.UserID)
	if err != nil {
		return nil, err
	}
	return s.mapper.Appointments(changed), nil
}

// cancelBooking cancels the owner's appointments under code.
func (s *AppointmentService) cancelBooking(ctx context.Context, code string, ownerID uint) ([]models.Appointment, error) {
	unlock := s.locks.Lock(lockKeyBooking(code))
	defer unlock()

	var changed []models.Appointment
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		group, err := r.Appointments().ListByBookingCode(ctx, code, ownerID, true)
		if err != nil {
			return err
		}
		for _, a := range group {
			if a.Status == models.AppointmentStatusCompleted {
				return apperrors.InvalidState("booking %s has a completed appointment and cannot be cancelled", code)
			}
		}

		changed = changed[:0]
		for _, a := range group {
			if a.Status != models.AppointmentStatusCancelled {
				changed = append(changed, a)
			}
		}
		if err := r.Appointments().UpdateStatus(ctx, appointmentIDs(changed), models.AppointmentStatusCancelled); err != nil {
			return err
		}
		for i := range changed {
			changed[i].Status = models.AppointmentStatusCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.logger.Info("booking cancelled", zap.String("booking_code", code), zap.Int("cancelled", len(changed)))
		publishEvent(s.publisher, s.logger, RoutingAppointmentsCancelled, AppointmentsEvent{
			BookingCode:    code,
			UserID:         changed[0].UserID,
			AppointmentIDs: appointmentIDs(changed),
		})
	}
	return changed, nil
}

// TransitionStatus moves one appointment along its lifecycle on behalf of
// staff. Cancelling goes through the booking-wide path. A doctor confirming
// an unassigned appointment takes it.
func (s *AppointmentService) TransitionStatus(ctx context.Context, actorID, appointmentID uint, status string) ([]dto.AppointmentResponse, error) {
	next, ok := models.ParseAppointmentStatus(status)
	if !ok {
		return nil, apperrors.InvalidInput("unknown appointment status %q", status)
	}
	actor, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		return nil, notFoundAs(err, "user %d not found", actorID)
	}
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("only staff can change appointment status")
	}
	appt, err := s.store.Appointments().GetByID(ctx, appointmentID)
	if err != nil {
		return nil, notFoundAs(err, "appointment %d not found", appointmentID)
	}

	if next == models.AppointmentStatusCancelled {
		changed, err := s.cancelBooking(ctx, appt.BookingCode, appt.UserID)
		if err != nil {
			return nil, err
		}
		return s.mapper.Appointments(changed), nil
	}

	unlock := s.locks.Lock(lockKeyBooking(appt.BookingCode))
	defer unlock()

	var updated *models.Appointment
	err = s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		group, err := r.Appointments().ListByBookingCode(ctx, appt.BookingCode, appt.UserID, true)
		if err != nil {
			return err
		}
		var current *models.Appointment
		for i := range group {
			if group[i].ID == appointmentID {
				current = &group[i]
				break
			}
		}
		if current == nil {
			return apperrors.NotFound("appointment %d not found", appointmentID)
		}
		if !current.Status.CanTransitionTo(next) {
			return apperrors.InvalidState("cannot move appointment %d from %s to %s", appointmentID, current.Status, next)
		}
		if err := r.Appointments().UpdateStatus(ctx, []uint{current.ID}, next); err != nil {
			return err
		}
		if next == models.AppointmentStatusConfirmed && actor.Role == models.RoleDoctor && current.DoctorID == nil {
			if err := r.Appointments().AssignDoctor(ctx, current.ID, actor.ID); err != nil {
				return err
			}
		}
		updated, err = r.Appointments().GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status changed",
		zap.Uint("appointment_id", appointmentID),
		zap.String("status", string(next)),
		zap.Uint("actor_id", actorID),
	)
	return []dto.AppointmentResponse{s.mapper.Appointment(*updated)}, nil
}

func appointmentIDs(list []models.Appointment) []uint {
	ids := make([]uint, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}
