package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"petshop/internal/apperrors"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	*fixture
	owner    models.User
	stranger models.User
	doctor   models.User
	dog      models.Pet
	cat      models.Pet
	service  models.CareService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	f := newFixture(t)
	b := &bookingFixture{fixture: f}
	b.owner = f.user(t, "owner@example.com", models.RoleUser)
	b.stranger = f.user(t, "stranger@example.com", models.RoleUser)
	b.doctor = f.user(t, "doctor@example.com", models.RoleDoctor)
	b.dog = f.pet(t, b.owner, "Rex", models.SpeciesDog)
	b.cat = f.pet(t, b.owner, "Miu", models.SpeciesCat)
	b.service = f.careService(t, "Grooming", 150000)
	return b
}

func (b *bookingFixture) book(t *testing.T, petIDs ...uint) []dto.AppointmentResponse {
	t.Helper()
	out, err := b.appointments.CreateAppointments(context.Background(), b.owner.ID, services.CreateAppointmentsInput{
		PetIDs:    petIDs,
		ServiceID: b.service.ID,
		Date:      "2026-02-20",
		Time:      "09:00",
	})
	require.NoError(t, err)
	return out
}

func TestAppointmentService_CreateAppointments(t *testing.T) {
	b := newBookingFixture(t)

	out := b.book(t, b.dog.ID, b.cat.ID)
	require.Len(t, out, 2)
	assert.Regexp(t, `^BK-\d{8}-\d{6}-[0-9A-F]{4}$`, out[0].BookingCode)
	assert.Equal(t, out[0].BookingCode, out[1].BookingCode)

	for i, pet := range []models.Pet{b.dog, b.cat} {
		assert.Equal(t, pet.ID, out[i].PetID)
		assert.Equal(t, pet.Name, out[i].PetName)
		assert.Equal(t, "PENDING", out[i].Status)
		assert.Equal(t, "2026-02-20", out[i].AppointmentDate)
		assert.Equal(t, "09:00", out[i].AppointmentTime)
		assert.Equal(t, "Grooming", out[i].ServiceTitle)
		assert.True(t, out[i].ServicePrice.Equal(dec(150000)))
		assert.Nil(t, out[i].DoctorName)
	}
	assert.Equal(t, "/assets/default-dog.svg", out[0].PetImageURL)
	assert.Equal(t, "/assets/default-cat.svg", out[1].PetImageURL)

	assert.Equal(t, []string{services.RoutingAppointmentsBooked}, b.publisher.routingKeys())
}

func TestAppointmentService_CreateAppointmentsAllOrNothing(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	foreign := b.pet(t, b.stranger, "Bolt", models.SpeciesDog)

	_, err := b.appointments.CreateAppointments(ctx, b.owner.ID, services.CreateAppointmentsInput{
		PetIDs:    []uint{b.dog.ID, foreign.ID},
		ServiceID: b.service.ID,
		Date:      "2026-02-20",
		Time:      "09:00",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = b.appointments.CreateAppointments(ctx, b.owner.ID, services.CreateAppointmentsInput{
		PetIDs:    []uint{b.dog.ID, 9999},
		ServiceID: b.service.ID,
		Date:      "2026-02-20",
		Time:      "09:00",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var count int64
	b.db.Model(&models.Appointment{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, b.publisher.routingKeys())
}

func TestAppointmentService_CreateAppointmentsValidation(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   services.CreateAppointmentsInput
		want error
	}{
		{"no pets", services.CreateAppointmentsInput{ServiceID: b.service.ID, Date: "2026-02-20", Time: "09:00"}, apperrors.ErrInvalidInput},
		{"duplicate pet", services.CreateAppointmentsInput{PetIDs: []uint{b.dog.ID, b.dog.ID}, ServiceID: b.service.ID, Date: "2026-02-20", Time: "09:00"}, apperrors.ErrInvalidInput},
		{"bad date", services.CreateAppointmentsInput{PetIDs: []uint{b.dog.ID}, ServiceID: b.service.ID, Date: "20/02/2026", Time: "09:00"}, apperrors.ErrInvalidInput},
		{"bad time", services.CreateAppointmentsInput{PetIDs: []uint{b.dog.ID}, ServiceID: b.service.ID, Date: "2026-02-20", Time: "9am"}, apperrors.ErrInvalidInput},
		{"unknown service", services.CreateAppointmentsInput{PetIDs: []uint{b.dog.ID}, ServiceID: 9999, Date: "2026-02-20", Time: "09:00"}, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.appointments.CreateAppointments(ctx, b.owner.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := b.appointments.CreateAppointments(ctx, 9999, services.CreateAppointmentsInput{PetIDs: []uint{b.dog.ID}, ServiceID: b.service.ID, Date: "2026-02-20", Time: "09:00"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAppointmentService_TimeWithSeconds(t *testing.T) {
	b := newBookingFixture(t)
	out, err := b.appointments.CreateAppointments(context.Background(), b.owner.ID, services.CreateAppointmentsInput{
		PetIDs:    []uint{b.dog.ID},
		ServiceID: b.service.ID,
		Date:      "2026-03-01",
		Time:      "14:30:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "14:30", out[0].AppointmentTime)
}

func TestAppointmentService_GetAppointmentsByUser(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	for _, date := range []string{"2026-01-10", "2026-03-05", "2026-02-01"} {
		_, err := b.appointments.CreateAppointments(ctx, b.owner.ID, services.CreateAppointmentsInput{
			PetIDs: []uint{b.dog.ID}, ServiceID: b.service.ID, Date: date, Time: "10:00",
		})
		require.NoError(t, err)
	}

	list, err := b.appointments.GetAppointmentsByUser(ctx, b.owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-03-05", list[0].AppointmentDate)
	assert.Equal(t, "2026-02-01", list[1].AppointmentDate)
	assert.Equal(t, "2026-01-10", list[2].AppointmentDate)

	none, err := b.appointments.GetAppointmentsByUser(ctx, b.stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppointmentService_CancelWholeBooking(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID, b.cat.ID)

	cancelled, err := b.appointments.CancelAppointment(ctx, booked[1].ID, b.owner.ID)
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	for _, a := range cancelled {
		assert.Equal(t, "CANCELLED", a.Status)
		assert.Equal(t, booked[0].BookingCode, a.BookingCode)
	}

	// cancelling again changes nothing
	again, err := b.appointments.CancelAppointment(ctx, booked[0].ID, b.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	assert.Equal(t, []string{services.RoutingAppointmentsBooked, services.RoutingAppointmentsCancelled}, b.publisher.routingKeys())
}

func TestAppointmentService_CancelReturnsOnlyChanged(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID, b.cat.ID)

	require.NoError(t, b.db.Model(&models.Appointment{}).Where("id = ?", booked[0].ID).
		Update("status", models.AppointmentStatusCancelled).Error)

	cancelled, err := b.appointments.CancelAppointment(ctx, booked[0].ID, b.owner.ID)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, booked[1].ID, cancelled[0].ID)
}

func TestAppointmentService_CancelBlockedByCompleted(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID, b.cat.ID)

	_, err := b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[0].ID, "CONFIRMED")
	require.NoError(t, err)
	_, err = b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[0].ID, "COMPLETED")
	require.NoError(t, err)

	_, err = b.appointments.CancelAppointment(ctx, booked[1].ID, b.owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	list, err := b.appointments.GetAppointmentsByUser(ctx, b.owner.ID)
	require.NoError(t, err)
	statuses := map[uint]string{}
	for _, a := range list {
		statuses[a.ID] = a.Status
	}
	assert.Equal(t, "COMPLETED", statuses[booked[0].ID])
	assert.Equal(t, "PENDING", statuses[booked[1].ID])
}

func TestAppointmentService_CancelErrors(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID)

	_, err := b.appointments.CancelAppointment(ctx, booked[0].ID, b.stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = b.appointments.CancelAppointment(ctx, 9999, b.owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAppointmentService_CancelLeavesOtherUsersAppointments(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID)

	// a stranger's appointment carrying the same booking code
	strangersPet := b.pet(t, b.stranger, "Tom", models.SpeciesCat)
	foreign := models.Appointment{
		UserID:          b.stranger.ID,
		PetID:           strangersPet.ID,
		ServiceID:       b.service.ID,
		AppointmentDate: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:00",
		Status:          models.AppointmentStatusPending,
		BookingCode:     booked[0].BookingCode,
	}
	require.NoError(t, b.db.Omit("Pet", "Service", "Doctor").Create(&foreign).Error)

	cancelled, err := b.appointments.CancelAppointment(ctx, booked[0].ID, b.owner.ID)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, booked[0].ID, cancelled[0].ID)

	var stored models.Appointment
	require.NoError(t, b.db.First(&stored, foreign.ID).Error)
	assert.Equal(t, models.AppointmentStatusPending, stored.Status)
}

func TestAppointmentService_ConcurrentCancel(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID, b.cat.ID)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			out, err := b.appointments.CancelAppointment(ctx, id, b.owner.ID)
			assert.NoError(t, err)
			mu.Lock()
			changed += len(out)
			mu.Unlock()
		}(booked[i].ID)
	}
	wg.Wait()
	assert.Equal(t, 2, changed)
}

func TestAppointmentService_TransitionStatus(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()
	booked := b.book(t, b.dog.ID, b.cat.ID)

	_, err := b.appointments.TransitionStatus(ctx, b.owner.ID, booked[0].ID, "CONFIRMED")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[0].ID, "COMPLETED")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[0].ID, "SLEEPING")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	out, err := b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[0].ID, "confirmed")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CONFIRMED", out[0].Status)
	require.NotNil(t, out[0].DoctorName)
	assert.Equal(t, b.doctor.FullName, *out[0].DoctorName)

	// staff cancel goes booking-wide
	out, err = b.appointments.TransitionStatus(ctx, b.doctor.ID, booked[1].ID, "CANCELLED")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
