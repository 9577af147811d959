package repositories

import (
	"context"
	"errors"
	"fmt"

	"petshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentRepository defines the interface for appointment data access.
type AppointmentRepository interface {
	CreateBatch(ctx context.Context, appointments []models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	// ListByUserID returns the user's appointments, latest date first.
	ListByUserID(ctx context.Context, userID uint) ([]models.Appointment, error)
	ExistsByBookingCode(ctx context.Context, bookingCode string) (bool, error)
	// ListByBookingCode returns the user's booking group ordered by id. With
	// forUpdate the rows stay locked until the surrounding transaction ends.
	ListByBookingCode(ctx context.Context, bookingCode string, userID uint, forUpdate bool) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, ids []uint, status models.AppointmentStatus) error
	AssignDoctor(ctx context.Context, id, doctorID uint) error
}

// GORMAppointmentRepository is a GORM implementation of AppointmentRepository.
type GORMAppointmentRepository struct {
	db *gorm.DB
}

func NewGORMAppointmentRepository(db *gorm.DB) *GORMAppointmentRepository {
	return &GORMAppointmentRepository{db: db}
}

func (r *GORMAppointmentRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Pet").Preload("Service").Preload("Doctor")
}

func (r *GORMAppointmentRepository) CreateBatch(ctx context.Context, appointments []models.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&appointments).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create appointments: %w", err)
	}
	return nil
}

func (r *GORMAppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.withRelations(r.db.WithContext(ctx)).First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appointment by ID %d: %w", id, err)
	}
	return &appt, nil
}

func (r *GORMAppointmentRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("appointment_date desc").
		Order("appointment_time desc").
		Order("id desc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments of user %d: %w", userID, err)
	}
	return appts, nil
}

func (r *GORMAppointmentRepository) ExistsByBookingCode(ctx context.Context, bookingCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("booking_code = ?", bookingCode).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up booking %s: %w", bookingCode, err)
	}
	return count > 0, nil
}

func (r *GORMAppointmentRepository) ListByBookingCode(ctx context.Context, bookingCode string, userID uint, forUpdate bool) ([]models.Appointment, error) {
	db := r.db.WithContext(ctx)
	if forUpdate {
		// Lock the group first; preloads run as separate queries.
		var ids []uint
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(&models.Appointment{}).
			Where("booking_code = ? AND user_id = ?", bookingCode, userID).
			Order("id asc").
			Pluck("id", &ids).Error
		if err != nil {
			return nil, fmt.Errorf("failed to lock booking %s: %w", bookingCode, err)
		}
	}

	var appts []models.Appointment
	err := r.withRelations(db).
		Where("booking_code = ? AND user_id = ?", bookingCode, userID).
		Order("id asc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking %s: %w", bookingCode, err)
	}
	return appts, nil
}

func (r *GORMAppointmentRepository) UpdateStatus(ctx context.Context, ids []uint, status models.AppointmentStatus) error {
	if len(ids) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id IN ?", ids).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set status %s: %w", status, res.Error)
	}
	if res.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("set status %s on %d of %d appointments: %w", status, res.RowsAffected, len(ids), ErrNotFound)
	}
	return nil
}

func (r *GORMAppointmentRepository) AssignDoctor(ctx context.Context, id, doctorID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("doctor_id", doctorID)
	if res.Error != nil {
		return fmt.Errorf("failed to assign doctor to appointment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("appointment with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
