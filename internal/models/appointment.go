package models

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// ParseAppointmentStatus accepts a status name in any case.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	st := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// CanTransitionTo reports whether s -> next is a legal move.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is one pet's slot within a booking. Appointments created
// together share a BookingCode and are cancelled as a group.
type Appointment struct {
	Base
	UserID          uint              `json:"user_id" gorm:"not null;index"`
	PetID           uint              `json:"pet_id" gorm:"not null"`
	Pet             Pet               `json:"pet" gorm:"foreignKey:PetID"`
	ServiceID       uint              `json:"service_id" gorm:"not null"`
	Service         CareService       `json:"service" gorm:"foreignKey:ServiceID"`
	DoctorID        *uint             `json:"doctor_id"`
	Doctor          *User             `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	AppointmentDate time.Time         `json:"appointment_date" gorm:"type:date;not null;index"`
	AppointmentTime string            `json:"appointment_time" gorm:"type:varchar(8);not null"` // HH:MM
	Status          AppointmentStatus `json:"status" gorm:"type:varchar(16);not null"`
	BookingCode     string            `json:"booking_code" gorm:"type:varchar(64);not null;index"`
	Notes           string            `json:"notes" gorm:"type:text"`
}
