package dto

import (
	"time"

	"petshop/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const fallbackPetImage = "/assets/default-pet.svg"

type AppointmentResponse struct {
	ID              uint            `json:"id"`
	BookingCode     string          `json:"booking_code"`
	PetID           uint            `json:"pet_id"`
	PetName         string          `json:"pet_name"`
	PetSpecies      string          `json:"pet_species"`
	PetImageURL     string          `json:"pet_image_url"`
	ServiceID       uint            `json:"service_id"`
	ServiceTitle    string          `json:"service_title"`
	ServicePrice    decimal.Decimal `json:"service_price"`
	DoctorName      *string         `json:"doctor_name"`
	AppointmentDate string          `json:"appointment_date"`
	AppointmentTime string          `json:"appointment_time"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

type PetResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     string    `json:"breed"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	Gender    string    `json:"gender,omitempty"`
	Notes     string    `json:"notes"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Mapper maps entities that need the species -> default image table.
// The table is copied on construction and never changes afterwards.
type Mapper struct {
	petImages map[string]string
}

func NewMapper(petImages map[string]string) *Mapper {
	images := make(map[string]string, len(petImages))
	for k, v := range petImages {
		images[k] = v
	}
	return &Mapper{petImages: images}
}

// PetImage returns the pet's own image or the default for its species.
func (m *Mapper) PetImage(p models.Pet) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if img, ok := m.petImages[string(p.Species)]; ok {
		return img
	}
	if img, ok := m.petImages[string(models.SpeciesOther)]; ok {
		return img
	}
	return fallbackPetImage
}

func (m *Mapper) Appointment(a models.Appointment) AppointmentResponse {
	var doctorName *string
	if a.Doctor != nil {
		name := a.Doctor.FullName
		doctorName = &name
	}
	return AppointmentResponse{
		ID:              a.ID,
		BookingCode:     a.BookingCode,
		PetID:           a.PetID,
		PetName:         a.Pet.Name,
		PetSpecies:      string(a.Pet.Species),
		PetImageURL:     m.PetImage(a.Pet),
		ServiceID:       a.ServiceID,
		ServiceTitle:    a.Service.Title,
		ServicePrice:    a.Service.Price,
		DoctorName:      doctorName,
		AppointmentDate: a.AppointmentDate.Format(DateLayout),
		AppointmentTime: a.AppointmentTime,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
	}
}

func (m *Mapper) Appointments(list []models.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, m.Appointment(a))
	}
	return out
}

func (m *Mapper) Pet(p models.Pet) PetResponse {
	return PetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Species:   string(p.Species),
		Breed:     p.Breed,
		Age:       p.Age,
		Weight:    p.Weight,
		Gender:    string(p.Gender),
		Notes:     p.Notes,
		ImageURL:  m.PetImage(p),
		CreatedAt: p.CreatedAt,
	}
}
