package repositories

import (
	"context"
	"errors"
	"fmt"

	"petshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PetRepository defines the interface for pet data access.
type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id uint) (*models.Pet, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	// Delete fails with ErrInUse while appointments refer to the pet.
	Delete(ctx context.Context, id uint) error
}

// CareServiceRepository defines the interface for bookable service data access.
type CareServiceRepository interface {
	Create(ctx context.Context, svc *models.CareService) error
	GetAll(ctx context.Context) ([]models.CareService, error)
	GetByID(ctx context.Context, id uint) (*models.CareService, error)
}

// GORMPetRepository is a GORM implementation of PetRepository.
type GORMPetRepository struct {
	db *gorm.DB
}

func NewGORMPetRepository(db *gorm.DB) *GORMPetRepository {
	return &GORMPetRepository{db: db}
}

func (r *GORMPetRepository) Create(ctx context.Context, pet *models.Pet) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(pet).Error; err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

func (r *GORMPetRepository) GetByID(ctx context.Context, id uint) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pet with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pet by ID %d: %w", id, err)
	}
	return &pet, nil
}

func (r *GORMPetRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Pet, error) {
	var pets []models.Pet
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id asc").Find(&pets).Error; err != nil {
		return nil, fmt.Errorf("failed to list pets of user %d: %w", ownerID, err)
	}
	return pets, nil
}

func (r *GORMPetRepository) Update(ctx context.Context, pet *models.Pet) error {
	res := r.db.WithContext(ctx).Model(&models.Pet{}).Where("id = ?", pet.ID).
		Select("Name", "Species", "Breed", "Age", "Weight", "Gender", "Notes", "ImageURL").
		Updates(pet)
	if res.Error != nil {
		return fmt.Errorf("failed to update pet %d: %w", pet.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pet with ID %d: %w", pet.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMPetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booked int64
		if err := tx.Model(&models.Appointment{}).Where("pet_id = ?", id).Count(&booked).Error; err != nil {
			return fmt.Errorf("failed to count appointments of pet %d: %w", id, err)
		}
		if booked > 0 {
			return fmt.Errorf("pet %d has %d appointments: %w", id, booked, ErrInUse)
		}
		res := tx.Delete(&models.Pet{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete pet %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("pet with ID %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// GORMCareServiceRepository is a GORM implementation of CareServiceRepository.
type GORMCareServiceRepository struct {
	db *gorm.DB
}

func NewGORMCareServiceRepository(db *gorm.DB) *GORMCareServiceRepository {
	return &GORMCareServiceRepository{db: db}
}

func (r *GORMCareServiceRepository) Create(ctx context.Context, svc *models.CareService) error {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *GORMCareServiceRepository) GetAll(ctx context.Context) ([]models.CareService, error) {
	var services []models.CareService
	if err := r.db.WithContext(ctx).Order("id asc").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to get all services: %w", err)
	}
	return services, nil
}

func (r *GORMCareServiceRepository) GetByID(ctx context.Context, id uint) (*models.CareService, error) {
	var svc models.CareService
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get service by ID %d: %w", id, err)
	}
	return &svc, nil
}
