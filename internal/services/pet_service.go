package services

import (
	"context"
	"strings"

	"petshop/internal/apperrors"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"
)

type CreatePetInput struct {
	Name    string
	Species string
	Breed   string
	Age     int
	Weight  float64
	Gender  string
	Notes   string
	// ImageURL left empty falls back to the species default.
	ImageURL string
}

// PetService manages the pets owned by users and the list of care services
// they can be booked for.
type PetService struct {
	store  repositories.Store
	mapper *dto.Mapper
}

func NewPetService(store repositories.Store, mapper *dto.Mapper) *PetService {
	return &PetService{store: store, mapper: mapper}
}

// applyPetInput validates in and copies it onto pet. A blank image keeps
// whatever pet already has.
func applyPetInput(pet *models.Pet, in CreatePetInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.InvalidInput("pet name is required")
	}
	species, ok := models.ParseSpecies(in.Species)
	if !ok {
		return apperrors.InvalidInput("unknown species %q", in.Species)
	}
	if in.Age < 0 || in.Weight < 0 {
		return apperrors.InvalidInput("age and weight cannot be negative")
	}
	gender := models.Gender(strings.ToUpper(strings.TrimSpace(in.Gender)))
	if gender != "" && gender != models.GenderMale && gender != models.GenderFemale {
		return apperrors.InvalidInput("unknown gender %q", in.Gender)
	}

	pet.Name = name
	pet.Species = species
	pet.Breed = in.Breed
	pet.Age = in.Age
	pet.Weight = in.Weight
	pet.Gender = gender
	pet.Notes = in.Notes
	if image := strings.TrimSpace(in.ImageURL); image != "" {
		pet.ImageURL = image
	}
	return nil
}

func (s *PetService) CreatePet(ctx context.Context, ownerID uint, in CreatePetInput) (*dto.PetResponse, error) {
	pet := &models.Pet{OwnerID: ownerID}
	if err := applyPetInput(pet, in); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, ownerID); err != nil {
		return nil, notFoundAs(err, "user %d not found", ownerID)
	}
	if err := s.store.Pets().Create(ctx, pet); err != nil {
		return nil, err
	}
	resp := s.mapper.Pet(*pet)
	return &resp, nil
}

// ownedPet loads a pet and checks that ownerID owns it.
func ownedPet(ctx context.Context, r repositories.Repositories, petID, ownerID uint) (*models.Pet, error) {
	pet, err := r.Pets().GetByID(ctx, petID)
	if err != nil {
		return nil, notFoundAs(err, "pet %d not found", petID)
	}
	if pet.OwnerID != ownerID {
		return nil, apperrors.Forbidden("pet %d does not belong to user %d", petID, ownerID)
	}
	return pet, nil
}

func (s *PetService) GetPet(ctx context.Context, petID, ownerID uint) (*dto.PetResponse, error) {
	pet, err := ownedPet(ctx, s.store, petID, ownerID)
	if err != nil {
		return nil, err
	}
	resp := s.mapper.Pet(*pet)
	return &resp, nil
}

func (s *PetService) UpdatePet(ctx context.Context, petID, ownerID uint, in CreatePetInput) (*dto.PetResponse, error) {
	var pet *models.Pet
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		var err error
		if pet, err = ownedPet(ctx, r, petID, ownerID); err != nil {
			return err
		}
		if err := applyPetInput(pet, in); err != nil {
			return err
		}
		return notFoundAs(r.Pets().Update(ctx, pet), "pet %d not found", petID)
	})
	if err != nil {
		return nil, err
	}
	resp := s.mapper.Pet(*pet)
	return &resp, nil
}

// DeletePet removes a pet that has never been booked.
func (s *PetService) DeletePet(ctx context.Context, petID, ownerID uint) error {
	return s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		if _, err := ownedPet(ctx, r, petID, ownerID); err != nil {
			return err
		}
		err := notFoundAs(r.Pets().Delete(ctx, petID), "pet %d not found", petID)
		return conflictIfInUse(err, "pet %d has appointments", petID)
	})
}

func (s *PetService) ListPets(ctx context.Context, ownerID uint) ([]dto.PetResponse, error) {
	pets, err := s.store.Pets().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PetResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, s.mapper.Pet(p))
	}
	return out, nil
}

func (s *PetService) ListCareServices(ctx context.Context) ([]models.CareService, error) {
	return s.store.CareServices().GetAll(ctx)
}
