package services_test

import (
	"context"
	"testing"

	"petshop/internal/apperrors"
	"petshop/internal/models"
	"petshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@example.com", models.RoleUser)

	dog, err := f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: "Rex", Species: "dog", Gender: "male", Age: 24})
	require.NoError(t, err)
	assert.Equal(t, "DOG", dog.Species)
	assert.Equal(t, "MALE", dog.Gender)
	assert.Equal(t, "/assets/default-dog.svg", dog.ImageURL)

	hamster, err := f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: "Bun", Species: "HAMSTER"})
	require.NoError(t, err)
	assert.Equal(t, "/assets/default-pet.svg", hamster.ImageURL)

	own, err := f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: "Miu", Species: "CAT", ImageURL: "/uploads/miu.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/miu.jpg", own.ImageURL)

	list, err := f.pets.ListPets(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestPetService_CreateRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@example.com", models.RoleUser)

	_, err := f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: "Rex", Species: "dragon"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: " ", Species: "DOG"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.pets.CreatePet(ctx, u.ID, services.CreatePetInput{Name: "Rex", Species: "DOG", Gender: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.pets.CreatePet(ctx, 9999, services.CreatePetInput{Name: "Rex", Species: "DOG"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPetService_ListCareServices(t *testing.T) {
	f := newFixture(t)
	f.careService(t, "Grooming", 150000)
	f.careService(t, "Health check", 200000)

	list, err := f.pets.ListCareServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPetService_GetUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", models.RoleUser)
	stranger := f.user(t, "stranger@example.com", models.RoleUser)

	created, err := f.pets.CreatePet(ctx, owner.ID, services.CreatePetInput{Name: "Rex", Species: "DOG", ImageURL: "/uploads/rex.jpg"})
	require.NoError(t, err)

	got, err := f.pets.GetPet(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)

	_, err = f.pets.GetPet(ctx, created.ID, stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.pets.GetPet(ctx, 9999, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// a blank image keeps the stored one
	updated, err := f.pets.UpdatePet(ctx, created.ID, owner.ID, services.CreatePetInput{Name: "Rexy", Species: "dog", Age: 30, Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "Rexy", updated.Name)
	assert.Equal(t, "FEMALE", updated.Gender)
	assert.Equal(t, "/uploads/rex.jpg", updated.ImageURL)

	got, err = f.pets.GetPet(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rexy", got.Name)
	assert.Equal(t, 30, got.Age)

	_, err = f.pets.UpdatePet(ctx, created.ID, stranger.ID, services.CreatePetInput{Name: "Mine", Species: "DOG"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.pets.UpdatePet(ctx, created.ID, owner.ID, services.CreatePetInput{Name: "Rexy", Species: "dragon"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	assert.ErrorIs(t, f.pets.DeletePet(ctx, created.ID, stranger.ID), apperrors.ErrForbidden)
	require.NoError(t, f.pets.DeletePet(ctx, created.ID, owner.ID))
	_, err = f.pets.GetPet(ctx, created.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPetService_DeleteBookedPetIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", models.RoleUser)
	pet := f.pet(t, owner, "Rex", models.SpeciesDog)
	svc := f.careService(t, "Grooming", 150000)

	_, err := f.appointments.CreateAppointments(ctx, owner.ID, services.CreateAppointmentsInput{
		PetIDs:    []uint{pet.ID},
		ServiceID: svc.ID,
		Date:      "2026-02-20",
		Time:      "09:00",
	})
	require.NoError(t, err)

	err = f.pets.DeletePet(ctx, pet.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.pets.GetPet(ctx, pet.ID, owner.ID)
	assert.NoError(t, err)
}
