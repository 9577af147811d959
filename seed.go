package main

import (
	"context"
	"fmt"

	"petshop/internal/models"
	"petshop/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	email, password, name string
	role                  models.Role
}

var demoUsers = []seedUser{
	{"test@example.com", "password123", "Test User", models.RoleUser},
	{"admin@example.com", "admin123", "Shop Admin", models.RoleAdmin},
	{"doctor@example.com", "doctor123", "Dr. Lan Nguyen", models.RoleDoctor},
}

var demoProducts = []models.Product{
	{Name: "Royal Canin Adult Cat Food", Price: decimal.NewFromInt(180000), ImageURL: "/assets/hatmeo.jpg", Category: "food", Stock: 50, Brand: "Royal Canin", Description: "Premium food for adult cats"},
	{Name: "PetLove Dog Leash", Price: decimal.NewFromInt(120000), ImageURL: "/assets/daydatcho.webp", Category: "accessories", Stock: 30, Brand: "PetLove", Description: "Durable leash in several colors"},
	{Name: "Bio-Groom Pet Shampoo", Price: decimal.NewFromInt(140000), ImageURL: "/assets/suatamchomeo.jpg", Category: "grooming", Stock: 45, Brand: "Bio-Groom", Description: "Gentle shampoo for sensitive skin"},
	{Name: "Me-O Cat Pate", Price: decimal.NewFromInt(48000), ImageURL: "/assets/patechomeo.webp", Category: "food", Stock: 100, Brand: "Me-O", Description: "Wet food in assorted flavors"},
}

var demoServices = []models.CareService{
	{Title: "Grooming & Bath", Price: decimal.NewFromInt(150000), Duration: 60, Category: "GROOMING", Description: "Bath, blow-dry, nail trim"},
	{Title: "General Health Check", Price: decimal.NewFromInt(200000), Duration: 30, Category: "HEALTH", Description: "Full physical examination"},
	{Title: "Vaccination", Price: decimal.NewFromInt(250000), Duration: 20, Category: "HEALTH", Description: "Core vaccines for dogs and cats"},
}

// seedDemoData fills an empty database with demo accounts, catalog, care
// services and two pets for the test user. A database that already has
// products is left alone.
func seedDemoData(ctx context.Context, store repositories.Store, logger *zap.Logger) error {
	existing, err := store.Products().GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("demo data already present, skipping seed")
		return nil
	}

	return store.WithinTx(ctx, func(r repositories.Repositories) error {
		var customer *models.User
		for _, su := range demoUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", su.email, err)
			}
			u := &models.User{
				Email:    su.email,
				Password: string(hash),
				FullName: su.name,
				Role:     su.role,
				Status:   models.UserStatusActive,
			}
			if err := r.Users().Create(ctx, u); err != nil {
				return err
			}
			if su.role == models.RoleUser && customer == nil {
				customer = u
			}
		}

		for i := range demoProducts {
			p := demoProducts[i]
			if err := r.Products().Create(ctx, &p); err != nil {
				return err
			}
		}
		for i := range demoServices {
			s := demoServices[i]
			if err := r.CareServices().Create(ctx, &s); err != nil {
				return err
			}
		}

		for _, pet := range []models.Pet{
			{OwnerID: customer.ID, Name: "Milo", Species: models.SpeciesCat, Breed: "British Shorthair", Age: 24, Weight: 4.2, Gender: models.GenderMale},
			{OwnerID: customer.ID, Name: "Lucky", Species: models.SpeciesDog, Breed: "Corgi", Age: 36, Weight: 11.5, Gender: models.GenderFemale},
		} {
			pet := pet
			if err := r.Pets().Create(ctx, &pet); err != nil {
				return err
			}
		}

		logger.Info("demo data seeded",
			zap.Int("users", len(demoUsers)),
			zap.Int("products", len(demoProducts)),
			zap.Int("services", len(demoServices)),
		)
		return nil
	})
}
