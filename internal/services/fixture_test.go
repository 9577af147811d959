package services_test

import (
	"sync"
	"testing"

	"petshop/internal/database"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"
	"petshop/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Exchange: exchange, RoutingKey: routingKey, Body: body})
	return nil
}

func (p *recordingPublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

var testPetImages = map[string]string{
	"DOG":   "/assets/default-dog.svg",
	"CAT":   "/assets/default-cat.svg",
	"OTHER": "/assets/default-pet.svg",
}

type fixture struct {
	db           *gorm.DB
	store        *repositories.GORMStore
	publisher    *recordingPublisher
	carts        *services.CartService
	orders       *services.OrderService
	appointments *services.AppointmentService
	pets         *services.PetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLiteMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repositories.NewGORMStore(db)
	locks := services.NewKeyLocker()
	pub := &recordingPublisher{}
	mapper := dto.NewMapper(testPetImages)
	logger := zap.NewNop()

	return &fixture{
		db:           db,
		store:        store,
		publisher:    pub,
		carts:        services.NewCartService(store, locks, logger),
		orders:       services.NewOrderService(store, locks, pub, logger),
		appointments: services.NewAppointmentService(store, locks, mapper, pub, logger),
		pets:         services.NewPetService(store, mapper),
	}
}

func (f *fixture) user(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", FullName: "User " + email, Role: role, Status: models.UserStatusActive}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.NewFromInt(price), Stock: stock, Category: "FOOD", ImageURL: "/img/" + name + ".png"}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) pet(t *testing.T, owner models.User, name string, species models.Species) models.Pet {
	t.Helper()
	p := models.Pet{OwnerID: owner.ID, Name: name, Species: species}
	require.NoError(t, f.db.Omit("Owner").Create(&p).Error)
	return p
}

func (f *fixture) careService(t *testing.T, title string, price int64) models.CareService {
	t.Helper()
	s := models.CareService{Title: title, Price: decimal.NewFromInt(price), Duration: 60, Category: "GROOMING"}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
