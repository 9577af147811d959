package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Users() UserRepository               { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Products() ProductRepository         { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Pets() PetRepository                 { return NewGORMPetRepository(s.db) }
func (s *GORMStore) CareServices() CareServiceRepository { return NewGORMCareServiceRepository(s.db) }
func (s *GORMStore) Carts() CartRepository               { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository             { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Appointments() AppointmentRepository { return NewGORMAppointmentRepository(s.db) }

// WithinTx runs fn with repositories bound to a single transaction.
func (s *GORMStore) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMStore{db: tx})
	})
}
