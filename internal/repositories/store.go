package repositories

import "context"

// Repositories groups every store the services use.
type Repositories interface {
	Users() UserRepository
	Products() ProductRepository
	Pets() PetRepository
	CareServices() CareServiceRepository
	Carts() CartRepository
	Orders() OrderRepository
	Appointments() AppointmentRepository
}

// Store hands out repositories and runs fn inside one transaction.
// Repositories passed to fn share that transaction; if fn returns an error
// nothing it wrote is kept.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
