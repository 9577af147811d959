package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"petshop/internal/apperrors"
	"petshop/internal/database"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 5, 7, 0, time.UTC)
	n := newOrderNumber(now, 42)
	assert.Regexp(t, `^ORD-20260220090507-42-[0-9A-F]{8}$`, n)
	assert.NotEqual(t, n, newOrderNumber(now, 42))
}

func TestNewBookingCode(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 5, 7, 0, time.UTC)
	assert.Regexp(t, `^BK-20260220-090507-[0-9A-F]{4}$`, newBookingCode(now))
}

func TestParseAppointmentTime(t *testing.T) {
	for in, want := range map[string]string{"09:00": "09:00", "9:00": "09:00", "14:30:59": "14:30", " 08:15 ": "08:15"} {
		got, err := parseAppointmentTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "25:00", "noon", "12"} {
		_, err := parseAppointmentTime(in)
		assert.Error(t, err, in)
	}
}

func TestKeyLockerSerializesAndCleansUp(t *testing.T) {
	l := NewKeyLocker()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("cart:1")
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.size())
}

func TestKeyLockerIndependentKeys(t *testing.T) {
	l := NewKeyLocker()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	unlockA()
}

func TestCreateOrderRetriesTakenNumber(t *testing.T) {
	db, err := database.OpenSQLiteMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	user := models.User{Email: "u@example.com", Password: "x", FullName: "U", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{Name: "bowl", Price: decimal.NewFromInt(40000), Stock: 10, Category: "ACCESSORY"}
	require.NoError(t, db.Create(&product).Error)
	taken := models.Order{UserID: user.ID, OrderNumber: "ORD-TAKEN", TotalAmount: decimal.Zero, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, ShippingAddress: "x", PaymentMethod: "COD"}
	require.NoError(t, db.Create(&taken).Error)

	store := repositories.NewGORMStore(db)
	locks := NewKeyLocker()
	carts := NewCartService(store, locks, zap.NewNop())
	orders := NewOrderService(store, locks, nil, zap.NewNop())

	calls := 0
	orders.orderNumber = func(time.Time, uint) string {
		calls++
		if calls < 3 {
			return "ORD-TAKEN"
		}
		return "ORD-FRESH"
	}

	_, err = carts.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := orders.CreateOrder(ctx, user.ID, CreateOrderInput{ShippingAddress: "1 Main St", PaymentMethod: "COD"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-FRESH", order.OrderNumber)
	assert.Equal(t, 3, calls)
}

func TestCreateOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	db, err := database.OpenSQLiteMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	user := models.User{Email: "u@example.com", Password: "x", FullName: "U", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{Name: "bowl", Price: decimal.NewFromInt(40000), Stock: 10, Category: "ACCESSORY"}
	require.NoError(t, db.Create(&product).Error)
	taken := models.Order{UserID: user.ID, OrderNumber: "ORD-TAKEN", TotalAmount: decimal.Zero, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, ShippingAddress: "x", PaymentMethod: "COD"}
	require.NoError(t, db.Create(&taken).Error)

	store := repositories.NewGORMStore(db)
	carts := NewCartService(store, nil, zap.NewNop())
	orders := NewOrderService(store, nil, nil, zap.NewNop())
	orders.orderNumber = func(time.Time, uint) string { return "ORD-TAKEN" }

	_, err = carts.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = orders.CreateOrder(ctx, user.ID, CreateOrderInput{ShippingAddress: "1 Main St", PaymentMethod: "COD"})
	require.Error(t, err)

	// the cart survives a failed checkout
	cart, err := carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCreateAppointmentsRedrawsTakenBookingCode(t *testing.T) {
	db, err := database.OpenSQLiteMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	owner := models.User{Email: "a@example.com", Password: "x", FullName: "A", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&owner).Error)
	other := models.User{Email: "b@example.com", Password: "x", FullName: "B", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&other).Error)
	service := models.CareService{Title: "Bath", Price: decimal.NewFromInt(90000), Category: "GROOMING"}
	require.NoError(t, db.Create(&service).Error)
	pet := models.Pet{OwnerID: owner.ID, Name: "Rex", Species: models.SpeciesDog}
	require.NoError(t, db.Omit("Owner").Create(&pet).Error)
	otherPet := models.Pet{OwnerID: other.ID, Name: "Tom", Species: models.SpeciesCat}
	require.NoError(t, db.Omit("Owner").Create(&otherPet).Error)

	taken := models.Appointment{UserID: other.ID, PetID: otherPet.ID, ServiceID: service.ID, AppointmentDate: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), AppointmentTime: "09:00", Status: models.AppointmentStatusPending, BookingCode: "BK-TAKEN"}
	require.NoError(t, db.Omit("Pet", "Service", "Doctor").Create(&taken).Error)

	appts := NewAppointmentService(repositories.NewGORMStore(db), nil, dto.NewMapper(nil), nil, zap.NewNop())
	calls := 0
	appts.bookingCode = func(time.Time) string {
		calls++
		if calls < 3 {
			return "BK-TAKEN"
		}
		return "BK-FRESH"
	}

	out, err := appts.CreateAppointments(ctx, owner.ID, CreateAppointmentsInput{PetIDs: []uint{pet.ID}, ServiceID: service.ID, Date: "2026-02-21", Time: "10:00"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "BK-FRESH", out[0].BookingCode)
	assert.Equal(t, 3, calls)

	// every draw taken: nothing is booked
	appts.bookingCode = func(time.Time) string { return "BK-TAKEN" }
	_, err = appts.CreateAppointments(ctx, owner.ID, CreateAppointmentsInput{PetIDs: []uint{pet.ID}, ServiceID: service.ID, Date: "2026-02-22", Time: "10:00"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// racedOrderStore hides existing order numbers from the pre-insert check,
// as if another checkout took the number between check and insert.
type racedOrderStore struct{ repositories.Store }

func (s racedOrderStore) WithinTx(ctx context.Context, fn func(r repositories.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(r repositories.Repositories) error {
		return fn(racedOrderRepos{r})
	})
}

type racedOrderRepos struct{ repositories.Repositories }

func (r racedOrderRepos) Orders() repositories.OrderRepository {
	return racedOrders{r.Repositories.Orders()}
}

type racedOrders struct{ repositories.OrderRepository }

func (racedOrders) ExistsByOrderNumber(context.Context, string) (bool, error) { return false, nil }

func TestCreateOrderRetriesAfterDuplicateKeyOnInsert(t *testing.T) {
	db, err := database.OpenSQLiteMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	user := models.User{Email: "u@example.com", Password: "x", FullName: "U", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{Name: "bowl", Price: decimal.NewFromInt(40000), Stock: 10, Category: "ACCESSORY"}
	require.NoError(t, db.Create(&product).Error)
	taken := models.Order{UserID: user.ID, OrderNumber: "ORD-TAKEN", TotalAmount: decimal.Zero, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, ShippingAddress: "x", PaymentMethod: "COD"}
	require.NoError(t, db.Create(&taken).Error)

	store := racedOrderStore{repositories.NewGORMStore(db)}
	locks := NewKeyLocker()
	carts := NewCartService(store, locks, zap.NewNop())
	orders := NewOrderService(store, locks, nil, zap.NewNop())

	calls := 0
	orders.orderNumber = func(time.Time, uint) string {
		calls++
		if calls < 3 {
			return "ORD-TAKEN"
		}
		return "ORD-FRESH"
	}

	_, err = carts.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	order, err := orders.CreateOrder(ctx, user.ID, CreateOrderInput{ShippingAddress: "1 Main St", PaymentMethod: "COD"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-FRESH", order.OrderNumber)
	assert.Equal(t, 3, calls)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// the failed inserts left nothing behind
	var orphaned, total int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", taken.ID).Count(&orphaned).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&total).Error)
	assert.Zero(t, orphaned)
	assert.Equal(t, int64(1), total)

	cart, err := carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
