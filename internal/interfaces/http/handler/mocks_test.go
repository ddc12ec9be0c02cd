package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// Map-backed repository fakes for handler tests. Only the read paths the
// handlers exercise carry real behavior; writes just record the aggregate.

type fakeStockItemRepo struct {
	items     map[uuid.UUID]*inventory.StockItem
	returnErr error
}

func newFakeStockItemRepo() *fakeStockItemRepo {
	return &fakeStockItemRepo{items: make(map[uuid.UUID]*inventory.StockItem)}
}

func (f *fakeStockItemRepo) add(item *inventory.StockItem) {
	f.items[item.ID] = item
}

func (f *fakeStockItemRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockItem, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	if item, ok := f.items[id]; ok && item.TenantID == tenantID {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockItemRepo) FindByWarehouseAndProduct(_ context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, item := range f.items {
		if item.TenantID == tenantID && item.WarehouseID == warehouseID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockItemRepo) FindByWarehouseAndProductForUpdate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	return f.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
}

func (f *fakeStockItemRepo) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockItem
	for _, item := range f.items {
		if item.TenantID == tenantID && item.WarehouseID == warehouseID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (f *fakeStockItemRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockItem
	for _, item := range f.items {
		if item.TenantID == tenantID && item.ProductID == productID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (f *fakeStockItemRepo) FindBelowMinimum(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockItem
	for _, item := range f.items {
		if item.TenantID == tenantID && item.MinQuantity.IsPositive() && item.OnHandQuantity.LessThan(item.MinQuantity) {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (f *fakeStockItemRepo) Save(_ context.Context, item *inventory.StockItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeStockItemRepo) SaveWithLock(_ context.Context, item *inventory.StockItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeStockItemRepo) GetOrCreate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	if item, err := f.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID); err == nil {
		return item, nil
	}
	item, err := inventory.NewStockItem(tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeStockItemRepo) SumOnHandByProduct(_ context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range f.items {
		if item.TenantID == tenantID && item.ProductID == productID {
			total = total.Add(item.OnHandQuantity)
		}
	}
	return total, nil
}

type fakeMovementRepo struct {
	movements []*inventory.StockMovement
	returnErr error
}

func (f *fakeMovementRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockMovement, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, m := range f.movements {
		if m.TenantID == tenantID && m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeMovementRepo) FindByDocumentNumber(_ context.Context, tenantID uuid.UUID, documentNumber string) (*inventory.StockMovement, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, m := range f.movements {
		if m.TenantID == tenantID && m.DocumentNumber == documentNumber {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeMovementRepo) FindByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockMovement
	for _, m := range f.movements {
		if m.TenantID == tenantID && m.ProductID == productID && m.WarehouseID == warehouseID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType, refID string) ([]inventory.StockMovement, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockMovement
	for _, m := range f.movements {
		if m.TenantID == tenantID && m.ReferenceDocumentType == refType && m.ReferenceDocumentID == refID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMovementRepo) FindByDateRange(_ context.Context, tenantID uuid.UUID, from, to time.Time, _ shared.Filter) ([]inventory.StockMovement, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockMovement
	for _, m := range f.movements {
		if m.TenantID == tenantID && !m.MovementDate.Before(from) && !m.MovementDate.After(to) {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMovementRepo) Save(_ context.Context, movement *inventory.StockMovement) error {
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeMovementRepo) SumSignedQuantity(_ context.Context, _, _, _ uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeMovementRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, m := range f.movements {
		if m.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMovementRepo) GenerateDocumentNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return "SM-20260901-0001", nil
}

type fakeReservationRepo struct {
	reservations []*inventory.StockReservation
	returnErr    error
}

func (f *fakeReservationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockReservation, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, r := range f.reservations {
		if r.TenantID == tenantID && r.ID == id {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReservationRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.StockReservation, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, r := range f.reservations {
		if r.TenantID == tenantID && r.ReservationNumber == number {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReservationRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (*inventory.StockReservation, error) {
	for _, r := range f.reservations {
		if r.TenantID == tenantID && r.ReferenceType == refType && r.ReferenceID == refID && r.ProductID == productID {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReservationRepo) FindActiveByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID) ([]inventory.StockReservation, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	now := time.Now()
	var result []inventory.StockReservation
	for _, r := range f.reservations {
		if r.TenantID == tenantID && r.ProductID == productID && r.WarehouseID == warehouseID && r.IsActive(now) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReservationRepo) FindExpired(_ context.Context, now time.Time, _ int) ([]inventory.StockReservation, error) {
	var result []inventory.StockReservation
	for _, r := range f.reservations {
		if r.IsExpired(now) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReservationRepo) SumActiveQuantity(_ context.Context, tenantID, productID, warehouseID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range f.reservations {
		if r.TenantID == tenantID && r.ProductID == productID && r.WarehouseID == warehouseID && r.IsActive(now) {
			total = total.Add(r.RemainingQuantity())
		}
	}
	return total, nil
}

func (f *fakeReservationRepo) Save(_ context.Context, reservation *inventory.StockReservation) error {
	f.reservations = append(f.reservations, reservation)
	return nil
}

func (f *fakeReservationRepo) ExistsByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (bool, error) {
	_, err := f.FindByReference(ctx, tenantID, refType, refID, productID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeReservationRepo) GenerateReservationNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return "RSV-20260901-0001", nil
}

type fakeStockCountRepo struct {
	counts    []*inventory.StockCount
	returnErr error
}

func (f *fakeStockCountRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockCount, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	for _, c := range f.counts {
		if c.TenantID == tenantID && c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockCountRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.StockCount, error) {
	for _, c := range f.counts {
		if c.TenantID == tenantID && c.CountNumber == number {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStockCountRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status inventory.StockCountStatus, _ shared.Filter) ([]inventory.StockCount, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockCount
	for _, c := range f.counts {
		if c.TenantID == tenantID && c.Status == status {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeStockCountRepo) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockCount, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.StockCount
	for _, c := range f.counts {
		if c.TenantID == tenantID && c.WarehouseID == warehouseID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeStockCountRepo) Save(_ context.Context, count *inventory.StockCount) error {
	f.counts = append(f.counts, count)
	return nil
}

func (f *fakeStockCountRepo) GenerateCountNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return "SC-20260901-0001", nil
}

var (
	_ inventory.StockItemRepository        = (*fakeStockItemRepo)(nil)
	_ inventory.StockMovementRepository    = (*fakeMovementRepo)(nil)
	_ inventory.StockReservationRepository = (*fakeReservationRepo)(nil)
	_ inventory.StockCountRepository       = (*fakeStockCountRepo)(nil)
)
