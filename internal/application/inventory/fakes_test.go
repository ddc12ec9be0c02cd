package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/inventory/internal/domain/catalog"
	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
)

// In-memory repository fakes shared by the application tests. They honor
// the same contracts as the gorm implementations: ErrNotFound on misses and
// ErrDuplicateReservation on reference-constraint conflicts.

type memEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *memEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *memEventPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type memStockItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*inventory.StockItem
}

func newMemStockItemRepo() *memStockItemRepo {
	return &memStockItemRepo{items: make(map[uuid.UUID]*inventory.StockItem)}
}

func (r *memStockItemRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memStockItemRepo) FindByWarehouseAndProduct(_ context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.TenantID == tenantID && item.WarehouseID == warehouseID && item.ProductID == productID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockItemRepo) FindByWarehouseAndProductForUpdate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	return r.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
}

func (r *memStockItemRepo) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.WarehouseID == warehouseID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memStockItemRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.ProductID == productID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memStockItemRepo) FindBelowMinimum(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.MinQuantity.GreaterThan(decimal.Zero) && item.OnHandQuantity.LessThan(item.MinQuantity) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memStockItemRepo) Save(_ context.Context, item *inventory.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memStockItemRepo) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	return r.Save(ctx, item)
}

func (r *memStockItemRepo) GetOrCreate(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	existing, err := r.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err == nil {
		return existing, nil
	}
	item, err := inventory.NewStockItem(tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *memStockItemRepo) SumOnHandByProduct(_ context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, item := range r.items {
		if item.TenantID == tenantID && item.ProductID == productID {
			sum = sum.Add(item.OnHandQuantity)
		}
	}
	return sum, nil
}

type memMovementRepo struct {
	mu        sync.Mutex
	movements map[uuid.UUID]*inventory.StockMovement
	seq       int
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{movements: make(map[uuid.UUID]*inventory.StockMovement)}
}

func (r *memMovementRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movements[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *memMovementRepo) FindByDocumentNumber(_ context.Context, tenantID uuid.UUID, documentNumber string) (*inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.DocumentNumber == documentNumber {
			copied := *m
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ProductID == productID && m.WarehouseID == warehouseID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType, refID string) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ReferenceDocumentType == refType && m.ReferenceDocumentID == refID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByDateRange(_ context.Context, tenantID uuid.UUID, from, to time.Time, _ shared.Filter) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && !m.MovementDate.Before(from) && m.MovementDate.Before(to) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Save(_ context.Context, movement *inventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *movement
	r.movements[movement.ID] = &copied
	return nil
}

func (r *memMovementRepo) SumSignedQuantity(_ context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *memMovementRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *memMovementRepo) GenerateDocumentNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("SM-%s-%04d", time.Now().Format("20060102"), r.seq), nil
}

func (r *memMovementRepo) byType(movementType inventory.MovementType) []inventory.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.MovementType == movementType {
			out = append(out, *m)
		}
	}
	return out
}

type memReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*inventory.StockReservation
	seq          int
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: make(map[uuid.UUID]*inventory.StockReservation)}
}

func (r *memReservationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok || res.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *memReservationRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.TenantID == tenantID && res.ReservationNumber == number {
			copied := *res
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReservationRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (*inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.TenantID == tenantID && res.ReferenceType == refType && res.ReferenceID == refID && res.ProductID == productID {
			copied := *res
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReservationRepo) FindActiveByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID) ([]inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []inventory.StockReservation
	for _, res := range r.reservations {
		if res.TenantID == tenantID && res.ProductID == productID && res.WarehouseID == warehouseID && res.IsActive(now) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memReservationRepo) FindExpired(_ context.Context, now time.Time, limit int) ([]inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockReservation
	for _, res := range r.reservations {
		if res.IsExpired(now) {
			out = append(out, *res)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memReservationRepo) SumActiveQuantity(_ context.Context, tenantID, productID, warehouseID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, res := range r.reservations {
		if res.TenantID == tenantID && res.ProductID == productID && res.WarehouseID == warehouseID && res.IsActive(now) {
			sum = sum.Add(res.RemainingQuantity())
		}
	}
	return sum, nil
}

func (r *memReservationRepo) Save(_ context.Context, reservation *inventory.StockReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reservation.ReferenceType != "" && reservation.ReferenceID != "" {
		for id, existing := range r.reservations {
			if id == reservation.ID {
				continue
			}
			if existing.TenantID == reservation.TenantID &&
				existing.ReferenceType == reservation.ReferenceType &&
				existing.ReferenceID == reservation.ReferenceID &&
				existing.ProductID == reservation.ProductID {
				return inventory.ErrDuplicateReservation
			}
		}
	}
	copied := *reservation
	r.reservations[reservation.ID] = &copied
	return nil
}

func (r *memReservationRepo) ExistsByReference(ctx context.Context, tenantID uuid.UUID, refType, refID string, productID uuid.UUID) (bool, error) {
	_, err := r.FindByReference(ctx, tenantID, refType, refID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *memReservationRepo) GenerateReservationNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("RSV-%s-%04d", time.Now().Format("20060102"), r.seq), nil
}

func (r *memReservationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reservations)
}

type memCountRepo struct {
	mu     sync.Mutex
	counts map[uuid.UUID]*inventory.StockCount
	seq    int
}

func newMemCountRepo() *memCountRepo {
	return &memCountRepo{counts: make(map[uuid.UUID]*inventory.StockCount)}
}

func (r *memCountRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counts[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *c
	copied.Items = append([]inventory.StockCountItem(nil), c.Items...)
	return &copied, nil
}

func (r *memCountRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.counts {
		if c.TenantID == tenantID && c.CountNumber == number {
			copied := *c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCountRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status inventory.StockCountStatus, _ shared.Filter) ([]inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockCount
	for _, c := range r.counts {
		if c.TenantID == tenantID && c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCountRepo) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockCount
	for _, c := range r.counts {
		if c.TenantID == tenantID && c.WarehouseID == warehouseID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCountRepo) Save(_ context.Context, count *inventory.StockCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *count
	copied.Items = append([]inventory.StockCountItem(nil), count.Items...)
	r.counts[count.ID] = &copied
	return nil
}

func (r *memCountRepo) GenerateCountNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("SC-%s-%04d", time.Now().Format("20060102"), r.seq), nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) add(p *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *memProductRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID == tenantID && p.Code == strings.ToUpper(code) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindActive(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, p := range r.products {
		if p.TenantID == tenantID && p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	_, err := r.FindByCode(ctx, tenantID, code)
	return err == nil, nil
}

type memWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[uuid.UUID]*catalog.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{warehouses: make(map[uuid.UUID]*catalog.Warehouse)}
}

func (r *memWarehouseRepo) add(w *catalog.Warehouse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = w
}

func (r *memWarehouseRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.warehouses[id]
	if !ok || w.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (r *memWarehouseRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.TenantID == tenantID && w.Code == strings.ToUpper(code) {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindDefault(_ context.Context, tenantID uuid.UUID) (*catalog.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.TenantID == tenantID && w.IsDefault && w.IsActive() {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindActive(_ context.Context, tenantID uuid.UUID) ([]catalog.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Warehouse
	for _, w := range r.warehouses {
		if w.TenantID == tenantID && w.IsActive() {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memWarehouseRepo) Save(_ context.Context, warehouse *catalog.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[warehouse.ID] = warehouse
	return nil
}

// testEnv wires the fakes into a NoOp transaction scope
type testEnv struct {
	stockItems   *memStockItemRepo
	movements    *memMovementRepo
	reservations *memReservationRepo
	counts       *memCountRepo
	products     *memProductRepo
	warehouses   *memWarehouseRepo
	scope        *NoOpTransactionScope
	publisher    *memEventPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		stockItems:   newMemStockItemRepo(),
		movements:    newMemMovementRepo(),
		reservations: newMemReservationRepo(),
		counts:       newMemCountRepo(),
		products:     newMemProductRepo(),
		warehouses:   newMemWarehouseRepo(),
		publisher:    &memEventPublisher{},
	}
	env.scope = NewNoOpTransactionScope(env.stockItems, env.movements, env.reservations, env.counts, env.products)
	return env
}

var (
	_ inventory.StockItemRepository        = (*memStockItemRepo)(nil)
	_ inventory.StockMovementRepository    = (*memMovementRepo)(nil)
	_ inventory.StockReservationRepository = (*memReservationRepo)(nil)
	_ inventory.StockCountRepository       = (*memCountRepo)(nil)
	_ catalog.ProductRepository            = (*memProductRepo)(nil)
	_ catalog.WarehouseRepository          = (*memWarehouseRepo)(nil)
)
