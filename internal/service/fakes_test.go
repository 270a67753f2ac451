package service

import (
	"context"
	"fmt"

	"petshop-service/internal/models"
)

func priceOf(v models.Cents) *models.Cents {
	return &v
}

type stockOp struct {
	kind      string // "inc" or "dec"
	productID int64
	quantity  int
}

// fakeStock is an in-memory Stock with per-product error injection.
type fakeStock struct {
	products      map[int64]*models.Product
	ops           []stockOp
	failDecrement map[int64]error
	failIncrement map[int64]error
}

func newFakeStock(products ...*models.Product) *fakeStock {
	f := &fakeStock{
		products:      make(map[int64]*models.Product),
		failDecrement: make(map[int64]error),
		failIncrement: make(map[int64]error),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeStock) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, &models.UnknownProductError{ProductID: productID}
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStock) StockSnapshot(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	snapshot := make(map[int64]int, len(productIDs))
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			snapshot[id] = p.Stock
		}
	}
	return snapshot, nil
}

func (f *fakeStock) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	if err := f.failDecrement[productID]; err != nil {
		return err
	}
	p, ok := f.products[productID]
	if !ok {
		return &models.UnknownProductError{ProductID: productID}
	}
	if p.Stock < quantity {
		return &models.InsufficientStockError{
			ProductID: productID,
			Available: p.Stock,
			Requested: quantity,
		}
	}
	p.Stock -= quantity
	f.ops = append(f.ops, stockOp{kind: "dec", productID: productID, quantity: quantity})
	return nil
}

func (f *fakeStock) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	if err := f.failIncrement[productID]; err != nil {
		return err
	}
	p, ok := f.products[productID]
	if !ok {
		return &models.UnknownProductError{ProductID: productID}
	}
	p.Stock += quantity
	f.ops = append(f.ops, stockOp{kind: "inc", productID: productID, quantity: quantity})
	return nil
}

func (f *fakeStock) stock(productID int64) int {
	return f.products[productID].Stock
}

// fakeSaleStore is an in-memory SaleStore with failure injection.
type fakeSaleStore struct {
	sales      map[int64]*models.Sale
	items      map[int64][]models.SaleItem
	customers  map[int64]*models.Customer
	nextID     int64
	failCreate error
	failUpdate error
	failDelete error
}

func newFakeSaleStore(customers ...*models.Customer) *fakeSaleStore {
	f := &fakeSaleStore{
		sales:     make(map[int64]*models.Sale),
		items:     make(map[int64][]models.SaleItem),
		customers: make(map[int64]*models.Customer),
	}
	for _, c := range customers {
		f.customers[c.ID] = c
	}
	return f
}

func (f *fakeSaleStore) CreateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.nextID++
	sale.ID = f.nextID
	stored := *sale
	f.sales[sale.ID] = &stored
	storedItems := make([]models.SaleItem, len(items))
	copy(storedItems, items)
	for i := range storedItems {
		storedItems[i].SaleID = sale.ID
	}
	f.items[sale.ID] = storedItems
	return nil
}

func (f *fakeSaleStore) UpdateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if _, ok := f.sales[sale.ID]; !ok {
		return fmt.Errorf("sale not found: %d", sale.ID)
	}
	stored := *sale
	f.sales[sale.ID] = &stored
	storedItems := make([]models.SaleItem, len(items))
	copy(storedItems, items)
	for i := range storedItems {
		storedItems[i].SaleID = sale.ID
	}
	f.items[sale.ID] = storedItems
	return nil
}

func (f *fakeSaleStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale not found: %d", id)
	}
	copied := *sale
	return &copied, nil
}

func (f *fakeSaleStore) GetSales(ctx context.Context) ([]models.Sale, error) {
	sales := make([]models.Sale, 0, len(f.sales))
	for _, s := range f.sales {
		sales = append(sales, *s)
	}
	return sales, nil
}

func (f *fakeSaleStore) GetSaleItemsBySaleID(ctx context.Context, saleID int64) ([]models.SaleItem, error) {
	items := make([]models.SaleItem, len(f.items[saleID]))
	copy(items, f.items[saleID])
	return items, nil
}

func (f *fakeSaleStore) DeleteSale(ctx context.Context, saleID int64) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.sales, saleID)
	delete(f.items, saleID)
	return nil
}

func (f *fakeSaleStore) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer not found: %d", id)
	}
	copied := *customer
	return &copied, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	committed []*models.SaleCommittedEvent
	amended   []*models.SaleAmendedEvent
	deleted   []*models.SaleDeletedEvent
}

func (f *fakePublisher) PublishSaleCommitted(ctx context.Context, event *models.SaleCommittedEvent) error {
	f.committed = append(f.committed, event)
	return nil
}

func (f *fakePublisher) PublishSaleAmended(ctx context.Context, event *models.SaleAmendedEvent) error {
	f.amended = append(f.amended, event)
	return nil
}

func (f *fakePublisher) PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	f.deleted = append(f.deleted, event)
	return nil
}
