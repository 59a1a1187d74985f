package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for PostgreSQL. Transactions and
// savepoints snapshot its state and restore it on rollback.
type memStore struct {
	customers []*domain.Customer
	products  []*domain.Product
	orders    []*domain.Order
	seq       int64

	// failEmail makes Create return a store error for that email.
	failEmail string
	// panicEmail makes Create panic for that email.
	panicEmail string
	// raceEmail makes ExistsByEmail miss that email while Create still
	// reports the uniqueness violation.
	raceEmail string
}

type memState struct {
	customers []*domain.Customer
	products  []*domain.Product
	orders    []*domain.Order
	seq       int64
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) snapshot() memState {
	return memState{
		customers: slices.Clone(m.customers),
		products:  slices.Clone(m.products),
		orders:    slices.Clone(m.orders),
		seq:       m.seq,
	}
}

func (m *memStore) restore(s memState) {
	m.customers, m.products, m.orders, m.seq = s.customers, s.products, s.orders, s.seq
}

func (m *memStore) nextSeq() int64 {
	m.seq++
	return m.seq
}

func allPage[T any](items []T) *query.Page[T] {
	return &query.Page[T]{Items: slices.Clone(items), TotalCount: len(items)}
}

type memCustomerRepository struct{ store *memStore }

func (r *memCustomerRepository) WithTx(database.DBTX) repository.CustomerRepository { return r }

func (r *memCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	switch c.Email {
	case r.store.failEmail:
		return errors.New("connection reset")
	case r.store.panicEmail:
		panic("boom")
	}
	for _, existing := range r.store.customers {
		if existing.Email == c.Email {
			return repository.ErrCustomerEmailExists
		}
	}
	c.ID = uuid.New()
	c.Seq = r.store.nextSeq()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.store.customers = append(r.store.customers, c)
	return nil
}

func (r *memCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	for _, c := range r.store.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (r *memCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == r.store.raceEmail {
		return false, nil
	}
	for _, c := range r.store.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCustomerRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error) {
	return allPage(r.store.customers), nil
}

type memProductRepository struct {
	store *memStore
	// findByIDsCalls counts product resolution lookups.
	findByIDsCalls int
}

func (r *memProductRepository) WithTx(database.DBTX) repository.ProductRepository { return r }

func (r *memProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New()
	p.Seq = r.store.nextSeq()
	p.CreatedAt = time.Now()
	r.store.products = append(r.store.products, p)
	return nil
}

func (r *memProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range r.store.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *memProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	r.findByIDsCalls++
	out := []*domain.Product{}
	for _, p := range r.store.products {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error) {
	return allPage(r.store.products), nil
}

type memOrderRepository struct{ store *memStore }

func (r *memOrderRepository) WithTx(database.DBTX) repository.OrderRepository { return r }

func (r *memOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	o.ID = uuid.New()
	o.Seq = r.store.nextSeq()
	o.CreatedAt = time.Now()
	r.store.orders = append(r.store.orders, o)
	return nil
}

func (r *memOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range r.store.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *memOrderRepository) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error) {
	return allPage(r.store.orders), nil
}

// memTransactor emulates transactions over memStore. failSavepoint, when
// positive, makes that savepoint (1-based) fail to be created.
type memTransactor struct {
	store         *memStore
	failSavepoint int
	commitErr     error
}

func (t *memTransactor) WithTx(ctx context.Context, fn func(tx database.Tx) error) (err error) {
	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
		if err != nil {
			t.store.restore(snap)
		}
	}()

	if err = fn(&memTx{transactor: t}); err != nil {
		return err
	}
	return t.commitErr
}

type memTx struct {
	database.DBTX
	transactor *memTransactor
	savepoints int
}

func (tx *memTx) Savepoint(ctx context.Context, fn func() error) error {
	tx.savepoints++
	if tx.savepoints == tx.transactor.failSavepoint {
		return &database.SavepointError{Op: "create", Err: errors.New("savepoint failed")}
	}

	snap := tx.transactor.store.snapshot()
	if err := fn(); err != nil {
		tx.transactor.store.restore(snap)
		return err
	}
	return nil
}
