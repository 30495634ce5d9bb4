package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

// In-memory repository fakes. They implement the same contracts as the
// Mongo repositories, including the atomic stock check-and-decrement.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[rbac.Role]map[primitive.ObjectID]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[rbac.Role]map[primitive.ObjectID]*models.Account{
		rbac.RoleAdmin:  {},
		rbac.RoleWorker: {},
	}}
}

func (r *fakeAccountRepo) FindByUsername(_ context.Context, role rbac.Role, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts[role] {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (r *fakeAccountRepo) FindByID(_ context.Context, role rbac.Role, id primitive.ObjectID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[role][id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, models.ErrAccountNotFound
}

func (r *fakeAccountRepo) FindByIDs(_ context.Context, role rbac.Role, ids []primitive.ObjectID) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Account
	for _, id := range ids {
		if a, ok := r.accounts[role][id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, role rbac.Role, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts[role] {
		if existing.Username == acc.Username {
			return models.ErrConflict
		}
	}
	acc.ID = primitive.NewObjectID()
	acc.Role = role
	cp := *acc
	r.accounts[role][acc.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) AppendOrder(_ context.Context, workerID, orderID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[rbac.RoleWorker][workerID]; ok {
		a.Orders = append(a.Orders, orderID)
	}
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[primitive.ObjectID]*models.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, models.ErrProductNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, page, limit int64, search string) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []models.Product
	for _, p := range r.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id primitive.ObjectID, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if qty < 1 {
		return models.ErrValidation
	}
	p, ok := r.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	if p.Stock < qty {
		return models.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) RestoreStock(_ context.Context, id primitive.ObjectID, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (r *fakeProductRepo) CountLowStock(_ context.Context, threshold int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.Stock <= threshold {
			n++
		}
	}
	return n, nil
}

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[primitive.ObjectID]*models.Order
	seq        []primitive.ObjectID // insertion order, oldest first
	failCreate bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[primitive.ObjectID]*models.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("simulated insert failure")
	}
	o.ID = primitive.NewObjectID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	r.orders[o.ID] = &cp
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, models.ErrOrderNotFound
}

func (r *fakeOrderRepo) matching(filter func(*models.Order) bool) []models.Order {
	var out []models.Order
	// newest first
	for i := len(r.seq) - 1; i >= 0; i-- {
		o, ok := r.orders[r.seq[i]]
		if ok && filter(o) {
			out = append(out, *o)
		}
	}
	return out
}

func paginate(all []models.Order, page, limit int64) ([]models.Order, int64) {
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return nil, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (r *fakeOrderRepo) ListByPlacer(_ context.Context, placedBy primitive.ObjectID, page, limit int64, search string) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(func(o *models.Order) bool {
		if o.PlacedBy != placedBy {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(search))
	})
	out, total := paginate(all, page, limit)
	return out, total, nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context, page, limit int64, search string) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(func(o *models.Order) bool {
		return search == "" || strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(search))
	})
	out, total := paginate(all, page, limit)
	return out, total, nil
}

func (r *fakeOrderRepo) SetDelivered(_ context.Context, id primitive.ObjectID, delivered bool) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	o.Delivered = delivered
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return models.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// fakeDisk records writes in memory.
type fakeDisk struct {
	mu      sync.Mutex
	files   map[string][]byte
	failPut bool
}

func newFakeDisk() *fakeDisk { return &fakeDisk{files: map[string][]byte{}} }

func (d *fakeDisk) Put(_ context.Context, path string, contents []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failPut {
		return errors.New("simulated disk failure")
	}
	d.files[path] = contents
	return nil
}

func (d *fakeDisk) PutStream(ctx context.Context, path string, rd io.Reader) error {
	b, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	return d.Put(ctx, path, b)
}

func (d *fakeDisk) Get(_ context.Context, path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.files[path]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func (d *fakeDisk) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	b, err := d.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (d *fakeDisk) Exists(_ context.Context, path string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[path]
	return ok, nil
}

func (d *fakeDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	return nil
}

func (d *fakeDisk) URL(path string) string { return "/storage/" + path }

func (d *fakeDisk) Size(_ context.Context, path string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.files[path])), nil
}
