package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is a process-local Repository used by tests and local runs.
type MemoryRepo struct {
	mu       sync.Mutex
	products map[int64]*Product
	variants map[int64]*Variant
	nextID   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		products: make(map[int64]*Product),
		variants: make(map[int64]*Variant),
	}
}

// AddProduct stores p, assigning an id when p.ID is zero. Variants are ignored; use AddVariant.
func (m *MemoryRepo) AddProduct(p Product) Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	} else if p.ID > m.nextID {
		m.nextID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Variants = nil
	p.TotalStock = 0
	m.products[p.ID] = &p
	return p
}

func (m *MemoryRepo) AddVariant(v Variant) Variant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == 0 {
		m.nextID++
		v.ID = m.nextID
	} else if v.ID > m.nextID {
		m.nextID = v.ID
	}
	v.UpdatedAt = time.Now().UTC()
	m.variants[v.ID] = &v
	return v
}

// Stock reports the current quantity of a variant, or -1 when it does not exist.
func (m *MemoryRepo) Stock(variantID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.variants[variantID]; ok {
		return v.Stock
	}
	return -1
}

func (m *MemoryRepo) Adjust(ctx context.Context, variantID int64, delta int, override bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.variants[variantID]
	if !ok {
		return 0, &VariantNotFoundError{VariantID: variantID}
	}
	next, err := nextQuantity(variantID, v.Stock, delta, override)
	if err != nil {
		return 0, err
	}
	v.Stock = next
	v.UpdatedAt = time.Now().UTC()
	return next, nil
}

func (m *MemoryRepo) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok {
		return nil, &VariantNotFoundError{VariantID: id}
	}
	cp := *v
	return &cp, nil
}

func (m *MemoryRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return m.withVariants(*p), nil
}

func (m *MemoryRepo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(q.Q))
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		full := m.withVariants(*p)
		full.Variants = nil
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	start := q.Offset
	if start > len(out) {
		return []Product{}, nil
	}
	end := len(out)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return out[start:end], nil
}

func (m *MemoryRepo) ProductNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p.Name
		}
	}
	return out, nil
}

// withVariants must be called with m.mu held.
func (m *MemoryRepo) withVariants(p Product) *Product {
	p.Variants = nil
	p.TotalStock = 0
	for _, v := range m.variants {
		if v.ProductID == p.ID {
			p.Variants = append(p.Variants, *v)
			p.TotalStock += v.Stock
		}
	}
	sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].ID < p.Variants[j].ID })
	return &p
}
