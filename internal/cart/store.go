package cart

import (
	"context"
	"sync"

	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot that seeds a new line item. Display fields
// are captured at add time; later catalog edits never touch an existing line.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	SKU      string
	ImageURL string
}

// LineItem is one distinct product held in the cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SKU       string          `json:"sku,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Store holds one session's cart. Mutations are total: they never fail, they
// keep at most one line per product id, and a quantity that reaches zero
// removes the line instead of leaving it behind. Every mutation writes the
// snapshot through the repository before returning; a failed write degrades to
// an in-memory cart rather than surfacing an error.
type Store struct {
	mu        sync.Mutex
	sessionID string
	items     []LineItem
	repo      SnapshotRepository
	logg      *logger.Logger
}

// NewStore constructs a store for the session and rehydrates any persisted
// snapshot. A missing snapshot, a load failure, or an unknown schema version
// all start the session with an empty cart.
func NewStore(ctx context.Context, sessionID string, repo SnapshotRepository, logg *logger.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		repo:      repo,
		logg:      logg,
	}

	if repo == nil {
		return s
	}

	snapshot, err := repo.Load(ctx, sessionID)
	switch {
	case err == ErrSnapshotNotFound:
		return s
	case err != nil:
		s.warn(ctx, "cart snapshot load failed, starting empty")
		return s
	case snapshot.SchemaVersion != SnapshotSchemaVersion:
		s.warn(ctx, "cart snapshot schema mismatch, starting empty")
		return s
	}

	for _, item := range snapshot.Items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		s.items = append(s.items, item)
	}
	return s
}

// SessionID reports which storefront session the store belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddToCart increments the quantity for an existing line, or appends a new
// line with quantity 1 seeded from the product snapshot.
func (s *Store) AddToCart(ctx context.Context, product Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == product.ID {
			s.items[i].Quantity++
			s.persist(ctx)
			return
		}
	}

	s.items = append(s.items, LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		SKU:       product.SKU,
		ImageURL:  product.ImageURL,
		Quantity:  1,
	})
	s.persist(ctx)
}

// RemoveFromCart drops the line for the product id. Absent ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// IncreaseQuantity bumps the quantity for the product id. Absent ids are a no-op.
func (s *Store) IncreaseQuantity(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			s.persist(ctx)
			return
		}
	}
}

// DecreaseQuantity lowers the quantity for the product id, removing the line
// entirely once it would drop below one. Absent ids are a no-op.
func (s *Store) DecreaseQuantity(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity--
			if s.items[i].Quantity <= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			}
			s.persist(ctx)
			return
		}
	}
}

// ClearCart empties the collection and resets the persisted snapshot. It is
// the terminal step of a successful checkout.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if s.repo != nil {
		if err := s.repo.Delete(ctx, s.sessionID); err != nil {
			s.warn(ctx, "cart snapshot delete failed")
		}
	}
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// IsEmpty reports whether the cart holds no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// persist writes the full snapshot. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.repo == nil {
		return
	}
	snapshot := Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Items:         append([]LineItem(nil), s.items...),
	}
	if err := s.repo.Save(ctx, s.sessionID, snapshot); err != nil {
		s.warn(ctx, "cart snapshot save failed, session continues unpersisted")
	}
}

func (s *Store) warn(ctx context.Context, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithCartSession(ctx, s.sessionID), msg)
}
