package services

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// CartPersister stores cart state durably. Persistence is best-effort: a
// failed Load resets to an empty cart and a failed Save is ignored.
type CartPersister interface {
	Save(state model.CartState) error
	Load() (model.CartState, error)
}

type CartAction interface {
	isCartAction()
}

type AddItem struct {
	Item model.CartLine
}

type SetQuantity struct {
	CatalogItemID int64
	Quantity      int
}

type RemoveItem struct {
	CatalogItemID int64
}

type ClearCart struct{}

func (AddItem) isCartAction()     {}
func (SetQuantity) isCartAction() {}
func (RemoveItem) isCartAction()  {}
func (ClearCart) isCartAction()   {}

// CartStore is an explicit store object with dispatch/subscribe semantics,
// injected where needed instead of living as package-level state.
type CartStore struct {
	mu           sync.Mutex
	state        model.CartState
	persister    CartPersister
	listeners    map[int]func(model.CartState)
	nextListener int
}

func NewCartStore(p CartPersister) *CartStore {
	s := &CartStore{
		persister: p,
		listeners: make(map[int]func(model.CartState)),
	}
	if p != nil {
		if loaded, err := p.Load(); err == nil {
			s.state = loaded
		}
	}
	s.recompute()
	return s
}

// GetState returns a copy; callers never see later mutations through it.
func (s *CartStore) GetState() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *CartStore) IsPresent(catalogItemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.state.Lines {
		if l.CatalogItemID == catalogItemID {
			return true
		}
	}
	return false
}

// Subscribe registers a listener called after every mutation with the new
// state. The returned function unsubscribes.
func (s *CartStore) Subscribe(fn func(model.CartState)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *CartStore) Dispatch(a CartAction) {
	s.mu.Lock()

	switch act := a.(type) {
	case AddItem:
		s.applyAdd(act.Item)
	case SetQuantity:
		s.applySetQuantity(act.CatalogItemID, act.Quantity)
	case RemoveItem:
		s.applyRemove(act.CatalogItemID)
	case ClearCart:
		s.state.Lines = nil
	}

	s.recompute()
	if s.persister != nil {
		_ = s.persister.Save(s.state)
	}

	snap := s.snapshot()
	listeners := make([]func(model.CartState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// applyAdd increments an existing line or appends a new one. Quantity is
// clamped at AvailableQuantity, never rejected.
func (s *CartStore) applyAdd(item model.CartLine) {
	for i := range s.state.Lines {
		if s.state.Lines[i].CatalogItemID == item.CatalogItemID {
			q := s.state.Lines[i].Quantity + item.Quantity
			if q > s.state.Lines[i].AvailableQuantity {
				q = s.state.Lines[i].AvailableQuantity
			}
			s.state.Lines[i].Quantity = q
			return
		}
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Quantity > item.AvailableQuantity {
		item.Quantity = item.AvailableQuantity
	}
	if item.Quantity <= 0 {
		return
	}
	s.state.Lines = append(s.state.Lines, item)
}

func (s *CartStore) applySetQuantity(catalogItemID int64, qty int) {
	if qty <= 0 {
		s.applyRemove(catalogItemID)
		return
	}
	for i := range s.state.Lines {
		if s.state.Lines[i].CatalogItemID == catalogItemID {
			if qty > s.state.Lines[i].AvailableQuantity {
				qty = s.state.Lines[i].AvailableQuantity
			}
			s.state.Lines[i].Quantity = qty
			return
		}
	}
}

func (s *CartStore) applyRemove(catalogItemID int64) {
	for i, l := range s.state.Lines {
		if l.CatalogItemID == catalogItemID {
			s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)
			return
		}
	}
}

func (s *CartStore) recompute() {
	count := 0
	total := decimal.Zero
	for _, l := range s.state.Lines {
		count += l.Quantity
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	s.state.ItemCount = count
	s.state.Total = total
}

func (s *CartStore) snapshot() model.CartState {
	out := s.state
	out.Lines = make([]model.CartLine, len(s.state.Lines))
	copy(out.Lines, s.state.Lines)
	return out
}

// FileCartPersister keeps one cart as a JSON file.
type FileCartPersister struct {
	Path string
}

func (p *FileCartPersister) Save(state model.CartState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(p.Path, b, 0o644)
}

func (p *FileCartPersister) Load() (model.CartState, error) {
	var state model.CartState
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(b, &state); err != nil {
		return model.CartState{}, err
	}
	return state, nil
}

// CartRegistry hands out one store per client cart id.
type CartRegistry struct {
	mu     sync.Mutex
	dir    string
	stores map[string]*CartStore
}

func NewCartRegistry(dir string) *CartRegistry {
	return &CartRegistry{
		dir:    dir,
		stores: make(map[string]*CartStore),
	}
}

func (r *CartRegistry) Get(cartID string) (*CartStore, error) {
	if cartID == "" || cartID != filepath.Base(cartID) {
		return nil, errors.New("invalid cart id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[cartID]; ok {
		return s, nil
	}
	s := NewCartStore(&FileCartPersister{Path: filepath.Join(r.dir, cartID+".json")})
	r.stores[cartID] = s
	return s, nil
}
