package session

import (
	"time"

	"github.com/luravie/storefront/internal/cart"
	"github.com/luravie/storefront/internal/catalog"
)

// MaxFavorites caps the favorites list.
const MaxFavorites = 100

// Data is the persisted cookie payload.
type Data struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Cart      cart.Cart `json:"cart"`
	Favorites []string  `json:"favorites,omitempty"`
}

// Store is one browser's cart and favorites for the current request.
// Mutations mark it dirty; Manager.Save persists it.
type Store struct {
	data  Data
	dirty bool
}

// ID returns the stable store identifier.
func (s *Store) ID() string {
	return s.data.ID
}

// Dirty reports whether the store changed since it was loaded.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Cart returns a copy of the cart.
func (s *Store) Cart() cart.Cart {
	return s.data.Cart.Clone()
}

// UpdateCart applies fn to the cart and keeps the result when fn succeeds.
func (s *Store) UpdateCart(fn func(*cart.Cart) error) error {
	next := s.data.Cart.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.data.Cart = next
	s.dirty = true
	return nil
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	if s.data.Cart.Empty() {
		return
	}
	s.data.Cart = cart.Cart{}
	s.dirty = true
}

// Favorites returns the favorite product ids as a set.
func (s *Store) Favorites() catalog.IDSet {
	return catalog.NewIDSet(s.data.Favorites...)
}

// FavoriteIDs returns the favorite product ids in the order they were added.
func (s *Store) FavoriteIDs() []string {
	return append([]string(nil), s.data.Favorites...)
}

// ToggleFavorite adds or removes productID and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(productID string) bool {
	for i, id := range s.data.Favorites {
		if id == productID {
			s.data.Favorites = append(s.data.Favorites[:i:i], s.data.Favorites[i+1:]...)
			s.dirty = true
			return false
		}
	}
	s.data.Favorites = append(s.data.Favorites, productID)
	if len(s.data.Favorites) > MaxFavorites {
		s.data.Favorites = s.data.Favorites[len(s.data.Favorites)-MaxFavorites:]
	}
	s.dirty = true
	return true
}
