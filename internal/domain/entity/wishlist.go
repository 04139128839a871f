package entity

// Wishlist is an ordered set of product ids.
type Wishlist struct {
	OwnerID    string   `json:"owner_id"`
	ProductIDs []string `json:"product_ids"`
}

func (w *Wishlist) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Toggle adds productID when absent and removes it when present. It reports
// whether the product is in the wishlist afterwards.
func (w *Wishlist) Toggle(productID string) bool {
	for i, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:i], w.ProductIDs[i+1:]...)
			return false
		}
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	return true
}

// MergeWishlists returns the union of both lists, user entries first.
func MergeWishlists(user, guest []string) []string {
	merged := make([]string, 0, len(user)+len(guest))
	seen := make(map[string]struct{}, len(user)+len(guest))
	for _, list := range [][]string{user, guest} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged
}
