package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	wishlists service.WishlistService
	log       logger.Logger
}

func NewWishlistHandler(wishlists service.WishlistService, log logger.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, log: log.Named("WishlistHTTPHandler")}
}

type toggleResponse struct {
	Wishlist *entity.Wishlist `json:"wishlist"`
	Added    bool             `json:"added"`
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.wishlists.List(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, "ListWishlist", err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	wishlist, added, err := h.wishlists.Toggle(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, h.log, "ToggleWishlist", err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Wishlist: wishlist, Added: added})
}
