package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts service.CartService
	log   logger.Logger
}

func NewCartHandler(carts service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log.Named("CartHTTPHandler")}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, "GetCart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warnf("Failed to decode request body for AddItem: %v", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.carts.AddItem(r.Context(), ownerFromContext(r.Context()), req.ProductID, quantity)
	if err != nil {
		writeServiceError(w, h.log, "AddItem", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	cart, err := h.carts.UpdateItemQuantity(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "productID"), *req.Quantity)
	if err != nil {
		writeServiceError(w, h.log, "UpdateItemQuantity", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, h.log, "RemoveItem", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
