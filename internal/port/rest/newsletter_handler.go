package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
)

type NewsletterHandler struct {
	newsletter service.NewsletterService
	log        logger.Logger
}

func NewNewsletterHandler(newsletter service.NewsletterService, log logger.Logger) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter, log: log.Named("NewsletterHTTPHandler")}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		writeServiceError(w, h.log, "Subscribe", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "subscribed"})
}
