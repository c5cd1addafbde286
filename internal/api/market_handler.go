package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fantacard/market-api/internal/api/shared"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/store"
)

// MarketHandler handles the card market endpoints.
type MarketHandler struct {
	tradeEngine *trade.Engine
	cardStore   store.CardStore
	validator   *validator.Validate
}

// NewMarketHandler creates a new MarketHandler with the given dependencies.
func NewMarketHandler(tradeEngine *trade.Engine, cardStore store.CardStore) *MarketHandler {
	return &MarketHandler{
		tradeEngine: tradeEngine,
		cardStore:   cardStore,
		validator:   validator.New(),
	}
}

// ListMarket handles GET /market and returns the cards currently for sale.
func (h *MarketHandler) ListMarket(w http.ResponseWriter, r *http.Request) {
	if _, ok := getIdentityFromContext(w, r); !ok {
		return
	}

	page, perPage := getPagination(r)

	cards, err := h.cardStore.ListListed(r.Context(), page, perPage)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list market")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCardListResponse(cards, page, perPage))
}

// GetCard handles GET /market/{cardID} and returns a single card.
func (h *MarketHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := getIdentityFromContext(w, r); !ok {
		return
	}

	cardID, err := getPathUUID(r, "cardID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardStore.GetByID(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// A card off the market is not visible through the market view.
	if !card.Listed {
		HandleAPIError(w, r, store.ErrCardNotFound, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(card))
}

// ListCard handles POST /market and places one of the caller's cards on
// the market at the asked price.
func (h *MarketHandler) ListCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	var req ListCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.tradeEngine.List(r.Context(), identity, req.CardID, req.Price)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newCardResponse(card))
}

// TradeCard handles PATCH /market/{cardID}. The same endpoint serves both
// sides of the market: the owner withdraws their listing, anyone else
// buys it.
func (h *MarketHandler) TradeCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	cardID, err := getPathUUID(r, "cardID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardStore.GetByID(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if card.OwnerID == identity.UserID {
		withdrawn, err := h.tradeEngine.Withdraw(r.Context(), identity, cardID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(withdrawn))
		return
	}

	receipt, err := h.tradeEngine.Purchase(r.Context(), identity, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newReceiptResponse(receipt))
}
