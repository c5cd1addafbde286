package api

import (
	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/domain"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Country  string `json:"country"  validate:"omitempty,max=56"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin regular"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the response for successful authentication.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// UpdateUserRequest is the payload for profile updates. Absent fields
// are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Country  *string `json:"country"  validate:"omitempty,max=56"`
}

// UserResponse is a user profile with the collection summary.
type UserResponse struct {
	ID              uuid.UUID   `json:"id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	Country         string      `json:"country,omitempty"`
	Role            string      `json:"role"`
	Budget          int64       `json:"budget"`
	CollectionValue int64       `json:"collection_value"`
	CardsCount      int         `json:"cards_count"`
	Cards           []uuid.UUID `json:"cards"`
}

// ListCardRequest is the payload for placing a card on the market.
type ListCardRequest struct {
	CardID uuid.UUID `json:"card_id" validate:"required"`
	Price  int64     `json:"price"   validate:"required,gt=0"`
}

// CardResponse is the public view of a card.
type CardResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Skill       float64   `json:"skill"`
	MarketValue int64     `json:"market_value"`
	MarketPrice int64     `json:"market_price,omitempty"`
	Listed      bool      `json:"listed"`
}

// CardListResponse is a page of cards.
type CardListResponse struct {
	Cards   []CardResponse `json:"cards"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// UserListResponse is a page of user profiles.
type UserListResponse struct {
	Users   []UserResponse `json:"users"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// ReceiptResponse describes a completed purchase.
type ReceiptResponse struct {
	Card        CardResponse `json:"card"`
	Price       int64        `json:"price"`
	BuyerID     uuid.UUID    `json:"buyer_id"`
	SellerID    uuid.UUID    `json:"seller_id"`
	BuyerBudget int64        `json:"buyer_budget"`
}

func newCardResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:          card.ID,
		OwnerID:     card.OwnerID,
		Name:        card.Name,
		Age:         card.Age,
		Skill:       card.Skill,
		MarketValue: card.MarketValue,
		MarketPrice: card.MarketPrice,
		Listed:      card.Listed,
	}
}

func newCardListResponse(cards []*domain.Card, page, perPage int) CardListResponse {
	resp := CardListResponse{
		Cards:   make([]CardResponse, 0, len(cards)),
		Page:    page,
		PerPage: perPage,
	}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, newCardResponse(card))
	}
	return resp
}

func newUserResponse(profile *user.Profile) UserResponse {
	return UserResponse{
		ID:              profile.User.ID,
		Username:        profile.User.Username,
		Email:           profile.User.Email,
		Country:         profile.User.Country,
		Role:            string(profile.User.Role),
		Budget:          profile.User.Budget,
		CollectionValue: profile.CollectionValue,
		CardsCount:      profile.CardsCount,
		Cards:           profile.CardIDs,
	}
}

func newReceiptResponse(receipt *trade.Receipt) ReceiptResponse {
	return ReceiptResponse{
		Card:        newCardResponse(receipt.Card),
		Price:       receipt.Price,
		BuyerID:     receipt.BuyerID,
		SellerID:    receipt.SellerID,
		BuyerBudget: receipt.BuyerBudget,
	}
}
