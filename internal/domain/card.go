package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultMarketValue is the intrinsic value assigned to starter cards
// before the valuation engine has run over the population.
const DefaultMarketValue int64 = 100

// Card-specific validation errors
var (
	ErrCardIDEmpty      = errors.New("card ID cannot be empty")
	ErrCardOwnerEmpty   = errors.New("card owner ID cannot be empty")
	ErrCardNameEmpty    = errors.New("card name cannot be empty")
	ErrCardAgeInvalid   = errors.New("card age must be positive")
	ErrCardSkillInvalid = errors.New("card skill must be non-negative")
	ErrCardPriceInvalid = errors.New("market price must be a positive integer")
	ErrCardNotListed    = errors.New("card is not listed on the market")
)

// Card represents a tradable player card. A card is always owned by exactly
// one user. MarketValue is computed by the valuation engine from the (age,
// skill) features; MarketPrice is seller-set and positive only while the
// card is listed. Version is the optimistic-concurrency token bumped by the
// store on every mutation.
type Card struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Skill       float64   `json:"skill"`
	MarketValue int64     `json:"market_value"`
	MarketPrice int64     `json:"market_price,omitempty"`
	Listed      bool      `json:"listed"`
	Version     int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCard creates a starter card for the given owner with the default
// market value. Returns an error if validation fails.
func NewCard(ownerID uuid.UUID, name string, age int, skill float64) (*Card, error) {
	card := &Card{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Age:         age,
		Skill:       skill,
		MarketValue: DefaultMarketValue,
		Listed:      false,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data, including the market-state
// invariant: MarketPrice is positive exactly when the card is listed.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.OwnerID == uuid.Nil {
		return ErrCardOwnerEmpty
	}

	if c.Name == "" {
		return ErrCardNameEmpty
	}

	if c.Age <= 0 {
		return ErrCardAgeInvalid
	}

	if c.Skill < 0 {
		return ErrCardSkillInvalid
	}

	if c.Listed && c.MarketPrice <= 0 {
		return ErrCardPriceInvalid
	}

	if !c.Listed && c.MarketPrice != 0 {
		return ErrCardPriceInvalid
	}

	return nil
}

// PlaceOnMarket transitions the card to the Listed state with the given
// price. Re-listing an already-listed card overwrites the price.
// Returns ErrCardPriceInvalid if the price is not a positive integer.
func (c *Card) PlaceOnMarket(price int64) error {
	if price <= 0 {
		return ErrCardPriceInvalid
	}
	c.MarketPrice = price
	c.Listed = true
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// WithdrawFromMarket transitions the card back to the Owned state and
// clears the price. No money changes hands.
// Returns ErrCardNotListed if the card is not listed.
func (c *Card) WithdrawFromMarket() error {
	if !c.Listed {
		return ErrCardNotListed
	}
	c.MarketPrice = 0
	c.Listed = false
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// TransferTo completes a sale: ownership moves to the buyer, the intrinsic
// value becomes the realized sale price, and the card leaves the market.
// Returns ErrCardNotListed if the card is not listed.
func (c *Card) TransferTo(buyerID uuid.UUID) error {
	if !c.Listed {
		return ErrCardNotListed
	}
	if buyerID == uuid.Nil {
		return ErrCardOwnerEmpty
	}
	c.MarketValue = c.MarketPrice
	c.OwnerID = buyerID
	c.MarketPrice = 0
	c.Listed = false
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Features returns the card's regression features as float64s.
func (c *Card) Features() (age, skill float64) {
	return float64(c.Age), c.Skill
}
