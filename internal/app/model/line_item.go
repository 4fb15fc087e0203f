package model

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// LineItemSchemaVersion is stamped on every line item written by this build.
const LineItemSchemaVersion = 1

// LineItem is one (product, size, color, quantity, price) entry. Cart, Checkout
// and Order all embed the same shape; name, image and price are copies taken
// when the item entered the cart so catalog edits never rewrite history.
type LineItem struct {
	SchemaVersion int     `json:"schemaVersion"`
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	Size          string  `json:"size,omitempty"`
	Color         string  `json:"color,omitempty"`
	Quantity      int     `json:"quantity"`
}

// LineItemKey identifies a line item inside one cart
type LineItemKey struct {
	ProductID string
	Size      string
	Color     string
}

// NewLineItemKey normalizes size and color before building the key
func NewLineItemKey(productID, size, color string) LineItemKey {
	return LineItemKey{
		ProductID: productID,
		Size:      NormalizeVariant(size),
		Color:     NormalizeVariant(color),
	}
}

func (li LineItem) Key() LineItemKey {
	return NewLineItemKey(li.ProductID, li.Size, li.Color)
}

func (li LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// NormalizeVariant lowercases a free-text size or color and drops everything
// that is not a letter or digit, so "Navy-Blue " and "navy blue" collide.
func NormalizeVariant(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type LineItems []LineItem

// Total is Σ(price × quantity) rounded to cents
func (items LineItems) Total() float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum.Round(2).InexactFloat64()
}

// Index returns the position of the item matching key, or -1
func (items LineItems) Index(key LineItemKey) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// CartToCheckoutItems copies cart lines into a checkout snapshot
func CartToCheckoutItems(items LineItems) LineItems {
	out := make(LineItems, 0, len(items))
	for _, item := range items {
		item.SchemaVersion = LineItemSchemaVersion
		out = append(out, item)
	}
	return out
}

// ProductLookup resolves a catalog product for backfilling snapshot gaps
type ProductLookup func(productID string) (*Product, bool)

// CheckoutToOrderItems re-shapes checkout lines into order lines. Missing name
// or image are filled from the live product when lookup can find it. The
// checkout price is kept as is, so the order lines add up to the checkout total.
func CheckoutToOrderItems(items LineItems, lookup ProductLookup) LineItems {
	out := make(LineItems, 0, len(items))
	for _, item := range items {
		if item.Name == "" || item.Image == "" {
			if product, ok := lookup(item.ProductID); ok {
				if item.Name == "" {
					item.Name = product.Name
				}
				if item.Image == "" {
					item.Image = product.PrimaryImage()
				}
			}
		}
		if item.Name == "" {
			item.Name = "Unknown Product"
		}
		item.SchemaVersion = LineItemSchemaVersion
		out = append(out, item)
	}
	return out
}
