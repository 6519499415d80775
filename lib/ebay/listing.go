package ebay

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Money is an exact currency amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func (m Money) IsZero() bool {
	return m.Currency == "" && m.Amount.IsZero()
}

func (m Money) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}

func parseAmount(a Amount) (Money, error) {
	amount, err := decimal.NewFromString(a.Value)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", a.Value, err)
	}
	return Money{Amount: amount, Currency: a.CurrencyID}, nil
}

// Listing is one item flattened to the fields worth comparing across
// listings.
type Listing struct {
	// index of the item in searchResult.item, the same index Item takes
	Position        int
	ItemID          string
	Title           string
	GlobalID        string
	Location        string
	Country         string
	CategoryName    string
	ListingType     string
	SellingState    string
	Condition       string
	StartTime       time.Time
	EndTime         time.Time
	CurrentPrice    Money
	ShippingCost    Money
	ShipToLocations []string
	URL             string
}

func parseTimestamp(s string) (time.Time, error) {
	// ex. 2017-01-14T05:37:06.000Z
	return time.Parse(time.RFC3339, s)
}

// EndTime returns listingInfo.endTime exactly as the service sent it.
func (i Item) EndTime() (string, error) {
	info, ok := first(i.ListingInfo)
	if !ok {
		return "", missing("listingInfo")
	}
	end, ok := first(info.EndTime)
	if !ok {
		return "", missing("listingInfo.endTime")
	}
	return end, nil
}

// CurrentPrice returns sellingStatus.currentPrice.
func (i Item) CurrentPrice() (Money, error) {
	status, ok := first(i.SellingStatus)
	if !ok {
		return Money{}, missing("sellingStatus")
	}
	price, ok := first(status.CurrentPrice)
	if !ok {
		return Money{}, missing("sellingStatus.currentPrice")
	}
	return parseAmount(price)
}

// Summarize flattens an item into a Listing. Item id and title are
// required, every other field is left empty when absent. Present but
// malformed timestamps and amounts are errors.
func Summarize(item Item) (Listing, error) {
	var l Listing
	var ok bool

	l.ItemID, ok = first(item.ItemID)
	if !ok {
		return Listing{}, missing("itemId")
	}
	l.Title, ok = first(item.Title)
	if !ok {
		return Listing{}, fmt.Errorf("item %s: %w", l.ItemID, missing("title"))
	}

	l.GlobalID, _ = first(item.GlobalID)
	l.Location, _ = first(item.Location)
	l.Country, _ = first(item.Country)
	l.URL, _ = first(item.ViewItemURL)

	if category, ok := first(item.PrimaryCategory); ok {
		l.CategoryName, _ = first(category.CategoryName)
	}
	if condition, ok := first(item.Condition); ok {
		l.Condition, _ = first(condition.ConditionDisplayName)
	}

	var errs []error
	if info, ok := first(item.ListingInfo); ok {
		l.ListingType, _ = first(info.ListingType)
		if start, ok := first(info.StartTime); ok {
			t, err := parseTimestamp(start)
			if err != nil {
				errs = append(errs, fmt.Errorf("startTime: %w", err))
			}
			l.StartTime = t
		}
		if end, ok := first(info.EndTime); ok {
			t, err := parseTimestamp(end)
			if err != nil {
				errs = append(errs, fmt.Errorf("endTime: %w", err))
			}
			l.EndTime = t
		}
	}

	if status, ok := first(item.SellingStatus); ok {
		l.SellingState, _ = first(status.SellingState)
		if price, ok := first(status.CurrentPrice); ok {
			m, err := parseAmount(price)
			if err != nil {
				errs = append(errs, fmt.Errorf("currentPrice: %w", err))
			}
			l.CurrentPrice = m
		}
	}

	if shipping, ok := first(item.ShippingInfo); ok {
		l.ShipToLocations = shipping.ShipToLocations
		if cost, ok := first(shipping.ShippingServiceCost); ok {
			m, err := parseAmount(cost)
			if err != nil {
				errs = append(errs, fmt.Errorf("shippingServiceCost: %w", err))
			}
			l.ShippingCost = m
		}
	}

	if len(errs) > 0 {
		return Listing{}, fmt.Errorf("item %s: %w", l.ItemID, errors.Join(errs...))
	}
	return l, nil
}
