package ebay

// The Finding API's JSON format wraps every element, scalar or not, in a
// single element array. The types below keep that shape so that a decoded
// response mirrors the raw body field for field.

type envelope map[string][]Response

type Response struct {
	Ack              []string        `json:"ack"`
	Version          []string        `json:"version"`
	Timestamp        []string        `json:"timestamp"`
	ErrorMessage     []ErrorMessage  `json:"errorMessage,omitempty"`
	SearchResult     []SearchResults `json:"searchResult"`
	PaginationOutput []Pagination    `json:"paginationOutput"`
	ItemSearchURL    []string        `json:"itemSearchURL"`
}

type ErrorMessage struct {
	Error []ErrorData `json:"error"`
}

type ErrorData struct {
	ErrorID   []string `json:"errorId"`
	Domain    []string `json:"domain"`
	Severity  []string `json:"severity"`
	Category  []string `json:"category"`
	Message   []string `json:"message"`
	SubDomain []string `json:"subdomain"`
}

type SearchResults struct {
	Count string `json:"@count"`
	Item  []Item `json:"item"`
}

type Pagination struct {
	PageNumber     []string `json:"pageNumber"`
	EntriesPerPage []string `json:"entriesPerPage"`
	TotalPages     []string `json:"totalPages"`
	TotalEntries   []string `json:"totalEntries"`
}

type Item struct {
	ItemID          []string        `json:"itemId"`
	Title           []string        `json:"title"`
	GlobalID        []string        `json:"globalId"`
	PrimaryCategory []Category      `json:"primaryCategory"`
	GalleryURL      []string        `json:"galleryURL"`
	ViewItemURL     []string        `json:"viewItemURL"`
	Location        []string        `json:"location"`
	Country         []string        `json:"country"`
	ShippingInfo    []ShippingInfo  `json:"shippingInfo"`
	SellingStatus   []SellingStatus `json:"sellingStatus"`
	ListingInfo     []ListingInfo   `json:"listingInfo"`
	Condition       []Condition     `json:"condition"`
}

type Category struct {
	CategoryID   []string `json:"categoryId"`
	CategoryName []string `json:"categoryName"`
}

// Amount is a currency value, ex. {"@currencyId": "AUD", "__value__": "49.95"}.
type Amount struct {
	CurrencyID string `json:"@currencyId"`
	Value      string `json:"__value__"`
}

type ShippingInfo struct {
	ShippingServiceCost []Amount `json:"shippingServiceCost"`
	ShippingType        []string `json:"shippingType"`
	ShipToLocations     []string `json:"shipToLocations"`
}

type SellingStatus struct {
	CurrentPrice          []Amount `json:"currentPrice"`
	ConvertedCurrentPrice []Amount `json:"convertedCurrentPrice"`
	SellingState          []string `json:"sellingState"`
	TimeLeft              []string `json:"timeLeft"`
}

type ListingInfo struct {
	BestOfferEnabled  []string `json:"bestOfferEnabled"`
	BuyItNowAvailable []string `json:"buyItNowAvailable"`
	StartTime         []string `json:"startTime"`
	EndTime           []string `json:"endTime"`
	ListingType       []string `json:"listingType"`
}

type Condition struct {
	ConditionID          []string `json:"conditionId"`
	ConditionDisplayName []string `json:"conditionDisplayName"`
}

func first[T any](values []T) (T, bool) {
	if len(values) == 0 {
		var zero T
		return zero, false
	}
	return values[0], true
}
