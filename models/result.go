package models

// ExtractedItem is one structured record found on the landing page.
// Field order is the serialized key order.
type ExtractedItem struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Link  string `json:"link"`
}

// ItemKey is the dedup key of an ExtractedItem.
type ItemKey struct {
	Title string
	Link  string
}

// Key returns the (title, link) pair identifying the item.
func (i ExtractedItem) Key() ItemKey {
	return ItemKey{Title: i.Title, Link: i.Link}
}

// ResultSet is the single output artifact of a run.
// Field order is the serialized key order: searchText, sourcePage,
// totalItems, items.
type ResultSet struct {
	SearchText string          `json:"searchText"`
	SourcePage string          `json:"sourcePage"`
	TotalItems int             `json:"totalItems"`
	Items      []ExtractedItem `json:"items"`
}

// NewResultSet builds a ResultSet whose TotalItems always matches Items.
func NewResultSet(searchText, sourcePage string, items []ExtractedItem) *ResultSet {
	if items == nil {
		items = []ExtractedItem{}
	}
	return &ResultSet{
		SearchText: searchText,
		SourcePage: sourcePage,
		TotalItems: len(items),
		Items:      items,
	}
}
