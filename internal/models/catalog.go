package models

import "github.com/shopspring/decimal"

// CatalogEntry describes one sellable document template. The archive is a
// pre-built ZIP holding both the PDF and the editable Word version.
type CatalogEntry struct {
	ID          string
	Title       string
	Category    string
	Price       decimal.Decimal
	Format      string
	ArchiveFile string
}

// documentCatalog is the single source of truth for what we sell. Both the
// save and download paths read it, so the price and title a customer sees
// always match the file they are served.
var documentCatalog = map[string]CatalogEntry{
	"1": {
		ID:          "1",
		Title:       "Offer To Purchase - Residential Property",
		Category:    "property",
		Price:       decimal.NewFromInt(450),
		Format:      "PDF & Word",
		ArchiveFile: "offer-to-purchase-residential.zip",
	},
	"2": {
		ID:          "2",
		Title:       "Last Will & Testament",
		Category:    "estate",
		Price:       decimal.NewFromInt(550),
		Format:      "PDF & Word",
		ArchiveFile: "last-will-testament.zip",
	},
	"3": {
		ID:          "3",
		Title:       "Living Will",
		Category:    "estate",
		Price:       decimal.NewFromInt(550),
		Format:      "PDF & Word",
		ArchiveFile: "living-will.zip",
	},
}

func DocumentByID(id string) (CatalogEntry, bool) {
	entry, ok := documentCatalog[id]
	return entry, ok
}

// DocumentCategory maps a document id to its category, "other" for ids not
// in the catalog.
func DocumentCategory(id string) string {
	if entry, ok := documentCatalog[id]; ok {
		return entry.Category
	}
	return "other"
}
