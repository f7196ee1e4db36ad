package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCategory is assigned to every product created through the intake flow.
const DefaultCategory = "uncategorized"

// Product is a single catalog entry as persisted in the catalog file and
// consumed by the storefront web application.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Images      []string `json:"images"`
}

// NextID returns the id for a new product: one past the highest numeric id
// among live entries. Duplicates within the catalog are impossible; an id
// freed by deleting the highest entry can come back for a later product.
func NextID(products []Product) string {
	max := int64(0)
	for _, p := range products {
		n, err := strconv.ParseInt(strings.TrimSpace(p.ID), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

// ImageFileName builds the canonical image filename for a product image:
// product_<id>_<index><ext>. An empty extension defaults to ".jpg".
func ImageFileName(id string, index int, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("product_%s_%d%s", id, index, ext)
}
