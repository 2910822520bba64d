package catalog

import (
	"strings"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
)

// VariantDescription renders the human-readable attribute line used on cart
// rows and order snapshots: `Color: Azul, Talla: M`. Color comes first when
// the variant has one; remaining attributes keep insertion order.
func VariantDescription(variant models.Variant) string {
	parts := make([]string, 0, len(variant.Attributes)+1)
	if variant.Color != nil && strings.TrimSpace(variant.Color.Name) != "" {
		parts = append(parts, "Color: "+variant.Color.Name)
	}
	for _, attr := range variant.Attributes {
		name := strings.TrimSpace(attr.Name)
		value := strings.TrimSpace(attr.Value)
		if name == "" || value == "" {
			continue
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, ", ")
}
