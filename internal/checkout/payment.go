package checkout

import (
	"fmt"
	"strings"

	"github.com/confeccionesismael/storefront-backend/pkg/config"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
)

// paymentInstructions renders the canned text stored on the order snapshot.
// The text is frozen at checkout time so later store-config changes never
// rewrite existing orders.
func paymentInstructions(method enums.PaymentMethod, store config.StoreConfig) string {
	name := strings.TrimSpace(store.Name)
	if name == "" {
		name = "la tienda"
	}

	switch method {
	case enums.PaymentMethodCashOnDelivery:
		return "Paga en efectivo al recibir tu pedido."
	case enums.PaymentMethodTransfer:
		notes := strings.TrimSpace(store.TransferNotes)
		if notes == "" {
			return fmt.Sprintf("Realiza la transferencia y comparte el comprobante con %s.", name)
		}
		return notes
	default:
		contact := strings.TrimSpace(store.ContactEmail)
		if contact == "" {
			return fmt.Sprintf("%s te contactará para coordinar el pago.", name)
		}
		return fmt.Sprintf("%s te contactará para coordinar el pago. Dudas: %s", name, contact)
	}
}
