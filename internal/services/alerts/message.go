package alerts

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// buildAlertMessage собирает тему и тело письма по новым сделкам правила
func buildAlertMessage(rule models.AlertRule, offers []models.TripOffer) (string, string) {
	subject := fmt.Sprintf("Flight deal: %s -> %s from %.2f %s",
		rule.Origin, rule.Destination, offers[0].TotalPrice, offers[0].Currency)

	var b strings.Builder
	fmt.Fprintf(&b, "New deals for %s -> %s in %s (threshold %.2f):\r\n\r\n",
		rule.Origin, rule.Destination, rule.SearchMonth, rule.Threshold)
	for _, offer := range offers {
		fmt.Fprintf(&b, "- %.2f %s, outbound %s (flight %s), inbound %s (flight %s)\r\n",
			offer.TotalPrice, offer.Currency,
			offer.Outbound.DepartureTime, offer.Outbound.FlightNumber,
			offer.Inbound.DepartureTime, offer.Inbound.FlightNumber)
	}
	return subject, b.String()
}
