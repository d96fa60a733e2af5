package payments

// MapEventStatus translates a Wompi transaction status from a webhook event
// into the purchase payment status. Unknown statuses map to "" and the caller
// drops the event.
func MapEventStatus(wompiStatus string) string {
	switch wompiStatus {
	case "APPROVED":
		return "APPROVED"
	case "DECLINED":
		return "REJECTED"
	case "VOIDED":
		return "CANCELLED"
	case "ERROR":
		return "FAILED"
	case "PENDING":
		return "PENDING"
	}
	return ""
}
