package domain

// StatusPresentation is how an order status is shown to people: a badge color class
// and an icon name.
type StatusPresentation struct {
	Status     string `json:"status"`
	ColorClass string `json:"colorClass"`
	Icon       string `json:"icon"`
}

const (
	fallbackColorClass = "bg-gray-100 text-gray-800"
	fallbackIcon       = "info"
)

var statusPresentations = map[OrderStatus]StatusPresentation{
	OrderPending:    {Status: string(OrderPending), ColorClass: "bg-yellow-100 text-yellow-800", Icon: "clock"},
	OrderProcessing: {Status: string(OrderProcessing), ColorClass: "bg-blue-100 text-blue-800", Icon: "cog"},
	OrderShipped:    {Status: string(OrderShipped), ColorClass: "bg-purple-100 text-purple-800", Icon: "truck"},
	OrderDelivered:  {Status: string(OrderDelivered), ColorClass: "bg-green-100 text-green-800", Icon: "check-circle"},
	OrderCancelled:  {Status: string(OrderCancelled), ColorClass: "bg-red-100 text-red-800", Icon: "x-circle"},
}

// PresentStatus maps any status string to its badge. Unknown strings get the neutral
// gray badge and keep their original text.
func PresentStatus(status string) StatusPresentation {
	if st, ok := ParseOrderStatus(status); ok {
		return statusPresentations[st]
	}
	return StatusPresentation{Status: status, ColorClass: fallbackColorClass, Icon: fallbackIcon}
}

// StatusPresentations returns the badge table in lifecycle order.
func StatusPresentations() []StatusPresentation {
	out := make([]StatusPresentation, 0, len(OrderStatuses))
	for _, st := range OrderStatuses {
		out = append(out, statusPresentations[st])
	}
	return out
}
