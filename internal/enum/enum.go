package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pendiente"
	OrderStatusPreparing = "preparando"
	OrderStatusReady     = "listo"
	OrderStatusOnTheWay  = "en_camino"
	OrderStatusDelivered = "entregado"
)

// KnownOrderStatuses lists every status the orders CHECK constraint accepts.
var KnownOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
}

// DefaultOrderFlow is used when ORDER_STATUSES is unset.
var DefaultOrderFlow = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
}

// ── Group B: Roles (CHECK constrained in DB) ──

const (
	UserRoleCustomer = "CLIENTE"
	UserRoleSupplier = "PROVEEDOR"
	UserRoleAdmin    = "ADMIN"
)

// ── Group C: Weekdays (CHECK constrained in DB) ──

const (
	WeekdayMonday    = "lunes"
	WeekdayTuesday   = "martes"
	WeekdayWednesday = "miercoles"
	WeekdayThursday  = "jueves"
	WeekdayFriday    = "viernes"
	WeekdaySaturday  = "sabado"
	WeekdaySunday    = "domingo"
)

// Weekdays is the display order of a weekly menu, Monday first.
var Weekdays = []string{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
	WeekdaySunday,
}

var weekdayLabels = map[string]string{
	WeekdayMonday:    "Lunes",
	WeekdayTuesday:   "Martes",
	WeekdayWednesday: "Miércoles",
	WeekdayThursday:  "Jueves",
	WeekdayFriday:    "Viernes",
	WeekdaySaturday:  "Sábado",
	WeekdaySunday:    "Domingo",
}

// WeekdayLabel returns the display label of a weekday token, or "" if unknown.
func WeekdayLabel(day string) string {
	return weekdayLabels[day]
}

func IsWeekday(day string) bool {
	_, ok := weekdayLabels[day]
	return ok
}

func IsKnownOrderStatus(status string) bool {
	for _, s := range KnownOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
