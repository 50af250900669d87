package model

import "fmt"

// OrderKind is the tactical directive the army hands down to a unit.
type OrderKind int

const (
	OrderNone OrderKind = iota
	// OrderMove walks to the target ignoring everything on the way.
	OrderMove
	// OrderMoveAttack walks to the target and fights whatever shows up.
	OrderMoveAttack
	// OrderDefendLocation holds the target and only fights near it.
	OrderDefendLocation
)

func (k OrderKind) String() string {
	switch k {
	case OrderNone:
		return "none"
	case OrderMove:
		return "move"
	case OrderMoveAttack:
		return "move_attack"
	case OrderDefendLocation:
		return "defend_location"
	default:
		return fmt.Sprintf("OrderKind(%d)", int(k))
	}
}

// Order is immutable once built. A unit's order is only ever replaced as a
// whole; the fields are unexported so nothing can patch one in place.
type Order struct {
	kind        OrderKind
	target      Point
	defendRange float64 // DefendLocation only; 0 means the doctrine default
}

func MoveOrder(target Point) Order {
	return Order{kind: OrderMove, target: target}
}

func MoveAttackOrder(target Point) Order {
	return Order{kind: OrderMoveAttack, target: target}
}

// DefendOrder holds target. A non-positive radius defers to the doctrine's defend range.
func DefendOrder(target Point, radius float64) Order {
	if radius < 0 {
		radius = 0
	}
	return Order{kind: OrderDefendLocation, target: target, defendRange: radius}
}

func (o Order) Kind() OrderKind { return o.kind }

func (o Order) Target() Point { return o.target }

// Valid reports whether the order carries a directive at all.
func (o Order) Valid() bool { return o.kind != OrderNone }

// DefendRange returns the order's own radius, or fallback when it has none.
func (o Order) DefendRange(fallback float64) float64 {
	if o.kind == OrderDefendLocation && o.defendRange > 0 {
		return o.defendRange
	}
	return fallback
}

func (o Order) String() string {
	if !o.Valid() {
		return "none"
	}
	return fmt.Sprintf("%s(%.1f,%.1f)", o.kind, o.target.X, o.target.Y)
}
