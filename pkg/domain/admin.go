package domain

// OrderCounts breaks order volume down by status.
type OrderCounts struct {
	Total     int `json:"total"`
	Paid      int `json:"paid"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// RecentOrder is a compact order row on the admin dashboard.
type RecentOrder struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt Time        `json:"created_at"`
}

// RecentIntake is a compact intake row on the admin dashboard.
type RecentIntake struct {
	ID        string     `json:"id"`
	Type      IntakeType `json:"type"`
	CreatedAt Time       `json:"created_at"`
}

// AdminStats aggregates portal activity for the admin dashboard.
type AdminStats struct {
	Users         int            `json:"users"`
	Orders        OrderCounts    `json:"orders"`
	Projects      int            `json:"projects"`
	Revenue       float64        `json:"revenue"`
	RecentOrders  []RecentOrder  `json:"recent_orders"`
	RecentIntakes []RecentIntake `json:"recent_intakes"`
}
