package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Catalog
	&Product{},
	// Cart
	&CartItem{},
	// Orders
	&Order{},
	&OrderItem{},
	&Payment{},
	// Notifications
	&Notification{},
}
