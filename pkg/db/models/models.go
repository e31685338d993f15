package models

// All lists every persisted model, in dependency order. Used to auto-migrate
// SQLite databases for local runs and tests; Postgres uses the SQL migrations.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Review{},
		&Discount{},
		&DiscountRedemption{},
		&Order{},
		&OrderItem{},
		&Invoice{},
		&Contact{},
		&SupportMessage{},
		&UserProfile{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
