package postgres

// SQL for the user_interactions table. The (user_id, product_id) UNIQUE
// constraint is the concurrency guard: a plain INSERT that loses a create
// race fails with unique_violation instead of producing a second row.

const (
	recordColumns = `
		user_id, product_id, interaction_type, value, review_stars,
		session_id, search_query, created_at, updated_at
	`

	queryFindRecord = `
		SELECT ` + recordColumns + `
		FROM user_interactions
		WHERE user_id = $1 AND product_id = $2
	`

	// querySelectRecordForUpdate locks the pair's row for the rest of the
	// upsert transaction. Returns no rows when the pair has no record yet.
	querySelectRecordForUpdate = `
		SELECT ` + recordColumns + `
		FROM user_interactions
		WHERE user_id = $1 AND product_id = $2
		FOR UPDATE
	`

	queryInsertRecord = `
		INSERT INTO user_interactions (
			user_id, product_id, interaction_type, value, review_stars,
			session_id, search_query
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	queryUpdateRecord = `
		UPDATE user_interactions
		SET interaction_type = $3,
			value            = $4,
			review_stars     = $5,
			session_id       = $6,
			search_query     = $7,
			updated_at       = NOW()
		WHERE user_id = $1 AND product_id = $2
		RETURNING created_at, updated_at
	`

	queryListRecordsByUser = `
		SELECT ` + recordColumns + `
		FROM user_interactions
		WHERE user_id = $1
		ORDER BY updated_at DESC, product_id ASC
		LIMIT $2
	`

	queryGetProduct = `
		SELECT id, name, COALESCE(category, '')
		FROM products
		WHERE id = $1
	`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`
)
