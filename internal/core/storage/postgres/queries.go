package postgres

// SQL queries for analytics document and bill ledger storage.

const (
	// queryGetAnalytics loads the yearly document with its CAS version.
	queryGetAnalytics = `
		SELECT doc, version
		FROM analytics_years
		WHERE year = $1
	`

	// queryInsertAnalytics creates a year's document at version 1.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) when the
	// year was created concurrently, which surfaces as a version conflict.
	queryInsertAnalytics = `
		INSERT INTO analytics_years (year, doc, version, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (year) DO NOTHING
		RETURNING version
	`

	// queryUpdateAnalytics is the compare-and-swap write: the document
	// is replaced only if nobody else bumped the version since it was
	// read. RETURNING yields no rows on a lost race.
	queryUpdateAnalytics = `
		UPDATE analytics_years
		SET doc = $2, version = version + 1, updated_at = NOW()
		WHERE year = $1 AND version = $3
		RETURNING version
	`

	queryListAnalyticsYears = `
		SELECT year
		FROM analytics_years
		ORDER BY year ASC
	`

	queryInsertBill = `
		INSERT INTO bills (
			id, customer_name, bill_type, customer_type,
			amount_minor, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	queryGetBill = `
		SELECT id, customer_name, bill_type, customer_type,
		       amount_minor, created_at, updated_at
		FROM bills
		WHERE id = $1
	`

	queryUpdateBillAmount = `
		UPDATE bills
		SET amount_minor = $2, updated_at = NOW()
		WHERE id = $1
	`

	queryDeleteBill = `
		DELETE FROM bills
		WHERE id = $1
	`
)
