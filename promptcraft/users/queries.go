package users

const userColumns = `id, email, name, provider, provider_id, labels, prefs, plan, premium_expires_at, password_hash, created_at, updated_at`

const (
	queryFindOrCreateByEmail = `
		INSERT INTO users (email, provider, provider_id)
		VALUES ($1, 'email', $1)
		ON CONFLICT (email)
		DO UPDATE SET updated_at = NOW()
		RETURNING ` + userColumns

	queryFindOrCreateByProvider = `
		INSERT INTO users (email, name, provider, provider_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET
			name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END,
			updated_at = NOW()
		RETURNING ` + userColumns

	queryFindByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	// jsonb || merges top-level keys, last write wins per key
	queryMergePrefs = `
		UPDATE users
		SET prefs = prefs || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	queryReplaceLabels = `
		UPDATE users
		SET labels = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	querySetPasswordHash = `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
)
