package sessions

const (
	queryCreateSession = `
		INSERT INTO auth_sessions (id, user_id, provider, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, provider, user_agent, expires_at, created_at
	`

	querySessionExists = `
		SELECT EXISTS (
			SELECT 1 FROM auth_sessions
			WHERE id = $1 AND expires_at > NOW()
		)
	`

	queryDeleteSession = `
		DELETE FROM auth_sessions
		WHERE id = $1 AND user_id = $2
	`

	queryDeleteExpiredSessions = `
		DELETE FROM auth_sessions
		WHERE expires_at <= $1
	`

	queryCreateMagicLink = `
		INSERT INTO magic_links (id, user_id, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, secret_hash, expires_at, consumed_at, created_at
	`

	// a link can be consumed once, before it expires
	queryConsumeMagicLink = `
		UPDATE magic_links
		SET consumed_at = $3
		WHERE user_id = $1
			AND secret_hash = $2
			AND consumed_at IS NULL
			AND expires_at > $3
		RETURNING id
	`

	queryDeleteExpiredMagicLinks = `
		DELETE FROM magic_links
		WHERE expires_at <= $1 OR consumed_at IS NOT NULL
	`
)
