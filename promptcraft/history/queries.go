package history

const (
	queryCreate = `
		INSERT INTO history_entries (id, user_id, original_prompt, optimized_prompt, style, model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, original_prompt, optimized_prompt, style, model, created_at
	`

	queryList = `
		SELECT id, user_id, original_prompt, optimized_prompt, style, model, created_at
		FROM history_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	queryListIDs = `
		SELECT id
		FROM history_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryDelete = `
		DELETE FROM history_entries
		WHERE id = $1 AND user_id = $2
	`
)
