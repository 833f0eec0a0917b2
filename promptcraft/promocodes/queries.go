package promocodes

const (
	// max_redemptions = 0 means unlimited
	queryClaimSlot = `
		UPDATE promo_codes
		SET redemptions = redemptions + 1
		WHERE code = $1
			AND active
			AND (max_redemptions = 0 OR redemptions < max_redemptions)
		RETURNING duration_days
	`

	queryCodeActive = `
		SELECT active
		FROM promo_codes
		WHERE code = $1
	`

	queryRecordRedemption = `
		INSERT INTO promo_redemptions (code, user_id)
		VALUES ($1, $2)
		ON CONFLICT (code, user_id) DO NOTHING
	`

	queryGrantPremium = `
		UPDATE users
		SET plan = 'premium',
			premium_expires_at = $2,
			prefs = prefs || $3::jsonb,
			updated_at = NOW()
		WHERE id = $1
	`
)
