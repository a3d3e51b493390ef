package share

const (
	ShareIDConstraint = "json_shares_share_id_key"

	InsertShare = `
		INSERT INTO json_shares (share_id, content, owner_id, created_at, updated_at, expires_at)
		VALUES ($1, $2::jsonb, $3, $4, $4, $5)
		RETURNING
		  id, share_id, content, owner_id, created_at, updated_at, expires_at
	`
	SelectShareByShareID = `
		SELECT id, share_id, content, owner_id, created_at, updated_at, expires_at
		FROM json_shares
		WHERE share_id = $1
	`
	SelectActiveSharesByOwner = `
		SELECT id, share_id, expires_at, created_at, updated_at
		FROM json_shares
		WHERE owner_id = $1 AND (expires_at IS NULL OR expires_at >= $2)
		ORDER BY created_at DESC
	`
	DeleteShareByShareIDAndOwner = `
		DELETE FROM json_shares
		WHERE share_id = $1 AND owner_id = $2
	`
	DeleteExpiredShares = `
		DELETE FROM json_shares
		WHERE expires_at IS NOT NULL AND expires_at < $1
		RETURNING share_id
	`
)
