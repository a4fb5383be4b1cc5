package sqlstore

// Queries use "?" placeholders and are rebound per dialect.
const (
	nextSeq = `(SELECT COALESCE(MAX(seq), 0) + 1 FROM kv)`

	queryGet = `SELECT value FROM kv WHERE key = ? AND deleted = 0`

	querySet = `
		INSERT INTO kv (key, value, digest, seq, origin, deleted, updated_at)
		VALUES (?, ?, ?, ` + nextSeq + `, ?, 0, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			digest = excluded.digest,
			seq = excluded.seq,
			origin = excluded.origin,
			deleted = 0,
			updated_at = excluded.updated_at`

	queryInsertIfAbsent = querySet + `
		WHERE kv.deleted = 1`

	querySwap = `
		UPDATE kv SET value = ?, digest = ?, seq = ` + nextSeq + `, origin = ?, updated_at = ?
		WHERE key = ? AND digest = ? AND deleted = 0`

	queryDelete = `
		UPDATE kv SET value = '', digest = '', deleted = 1, seq = ` + nextSeq + `, origin = ?, updated_at = ?
		WHERE key = ? AND deleted = 0`

	queryKeys = `SELECT key FROM kv WHERE deleted = 0 ORDER BY key`

	queryMaxSeq = `SELECT COALESCE(MAX(seq), 0) FROM kv`

	queryChangesSince = `
		SELECT key, value, deleted, origin, seq FROM kv
		WHERE seq > ?
		ORDER BY seq`
)
