package db

// TokenKey is the settings key holding the auth token across restarts
const TokenKey = "token"

// Token returns the stored auth token, or "" if none is stored
func (db *DB) Token() (string, error) {
	return db.GetSetting(TokenKey)
}

// SetToken persists the auth token
func (db *DB) SetToken(token string) error {
	return db.SetSetting(TokenKey, token)
}

// RemoveToken deletes the stored auth token
func (db *DB) RemoveToken() error {
	return db.DeleteSetting(TokenKey)
}
