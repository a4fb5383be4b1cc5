package models

import (
	"encoding/json"
	"time"
)

// Account is a local pseudo-identity. It carries no credentials.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type accountJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// MarshalJSON stores CreatedAt as epoch milliseconds.
func (a Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt.UnixMilli()})
}

func (a *Account) UnmarshalJSON(b []byte) error {
	var v accountJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Account{ID: v.ID, Name: v.Name, CreatedAt: time.UnixMilli(v.CreatedAt)}
	return nil
}
