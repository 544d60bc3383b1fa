package models

type User struct {
	ID           int    `json:"user_id"`       //nolint:tagliatelle
	LoginName    string `json:"loginname"`     //nolint:tagliatelle
	EmailAddress string `json:"emailaddress"`  //nolint:tagliatelle
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"` //nolint:tagliatelle
}
