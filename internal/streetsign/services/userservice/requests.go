package userservice

type CreateUserRequest struct {
	LoginName    string
	EmailAddress string
	NewPass      string
	ConfNewPass  string
	IsAdmin      bool
}

type UpdateUserRequest struct {
	TargetID     int
	EmailAddress string
	CurrPass     string
	NewPass      string
	ConfNewPass  string
}
