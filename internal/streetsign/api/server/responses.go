package server

type AuthUserRequest struct {
	LoginName string `json:"loginname"` //nolint:tagliatelle
	Password  string `json:"password"`
}

type AuthUserResponse struct {
	Token string `json:"token"`
}
