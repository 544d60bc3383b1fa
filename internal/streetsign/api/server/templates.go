package server

import (
	"html/template"
	"net/http"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
)

// The user management pages are deliberately plain: the signage screens
// never see them, only operators do.
const pagesHTML = `
{{define "head"}}<!DOCTYPE html>
<html><head><title>streetsign</title></head><body>
{{range .Messages}}<div class="flash">{{.}}</div>
{{end}}{{end}}

{{define "foot"}}</body></html>{{end}}

{{define "error"}}{{template "head" .}}
<h1>{{.Title}}</h1>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}
<h1>Log in</h1>
<form method="post" action="/login">
<input name="loginname" placeholder="login name">
<input name="password" type="password" placeholder="password">
<button type="submit">Log in</button>
</form>
{{template "foot" .}}{{end}}

{{define "users"}}{{template "head" .}}
<h1>Users and Groups</h1>
<table>
{{range .Users}}<tr>
<td><a href="/users/{{.ID}}/edit">{{.LoginName}}</a></td>
<td>{{.EmailAddress}}</td>
<td>{{if .IsAdmin}}admin{{end}}</td>
</tr>
{{end}}</table>
{{if .Caller.IsAdmin}}
<h2>New user</h2>
<form method="post" action="/users">
<input name="loginname" placeholder="login name">
<input name="emailaddress" placeholder="email address">
<input name="newpass" type="password" placeholder="password">
<input name="conf_newpass" type="password" placeholder="confirm password">
<label><input name="is_admin" type="checkbox" value="1"> admin</label>
<button type="submit">Create</button>
</form>
{{end}}
{{template "foot" .}}{{end}}

{{define "useredit"}}{{template "head" .}}
<h1>Edit user {{.User.LoginName}}</h1>
<form method="post" action="/users/{{.User.ID}}/edit">
<input type="hidden" name="action" value="update">
<input name="emailaddress" value="{{.User.EmailAddress}}">
<input name="currpass" type="password" placeholder="your current password">
<input name="newpass" type="password" placeholder="new password">
<input name="conf_newpass" type="password" placeholder="confirm new password">
<button type="submit">Save</button>
</form>
{{if .Posts}}<h2>Posts</h2>
<ul>
{{range .Posts}}<li>post {{.ID}}{{if .Active}} (active){{end}}</li>
{{end}}</ul>
{{end}}
{{if and .Caller.IsAdmin (ne .Caller.ID .User.ID)}}
<form method="post" action="/users/{{.User.ID}}/delete">
<button type="submit">Delete user</button>
</form>
{{end}}
{{template "foot" .}}{{end}}
`

var pages = template.Must(template.New("pages").Parse(pagesHTML))

type errorPage struct {
	Messages []string
	Title    string
}

type loginPage struct {
	Messages []string
}

type usersPage struct {
	Messages []string
	Users    []models.User
	Caller   *models.User
}

type userEditPage struct {
	Messages []string
	User     models.User
	Posts    []models.Post
	Caller   *models.User
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.lg.Errorf("render %s error: %s", name, err.Error())
	}
}
