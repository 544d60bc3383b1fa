package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/streetsign/api/server"
	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	pmem "github.com/reemaRaven/streetsign/internal/streetsign/repository/postrepo/memory"
	smem "github.com/reemaRaven/streetsign/internal/streetsign/repository/sessionrepo/memory"
	umem "github.com/reemaRaven/streetsign/internal/streetsign/repository/userrepo/memory"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/authservice"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/userservice"
	"github.com/reemaRaven/streetsign/pkg/logger"
	"github.com/stretchr/testify/suite"
)

const (
	userName  = "test"
	userPass  = "123"
	adminName = "admin"
	adminPass = "42"
)

type UsersSuite struct {
	suite.Suite
	ts       *httptest.Server
	userRepo *umem.UsersMemoryRepo
	postRepo *pmem.PostsMemoryRepo
	user     models.User
	admin    models.User
}

func (us *UsersSuite) SetupTest() {
	lg, err := logger.New(config.Logger{Level: "error"}) //nolint:exhaustruct
	us.Require().NoError(err)

	us.userRepo = umem.New()
	us.postRepo = pmem.New()
	sessions := smem.New()

	authService := authservice.New(us.userRepo, sessions,
		config.Auth{TTL: time.Minute, Secret: "test-secret"})
	userService := userservice.New(us.userRepo, us.postRepo, lg)

	srv := server.New(
		config.Server{ //nolint:exhaustruct
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		config.Sessions{ //nolint:exhaustruct
			CookieName:   "streetsign_session",
			CookieSecret: "test-cookie-secret",
			TTL:          time.Minute,
		},
		userService, authService, lg)

	us.ts = httptest.NewServer(srv.Handler())

	us.user = us.seedUser(userName, userPass, false)
	us.admin = us.seedUser(adminName, adminPass, true)
}

func (us *UsersSuite) TearDownTest() {
	us.ts.Close()
}

func (us *UsersSuite) seedUser(loginName, password string, isAdmin bool) models.User {
	u := models.User{ //nolint:exhaustruct
		LoginName:    loginName,
		EmailAddress: loginName + "@test.com",
		IsAdmin:      isAdmin,
	}
	us.Require().NoError(u.SetPassword(password))

	id, err := us.userRepo.CreateUser(context.Background(), u)
	us.Require().NoError(err)

	u.ID = id

	return u
}

func (us *UsersSuite) client() *http.Client {
	jar, err := cookiejar.New(nil)
	us.Require().NoError(err)

	return &http.Client{Jar: jar} //nolint:exhaustruct
}

func (us *UsersSuite) login(client *http.Client, loginName, password string) {
	resp, err := client.PostForm(us.ts.URL+"/login", url.Values{
		"loginname": {loginName},
		"password":  {password},
	})
	us.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	us.Require().NoError(err)

	us.Require().Equal(http.StatusOK, resp.StatusCode)
	us.Require().Contains(string(body), "Users and Groups")
}

func (us *UsersSuite) get(client *http.Client, path string) (int, string) {
	resp, err := client.Get(us.ts.URL + path)
	us.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	us.Require().NoError(err)

	return resp.StatusCode, string(body)
}

func (us *UsersSuite) postForm(client *http.Client, path string, form url.Values) (int, string) {
	resp, err := client.PostForm(us.ts.URL+path, form)
	us.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	us.Require().NoError(err)

	return resp.StatusCode, string(body)
}

func (us *UsersSuite) editPath(id int) string {
	return "/users/" + strconv.Itoa(id) + "/edit"
}

func (us *UsersSuite) hashOf(id int) string {
	u, err := us.userRepo.GetUserByID(context.Background(), id)
	us.Require().NoError(err)

	return u.PasswordHash
}

func (us *UsersSuite) TestLoggedOutCannotSeeUsers() {
	code, body := us.get(us.client(), "/users")
	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
}

func (us *UsersSuite) TestLoggedOutCannotSeeUser() {
	code, _ := us.get(us.client(), us.editPath(us.user.ID))
	us.Require().Equal(http.StatusForbidden, code)

	code, _ = us.get(us.client(), us.editPath(us.admin.ID))
	us.Require().Equal(http.StatusForbidden, code)
}

func (us *UsersSuite) TestLoggedOutCannotSetPassword() {
	code, body := us.postForm(us.client(), us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"conf_newpass": {"200"},
	})

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
	us.Require().Equal(us.user.PasswordHash, us.hashOf(us.user.ID))
}

func (us *UsersSuite) TestCannotChangePasswordWithoutCurrentPassword() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"conf_newpass": {"200"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().NotContains(body, "Password changed")
	us.Require().Contains(body, "You need to enter your current password")
	us.Require().Equal(us.user.PasswordHash, us.hashOf(us.user.ID))
}

func (us *UsersSuite) TestCannotChangePasswordWithWrongCurrentPassword() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"conf_newpass": {"200"},
		"currpass":     {"bananas"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().NotContains(body, "Password changed")
	us.Require().Contains(body, "You need to enter your current password")
	us.Require().Equal(us.user.PasswordHash, us.hashOf(us.user.ID))
}

func (us *UsersSuite) TestCannotChangePasswordWithMismatchedConfirmation() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"conf_newpass": {"201"},
		"currpass":     {userPass},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().NotContains(body, "Password changed")
	us.Require().Contains(body, "New passwords do not match")
	us.Require().Equal(us.user.PasswordHash, us.hashOf(us.user.ID))
}

func (us *UsersSuite) TestCanChangeOwnPassword() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"currpass":     {userPass},
		"conf_newpass": {"200"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "Password changed")
	us.Require().NotEqual(us.user.PasswordHash, us.hashOf(us.user.ID))

	// the new password logs in
	us.login(us.client(), userName, "200")
}

func (us *UsersSuite) TestCannotChangeOtherUsersPassword() {
	user2 := us.seedUser("user2", "userpass2", false)

	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, us.editPath(user2.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"conf_newpass": {"200"},
		"currpass":     {userPass},
	})

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
	us.Require().Equal(user2.PasswordHash, us.hashOf(user2.ID))
}

func (us *UsersSuite) TestCannotSeeOtherUsersEditPage() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.get(client, us.editPath(us.admin.ID))
	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
}

func (us *UsersSuite) TestAdminCanChangeUsersPassword() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"currpass":     {adminPass},
		"conf_newpass": {"200"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "Password changed")
	us.Require().NotEqual(us.user.PasswordHash, us.hashOf(us.user.ID))
}

func (us *UsersSuite) TestAdminCanChangeOwnPassword() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, us.editPath(us.admin.ID), url.Values{
		"action":       {"update"},
		"newpass":      {"200"},
		"currpass":     {adminPass},
		"conf_newpass": {"200"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "Password changed")
	us.Require().NotEqual(us.admin.PasswordHash, us.hashOf(us.admin.ID))
}

func (us *UsersSuite) TestLoggedOutCannotCreateUser() {
	code, body := us.postForm(us.client(), "/users", url.Values{
		"loginname":    {"new"},
		"newpass":      {"pw"},
		"conf_newpass": {"pw"},
	})

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
}

func (us *UsersSuite) TestNormalUserCannotCreateUser() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, "/users", url.Values{
		"loginname":    {"new"},
		"newpass":      {"pw"},
		"conf_newpass": {"pw"},
	})

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
}

func (us *UsersSuite) TestAdminCanCreateUser() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, "/users", url.Values{
		"loginname":    {"new"},
		"emailaddress": {"new@test.com"},
		"newpass":      {"pw"},
		"conf_newpass": {"pw"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "User created")

	created, err := us.userRepo.GetUserByLogin(context.Background(), "new")
	us.Require().NoError(err)
	us.Require().True(created.CheckPassword("pw"))
	us.Require().False(created.IsAdmin)
}

func (us *UsersSuite) TestCannotHaveEmptyPassword() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, "/users", url.Values{
		"loginname": {"new"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "You need to give the new user a password")

	_, err := us.userRepo.GetUserByLogin(context.Background(), "new")
	us.Require().Error(err)
}

func (us *UsersSuite) TestCannotHaveMatchingUsernames() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, "/users", url.Values{
		"loginname":    {userName},
		"newpass":      {"pw"},
		"conf_newpass": {"pw"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "That login name is already taken")
}

func (us *UsersSuite) TestLoggedOutCannotDeleteUser() {
	code, body := us.postForm(us.client(), "/users/"+strconv.Itoa(us.user.ID)+"/delete", nil)

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")

	_, err := us.userRepo.GetUserByID(context.Background(), us.user.ID)
	us.Require().NoError(err)
}

func (us *UsersSuite) TestNormalUserCannotDeleteUser() {
	client := us.client()
	us.login(client, userName, userPass)

	code, body := us.postForm(client, "/users/"+strconv.Itoa(us.admin.ID)+"/delete", nil)

	us.Require().Equal(http.StatusForbidden, code)
	us.Require().Contains(body, "Permission Denied")
}

func (us *UsersSuite) TestAdminCanDeleteUser() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, "/users/"+strconv.Itoa(us.user.ID)+"/delete", nil)

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "User deleted")

	_, err := us.userRepo.GetUserByID(context.Background(), us.user.ID)
	us.Require().Error(err)
}

func (us *UsersSuite) TestAdminCannotDeleteSelf() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, "/users/"+strconv.Itoa(us.admin.ID)+"/delete", nil)

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "You cannot delete your own account")

	_, err := us.userRepo.GetUserByID(context.Background(), us.admin.ID)
	us.Require().NoError(err)
}

func (us *UsersSuite) TestWhenUserDeletedPostsAlsoDeleted() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := us.postRepo.CreatePost(ctx, models.Post{ //nolint:exhaustruct
			AuthorID:  us.user.ID,
			Active:    true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
			Content:   map[string]interface{}{"text": "hello"},
		})
		us.Require().NoError(err)
	}

	client := us.client()
	us.login(client, adminName, adminPass)

	code, _ := us.postForm(client, "/users/"+strconv.Itoa(us.user.ID)+"/delete", nil)
	us.Require().Equal(http.StatusOK, code)

	posts, err := us.postRepo.GetPostsByAuthor(ctx, us.user.ID)
	us.Require().NoError(err)
	us.Require().Empty(posts)
}

func (us *UsersSuite) TestDeleteViaEditAction() {
	client := us.client()
	us.login(client, adminName, adminPass)

	code, body := us.postForm(client, us.editPath(us.user.ID), url.Values{
		"action": {"delete"},
	})

	us.Require().Equal(http.StatusOK, code)
	us.Require().Contains(body, "User deleted")
}

func (us *UsersSuite) TestAPIAuth() {
	reqBody, err := json.Marshal(server.AuthUserRequest{LoginName: adminName, Password: adminPass})
	us.Require().NoError(err)

	resp, err := http.Post(us.ts.URL+"/api/auth", "application/json", bytes.NewReader(reqBody))
	us.Require().NoError(err)
	defer resp.Body.Close()

	us.Require().Equal(http.StatusOK, resp.StatusCode)

	var tokenResp server.AuthUserResponse
	us.Require().NoError(json.NewDecoder(resp.Body).Decode(&tokenResp))
	us.Require().NotEmpty(tokenResp.Token)

	reqBody, err = json.Marshal(server.AuthUserRequest{LoginName: adminName, Password: "wrong"})
	us.Require().NoError(err)

	respBad, err := http.Post(us.ts.URL+"/api/auth", "application/json", bytes.NewReader(reqBody))
	us.Require().NoError(err)
	defer respBad.Body.Close()

	us.Require().Equal(http.StatusUnauthorized, respBad.StatusCode)
}

func (us *UsersSuite) apiToken(loginName, password string) string {
	reqBody, err := json.Marshal(server.AuthUserRequest{LoginName: loginName, Password: password})
	us.Require().NoError(err)

	resp, err := http.Post(us.ts.URL+"/api/auth", "application/json", bytes.NewReader(reqBody))
	us.Require().NoError(err)
	defer resp.Body.Close()

	us.Require().Equal(http.StatusOK, resp.StatusCode)

	var tokenResp server.AuthUserResponse
	us.Require().NoError(json.NewDecoder(resp.Body).Decode(&tokenResp))

	return tokenResp.Token
}

func (us *UsersSuite) TestAPIListUsers() {
	adminToken := us.apiToken(adminName, adminPass)
	userToken := us.apiToken(userName, userPass)

	req, err := http.NewRequest(http.MethodGet, us.ts.URL+"/api/users", nil)
	us.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := http.DefaultClient.Do(req)
	us.Require().NoError(err)
	defer resp.Body.Close()

	us.Require().Equal(http.StatusOK, resp.StatusCode)

	var users []models.User
	us.Require().NoError(json.NewDecoder(resp.Body).Decode(&users))
	us.Require().Len(users, 2)

	// non-admin tokens are rejected
	req, err = http.NewRequest(http.MethodGet, us.ts.URL+"/api/users", nil)
	us.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+userToken)

	respUser, err := http.DefaultClient.Do(req)
	us.Require().NoError(err)
	defer respUser.Body.Close()

	us.Require().Equal(http.StatusForbidden, respUser.StatusCode)

	// and so are anonymous calls
	respAnon, err := http.Get(us.ts.URL + "/api/users")
	us.Require().NoError(err)
	defer respAnon.Body.Close()

	us.Require().Equal(http.StatusUnauthorized, respAnon.StatusCode)
}

func (us *UsersSuite) TestLogout() {
	client := us.client()
	us.login(client, userName, userPass)

	code, _ := us.get(client, "/users")
	us.Require().Equal(http.StatusOK, code)

	resp, err := client.PostForm(us.ts.URL+"/logout", nil)
	us.Require().NoError(err)
	resp.Body.Close()

	code, _ = us.get(client, "/users")
	us.Require().Equal(http.StatusForbidden, code)
}

func TestUsersSuite(t *testing.T) {
	suite.Run(t, new(UsersSuite))
}
