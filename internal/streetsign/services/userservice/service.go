package userservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/userrepo"
	"github.com/reemaRaven/streetsign/pkg/logger"
)

// Validation failures the view layer turns into form messages. None of
// them leaves any record changed.
var (
	ErrCurrentPassword  = errors.New("you need to enter your current password")
	ErrPasswordMismatch = errors.New("new passwords do not match")
	ErrPasswordConflict = errors.New("password was changed by another request")
	ErrEmptyPassword    = errors.New("you need to give the new user a password")
	ErrDuplicateLogin   = errors.New("that login name is already taken")
	ErrNotFound         = errors.New("no such user")
)

type Repository interface {
	CreateUser(context.Context, models.User) (int, error)
	GetUserByID(context.Context, int) (models.User, error)
	GetUserByLogin(context.Context, string) (models.User, error)
	ListUsers(context.Context) ([]models.User, error)
	UpdateEmail(ctx context.Context, id int, emailAddress string) error
	UpdatePasswordHash(ctx context.Context, id int, oldHash, newHash string) error
	DeleteUser(context.Context, int) error
	CountUsers(context.Context) (int, error)
	Shutdown(context.Context) error
}

type PostRepository interface {
	GetPostsByAuthor(ctx context.Context, authorID int) ([]models.Post, error)
	DeletePostsByAuthor(ctx context.Context, authorID int) error
}

type UserService struct {
	userRepo Repository
	postRepo PostRepository
	lg       logger.Logger
}

func New(userRepo Repository, postRepo PostRepository, lg logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		lg:       lg,
	}
}

func (us *UserService) ListUsers(ctx context.Context, caller *models.User) ([]models.User, error) {
	if err := Decide(caller, 0, ActionList); err != nil {
		return nil, err
	}

	users, err := us.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

func (us *UserService) GetUser(ctx context.Context, caller *models.User, id int) (models.User, error) {
	if err := Decide(caller, id, ActionView); err != nil {
		return models.User{}, err
	}

	u, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

func (us *UserService) CreateUser(ctx context.Context, caller *models.User, req CreateUserRequest) (int, error) {
	if err := Decide(caller, 0, ActionCreate); err != nil {
		return 0, err
	}

	if req.NewPass == "" {
		return 0, ErrEmptyPassword
	}

	if req.NewPass != req.ConfNewPass {
		return 0, ErrPasswordMismatch
	}

	u := models.User{ //nolint:exhaustruct
		LoginName:    req.LoginName,
		EmailAddress: req.EmailAddress,
		IsAdmin:      req.IsAdmin,
	}

	if err := u.SetPassword(req.NewPass); err != nil {
		return 0, fmt.Errorf("set password error: %w", err)
	}

	id, err := us.userRepo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return 0, ErrDuplicateLogin
		}

		return 0, fmt.Errorf("create user error: %w", err)
	}

	us.lg.Infof("user %q created by %q", req.LoginName, caller.LoginName)

	return id, nil
}

// UserPosts lists everything the user authored, shown on the edit page
// so an operator can see what a deletion would take with it.
func (us *UserService) UserPosts(ctx context.Context, caller *models.User, id int) ([]models.Post, error) {
	if err := Decide(caller, id, ActionView); err != nil {
		return nil, err
	}

	posts, err := us.postRepo.GetPostsByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get posts error: %w", err)
	}

	return posts, nil
}

// UpdateUser applies a profile edit and, when a new password is supplied,
// runs the password-change gate: the caller must confirm their OWN current
// password, even an admin changing somebody else's. Any failure leaves the
// target's hash exactly as it was.
func (us *UserService) UpdateUser(ctx context.Context, caller *models.User, req UpdateUserRequest) error {
	if err := Decide(caller, req.TargetID, ActionEdit); err != nil {
		return err
	}

	target, err := us.userRepo.GetUserByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get user error: %w", err)
	}

	changingPassword := req.NewPass != "" || req.ConfNewPass != ""

	// All checks run before any write, so a rejected request
	// leaves the record untouched.
	if changingPassword {
		if !caller.CheckPassword(req.CurrPass) {
			return ErrCurrentPassword
		}

		if req.NewPass != req.ConfNewPass {
			return ErrPasswordMismatch
		}
	}

	// The password swap goes first: if it loses the compare-and-swap
	// the whole edit is rejected with nothing written.
	if changingPassword {
		newUser := target
		if err := newUser.SetPassword(req.NewPass); err != nil {
			return fmt.Errorf("set password error: %w", err)
		}

		if err := us.userRepo.UpdatePasswordHash(ctx, target.ID, target.PasswordHash, newUser.PasswordHash); err != nil {
			if errors.Is(err, userrepo.ErrHashConflict) {
				return ErrPasswordConflict
			}

			return fmt.Errorf("update password hash error: %w", err)
		}

		us.lg.Infof("password changed for user %q by %q", target.LoginName, caller.LoginName)
	}

	if req.EmailAddress != "" && req.EmailAddress != target.EmailAddress {
		if err := us.userRepo.UpdateEmail(ctx, target.ID, req.EmailAddress); err != nil {
			return fmt.Errorf("update email error: %w", err)
		}
	}

	return nil
}

// DeleteUser removes the user and everything the user authored.
func (us *UserService) DeleteUser(ctx context.Context, caller *models.User, id int) error {
	if err := Decide(caller, id, ActionDelete); err != nil {
		return err
	}

	target, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get user error: %w", err)
	}

	if err := us.postRepo.DeletePostsByAuthor(ctx, target.ID); err != nil {
		return fmt.Errorf("delete posts error: %w", err)
	}

	if err := us.userRepo.DeleteUser(ctx, target.ID); err != nil {
		return fmt.Errorf("delete user error: %w", err)
	}

	us.lg.Infof("user %q deleted by %q", target.LoginName, caller.LoginName)

	return nil
}

// Bootstrap creates the initial admin account when the table is empty,
// so a fresh install is reachable at all.
func (us *UserService) Bootstrap(ctx context.Context, loginName, emailAddress, password string) error {
	count, err := us.userRepo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users error: %w", err)
	}

	if count != 0 || loginName == "" || password == "" {
		return nil
	}

	u := models.User{ //nolint:exhaustruct
		LoginName:    loginName,
		EmailAddress: emailAddress,
		IsAdmin:      true,
	}

	if err := u.SetPassword(password); err != nil {
		return fmt.Errorf("set password error: %w", err)
	}

	if _, err := us.userRepo.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create user error: %w", err)
	}

	us.lg.Infof("bootstrap admin %q created", loginName)

	return nil
}

func (us *UserService) Shutdown(ctx context.Context) error {
	if err := us.userRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown user repo error: %w", err)
	}

	return nil
}
