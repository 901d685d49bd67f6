package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/middleware/auth"

	"gorm.io/gorm"
)

// UserFields carries optional user attributes. A nil field is left unchanged.
type UserFields struct {
	Email       *string
	Username    *string
	FirstName   *string
	LastName    *string
	Bio         *string
	Role        *string
	Password    *string
	IsStaff     *bool
	IsSuperuser *bool
}

// reservedUsername is the path segment of the caller's own profile.
const reservedUsername = "me"

type UserService interface {
	CreateUser(ctx context.Context, email string, fields UserFields) (*models.User, error)
	CreateAdmin(ctx context.Context, email, username, password string, fields UserFields) (*models.User, error)
	VerifyAdmin(ctx context.Context, username, password string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	AdminUpdate(ctx context.Context, username string, fields UserFields) (*models.User, error)
	UpdateMe(ctx context.Context, actor *models.User, fields UserFields) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	users         repository.UserRepository
	reviews       repository.ReviewRepository
	titles        repository.TitleRepository
	tx            repository.TxManager
	confirmations *ConfirmationSender
	logger        *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	titles repository.TitleRepository,
	tx repository.TxManager,
	confirmations *ConfirmationSender,
	logger *slog.Logger,
) UserService {
	return &userService{
		users:         users,
		reviews:       reviews,
		titles:        titles,
		tx:            tx,
		confirmations: confirmations,
		logger:        logger,
	}
}

// CreateUser stores a new inactive user with role "user" unless fields say otherwise.
func (s *userService) CreateUser(ctx context.Context, email string, fields UserFields) (*models.User, error) {
	fields.Email = &email
	user := &models.User{Role: models.RoleUser}

	if _, err := s.apply(ctx, user, fields); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateUserError(err)
	}
	return user, nil
}

// CreateAdmin stores an active superuser. Explicitly passing
// is_superuser=false or is_staff=false is rejected.
func (s *userService) CreateAdmin(ctx context.Context, email, username, password string, fields UserFields) (*models.User, error) {
	if fields.IsSuperuser != nil && !*fields.IsSuperuser {
		return nil, apperr.Validation("is_superuser", "superuser must have is_superuser=true")
	}
	if fields.IsStaff != nil && !*fields.IsStaff {
		return nil, apperr.Validation("is_staff", "superuser must have is_staff=true")
	}

	errs := map[string]string{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "this field is required"
	}
	if password == "" {
		errs["password"] = "this field is required"
	}
	if len(errs) > 0 {
		return nil, apperr.ValidationFields(errs)
	}

	yes, role := true, models.RoleAdmin
	fields.Email = &email
	fields.Username = &username
	fields.Password = &password
	fields.Role = &role
	fields.IsStaff = &yes
	fields.IsSuperuser = &yes

	user := &models.User{IsActive: true}
	if _, err := s.apply(ctx, user, fields); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateUserError(err)
	}
	s.logger.Info("superuser created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// VerifyAdmin checks an administrator's password. Unknown users and wrong
// passwords get the same error.
func (s *userService) VerifyAdmin(ctx context.Context, username, password string) (*models.User, error) {
	invalid := apperr.Authentication("invalid username or password")

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrNoPassword) {
			return nil, apperr.Authentication("account has no usable password")
		}
		return nil, invalid
	}
	if !permission.IsAdmin(user) {
		return nil, apperr.Permission("user is not an administrator")
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, search string) ([]models.User, error) {
	return s.users.List(ctx, strings.TrimSpace(search))
}

func (s *userService) AdminUpdate(ctx context.Context, username string, fields UserFields) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.apply(ctx, user, fields); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, duplicateUserError(err)
	}
	return user, nil
}

// UpdateMe edits the caller's own profile. Role changes from non-admins are
// dropped; a new email deactivates the account until it is confirmed again.
func (s *userService) UpdateMe(ctx context.Context, actor *models.User, fields UserFields) (*models.User, error) {
	if actor == nil {
		return nil, apperr.Authentication("authentication credentials were not provided")
	}
	if fields.Role != nil && *fields.Role != actor.Role && !permission.IsAdmin(actor) {
		s.logger.Debug("ignoring role change from non-admin", "user_id", actor.ID, "role", *fields.Role)
		fields.Role = nil
	}
	fields.Password = nil
	fields.IsStaff = nil
	fields.IsSuperuser = nil

	user := *actor
	emailChanged, err := s.apply(ctx, &user, fields)
	if err != nil {
		return nil, err
	}
	if emailChanged {
		user.IsActive = false
	}
	if err := s.users.Update(ctx, &user); err != nil {
		return nil, duplicateUserError(err)
	}

	if emailChanged {
		s.logger.Info("email changed, confirmation required", "user_id", user.ID)
		s.confirmations.Send(ctx, &user)
	}
	return &user, nil
}

// Delete removes the user with their reviews and comments, then recomputes
// the rating of every title they had reviewed.
func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		titleIDs, err := s.reviews.TitleIDsByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, id := range titleIDs {
			if _, err := s.titles.LockByID(ctx, id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lock title %d: %w", id, err)
			}
		}

		if err := s.users.Delete(ctx, user.ID); err != nil {
			return notFound(err, "user not found")
		}

		for _, id := range titleIDs {
			if err := s.titles.RecomputeRating(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// apply validates fields and copies them onto user. It reports whether the
// email changed.
func (s *userService) apply(ctx context.Context, user *models.User, fields UserFields) (bool, error) {
	errs := map[string]string{}
	emailChanged := false

	if fields.Email != nil {
		email := NormalizeEmail(*fields.Email)
		switch {
		case email == "":
			errs["email"] = "this field is required"
		case tooLong(email, maxEmailLength):
			errs["email"] = maxLengthMessage(maxEmailLength)
		case !validEmail(email):
			errs["email"] = "enter a valid email address"
		case email != user.Email:
			taken, err := s.emailTaken(ctx, email, user.ID)
			if err != nil {
				return false, err
			}
			if taken {
				errs["email"] = "user with this email already exists"
			} else {
				user.Email = email
				emailChanged = user.ID != ""
			}
		}
	}

	if fields.Username != nil {
		username := strings.TrimSpace(*fields.Username)
		switch {
		case username == "":
			user.Username = nil
		case tooLong(username, maxUsernameLength):
			errs["username"] = maxLengthMessage(maxUsernameLength)
		case !models.ValidSlug(username):
			errs["username"] = "enter a valid username consisting of letters, numbers, underscores or hyphens"
		case username == reservedUsername:
			errs["username"] = fmt.Sprintf("username %q is reserved", reservedUsername)
		case user.Username == nil || *user.Username != username:
			taken, err := s.usernameTaken(ctx, username, user.ID)
			if err != nil {
				return false, err
			}
			if taken {
				errs["username"] = "user with this username already exists"
			} else {
				user.Username = &username
			}
		}
	}

	setText := func(field string, value *string, max int, target *string) {
		if value == nil {
			return
		}
		if tooLong(*value, max) {
			errs[field] = maxLengthMessage(max)
			return
		}
		*target = *value
	}
	setText("first_name", fields.FirstName, maxNameLength, &user.FirstName)
	setText("last_name", fields.LastName, maxNameLength, &user.LastName)
	setText("bio", fields.Bio, maxBioLength, &user.Bio)

	if fields.Role != nil {
		if !slices.Contains(models.Roles, *fields.Role) {
			errs["role"] = fmt.Sprintf("%q is not a valid choice", *fields.Role)
		} else {
			user.Role = *fields.Role
		}
	}

	if len(errs) > 0 {
		return false, apperr.ValidationFields(errs)
	}

	if fields.Password != nil && *fields.Password != "" {
		hash, err := auth.HashPassword(*fields.Password)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = &hash
	}
	if fields.IsStaff != nil {
		user.IsStaff = *fields.IsStaff
	}
	if fields.IsSuperuser != nil {
		user.IsSuperuser = *fields.IsSuperuser
	}
	return emailChanged, nil
}

func (s *userService) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != exceptID, nil
}

func (s *userService) usernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != exceptID, nil
}

// duplicateUserError maps a unique violation that slipped past the
// pre-checks onto the offending field.
func duplicateUserError(err error) error {
	constraint, ok := repository.DuplicateConstraint(err)
	if !ok {
		return err
	}
	if strings.Contains(constraint, "username") {
		return apperr.Validation("username", "user with this username already exists").Wrap(err)
	}
	return apperr.Validation("email", "user with this email already exists").Wrap(err)
}
