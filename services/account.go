package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ewaste-pickup/metrics"
	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a verified account plus its new session token.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AccountService struct {
	users      UserRepository
	issuer     TokenIssuer
	notifier   Notifier
	uploader   ImageUploader
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// NewAccountService wires the account rules. notifier and uploader may be nil.
func NewAccountService(users UserRepository, issuer TokenIssuer, notifier Notifier, uploader ImageUploader, bcryptCost int, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		users:      users,
		issuer:     issuer,
		notifier:   notifier,
		uploader:   uploader,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The returned user carries no password hash.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := NormalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" {
		return nil, utils.ValidationError("Missing required fields")
	}
	if !emailPattern.MatchString(email) {
		return nil, utils.ValidationError("Please provide a valid email")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.ConflictError("Email already registered")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, utils.InternalError(err)
	}

	now := s.now()
	user, err := s.users.CreateUser(ctx, &models.User{
		FullName:  fullName,
		Email:     email,
		Password:  hash,
		Orders:    []models.Order{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	metrics.AccountsRegisteredTotal.Inc()
	s.logger.Info("account registered", zap.String("user_id", user.ID.Hex()))

	out := user.Sanitized()
	if s.notifier != nil {
		notifyAsync(s.logger, "welcome", func() error { return s.notifier.SendWelcomeEmail(out) })
	}
	return out, nil
}

// Authenticate checks credentials and returns the matching account.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.ValidationError("Missing email or password")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return nil, utils.NotFoundError("Account not found. Please register.")
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	ok, err := utils.CheckPassword(user.Password, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, utils.InternalError(err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, utils.UnauthorizedError("Invalid credentials")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user.Sanitized(), nil
}

// Login authenticates and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.issuer.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, utils.InternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateProfile writes the fields present in update. A present full name
// is trimmed and must not be blank.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, utils.ValidationError("Full name cannot be empty")
		}
		update.FullName = &name
	}

	user, err := s.users.UpdateProfile(ctx, id, update, s.now())
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateProfilePicture uploads file and stores its URL on the account.
func (s *AccountService) UpdateProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, utils.UnavailableError("Profile picture uploads are not configured", nil)
	}
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindUserByID(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(ctx, file, id.Hex())
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, utils.UnavailableError("Failed to upload image", err)
	}

	user, err := s.users.SetProfilePicture(ctx, id, url, s.now())
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, utils.NotFoundError("User not found")
	}
	return id, nil
}
