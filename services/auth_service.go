package services

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	ClaimUserID = "user_id"
	ClaimRole   = "role"
)

type AuthService struct {
	store  *repository.Store
	secret []byte
	ttl    time.Duration
	cost   int
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(store *repository.Store, secret string, ttl time.Duration, cost int, log *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   cost,
		log:    log.Named("auth"),
		now:    time.Now,
	}
}

// RegisterInput carries the account and the initial profile. Student and
// tutor specific fields are ignored for the other role.
type RegisterInput struct {
	Email         string
	Password      string
	Role          models.Role
	Name          string
	ContactNumber string

	PreferredSubjects models.SubjectList
	BudgetMin         *float64
	BudgetMax         *float64

	SubjectsTaught    models.SubjectList
	ExperienceYears   int
	DefaultHourlyRate float64
	Availability      models.OpaqueJSON
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// Register creates the user and its role profile in one transaction.
// Administrators are promoted out of band and cannot self-register.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch in.Role {
	case models.RoleStudent, models.RoleTutor:
	case models.RoleAdmin:
		return nil, apperr.Validation("admin accounts cannot be self-registered")
	default:
		return nil, apperr.Validation("role must be STUDENT or TUTOR")
	}

	if err := validateInitialProfile(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{Email: email, PasswordHash: string(hash), Role: in.Role}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("email already registered")
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("email already registered")
			}
			return err
		}

		if in.Role == models.RoleStudent {
			user.Student = &models.StudentProfile{
				UserID:            user.ID,
				Name:              in.Name,
				ContactNumber:     in.ContactNumber,
				PreferredSubjects: in.PreferredSubjects,
				BudgetMin:         in.BudgetMin,
				BudgetMax:         in.BudgetMax,
			}
			return tx.Profiles().CreateStudent(ctx, user.Student)
		}
		user.Tutor = &models.TutorProfile{
			UserID:            user.ID,
			Name:              in.Name,
			ContactNumber:     in.ContactNumber,
			SubjectsTaught:    in.SubjectsTaught,
			ExperienceYears:   in.ExperienceYears,
			DefaultHourlyRate: in.DefaultHourlyRate,
			Availability:      in.Availability,
		}
		return tx.Profiles().CreateTutor(ctx, user.Tutor)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Stringer("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func validateInitialProfile(in RegisterInput) error {
	switch in.Role {
	case models.RoleStudent:
		if (in.BudgetMin != nil && *in.BudgetMin < 0) || (in.BudgetMax != nil && *in.BudgetMax < 0) {
			return apperr.Validation("budget cannot be negative")
		}
		if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
			return apperr.Validation("budget minimum cannot exceed budget maximum")
		}
	case models.RoleTutor:
		if in.ExperienceYears < 0 {
			return apperr.Validation("experience years cannot be negative")
		}
		if in.DefaultHourlyRate < 0 {
			return apperr.Validation("hourly rate cannot be negative")
		}
	}
	return nil
}

// Login checks the credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		ClaimUserID: user.ID.String(),
		ClaimRole:   string(user.Role),
		"exp":       s.now().Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// ParseToken verifies a token outside the HTTP middleware, e.g. for the
// websocket handshake.
func (s *AuthService) ParseToken(raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return IdentityFromClaims(claims)
}

func IdentityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	rawID, _ := claims[ClaimUserID].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	rawRole, _ := claims[ClaimRole].(string)
	role := models.Role(rawRole)
	if !role.Valid() {
		return nil, apperr.Unauthorized("invalid token role")
	}
	return &Identity{UserID: id, Role: role}, nil
}
