package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string, vesselID *uint) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	ListByVessel(ctx context.Context, vesselID uint) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type vesselLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Vessel, error)
}

// CrewInput carries the writable fields of a vessel account.
type CrewInput struct {
	Username string
	FullName string
	Role     string
	Password string
	VesselID *uint
}

// UserService handles authentication and vessel crew management.
type UserService struct {
	store     userStore
	vessels   vesselLookup
	jwtSecret string
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(store userStore, vessels vesselLookup, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		store:     store,
		vessels:   vessels,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Login authenticates a vessel account or, with a nil vessel id, a
// cross-vessel administrator. Wrong vessel, wrong password and unknown
// username all fail identically.
func (s *UserService) Login(ctx context.Context, username, password string, vesselID *uint) (string, *models.User, error) {
	failed := domain.NewError(domain.KindUnauthorized, "invalid credentials")

	user, err := s.store.GetByUsername(ctx, username, vesselID)
	if err != nil {
		return "", nil, failed
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, failed
	}

	if user.VesselID != nil {
		vessel, err := s.vessels.GetByID(ctx, *user.VesselID)
		if err != nil || !vessel.IsActive {
			return "", nil, failed
		}
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID, auth.Role(user.Role), s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("username", username).Msg("user logged in")
	return token, user, nil
}

// ResolveScope turns a token subject into a request scope, re-reading the
// account so deactivation takes effect immediately rather than at token
// expiry.
func (s *UserService) ResolveScope(ctx context.Context, userID uuid.UUID) (auth.Scope, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return auth.Scope{}, domain.NewError(domain.KindUnauthorized, "account not found")
	}
	if !user.IsActive {
		return auth.Scope{}, domain.NewError(domain.KindUnauthorized, "account is deactivated")
	}

	role := auth.Role(user.Role)
	if !role.Valid() {
		return auth.Scope{}, domain.NewError(domain.KindUnauthorized, "account has an unknown role")
	}

	return auth.Scope{UserID: user.ID, Role: role, VesselID: user.VesselID}, nil
}

// ListCrew returns the accounts of the caller's vessel.
func (s *UserService) ListCrew(ctx context.Context, scope auth.Scope, explicitVessel *uint) ([]models.User, error) {
	if !auth.Can(scope, auth.CapManageCrew) {
		return nil, domain.ErrUnauthorized("manage crew")
	}
	vesselID, err := resolveVessel(scope, explicitVessel)
	if err != nil {
		return nil, err
	}
	return s.store.ListByVessel(ctx, vesselID)
}

func validCrewRole(role string) bool {
	// super_admin accounts are created out of band, never through crew
	// management.
	return role == string(auth.RoleCrew) || role == string(auth.RoleCaptain)
}

// CreateCrew adds a crew or captain account to the caller's vessel.
func (s *UserService) CreateCrew(ctx context.Context, scope auth.Scope, input CrewInput) (*models.User, error) {
	if !auth.Can(scope, auth.CapManageCrew) {
		return nil, domain.ErrUnauthorized("manage crew")
	}

	vesselID, err := resolveVessel(scope, input.VesselID)
	if err != nil {
		return nil, err
	}
	if input.Username == "" || input.Password == "" {
		return nil, domain.NewError(domain.KindValidation, "username and password are required")
	}
	if !validCrewRole(input.Role) {
		return nil, domain.NewError(domain.KindValidation, "role must be crew or captain")
	}

	taken, err := s.store.UsernameTaken(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewError(domain.KindValidation, "username is already in use")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     input.Username,
		FullName:     input.FullName,
		Role:         input.Role,
		PasswordHash: hash,
		VesselID:     &vesselID,
		IsActive:     true,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().
		Str("username", user.Username).
		Str("role", user.Role).
		Uint("vessel_id", vesselID).
		Msg("crew account created")
	return user, nil
}

// getCrew loads a vessel account within the caller's scope. Accounts of other
// vessels are reported as missing.
func (s *UserService) getCrew(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.VesselID == nil || !scope.SameVessel(*user.VesselID) {
		return nil, domain.ErrNotFound("user")
	}
	return user, nil
}

// UpdateCrew changes an account's full name and role.
func (s *UserService) UpdateCrew(ctx context.Context, scope auth.Scope, id uuid.UUID, fullName, role string) (*models.User, error) {
	if !auth.Can(scope, auth.CapManageCrew) {
		return nil, domain.ErrUnauthorized("manage crew")
	}
	if !validCrewRole(role) {
		return nil, domain.NewError(domain.KindValidation, "role must be crew or captain")
	}

	user, err := s.getCrew(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Role = role
	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetCrewActive toggles an account. Callers cannot deactivate themselves.
func (s *UserService) SetCrewActive(ctx context.Context, scope auth.Scope, id uuid.UUID, active bool) error {
	if !auth.Can(scope, auth.CapManageCrew) {
		return domain.ErrUnauthorized("manage crew")
	}
	if !active && id == scope.UserID {
		return domain.NewError(domain.KindValidation, "cannot deactivate your own account")
	}

	user, err := s.getCrew(ctx, scope, id)
	if err != nil {
		return err
	}

	user.IsActive = active
	if err := s.store.Update(ctx, user); err != nil {
		return err
	}

	log.Info().Str("username", user.Username).Bool("active", active).Msg("crew account toggled")
	return nil
}

// ChangePassword sets a new password for the caller's own account, or for a
// crew member when the caller manages the vessel.
func (s *UserService) ChangePassword(ctx context.Context, scope auth.Scope, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.NewError(domain.KindValidation, "password must be at least 8 characters")
	}

	var user *models.User
	var err error
	if id == scope.UserID {
		user, err = s.store.GetByID(ctx, id)
	} else {
		if !auth.Can(scope, auth.CapManageCrew) {
			return domain.ErrUnauthorized("manage crew")
		}
		user, err = s.getCrew(ctx, scope, id)
	}
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.store.Update(ctx, user)
}
