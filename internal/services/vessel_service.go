package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/cache"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

const vesselCacheTTL = 5 * time.Minute

type vesselStore interface {
	GetByID(ctx context.Context, id uint) (*models.Vessel, error)
	List(ctx context.Context) ([]models.Vessel, error)
	ListActive(ctx context.Context) ([]models.Vessel, error)
	ExistsByIMO(ctx context.Context, imo string) (bool, error)
	Register(ctx context.Context, vessel *models.Vessel, captain *models.User) error
	Update(ctx context.Context, vessel *models.Vessel) error
	SetActive(ctx context.Context, id uint, active bool) error
}

type crewDirectory interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CountByVessel(ctx context.Context, vesselID uint) (int64, error)
}

type requisitionCounter interface {
	CountByVessel(ctx context.Context, vesselID uint) (int64, error)
}

type itemCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// VesselInput carries the writable fields of a vessel.
type VesselInput struct {
	Name       string
	IMONumber  *string
	Flag       *string
	VesselType *string
	Email      *string
}

// RegistrationInput registers a vessel together with its first captain
// account. A vessel is never created without one.
type RegistrationInput struct {
	Vessel          VesselInput
	CaptainUsername string
	CaptainFullName string
	CaptainPassword string
}

// VesselService manages the vessel directory.
type VesselService struct {
	store        vesselStore
	users        crewDirectory
	requisitions requisitionCounter
	items        itemCounter
	cache        *cache.RedisCache
}

// NewVesselService creates a new vessel service
func NewVesselService(store vesselStore, users crewDirectory, requisitions requisitionCounter, items itemCounter, redisCache *cache.RedisCache) *VesselService {
	return &VesselService{
		store:        store,
		users:        users,
		requisitions: requisitions,
		items:        items,
		cache:        redisCache,
	}
}

// ListActive returns active vessels. This backs the public login dropdown and
// needs no scope.
func (s *VesselService) ListActive(ctx context.Context) ([]models.Vessel, error) {
	return s.store.ListActive(ctx)
}

// List returns all vessels, including deactivated ones.
func (s *VesselService) List(ctx context.Context, scope auth.Scope) ([]models.Vessel, error) {
	if !auth.Can(scope, auth.CapManageVessels) {
		return nil, domain.ErrUnauthorized("manage vessels")
	}
	return s.store.List(ctx)
}

// Get returns a vessel the caller is scoped to.
func (s *VesselService) Get(ctx context.Context, scope auth.Scope, id uint) (*models.Vessel, error) {
	if !scope.SameVessel(id) {
		return nil, domain.ErrNotFound("vessel")
	}

	key := cache.VesselCacheKey(id)
	var cached models.Vessel
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	vessel, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, vessel, vesselCacheTTL); err != nil {
		log.Debug().Err(err).Uint("vessel_id", id).Msg("vessel cache write skipped")
	}
	return vessel, nil
}

// Register creates a vessel and its initial captain atomically.
func (s *VesselService) Register(ctx context.Context, scope auth.Scope, input RegistrationInput) (*models.Vessel, error) {
	if !auth.Can(scope, auth.CapManageVessels) {
		return nil, domain.ErrUnauthorized("register vessels")
	}
	if input.Vessel.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "vessel name is required")
	}
	if input.CaptainUsername == "" || input.CaptainPassword == "" {
		return nil, domain.NewError(domain.KindValidation, "captain username and password are required")
	}

	if input.Vessel.IMONumber != nil {
		exists, err := s.store.ExistsByIMO(ctx, *input.Vessel.IMONumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewError(domain.KindValidation, "a vessel with this IMO number already exists")
		}
	}

	taken, err := s.users.UsernameTaken(ctx, input.CaptainUsername)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewError(domain.KindValidation, "captain username is already in use")
	}

	hash, err := auth.HashPassword(input.CaptainPassword)
	if err != nil {
		return nil, err
	}

	vessel := &models.Vessel{
		Name:       input.Vessel.Name,
		IMONumber:  input.Vessel.IMONumber,
		Flag:       input.Vessel.Flag,
		VesselType: input.Vessel.VesselType,
		Email:      input.Vessel.Email,
		IsActive:   true,
	}
	captain := &models.User{
		ID:           uuid.New(),
		Username:     input.CaptainUsername,
		FullName:     input.CaptainFullName,
		Role:         string(auth.RoleCaptain),
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.store.Register(ctx, vessel, captain); err != nil {
		return nil, err
	}

	log.Info().
		Uint("vessel_id", vessel.ID).
		Str("name", vessel.Name).
		Str("captain", captain.Username).
		Msg("vessel registered")
	return vessel, nil
}

// Update changes a vessel's header fields. A captain may update their own
// vessel; super_admin may update any.
func (s *VesselService) Update(ctx context.Context, scope auth.Scope, id uint, input VesselInput) (*models.Vessel, error) {
	if !auth.Can(scope, auth.CapManageVessels) {
		if !scope.SameVessel(id) {
			return nil, domain.ErrNotFound("vessel")
		}
		if scope.Role != auth.RoleCaptain {
			return nil, domain.ErrUnauthorized("update the vessel")
		}
	}
	if input.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "vessel name is required")
	}

	vessel, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.IMONumber != nil && (vessel.IMONumber == nil || *vessel.IMONumber != *input.IMONumber) {
		exists, err := s.store.ExistsByIMO(ctx, *input.IMONumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewError(domain.KindValidation, "a vessel with this IMO number already exists")
		}
	}

	vessel.Name = input.Name
	vessel.IMONumber = input.IMONumber
	vessel.Flag = input.Flag
	vessel.VesselType = input.VesselType
	vessel.Email = input.Email

	if err := s.store.Update(ctx, vessel); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return vessel, nil
}

func (s *VesselService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, cache.VesselCacheKey(id)); err != nil {
		log.Debug().Err(err).Uint("vessel_id", id).Msg("vessel cache invalidation skipped")
	}
}

// VesselStats summarizes a vessel's activity for the dashboard.
type VesselStats struct {
	Users        int64 `json:"users"`
	Requisitions int64 `json:"requisitions"`
	ActiveItems  int64 `json:"active_items"`
}

// Stats returns account and requisition counts for a vessel the caller is
// scoped to, plus the size of the active catalogue.
func (s *VesselService) Stats(ctx context.Context, scope auth.Scope, id uint) (*VesselStats, error) {
	if !scope.SameVessel(id) {
		return nil, domain.ErrNotFound("vessel")
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	users, err := s.users.CountByVessel(ctx, id)
	if err != nil {
		return nil, err
	}
	requisitions, err := s.requisitions.CountByVessel(ctx, id)
	if err != nil {
		return nil, err
	}
	activeItems, err := s.items.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	return &VesselStats{
		Users:        users,
		Requisitions: requisitions,
		ActiveItems:  activeItems,
	}, nil
}

// SetActive soft-toggles a vessel. A deactivated vessel keeps its data but
// its accounts can no longer log in.
func (s *VesselService) SetActive(ctx context.Context, scope auth.Scope, id uint, active bool) error {
	if !auth.Can(scope, auth.CapManageVessels) {
		return domain.ErrUnauthorized("manage vessels")
	}

	if err := s.store.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	log.Info().Uint("vessel_id", id).Bool("active", active).Msg("vessel toggled")
	return nil
}
