package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// UserService handles admin account management. Only SUPERADMIN callers may
// touch admin accounts; the caller's role is passed explicitly rather than
// read from context so the rule is visible at the call site.
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, blacklist auth.TokenBlacklist) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
	}
}

// Create creates an account with an explicit role
func (s *UserService) Create(ctx context.Context, callerRole identity.Role, req CreateUserRequest) (*UserResponse, error) {
	role := identity.ParseRole(req.Role)
	if role == identity.RoleGuest {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if err := s.requireRoleAuthority(callerRole, role); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	user.Phone = req.Phone

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID returns a user for the admin back office
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List returns users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) (*UserListResponse, error) {
	domainFilter := s.buildFilter(filter)

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return &UserListResponse{
		Users:    ToUserResponses(users),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.PageSize,
	}, nil
}

// ChangeRole assigns a new role and invalidates the user's sessions so the
// old role stops working immediately
func (s *UserService) ChangeRole(ctx context.Context, callerRole identity.Role, userID uuid.UUID, newRole identity.Role) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRoleAuthority(callerRole, user.Role); err != nil {
		return nil, err
	}
	if err := s.requireRoleAuthority(callerRole, newRole); err != nil {
		return nil, err
	}

	if err := user.ChangeRole(newRole); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateSessions(ctx, userID)

	response := ToUserResponse(user)
	return &response, nil
}

// Block disables an account and invalidates its sessions
func (s *UserService) Block(ctx context.Context, callerRole identity.Role, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRoleAuthority(callerRole, user.Role); err != nil {
		return nil, err
	}

	if err := user.Block(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateSessions(ctx, userID)

	response := ToUserResponse(user)
	return &response, nil
}

// Unblock re-enables an account
func (s *UserService) Unblock(ctx context.Context, callerRole identity.Role, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRoleAuthority(callerRole, user.Role); err != nil {
		return nil, err
	}

	if err := user.Unblock(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// requireRoleAuthority rejects admins acting on admin or superadmin accounts
func (s *UserService) requireRoleAuthority(callerRole, targetRole identity.Role) error {
	if targetRole.CanManagePlatform() && !callerRole.CanManageAdmins() {
		return shared.ErrForbidden
	}
	return nil
}

// userInvalidationTTL must outlive the longest-lived refresh token so a
// blocked user cannot outwait the blacklist entry
const userInvalidationTTL = 30 * 24 * time.Hour

func (s *UserService) invalidateSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	_ = s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), userInvalidationTTL)
}

func (s *UserService) buildFilter(filter UserListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Role != "" {
		domainFilter.Filters["role"] = identity.ParseRole(filter.Role)
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}
