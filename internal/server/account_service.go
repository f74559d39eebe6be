package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quill/internal/api"
	"quill/internal/auth"
	"quill/internal/models"
	"quill/internal/store"
)

const contactThanks = "Thank you for your message! We will contact with you soon."

// AccountService owns users, profiles, the company record and contact messages.
type AccountService struct {
	store  store.AccountStore
	media  *MediaService
	logger *slog.Logger
	now    func() time.Time
}

func NewAccountService(accountStore store.AccountStore, mediaService *MediaService, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		store:  accountStore,
		media:  mediaService,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a member account with its profile.
func (a *AccountService) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	phone, err := normalizeOptionalPhone(req.Phone)
	if err != nil {
		return nil, err
	}

	user, err := a.createUser(ctx, req.Username, req.Password, req.Email, req.FirstName, req.LastName, models.RoleMember)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.Address)
	if phone == "" && address == "" {
		return user, nil
	}
	profile, err := a.store.GetProfileByUserID(ctx, user.ID)
	if err == nil && profile != nil {
		profile.Phone = phone
		profile.Address = address
		profile.UpdatedAt = a.now()
		_, err = a.store.UpdateProfile(ctx, profile)
	}
	if err != nil {
		if _, rollbackErr := a.store.DeleteUser(ctx, user.Username, a.now()); rollbackErr != nil {
			a.logger.Error("registration rollback failed", "username", user.Username, "error", rollbackErr)
		}
		return nil, accountWriteError(err, models.EntityUser)
	}
	return user, nil
}

func (a *AccountService) CreateUser(ctx context.Context, req api.AdminUserCreateRequest) (*models.User, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}
	return a.createUser(ctx, req.Username, req.Password, req.Email, req.FirstName, req.LastName, role)
}

func (a *AccountService) createUser(ctx context.Context, rawUsername, password, email, firstName, lastName string, role models.Role) (*models.User, error) {
	username, err := normalizeUsername(rawUsername)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, badRequestCode(err, ErrCodeInvalidPassword)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError(err)
	}

	now := a.now()
	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, accountWriteError(err, models.EntityUser)
	}
	return user, nil
}

func (a *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return users, nil
}

func (a *AccountService) UpdateUser(ctx context.Context, username string, req api.AdminUserUpdateRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := a.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	wasAdmin := user.Role == models.RoleAdmin && !user.Disabled

	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		if user.Role, err = normalizeRole(*req.Role); err != nil {
			return nil, err
		}
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}
	if wasAdmin && (user.Disabled || user.Role != models.RoleAdmin) {
		if err := a.ensureOtherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			return nil, badRequestCode(err, ErrCodeInvalidPassword)
		}
		if user.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			return nil, internalError(err)
		}
	}
	user.UpdatedAt = a.now()

	if err := a.store.UpdateUser(ctx, user); err != nil {
		return nil, accountWriteError(err, models.EntityUser)
	}
	return user, nil
}

// DeleteUser removes a user and purges the released avatar. Records the user
// created or updated keep their audit rows with a null actor.
func (a *AccountService) DeleteUser(ctx context.Context, username string) (api.DeleteResponse, error) {
	user, err := a.lookupUser(ctx, username)
	if err != nil {
		return api.DeleteResponse{}, err
	}
	if user.Role == models.RoleAdmin && !user.Disabled {
		if err := a.ensureOtherAdmin(ctx); err != nil {
			return api.DeleteResponse{}, err
		}
	}
	released, err := a.store.DeleteUser(ctx, user.Username, a.now())
	if err != nil {
		return api.DeleteResponse{}, accountWriteError(err, models.EntityUser)
	}
	return api.DeleteResponse{ID: user.ID, Deleted: true, PurgedFiles: a.media.Purge(ctx, released)}, nil
}

// ensureOtherAdmin refuses changes that would leave no enabled admin account.
func (a *AccountService) ensureOtherAdmin(ctx context.Context) error {
	admins, err := a.store.CountEnabledUsers(ctx, models.RoleAdmin)
	if err != nil {
		return storeFailure(err)
	}
	if admins <= 1 {
		return conflictCode(fmt.Errorf("the last enabled admin must stay an enabled admin"), ErrCodeConflict)
	}
	return nil
}

func (a *AccountService) lookupUser(ctx context.Context, username string) (*models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound)
	}
	return user, nil
}

func (a *AccountService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := a.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if profile == nil {
		return nil, notFoundCode(fmt.Errorf("profile not found"), ErrCodeRecordNotFound)
	}
	return profile, nil
}

// UpdateProfile patches the caller's profile. Replacing the avatar purges the
// previous file after the row is saved.
func (a *AccountService) UpdateProfile(ctx context.Context, userID string, req api.ProfileUpdateRequest) (*models.Profile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	profile, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		profile.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Phone != nil {
		if profile.Phone, err = normalizeOptionalPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		profile.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		profile.Address = strings.TrimSpace(*req.Address)
	}
	profile.UpdatedAt = a.now()

	released, err := a.store.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, accountWriteError(err, models.EntityProfile)
	}
	a.media.Purge(ctx, released)
	return profile, nil
}

func (a *AccountService) CreateCompany(ctx context.Context, req api.CompanyRequest) (*models.Company, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, badRequestCode(fmt.Errorf("name is required"), ErrCodeMissingRequired)
	}
	company := &models.Company{}
	if err := applyCompany(company, req); err != nil {
		return nil, err
	}
	now := a.now()
	company.CreatedAt = now
	company.UpdatedAt = now
	if err := a.store.CreateCompany(ctx, company); err != nil {
		return nil, accountWriteError(err, models.EntityCompany)
	}
	return company, nil
}

func (a *AccountService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := a.store.ListCompanies(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return companies, nil
}

func (a *AccountService) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	company, err := a.store.GetCompany(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if company == nil {
		return nil, notFoundCode(fmt.Errorf("company not found"), ErrCodeRecordNotFound)
	}
	return company, nil
}

func (a *AccountService) UpdateCompany(ctx context.Context, id string, req api.CompanyRequest) (*models.Company, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	company, err := a.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCompany(company, req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(company.Name) == "" {
		return nil, badRequestCode(fmt.Errorf("name is required"), ErrCodeMissingRequired)
	}
	company.UpdatedAt = a.now()
	released, err := a.store.UpdateCompany(ctx, company)
	if err != nil {
		return nil, accountWriteError(err, models.EntityCompany)
	}
	a.media.Purge(ctx, released)
	return company, nil
}

func (a *AccountService) DeleteCompany(ctx context.Context, id string) (api.DeleteResponse, error) {
	released, err := a.store.DeleteCompany(ctx, id, a.now())
	if err != nil {
		return api.DeleteResponse{}, accountWriteError(err, models.EntityCompany)
	}
	return api.DeleteResponse{ID: id, Deleted: true, PurgedFiles: a.media.Purge(ctx, released)}, nil
}

func applyCompany(company *models.Company, req api.CompanyRequest) error {
	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Logo != nil {
		company.Logo = strings.TrimSpace(*req.Logo)
	}
	if req.Phone != nil {
		phone, err := normalizeOptionalPhone(*req.Phone)
		if err != nil {
			return err
		}
		company.Phone = phone
	}
	if req.Email != nil {
		company.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		company.Address = strings.TrimSpace(*req.Address)
	}
	return nil
}

// SubmitContact stores a message from the public contact form.
func (a *AccountService) SubmitContact(ctx context.Context, req api.ContactRequest) (api.ContactResponse, error) {
	if err := validateRequest(req); err != nil {
		return api.ContactResponse{}, err
	}
	phone, err := normalizeOptionalPhone(req.Phone)
	if err != nil {
		return api.ContactResponse{}, err
	}
	contact := &models.Contact{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     phone,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: a.now(),
	}
	if err := a.store.CreateContact(ctx, contact); err != nil {
		return api.ContactResponse{}, storeFailure(err)
	}
	return api.ContactResponse{Contact: *contact, Message: contactThanks}, nil
}

func (a *AccountService) ListContacts(ctx context.Context, limit, offset int) ([]models.Contact, error) {
	contacts, err := a.store.ListContacts(ctx, limit, offset)
	if err != nil {
		return nil, storeFailure(err)
	}
	return contacts, nil
}

func accountWriteError(err error, entity models.Entity) error {
	if store.IsUniqueConstraint(err) {
		return conflictCode(fmt.Errorf("%s already exists with the same username, email or phone", entity.Singular()), ErrCodeDuplicate)
	}
	code := ErrCodeRecordNotFound
	if entity == models.EntityUser {
		code = ErrCodeUserNotFound
	}
	return mapStoreError(err, notFoundCode(fmt.Errorf("%s not found", entity.Singular()), code))
}
