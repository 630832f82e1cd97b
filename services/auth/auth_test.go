package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tenantdesk/models"
	"tenantdesk/services/featureflag"
	"tenantdesk/services/slack"
	"tenantdesk/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users []*models.User
	// racer is inserted by the next Create before it checks uniqueness,
	// as if a concurrent request won.
	racer *models.User
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, addr string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == addr })
}

func (m *memUsers) GetByIdpID(_ context.Context, idpID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.IdpID != "" && u.IdpID == idpID })
}

func (m *memUsers) GetByTokenHash(_ context.Context, hash string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.TokenHash != "" && u.TokenHash == hash })
}

func (m *memUsers) GetByIDs(context.Context, []string) ([]models.User, error) { return nil, nil }

func (m *memUsers) ListSlugsWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, u := range m.users {
		if strings.HasPrefix(u.Slug, prefix) {
			out = append(out, u.Slug)
		}
	}
	return out, nil
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	if m.racer != nil {
		m.users = append(m.users, m.racer)
		m.racer = nil
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Slug == user.Slug || (user.IdpID != "" && u.IdpID == user.IdpID) {
			return utils.ErrDuplicateKey
		}
	}
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			cp := *user
			m.users[i] = &cp
			return nil
		}
	}
	return utils.ErrNotFound
}

func (m *memUsers) SetTokenHash(_ context.Context, id, hash string) error {
	for _, u := range m.users {
		if u.ID == id {
			u.TokenHash = hash
			return nil
		}
	}
	return utils.ErrNotFound
}

// stubOrgs records the organization calls made during sign-in.
type stubOrgs struct {
	created  []string
	idpOrgs  map[string]*models.Organization
	access   []string
	accepted int
}

func (s *stubOrgs) CreateOrganization(_ context.Context, owner *models.User, name string) (*models.Organization, error) {
	s.created = append(s.created, name)
	return &models.Organization{ID: "org-" + name, Name: name, Slug: utils.GenerateSlug(name), OwnerID: owner.ID}, nil
}

func (s *stubOrgs) FindOrCreateForIdp(_ context.Context, owner *models.User, idpOrgID, name string) (*models.Organization, error) {
	if org, ok := s.idpOrgs[idpOrgID]; ok {
		return org, nil
	}
	org := &models.Organization{ID: "org-" + idpOrgID, Name: name, IdpOrgID: idpOrgID, OwnerID: owner.ID}
	s.idpOrgs[idpOrgID] = org
	return org, nil
}

func (s *stubOrgs) GetOrganization(context.Context, string) (*models.Organization, error) {
	return nil, utils.ErrNotFound
}

func (s *stubOrgs) ListForUser(context.Context, string) ([]models.Organization, error) { return nil, nil }

func (s *stubOrgs) ListMembers(context.Context, string) ([]models.Member, error) { return nil, nil }

func (s *stubOrgs) RequireAccess(context.Context, string, string) (*models.Organization, *models.UserOrganizationAccess, error) {
	return nil, nil, utils.NewForbiddenError("no access")
}

func (s *stubOrgs) RequireOwner(context.Context, string, string) (*models.Organization, error) {
	return nil, utils.NewForbiddenError("no access")
}

func (s *stubOrgs) EnsureAccess(_ context.Context, userID, orgID string, role models.AccessRole) error {
	s.access = append(s.access, userID+"@"+orgID+":"+string(role))
	return nil
}

func (s *stubOrgs) Invite(context.Context, *models.Organization, *models.User, models.InviteRequest) (*models.UserOrganizationInvitation, error) {
	return nil, nil
}

func (s *stubOrgs) AcceptInvitation(context.Context, *models.User, string) (*models.Organization, error) {
	return nil, nil
}

func (s *stubOrgs) AcceptPendingInvitations(context.Context, *models.User) (int, error) {
	s.accepted++
	return 0, nil
}

func (s *stubOrgs) ConnectSlack(context.Context, *models.Organization, string, string) error { return nil }

func (s *stubOrgs) DisconnectSlack(context.Context, *models.Organization) error { return nil }

func (s *stubOrgs) ListSlackChannels(context.Context, *models.Organization) ([]slack.Channel, error) {
	return nil, nil
}

func (s *stubOrgs) SetDefaultNotificationMethod(context.Context, *models.Organization, *models.DeliveryMethod) error {
	return nil
}

type stubIdP struct {
	profile *models.SSOProfile
	err     error
}

func (s *stubIdP) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (s *stubIdP) Exchange(context.Context, string) (*models.SSOProfile, error) {
	return s.profile, s.err
}

func newAuth(profile *models.SSOProfile) (*DefaultAuthService, *memUsers, *stubOrgs) {
	users := &memUsers{}
	orgs := &stubOrgs{idpOrgs: map[string]*models.Organization{}}
	return &DefaultAuthService{
		Users:         users,
		Organizations: orgs,
		IdP:           &stubIdP{profile: profile},
		Flags:         featureflag.Static{featureflag.FlagSSOLogin: true},
	}, users, orgs
}

func TestVerifyPasswordComplexity(t *testing.T) {
	assert.NoError(t, VerifyPasswordComplexity("Sup3r$ecret"))
	for _, pw := range []string{"Sh0rt!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSymbol12"} {
		assert.Error(t, VerifyPasswordComplexity(pw), pw)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users, orgs := newAuth(nil)
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.UserRegistrationRequest{Email: "Ada@Example.com", Name: "Ada Lovelace", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, "ada-lovelace", resp.Slug)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"Ada Lovelace"}, orgs.created)
	assert.Equal(t, 1, orgs.accepted)

	user, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, user.ID)
	assert.NotEqual(t, "Sup3r$ecret", users.users[0].PasswordHash)

	_, err = svc.Register(ctx, models.UserRegistrationRequest{Email: "ada@example.com", Name: "Ada", Password: "Sup3r$ecret"})
	assert.True(t, utils.HasCode(err, utils.CodeConflict))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, utils.HasCode(err, utils.CodeUnauthorized))
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "Sup3r$ecret"})
	assert.True(t, utils.HasCode(err, utils.CodeUnauthorized))

	second, err := svc.Login(ctx, models.LoginRequest{Email: " ADA@example.com", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, second.ID)
}

func TestRegisterSlugCollision(t *testing.T) {
	svc, _, _ := newAuth(nil)
	ctx := context.Background()

	a, err := svc.Register(ctx, models.UserRegistrationRequest{Email: "a@example.com", Name: "Sam", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	b, err := svc.Register(ctx, models.UserRegistrationRequest{Email: "b@example.com", Name: "Sam", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, "sam", a.Slug)
	assert.Equal(t, "sam-1", b.Slug)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuth(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.UserRegistrationRequest{Email: "bad", Name: "A", Password: "Sup3r$ecret"})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))
	_, err = svc.Register(ctx, models.UserRegistrationRequest{Email: "a@example.com", Name: " ", Password: "Sup3r$ecret"})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))
	_, err = svc.Register(ctx, models.UserRegistrationRequest{Email: "a@example.com", Name: "A", Password: "weak"})
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newAuth(nil)
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.UserRegistrationRequest{Email: "a@example.com", Name: "A", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, resp.ID))

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.True(t, utils.HasCode(err, utils.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, utils.HasCode(err, utils.CodeUnauthorized))
}

func TestSSOCallbackCreatesUserAndOrganization(t *testing.T) {
	profile := &models.SSOProfile{
		IdpID: "idp-1", Email: "Grace@Navy.mil", FirstName: "Grace", LastName: "Hopper",
		OrganizationID: "idp-org-1", OrganizationName: "Navy",
	}
	svc, users, orgs := newAuth(profile)

	resp, err := svc.SSOCallback(context.Background(), "code")
	require.NoError(t, err)
	require.Len(t, users.users, 1)
	assert.Equal(t, "grace@navy.mil", users.users[0].Email)
	assert.Equal(t, "idp-1", users.users[0].IdpID)
	assert.Equal(t, "grace-hopper", resp.Slug)
	require.NotNil(t, resp.Organization)
	assert.Equal(t, "org-idp-org-1", resp.Organization.ID)
	assert.Equal(t, []string{users.users[0].ID + "@org-idp-org-1:MEMBER"}, orgs.access)
	assert.Empty(t, orgs.created)

	again, err := svc.SSOCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
	assert.Len(t, users.users, 1)
}

func TestSSOCallbackLinksExistingEmail(t *testing.T) {
	svc, users, orgs := newAuth(&models.SSOProfile{IdpID: "idp-2", Email: "ada@example.com", FirstName: "Ada"})
	users.users = append(users.users, &models.User{ID: "u-1", Email: "ada@example.com", Name: "Ada", Slug: "ada"})

	resp, err := svc.SSOCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.ID)
	assert.Equal(t, "idp-2", users.users[0].IdpID)
	assert.Nil(t, resp.Organization)
	assert.Empty(t, orgs.created)
}

func TestSSOCallbackNewUserWithoutOrganizationGetsPersonalOne(t *testing.T) {
	svc, _, orgs := newAuth(&models.SSOProfile{IdpID: "idp-3", Email: "lin@example.com", FirstName: "Lin"})

	resp, err := svc.SSOCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lin"}, orgs.created)
	assert.Equal(t, "lin", resp.Organization.Slug)
}

func TestSSOCallbackDuplicateOnCreateFallsBackToEmail(t *testing.T) {
	svc, users, _ := newAuth(&models.SSOProfile{IdpID: "idp-4", Email: "kim@example.com", FirstName: "Kim"})
	users.racer = &models.User{ID: "u-race", Email: "kim@example.com", Name: "Kim", Slug: "kim-x"}

	resp, err := svc.SSOCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "u-race", resp.ID)
	assert.Equal(t, "idp-4", users.users[0].IdpID)
}

func TestSSODisabledOrFailing(t *testing.T) {
	svc, _, _ := newAuth(&models.SSOProfile{IdpID: "x", Email: "x@example.com"})
	ctx := context.Background()

	url, err := svc.SSOLoginURL(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/authorize?state=s1", url)

	_, err = svc.SSOCallback(ctx, "")
	assert.True(t, utils.HasCode(err, utils.CodeInvalid))

	svc.IdP = &stubIdP{err: errors.New("invalid_grant")}
	_, err = svc.SSOCallback(ctx, "code")
	assert.True(t, utils.HasCode(err, utils.CodeUnauthorized))

	svc.Flags = featureflag.Static{}
	_, err = svc.SSOCallback(ctx, "code")
	assert.True(t, utils.HasCode(err, utils.CodeForbidden))
	_, err = svc.SSOLoginURL(ctx, "s1")
	assert.True(t, utils.HasCode(err, utils.CodeForbidden))
}
