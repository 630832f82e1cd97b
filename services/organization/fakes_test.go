package organization

import (
	"context"
	"strings"
	"time"

	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/services/slack"
	"tenantdesk/utils"
)

type memOrganizations struct {
	orgs []*models.Organization
	// idpMisses makes the next lookups by IdP organization miss, as if a
	// concurrent sign-in had not committed yet.
	idpMisses int
	creates   int
}

func (m *memOrganizations) find(match func(*models.Organization) bool) (*models.Organization, error) {
	for _, o := range m.orgs {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memOrganizations) GetByID(_ context.Context, id string) (*models.Organization, error) {
	return m.find(func(o *models.Organization) bool { return o.ID == id })
}

func (m *memOrganizations) GetBySlug(_ context.Context, slug string) (*models.Organization, error) {
	return m.find(func(o *models.Organization) bool { return o.Slug == slug })
}

func (m *memOrganizations) GetByIdpOrgID(_ context.Context, idpOrgID string) (*models.Organization, error) {
	if m.idpMisses > 0 {
		m.idpMisses--
		return nil, utils.ErrNotFound
	}
	return m.find(func(o *models.Organization) bool { return o.IdpOrgID != "" && o.IdpOrgID == idpOrgID })
}

func (m *memOrganizations) GetByIDs(_ context.Context, ids []string) ([]models.Organization, error) {
	var out []models.Organization
	for _, id := range ids {
		if o, err := m.GetByID(context.Background(), id); err == nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrganizations) ListSlugsWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, o := range m.orgs {
		if strings.HasPrefix(o.Slug, prefix) {
			out = append(out, o.Slug)
		}
	}
	return out, nil
}

func (m *memOrganizations) Create(_ context.Context, org *models.Organization) error {
	m.creates++
	for _, o := range m.orgs {
		if o.Slug == org.Slug || (org.IdpOrgID != "" && o.IdpOrgID == org.IdpOrgID) {
			return utils.ErrDuplicateKey
		}
	}
	cp := *org
	m.orgs = append(m.orgs, &cp)
	return nil
}

func (m *memOrganizations) SetSlackToken(_ context.Context, id, token, team string) error {
	for _, o := range m.orgs {
		if o.ID == id {
			o.SlackAccessToken, o.SlackTeamName = token, team
			return nil
		}
	}
	return utils.ErrNotFound
}

func (m *memOrganizations) SetDefaultNotificationMethod(_ context.Context, id string, method *models.DeliveryMethod) error {
	for _, o := range m.orgs {
		if o.ID == id {
			o.DefaultNotificationMethod = method
			return nil
		}
	}
	return utils.ErrNotFound
}

type memAccess struct {
	rows []models.UserOrganizationAccess
}

func (m *memAccess) Get(_ context.Context, userID, orgID string) (*models.UserOrganizationAccess, error) {
	for i := range m.rows {
		if m.rows[i].UserID == userID && m.rows[i].OrganizationID == orgID {
			return &m.rows[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memAccess) ListByUser(_ context.Context, userID string) ([]models.UserOrganizationAccess, error) {
	var out []models.UserOrganizationAccess
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAccess) ListByOrganization(_ context.Context, orgID string) ([]models.UserOrganizationAccess, error) {
	var out []models.UserOrganizationAccess
	for _, r := range m.rows {
		if r.OrganizationID == orgID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAccess) Create(ctx context.Context, a *models.UserOrganizationAccess) error {
	if _, err := m.Get(ctx, a.UserID, a.OrganizationID); err == nil {
		return utils.ErrDuplicateKey
	}
	m.rows = append(m.rows, *a)
	return nil
}

type memInvitations struct {
	invs []*models.UserOrganizationInvitation
}

func (m *memInvitations) GetByID(_ context.Context, id string) (*models.UserOrganizationInvitation, error) {
	for _, inv := range m.invs {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memInvitations) ListPendingByEmail(_ context.Context, addr string) ([]models.UserOrganizationInvitation, error) {
	var out []models.UserOrganizationInvitation
	for _, inv := range m.invs {
		if inv.Email == addr && inv.Status == models.InvitationPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memInvitations) Create(_ context.Context, inv *models.UserOrganizationInvitation) error {
	cp := *inv
	m.invs = append(m.invs, &cp)
	return nil
}

func (m *memInvitations) MarkAccepted(_ context.Context, id string) error {
	for _, inv := range m.invs {
		if inv.ID == id {
			now := time.Now()
			inv.Status = models.InvitationAccepted
			inv.AcceptedAt = &now
			return nil
		}
	}
	return utils.ErrNotFound
}

type memUsers struct {
	users []models.User
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, addr string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == utils.NormalizeEmail(addr) {
			return &m.users[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memUsers) GetByIdpID(context.Context, string) (*models.User, error) {
	return nil, utils.ErrNotFound
}

func (m *memUsers) GetByTokenHash(context.Context, string) (*models.User, error) {
	return nil, utils.ErrNotFound
}

func (m *memUsers) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, err := m.GetByID(context.Background(), id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) ListSlugsWithPrefix(context.Context, string) ([]string, error) { return nil, nil }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) Update(context.Context, *models.User) error { return nil }

func (m *memUsers) SetTokenHash(context.Context, string, string) error { return nil }

type stubEnvironments struct {
	created []string
}

func (s *stubEnvironments) CreateEnvironment(_ context.Context, orgID string, req models.CreateEnvironmentRequest) (*models.OrganizationEnvironment, error) {
	s.created = append(s.created, orgID+"/"+req.Name)
	return &models.OrganizationEnvironment{OrganizationID: orgID, Name: req.Name, Slug: req.Name, Type: req.Type}, nil
}

func (s *stubEnvironments) ListEnvironments(context.Context, string) ([]models.OrganizationEnvironment, error) {
	return nil, nil
}

func (s *stubEnvironments) CreateDefaultEnvironments(ctx context.Context, orgID string) error {
	for _, name := range []string{"production", "development"} {
		if _, err := s.CreateEnvironment(ctx, orgID, models.CreateEnvironmentRequest{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

type recordedEmail struct {
	To   string
	Kind email.TemplateKind
	Data email.TemplateData
}

type memEmail struct {
	sent []recordedEmail
	err  error
}

func (m *memEmail) Send(_ context.Context, to string, kind email.TemplateKind, data email.TemplateData) (*email.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, recordedEmail{To: to, Kind: kind, Data: data})
	return &email.Receipt{}, nil
}

type stubSlack struct {
	channels []slack.Channel
	err      error
}

func (s *stubSlack) ListChannels(context.Context, string) ([]slack.Channel, error) {
	return s.channels, s.err
}

func (s *stubSlack) FindUserByEmail(context.Context, string, string) (*slack.User, error) {
	return nil, slack.ErrNotFound
}

func (s *stubSlack) FindUserByHandle(context.Context, string, string) (*slack.User, error) {
	return nil, slack.ErrNotFound
}

func (s *stubSlack) PostMessage(context.Context, string, string, string) error { return nil }
