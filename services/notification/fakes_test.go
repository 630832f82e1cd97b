package notification

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tenantdesk/models"
	"tenantdesk/services/email"
	"tenantdesk/services/slack"
	"tenantdesk/utils"
)

type fakeNotifications struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
	deliveries    map[string]*models.NotificationDelivery
	order         []string
	createErr     error
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{
		notifications: map[string]*models.Notification{},
		deliveries:    map[string]*models.NotificationDelivery{},
	}
}

func (f *fakeNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *n
	cp.Deliveries = f.deliveriesOf(id)
	return &cp, nil
}

func (f *fakeNotifications) GetByIdempotencyKey(_ context.Context, orgID, key string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.OrganizationID == orgID && n.IdempotencyKey == key {
			cp := *n
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *n
	cp.Deliveries = nil
	f.notifications[n.ID] = &cp
	for i := range n.Deliveries {
		d := n.Deliveries[i]
		f.deliveries[d.ID] = &d
		f.order = append(f.order, d.ID)
	}
	return nil
}

func (f *fakeNotifications) CreateDelivery(_ context.Context, d *models.NotificationDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.deliveries[d.ID] = &cp
	f.order = append(f.order, d.ID)
	return nil
}

func (f *fakeNotifications) CompleteDelivery(_ context.Context, id string, status models.DeliveryStatus, errMsg, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[id]
	if !ok || d.Status != models.DeliveryPending {
		return utils.ErrNotFound
	}
	d.Status = status
	d.Error = errMsg
	if userID != "" {
		d.UserID = userID
	}
	return nil
}

func (f *fakeNotifications) FailPendingDeliveries(_ context.Context, notificationID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deliveries {
		if d.NotificationID == notificationID && d.Status == models.DeliveryPending {
			d.Status = models.DeliveryFailed
			d.Error = errMsg
		}
	}
	return nil
}

func (f *fakeNotifications) deliveriesOf(notificationID string) []models.NotificationDelivery {
	var out []models.NotificationDelivery
	for _, id := range f.order {
		if d := f.deliveries[id]; d.NotificationID == notificationID {
			out = append(out, *d)
		}
	}
	return out
}

func (f *fakeNotifications) all() []models.NotificationDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificationDelivery
	for _, id := range f.order {
		out = append(out, *f.deliveries[id])
	}
	return out
}

func (f *fakeNotifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}

type fakeOrganizations struct {
	mu   sync.Mutex
	orgs map[string]*models.Organization
}

func (f *fakeOrganizations) GetByID(_ context.Context, id string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrganizations) GetBySlug(context.Context, string) (*models.Organization, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeOrganizations) GetByIdpOrgID(context.Context, string) (*models.Organization, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeOrganizations) GetByIDs(context.Context, []string) ([]models.Organization, error) {
	return nil, nil
}

func (f *fakeOrganizations) ListSlugsWithPrefix(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeOrganizations) Create(_ context.Context, org *models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[org.ID] = org
	return nil
}

func (f *fakeOrganizations) SetSlackToken(_ context.Context, id, token, teamName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[id].SlackAccessToken = token
	f.orgs[id].SlackTeamName = teamName
	return nil
}

func (f *fakeOrganizations) SetDefaultNotificationMethod(_ context.Context, id string, m *models.DeliveryMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[id].DefaultNotificationMethod = m
	return nil
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByIdpID(context.Context, string) (*models.User, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByTokenHash(context.Context, string) (*models.User, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeUsers) GetByIDs(context.Context, []string) ([]models.User, error) { return nil, nil }

func (f *fakeUsers) ListSlugsWithPrefix(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeUsers) Create(context.Context, *models.User) error { return nil }

func (f *fakeUsers) Update(context.Context, *models.User) error { return nil }

func (f *fakeUsers) SetTokenHash(context.Context, string, string) error { return nil }

type fakeTransactions struct {
	transactions map[string]*models.Transaction
	actions      map[string]*models.Action
}

func (f *fakeTransactions) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	if tx, ok := f.transactions[id]; ok {
		return tx, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeTransactions) CreateTransaction(context.Context, *models.Transaction) error { return nil }

func (f *fakeTransactions) GetAction(_ context.Context, id string) (*models.Action, error) {
	if a, ok := f.actions[id]; ok {
		return a, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeTransactions) CreateAction(context.Context, *models.Action) error { return nil }

type sentEmail struct {
	Destination string
	Kind        email.TemplateKind
	Data        email.TemplateData
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	fail map[string]error
}

func (f *fakeEmail) Send(_ context.Context, destination string, kind email.TemplateKind, data email.TemplateData) (*email.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[destination]; ok {
		return nil, err
	}
	f.sent = append(f.sent, sentEmail{Destination: destination, Kind: kind, Data: data})
	return &email.Receipt{MessageID: destination}, nil
}

func (f *fakeEmail) sentTo(destination string) []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEmail
	for _, s := range f.sent {
		if s.Destination == destination {
			out = append(out, s)
		}
	}
	return out
}

type slackPost struct {
	Target, Text string
}

type fakeSlack struct {
	mu       sync.Mutex
	channels []slack.Channel
	users    map[string]*slack.User
	postErr  error
	posts    []slackPost
}

func (f *fakeSlack) ListChannels(context.Context, string) ([]slack.Channel, error) {
	return f.channels, nil
}

func (f *fakeSlack) FindUserByEmail(_ context.Context, _ string, email string) (*slack.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, slack.ErrNotFound
}

func (f *fakeSlack) FindUserByHandle(_ context.Context, _ string, handle string) (*slack.User, error) {
	if u, ok := f.users[handle]; ok {
		return u, nil
	}
	return nil, slack.ErrNotFound
}

func (f *fakeSlack) PostMessage(_ context.Context, _ string, target, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posts = append(f.posts, slackPost{Target: target, Text: text})
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (f *fakeQueue) Enqueue(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, id)
	return nil
}

type fakeSignaler struct {
	mu      sync.Mutex
	signals []models.TransactionSignal
	err     error
}

func (f *fakeSignaler) SignalTransaction(_ context.Context, sig models.TransactionSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, sig)
	return f.err
}

var errSMTPDown = errors.New("smtp: 554 relay denied")
