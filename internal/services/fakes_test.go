package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/events"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

func init() {
	utils.PasswordCost = 4
}

var (
	tagUpdated = pgconn.CommandTag("UPDATE 1")
	tagMissed  = pgconn.CommandTag("UPDATE 0")
)

/* ------------------------------------------------------------------
   Properties
------------------------------------------------------------------ */

type memProps struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Property

	createErr   error
	activateErr error
	listErr     error
	deleted     []uuid.UUID
	cascaded    []uuid.UUID
}

func newMemProps() *memProps { return &memProps{rows: map[uuid.UUID]*models.Property{}} }

func (m *memProps) put(p *models.Property) *models.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.RowVersion == 0 {
		p.RowVersion = 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.rows[p.ID] = &cp
	return p
}

func (m *memProps) raw(id uuid.UUID) *models.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (m *memProps) Create(_ context.Context, p *models.Property) error {
	if m.createErr != nil {
		return m.createErr
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusPendingImages
	}
	m.put(p)
	return nil
}

func (m *memProps) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	p := m.raw(id)
	if p == nil || p.Status == models.PropertyStatusDeleted {
		return nil, nil
	}
	return p, nil
}

func (m *memProps) list(keep func(*models.Property) bool) []*models.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Property
	for _, p := range m.rows {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memProps) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	return m.list(func(p *models.Property) bool {
		return p.OwnerID == ownerID && p.Status != models.PropertyStatusDeleted
	}), nil
}

func (m *memProps) ListFeatured(_ context.Context, limit int) ([]*models.Property, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := m.list(func(p *models.Property) bool { return p.Featured && p.Status == models.PropertyStatusAvailable })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memProps) ListAvailable(_ context.Context, f models.PropertyFilter, _ *repositories.PageAfter, limit int) ([]*models.Property, error) {
	out := m.list(func(p *models.Property) bool { return p.Listable() && f.Matches(p) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memProps) TextSearch(ctx context.Context, term string, f models.PropertyFilter, after *repositories.PageAfter, limit int) ([]*models.Property, error) {
	out, _ := m.ListAvailable(ctx, f, after, 1<<20)
	var hits []*models.Property
	for _, p := range out {
		if strings.Contains(strings.ToLower(p.Title+" "+p.Description+" "+p.Location), strings.ToLower(term)) {
			hits = append(hits, p)
		}
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *memProps) Activate(_ context.Context, id uuid.UUID, images []string) error {
	if m.activateErr != nil {
		return m.activateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if p.Status != models.PropertyStatusPendingImages {
		return utils.ErrNoRowsUpdated
	}
	p.Images = images
	p.Status = models.PropertyStatusAvailable
	p.RowVersion++
	return nil
}

func (m *memProps) UpdateIfVersion(_ context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[p.ID]
	if !ok || cur.RowVersion != expected || cur.Status == models.PropertyStatusDeleted {
		return tagMissed, nil
	}
	cp := *p
	cp.RowVersion = expected + 1
	m.rows[p.ID] = &cp
	return tagUpdated, nil
}

func (m *memProps) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	get := func(ctx context.Context, _ string) (*models.Property, error) { return m.GetByID(ctx, id) }
	return repositories.WithRetry(ctx, 3, id.String(), get, m.UpdateIfVersion, mutate)
}

func (m *memProps) SoftDeleteCascade(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.Status == models.PropertyStatusDeleted {
		return pgx.ErrNoRows
	}
	p.Status = models.PropertyStatusDeleted
	p.Featured = false
	m.cascaded = append(m.cascaded, id)
	return nil
}

func (m *memProps) DeletePending(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok && p.Status == models.PropertyStatusPendingImages {
		delete(m.rows, id)
		m.deleted = append(m.deleted, id)
	}
	return nil
}

func (m *memProps) ListStalePending(_ context.Context, olderThan time.Time) ([]*models.Property, error) {
	return m.list(func(p *models.Property) bool {
		return p.Status == models.PropertyStatusPendingImages && p.CreatedAt.Before(olderThan)
	}), nil
}

/* ------------------------------------------------------------------
   Identities, profiles and tokens
------------------------------------------------------------------ */

type memProfiles struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]*models.UserProfile
	getErr error
}

func newMemProfiles() *memProfiles { return &memProfiles{rows: map[uuid.UUID]*models.UserProfile{}} }

func (m *memProfiles) put(p *models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.RowVersion == 0 {
		p.RowVersion = 1
	}
	cp := *p
	m.rows[p.ID] = &cp
}

func (m *memProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.UserProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memProfiles) CreateIfMissing(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	m.mu.Lock()
	if _, ok := m.rows[p.ID]; !ok {
		cp := *p
		cp.RowVersion = 1
		m.rows[p.ID] = &cp
	}
	m.mu.Unlock()
	return m.GetByID(ctx, p.ID)
}

func (m *memProfiles) UpdateIfVersion(_ context.Context, p *models.UserProfile, expected int64) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[p.ID]
	if !ok || cur.RowVersion != expected {
		return tagMissed, nil
	}
	cp := *p
	cp.RowVersion = expected + 1
	m.rows[p.ID] = &cp
	return tagUpdated, nil
}

func (m *memProfiles) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.UserProfile) error) error {
	get := func(ctx context.Context, _ string) (*models.UserProfile, error) { return m.GetByID(ctx, id) }
	return repositories.WithRetry(ctx, 3, id.String(), get, m.UpdateIfVersion, mutate)
}

type memIdentities struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*models.Identity
	profiles *memProfiles
}

func newMemIdentities(profiles *memProfiles) *memIdentities {
	return &memIdentities{rows: map[uuid.UUID]*models.Identity{}, profiles: profiles}
}

func (m *memIdentities) CreateWithProfile(_ context.Context, id *models.Identity) (*models.UserProfile, error) {
	m.mu.Lock()
	id.Email = utils.NormalizeEmail(id.Email)
	for _, existing := range m.rows {
		if existing.Email == id.Email {
			m.mu.Unlock()
			return nil, utils.ErrEmailExists
		}
	}
	if id.ID == uuid.Nil {
		id.ID = uuid.New()
	}
	if id.Provider == "" {
		id.Provider = models.AuthProviderPassword
	}
	cp := *id
	m.rows[id.ID] = &cp
	m.mu.Unlock()

	profile := models.NewProfileFromIdentity(id)
	m.profiles.put(profile)
	return profile, nil
}

func (m *memIdentities) find(match func(*models.Identity) bool) *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.rows {
		if match(id) {
			cp := *id
			return &cp
		}
	}
	return nil
}

func (m *memIdentities) GetByID(_ context.Context, id uuid.UUID) (*models.Identity, error) {
	return m.find(func(i *models.Identity) bool { return i.ID == id }), nil
}

func (m *memIdentities) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	email = utils.NormalizeEmail(email)
	return m.find(func(i *models.Identity) bool { return i.Email == email }), nil
}

func (m *memIdentities) GetByProviderSubject(_ context.Context, provider models.AuthProvider, subject string) (*models.Identity, error) {
	return m.find(func(i *models.Identity) bool {
		return i.Provider == provider && i.ProviderSubject != nil && *i.ProviderSubject == subject
	}), nil
}

func (m *memIdentities) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.rows[id]; ok {
		i.PasswordHash = &hash
		return nil
	}
	return pgx.ErrNoRows
}

type memReset struct {
	userID    uuid.UUID
	expiresAt time.Time
	used      bool
}

type memTokens struct {
	mu         sync.Mutex
	refresh    map[string]*models.RefreshToken
	resets     map[string]*memReset
	identities *memIdentities

	cleanupErrs []error
	cleanups    int
}

func newMemTokens(identities *memIdentities) *memTokens {
	return &memTokens{
		refresh:    map[string]*models.RefreshToken{},
		resets:     map[string]*memReset{},
		identities: identities,
	}
}

func (m *memTokens) CreateRefreshToken(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.refresh[utils.HashToken(t.Token)] = &cp
	return nil
}

func (m *memTokens) GetRefreshToken(_ context.Context, raw string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.refresh[utils.HashToken(raw)]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *memTokens) DeleteRefreshToken(_ context.Context, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refresh, utils.HashToken(raw))
	return nil
}

func (m *memTokens) DeleteRefreshTokensForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.refresh {
		if t.UserID == userID {
			delete(m.refresh, k)
		}
	}
	return nil
}

func (m *memTokens) countFor(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.refresh {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memTokens) CreatePasswordReset(_ context.Context, userID uuid.UUID, raw string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[utils.HashToken(raw)] = &memReset{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memTokens) ConsumePasswordReset(ctx context.Context, raw, newHash string) (uuid.UUID, error) {
	m.mu.Lock()
	r, ok := m.resets[utils.HashToken(raw)]
	if !ok || r.used || time.Now().After(r.expiresAt) {
		m.mu.Unlock()
		return uuid.Nil, nil
	}
	r.used = true
	m.mu.Unlock()

	if err := m.identities.UpdatePassword(ctx, r.userID, newHash); err != nil {
		return uuid.Nil, err
	}
	return r.userID, m.DeleteRefreshTokensForUser(ctx, r.userID)
}

func (m *memTokens) CleanupExpired(_ context.Context) (int64, error) {
	m.cleanups++
	if len(m.cleanupErrs) > 0 {
		err := m.cleanupErrs[0]
		m.cleanupErrs = m.cleanupErrs[1:]
		return 0, err
	}
	return 2, nil
}

/* ------------------------------------------------------------------
   Favorites, conversations, messages
------------------------------------------------------------------ */

type memFavorites struct {
	mu      sync.Mutex
	rows    map[[2]uuid.UUID]time.Time
	props   *memProps
	listErr error
}

func newMemFavorites(props *memProps) *memFavorites {
	return &memFavorites{rows: map[[2]uuid.UUID]time.Time{}, props: props}
}

func (m *memFavorites) Add(_ context.Context, userID, propertyID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]uuid.UUID{userID, propertyID}
	if _, ok := m.rows[k]; !ok {
		m.rows[k] = time.Now()
	}
	return nil
}

func (m *memFavorites) Remove(_ context.Context, userID, propertyID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]uuid.UUID{userID, propertyID}
	if _, ok := m.rows[k]; !ok {
		return 0, nil
	}
	delete(m.rows, k)
	return 1, nil
}

func (m *memFavorites) Exists(_ context.Context, userID, propertyID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[[2]uuid.UUID{userID, propertyID}]
	return ok, nil
}

func (m *memFavorites) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Favorite
	for k, at := range m.rows {
		if k[0] == userID {
			out = append(out, &models.Favorite{ID: uuid.New(), UserID: k[0], PropertyID: k[1], CreatedAt: at})
		}
	}
	return out, nil
}

func (m *memFavorites) ListProperties(ctx context.Context, userID uuid.UUID) ([]*models.Property, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	favs, _ := m.ListByUser(ctx, userID)
	var out []*models.Property
	for _, f := range favs {
		if p, _ := m.props.GetByID(ctx, f.PropertyID); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type memConversations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Conversation
	keys map[string]uuid.UUID
}

func newMemConversations() *memConversations {
	return &memConversations{rows: map[uuid.UUID]*models.Conversation{}, keys: map[string]uuid.UUID{}}
}

func (m *memConversations) CreateOrGet(
	_ context.Context,
	participants []models.Participant,
	propertyID *uuid.UUID,
	propertyTitle *string,
) (*models.Conversation, bool, error) {
	if len(participants) != 2 || participants[0].ID == participants[1].ID {
		return nil, false, repositories.ErrInvalidParticipants
	}
	low, high := models.ParticipantPair(participants[0].ID, participants[1].ID)
	key := fmt.Sprintf("%s|%s|%s", low, high, models.PropertyKey(propertyID))

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[key]; ok {
		cp := *m.rows[id]
		return &cp, false, nil
	}
	c := &models.Conversation{
		ID:            uuid.New(),
		Participants:  participants,
		PropertyID:    propertyID,
		PropertyTitle: propertyTitle,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.rows[c.ID] = c
	m.keys[key] = c.ID
	cp := *c
	return &cp, true, nil
}

func (m *memConversations) GetByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memConversations) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Conversation
	for _, c := range m.rows {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type memMessages struct {
	mu    sync.Mutex
	rows  []*models.Message
	convs *memConversations
}

func (m *memMessages) Send(_ context.Context, msg *models.Message) error {
	m.convs.mu.Lock()
	c, ok := m.convs.rows[msg.ConversationID]
	if !ok {
		m.convs.mu.Unlock()
		return pgx.ErrNoRows
	}
	msg.Read = false
	msg.Timestamp = time.Now()
	c.LastMessage = &models.LastMessage{Content: msg.Content, Timestamp: msg.Timestamp, SenderID: msg.SenderID}
	c.UpdatedAt = msg.Timestamp
	m.convs.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memMessages) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, msg := range m.rows {
		if msg.ConversationID == conversationID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMessages) MarkRead(_ context.Context, conversationID, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.rows {
		if msg.ConversationID == conversationID && msg.SenderID != userID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

/* ------------------------------------------------------------------
   Bookings, reviews, catalog
------------------------------------------------------------------ */

type memBookings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Booking
}

func newMemBookings() *memBookings { return &memBookings{rows: map[uuid.UUID]*models.Booking{}} }

func (m *memBookings) CreateIfAvailable(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.rows {
		if other.PropertyID == b.PropertyID && other.Blocking() &&
			other.StartDate.Before(b.EndDate) && other.EndDate.After(b.StartDate) {
			return repositories.ErrBookingOverlap
		}
	}
	b.RowVersion = 1
	b.CreatedAt = time.Now()
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.rows[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *memBookings) listWhere(keep func(*models.Booking) bool) []*models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, b := range m.rows {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memBookings) ListForTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	return m.listWhere(func(b *models.Booking) bool { return b.TenantID == tenantID }), nil
}

func (m *memBookings) ListForOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Booking, error) {
	return m.listWhere(func(b *models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (m *memBookings) UpdateIfVersion(_ context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[b.ID]
	if !ok || cur.RowVersion != expected {
		return tagMissed, nil
	}
	cp := *b
	cp.RowVersion = expected + 1
	m.rows[b.ID] = &cp
	return tagUpdated, nil
}

func (m *memBookings) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Booking) error) error {
	get := func(ctx context.Context, _ string) (*models.Booking, error) { return m.GetByID(ctx, id) }
	return repositories.WithRetry(ctx, 3, id.String(), get, m.UpdateIfVersion, mutate)
}

type memReviews struct {
	mu   sync.Mutex
	rows []*models.Review
}

func (m *memReviews) CreateAndRecompute(_ context.Context, rv *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.PropertyID == rv.PropertyID && r.UserID == rv.UserID {
			return repositories.ErrAlreadyReviewed
		}
	}
	rv.CreatedAt = time.Now()
	cp := *rv
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memReviews) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Review
	for _, r := range m.rows {
		if r.PropertyID == propertyID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memCatalog struct {
	categories  []*models.Category
	experiences []*models.Experience
	err         error
	calls       int
}

func (m *memCatalog) ListCategories(_ context.Context) ([]*models.Category, error) {
	m.calls++
	return m.categories, m.err
}

func (m *memCatalog) ListExperiences(_ context.Context, limit int) ([]*models.Experience, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := m.experiences
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memCatalog) UpsertCategory(_ context.Context, c *models.Category) error {
	m.categories = append(m.categories, c)
	return nil
}

func (m *memCatalog) UpsertExperience(_ context.Context, e *models.Experience) error {
	m.experiences = append(m.experiences, e)
	return nil
}

/* ------------------------------------------------------------------
   Blobs, notifier, publisher
------------------------------------------------------------------ */

type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failAfter int // Put fails once this many objects were stored; 0 disables
	puts      int
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

const memBlobBase = "http://blobs.test/media/"

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && m.puts >= m.failAfter {
		return "", errors.New("disk full")
	}
	m.puts++
	m.objects[key] = data
	return memBlobBase + key, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix+"/") {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memBlobs) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, memBlobBase) {
		return "", false
	}
	return strings.TrimPrefix(url, memBlobBase), true
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type sentEmail struct {
	to, subject, plain string
}

type sentSMS struct {
	to, body string
}

type fakeNotifier struct {
	mu     sync.Mutex
	emails []sentEmail
	sms    []sentSMS
}

func (f *fakeNotifier) SendEmail(_ context.Context, _, toEmail, subject, plainText, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{to: toEmail, subject: subject, plain: plainText})
	return nil
}

func (f *fakeNotifier) SendSMS(_ context.Context, toPhone, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, sentSMS{to: toPhone, body: body})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.PropertyEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev events.PropertyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
