package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"barterhub-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements Store using SQLite. Thread-safe with WAL mode
// for high-concurrency reads; the uniqueness keys that back invite and
// chat idempotency are enforced by unique indexes.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a SQLite-backed store.
// dbPath is the path to the SQLite database file (e.g., "./data/barterhub.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		identity TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		lat REAL,
		lng REAL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		owner_identity TEXT NOT NULL,
		title TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		condition_pct INTEGER NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		price_band TEXT NOT NULL DEFAULT '',
		rating REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_identity);
	CREATE TABLE IF NOT EXISTS invites (
		id TEXT PRIMARY KEY,
		from_identity TEXT NOT NULL,
		to_identity TEXT NOT NULL,
		from_item_id TEXT NOT NULL,
		to_item_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_invites_pending
		ON invites(from_identity, to_identity, from_item_id, to_item_id)
		WHERE status = 'pending';
	CREATE INDEX IF NOT EXISTS idx_invites_to ON invites(to_identity, created_at);
	CREATE INDEX IF NOT EXISTS idx_invites_from ON invites(from_identity, created_at);
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		member_a TEXT NOT NULL,
		member_b TEXT NOT NULL,
		from_item_id TEXT NOT NULL,
		to_item_id TEXT NOT NULL,
		closed INTEGER NOT NULL DEFAULT 0,
		closed_at DATETIME,
		created_at DATETIME NOT NULL,
		UNIQUE(member_a, member_b, from_item_id, to_item_id)
	);
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		sender_identity TEXT NOT NULL,
		text TEXT NOT NULL,
		sent_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON chat_messages(chat_id, id);
	CREATE TABLE IF NOT EXISTS chat_confirmations (
		chat_id TEXT NOT NULL,
		identity TEXT NOT NULL,
		PRIMARY KEY (chat_id, identity)
	);
	`
	_, err := db.Exec(query)
	return err
}

// --- users ---

// UpsertUser inserts or updates a user by identity.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lat, lng sql.NullFloat64
	if user.Location != nil {
		lat = sql.NullFloat64{Float64: user.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: user.Location.Lng, Valid: true}
	}

	query := `
		INSERT INTO users (identity, display_name, lat, lng, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			display_name = excluded.display_name,
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, user.Identity, user.DisplayName, lat, lng, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser resolves a user by identity.
func (s *SQLiteStore) GetUser(ctx context.Context, identity string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT identity, display_name, lat, lng, updated_at FROM users WHERE identity = ?`, identity)
	return scanUser(row)
}

// ListUsers returns all registered users.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, display_name, lat, lng, updated_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var lat, lng sql.NullFloat64
	err := row.Scan(&u.Identity, &u.DisplayName, &lat, &lng, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if lat.Valid && lng.Valid {
		u.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &u, nil
}

func scanUserRow(rows *sql.Rows) (model.User, error) {
	var u model.User
	var lat, lng sql.NullFloat64
	if err := rows.Scan(&u.Identity, &u.DisplayName, &lat, &lng, &u.UpdatedAt); err != nil {
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	if lat.Valid && lng.Valid {
		u.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return u, nil
}

// --- items ---

// CreateItem stores a new item.
func (s *SQLiteStore) CreateItem(ctx context.Context, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO items (id, owner_identity, title, tags, condition_pct, price, category, price_band, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		item.ID, item.OwnerIdentity, item.Title, string(tags), item.Condition,
		item.Price, item.Category, item.PriceBand, item.Rating, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

const itemColumns = `id, owner_identity, title, tags, condition_pct, price, category, price_band, rating, created_at`

// GetItem resolves an item by id.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// ListItems returns the full catalog.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items`)
}

// ListItemsByOwner returns all items owned by identity.
func (s *SQLiteStore) ListItemsByOwner(ctx context.Context, owner string) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_identity = ?`, owner)
}

// SearchItems matches keyword against title and tags.
func (s *SQLiteStore) SearchItems(ctx context.Context, keyword, excludeOwner string) ([]model.Item, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	query := `SELECT ` + itemColumns + ` FROM items WHERE (LOWER(title) LIKE ? OR LOWER(tags) LIKE ?)`
	args := []interface{}{pattern, pattern}
	if excludeOwner != "" {
		query += ` AND owner_identity != ?`
		args = append(args, excludeOwner)
	}
	return s.queryItems(ctx, query, args...)
}

func (s *SQLiteStore) queryItems(ctx context.Context, query string, args ...interface{}) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(row rowScanner) (model.Item, error) {
	var it model.Item
	var tags string
	err := row.Scan(&it.ID, &it.OwnerIdentity, &it.Title, &tags, &it.Condition,
		&it.Price, &it.Category, &it.PriceBand, &it.Rating, &it.CreatedAt)
	if err != nil {
		return it, err
	}
	if tags != "" {
		_ = json.Unmarshal([]byte(tags), &it.Tags)
	}
	return it, nil
}

// --- invites ---

const inviteColumns = `id, from_identity, to_identity, from_item_id, to_item_id, status, created_at`

// CreateInvite inserts the invite unless a pending invite with the same
// tuple already exists. The partial unique index on pending tuples makes
// the insert-if-absent atomic.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite model.Invite) (model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO invites (` + inviteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(from_identity, to_identity, from_item_id, to_item_id)
			WHERE status = 'pending' DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		invite.ID, invite.FromIdentity, invite.ToIdentity,
		invite.FromItemID, invite.ToItemID, string(invite.Status), invite.CreatedAt)
	if err != nil {
		return model.Invite{}, fmt.Errorf("failed to create invite: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return invite, nil
	}

	// An identical pending invite already exists; return it unchanged.
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inviteColumns+` FROM invites
		WHERE from_identity = ? AND to_identity = ? AND from_item_id = ? AND to_item_id = ? AND status = 'pending'`,
		invite.FromIdentity, invite.ToIdentity, invite.FromItemID, invite.ToItemID)

	existing, err := scanInvite(row)
	if err != nil {
		return model.Invite{}, fmt.Errorf("failed to resolve existing invite: %w", err)
	}
	return existing, nil
}

// GetInvite resolves an invite by id.
func (s *SQLiteStore) GetInvite(ctx context.Context, id string) (*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &inv, nil
}

// AcceptInvite atomically transitions pending -> accepted.
func (s *SQLiteStore) AcceptInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(ctx, id, model.InviteStatusAccepted)
}

// RejectInvite atomically transitions pending -> rejected.
func (s *SQLiteStore) RejectInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(ctx, id, model.InviteStatusRejected)
}

func (s *SQLiteStore) transitionInvite(ctx context.Context, id string, to model.InviteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE invites SET status = ? WHERE id = ? AND status = 'pending'`, string(to), id)
	if err != nil {
		return false, fmt.Errorf("failed to transition invite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListInvitesTo returns invites received by identity, newest first.
func (s *SQLiteStore) ListInvitesTo(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.queryInvites(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE to_identity = ? ORDER BY created_at DESC`, identity)
}

// ListInvitesFrom returns invites sent by identity, newest first.
func (s *SQLiteStore) ListInvitesFrom(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.queryInvites(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE from_identity = ? ORDER BY created_at DESC`, identity)
}

func (s *SQLiteStore) queryInvites(ctx context.Context, query string, args ...interface{}) ([]model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites: %w", err)
	}
	defer rows.Close()

	var invites []model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func scanInvite(row rowScanner) (model.Invite, error) {
	var inv model.Invite
	var status string
	err := row.Scan(&inv.ID, &inv.FromIdentity, &inv.ToIdentity,
		&inv.FromItemID, &inv.ToItemID, &status, &inv.CreatedAt)
	if err != nil {
		return inv, err
	}
	inv.Status = model.InviteStatus(status)
	return inv, nil
}

// --- chats ---

const chatColumns = `id, member_a, member_b, from_item_id, to_item_id, closed, closed_at, created_at`

// FindOrCreateChat returns the chat keyed by (member pair, item pair),
// creating it when absent. The unique index makes create idempotent.
func (s *SQLiteStore) FindOrCreateChat(ctx context.Context, chat model.Chat) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO chats (id, member_a, member_b, from_item_id, to_item_id, closed, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(member_a, member_b, from_item_id, to_item_id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		chat.ID, chat.MemberA, chat.MemberB, chat.FromItemID, chat.ToItemID, chat.CreatedAt)
	if err != nil {
		return model.Chat{}, fmt.Errorf("failed to create chat: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE member_a = ? AND member_b = ? AND from_item_id = ? AND to_item_id = ?`,
		chat.MemberA, chat.MemberB, chat.FromItemID, chat.ToItemID)

	got, err := scanChat(row)
	if err != nil {
		return model.Chat{}, fmt.Errorf("failed to resolve chat: %w", err)
	}
	got.DoneConfirmations, err = s.loadConfirmations(ctx, s.db, got.ID)
	if err != nil {
		return model.Chat{}, err
	}
	return got, nil
}

// GetChat resolves a chat by id, including its confirmation set.
func (s *SQLiteStore) GetChat(ctx context.Context, id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = ?`, id)
	chat, err := scanChat(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	chat.DoneConfirmations, err = s.loadConfirmations(ctx, s.db, chat.ID)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChatsByMember returns chat summaries for identity with last message.
func (s *SQLiteStore) ListChatsByMember(ctx context.Context, identity string) ([]model.ChatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE member_a = ? OR member_b = ?
		ORDER BY created_at DESC`, identity, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]model.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		chat.DoneConfirmations, err = s.loadConfirmations(ctx, s.db, chat.ID)
		if err != nil {
			return nil, err
		}
		last, err := s.lastMessage(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.ChatSummary{Chat: chat, LastMessage: last})
	}
	return summaries, nil
}

func (s *SQLiteStore) lastMessage(ctx context.Context, chatID string) (*model.Message, error) {
	var msg model.Message
	err := s.db.QueryRowContext(ctx, `
		SELECT sender_identity, text, sent_at FROM chat_messages
		WHERE chat_id = ? ORDER BY id DESC LIMIT 1`, chatID).
		Scan(&msg.SenderIdentity, &msg.Text, &msg.SentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last message: %w", err)
	}
	return &msg, nil
}

// ListMessages returns a chat's message log in append order.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sender_identity, text, sent_at FROM chat_messages
		WHERE chat_id = ? ORDER BY id ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.SenderIdentity, &msg.Text, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendMessage appends to an open chat. The closed check and the
// insert run in one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, chatID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var closed bool
	err = tx.QueryRowContext(ctx, `SELECT closed FROM chats WHERE id = ?`, chatID).Scan(&closed)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check chat: %w", err)
	}
	if closed {
		return ErrChatClosed
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (chat_id, sender_identity, text, sent_at)
		VALUES (?, ?, ?, ?)`, chatID, msg.SenderIdentity, msg.Text, msg.SentAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return tx.Commit()
}

// ConfirmDone unions identity into the confirmation set and closes the
// chat exactly once when the set covers both members. The whole
// operation runs in one transaction.
func (s *SQLiteStore) ConfirmDone(ctx context.Context, chatID, identity string) (*model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = ?`, chatID)
	chat, err := scanChat(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO chat_confirmations (chat_id, identity) VALUES (?, ?)`,
		chatID, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to record confirmation: %w", err)
	}

	confirmations, err := s.loadConfirmations(ctx, tx, chatID)
	if err != nil {
		return nil, err
	}
	chat.DoneConfirmations = confirmations

	if !chat.Closed && chat.HasConfirmed(chat.MemberA) && chat.HasConfirmed(chat.MemberB) {
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			`UPDATE chats SET closed = 1, closed_at = ? WHERE id = ? AND closed = 0`, now, chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to close chat: %w", err)
		}
		chat.Closed = true
		chat.ClosedAt = &now
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	return &chat, nil
}

type queryRower interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *SQLiteStore) loadConfirmations(ctx context.Context, q queryRower, chatID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT identity FROM chat_confirmations WHERE chat_id = ? ORDER BY identity`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmations: %w", err)
	}
	defer rows.Close()

	var confirmations []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		confirmations = append(confirmations, id)
	}
	return confirmations, rows.Err()
}

func scanChat(row rowScanner) (model.Chat, error) {
	var chat model.Chat
	var closedAt sql.NullTime
	err := row.Scan(&chat.ID, &chat.MemberA, &chat.MemberB,
		&chat.FromItemID, &chat.ToItemID, &chat.Closed, &closedAt, &chat.CreatedAt)
	if err != nil {
		return chat, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		chat.ClosedAt = &t
	}
	return chat, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
