package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"barterhub-api/internal/model"
)

// MySQLStore implements Store using MySQL. The caller owns the *sql.DB.
//
// MySQL has no partial unique indexes, so pending-invite uniqueness is
// carried by a nullable pending_key column (set on insert, cleared on
// the terminal transition); NULLs never collide in a unique index.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a MySQL-backed store and ensures the schema.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	log.Println("[MySQLStore] Initialized")
	return &MySQLStore{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			identity VARCHAR(191) PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			lat DOUBLE NULL,
			lng DOUBLE NULL,
			updated_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id VARCHAR(36) PRIMARY KEY,
			owner_identity VARCHAR(191) NOT NULL,
			title VARCHAR(255) NOT NULL,
			tags TEXT NOT NULL,
			condition_pct INT NOT NULL DEFAULT 0,
			price DOUBLE NOT NULL DEFAULT 0,
			category VARCHAR(64) NOT NULL DEFAULT '',
			price_band VARCHAR(32) NOT NULL DEFAULT '',
			rating DOUBLE NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_items_owner (owner_identity)
		)`,
		`CREATE TABLE IF NOT EXISTS invites (
			id VARCHAR(36) PRIMARY KEY,
			from_identity VARCHAR(191) NOT NULL,
			to_identity VARCHAR(191) NOT NULL,
			from_item_id VARCHAR(36) NOT NULL,
			to_item_id VARCHAR(36) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			pending_key VARCHAR(512) NULL,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY idx_invites_pending (pending_key),
			INDEX idx_invites_to (to_identity, created_at),
			INDEX idx_invites_from (from_identity, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id VARCHAR(36) PRIMARY KEY,
			member_a VARCHAR(191) NOT NULL,
			member_b VARCHAR(191) NOT NULL,
			from_item_id VARCHAR(36) NOT NULL,
			to_item_id VARCHAR(36) NOT NULL,
			closed TINYINT(1) NOT NULL DEFAULT 0,
			closed_at DATETIME(6) NULL,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY idx_chats_key (member_a, member_b, from_item_id, to_item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			chat_id VARCHAR(36) NOT NULL,
			sender_identity VARCHAR(191) NOT NULL,
			text TEXT NOT NULL,
			sent_at DATETIME(6) NOT NULL,
			INDEX idx_messages_chat (chat_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_confirmations (
			chat_id VARCHAR(36) NOT NULL,
			identity VARCHAR(191) NOT NULL,
			PRIMARY KEY (chat_id, identity)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func pendingKey(inv model.Invite) string {
	return inv.FromIdentity + "|" + inv.ToIdentity + "|" + inv.FromItemID + "|" + inv.ToItemID
}

// --- users ---

func (s *MySQLStore) UpsertUser(ctx context.Context, user model.User) error {
	var lat, lng sql.NullFloat64
	if user.Location != nil {
		lat = sql.NullFloat64{Float64: user.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: user.Location.Lng, Valid: true}
	}

	query := `
		INSERT INTO users (identity, display_name, lat, lng, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			display_name = VALUES(display_name),
			lat = VALUES(lat),
			lng = VALUES(lng),
			updated_at = VALUES(updated_at)`

	_, err := s.db.ExecContext(ctx, query, user.Identity, user.DisplayName, lat, lng, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetUser(ctx context.Context, identity string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT identity, display_name, lat, lng, updated_at FROM users WHERE identity = ?`, identity)

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

func (s *MySQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, display_name, lat, lng, updated_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&u.Identity, &u.DisplayName, &lat, &lng, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if lat.Valid && lng.Valid {
			u.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- items ---

func (s *MySQLStore) CreateItem(ctx context.Context, item model.Item) error {
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

func (s *MySQLStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
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

func (s *MySQLStore) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items`)
}

func (s *MySQLStore) ListItemsByOwner(ctx context.Context, owner string) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_identity = ?`, owner)
}

func (s *MySQLStore) SearchItems(ctx context.Context, keyword, excludeOwner string) ([]model.Item, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	query := `SELECT ` + itemColumns + ` FROM items WHERE (LOWER(title) LIKE ? OR LOWER(tags) LIKE ?)`
	args := []interface{}{pattern, pattern}
	if excludeOwner != "" {
		query += ` AND owner_identity != ?`
		args = append(args, excludeOwner)
	}
	return s.queryItems(ctx, query, args...)
}

func (s *MySQLStore) queryItems(ctx context.Context, query string, args ...interface{}) ([]model.Item, error) {
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

// --- invites ---

func (s *MySQLStore) CreateInvite(ctx context.Context, invite model.Invite) (model.Invite, error) {
	query := `
		INSERT IGNORE INTO invites (id, from_identity, to_identity, from_item_id, to_item_id, status, pending_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		invite.ID, invite.FromIdentity, invite.ToIdentity,
		invite.FromItemID, invite.ToItemID, string(invite.Status), pendingKey(invite), invite.CreatedAt)
	if err != nil {
		return model.Invite{}, fmt.Errorf("failed to create invite: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return invite, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+inviteColumns+` FROM invites WHERE pending_key = ?`, pendingKey(invite))
	existing, err := scanInvite(row)
	if err != nil {
		return model.Invite{}, fmt.Errorf("failed to resolve existing invite: %w", err)
	}
	return existing, nil
}

func (s *MySQLStore) GetInvite(ctx context.Context, id string) (*model.Invite, error) {
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

func (s *MySQLStore) AcceptInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(ctx, id, model.InviteStatusAccepted)
}

func (s *MySQLStore) RejectInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(ctx, id, model.InviteStatusRejected)
}

func (s *MySQLStore) transitionInvite(ctx context.Context, id string, to model.InviteStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invites SET status = ?, pending_key = NULL
		WHERE id = ? AND status = 'pending'`, string(to), id)
	if err != nil {
		return false, fmt.Errorf("failed to transition invite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MySQLStore) ListInvitesTo(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.queryInvites(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE to_identity = ? ORDER BY created_at DESC`, identity)
}

func (s *MySQLStore) ListInvitesFrom(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.queryInvites(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE from_identity = ? ORDER BY created_at DESC`, identity)
}

func (s *MySQLStore) queryInvites(ctx context.Context, query string, args ...interface{}) ([]model.Invite, error) {
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

// --- chats ---

func (s *MySQLStore) FindOrCreateChat(ctx context.Context, chat model.Chat) (model.Chat, error) {
	query := `
		INSERT IGNORE INTO chats (id, member_a, member_b, from_item_id, to_item_id, closed, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`

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

func (s *MySQLStore) GetChat(ctx context.Context, id string) (*model.Chat, error) {
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

func (s *MySQLStore) ListChatsByMember(ctx context.Context, identity string) ([]model.ChatSummary, error) {
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

		var msg model.Message
		var last *model.Message
		err := s.db.QueryRowContext(ctx, `
			SELECT sender_identity, text, sent_at FROM chat_messages
			WHERE chat_id = ? ORDER BY id DESC LIMIT 1`, chat.ID).
			Scan(&msg.SenderIdentity, &msg.Text, &msg.SentAt)
		if err == nil {
			last = &msg
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to get last message: %w", err)
		}
		summaries = append(summaries, model.ChatSummary{Chat: chat, LastMessage: last})
	}
	return summaries, nil
}

func (s *MySQLStore) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
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

func (s *MySQLStore) AppendMessage(ctx context.Context, chatID string, msg model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var closed bool
	err = tx.QueryRowContext(ctx, `SELECT closed FROM chats WHERE id = ? FOR UPDATE`, chatID).Scan(&closed)
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

func (s *MySQLStore) ConfirmDone(ctx context.Context, chatID, identity string) (*model.Chat, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Row lock serializes racing confirmations on the same chat.
	row := tx.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = ? FOR UPDATE`, chatID)
	chat, err := scanChat(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT IGNORE INTO chat_confirmations (chat_id, identity) VALUES (?, ?)`,
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

func (s *MySQLStore) loadConfirmations(ctx context.Context, q queryRower, chatID string) ([]string, error) {
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

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Ensure MySQLStore implements Store
var _ Store = (*MySQLStore)(nil)
