package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mstgnz/eventpay/infra/conn"
)

// SQLStore implements Store on SQLite or PostgreSQL
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLiteStore opens (or creates) a SQLite database file
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)

	opts := conn.DefaultOptions()
	opts.MaxOpenConns = 10
	opts.ConnMaxLifetime = 0
	opts.Attempts = 1

	db, err := conn.Open(ctx, "sqlite3", dsn, opts)
	if err != nil {
		return nil, err
	}

	return newSQLStore(ctx, db, "sqlite3", sqliteSchema)
}

// NewPostgresStore connects to PostgreSQL using a lib/pq DSN
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := conn.Open(ctx, "postgres", dsn, conn.DefaultOptions())
	if err != nil {
		return nil, err
	}

	return newSQLStore(ctx, db, "postgres", postgresSchema)
}

func newSQLStore(ctx context.Context, db *sql.DB, driver, schema string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// rebind converts ? placeholders to $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) InsertPayment(ctx context.Context, p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO payments (id, order_id, signature, name, email, phone, amount, base_price, gst_amount, pass_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.OrderID, p.Signature, p.Name, p.Email, p.Phone,
		p.Amount, p.BasePrice, p.GSTAmount, p.PassID, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *SQLStore) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, order_id, signature, name, email, phone, amount, base_price, gst_amount, pass_id, created_at
		FROM payments WHERE id = ?`), paymentID).Scan(
		&p.ID, &p.OrderID, &p.Signature, &p.Name, &p.Email, &p.Phone,
		&p.Amount, &p.BasePrice, &p.GSTAmount, &p.PassID, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) CreateOrder(ctx context.Context, o *Order) error {
	participants, err := json.Marshal(participantsOrEmpty(o.Participants))
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO orders (id, merchant_order_id, name, email, phone, amount, type, class_id,
			no_of_participants, participants, payment_status, mail_sent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.MerchantOrderID, o.Name, o.Email, o.Phone, o.Amount, string(o.Type), o.ClassID,
		o.NoOfParticipants, string(participants), string(o.PaymentStatus), o.MailSent, o.CreatedAt, o.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *SQLStore) FindOrderByMerchantID(ctx context.Context, merchantOrderID string) (*Order, error) {
	var (
		o            Order
		orderType    string
		status       string
		participants string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, merchant_order_id, name, email, phone, amount, type, class_id,
			no_of_participants, participants, payment_status, mail_sent, created_at, updated_at
		FROM orders WHERE merchant_order_id = ?`), merchantOrderID).Scan(
		&o.ID, &o.MerchantOrderID, &o.Name, &o.Email, &o.Phone, &o.Amount, &orderType, &o.ClassID,
		&o.NoOfParticipants, &participants, &status, &o.MailSent, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	o.Type = RegistrationType(orderType)
	o.PaymentStatus = PaymentStatus(status)
	if err := json.Unmarshal([]byte(participants), &o.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return &o, nil
}

func (s *SQLStore) SaveOrder(ctx context.Context, o *Order) error {
	participants, err := json.Marshal(participantsOrEmpty(o.Participants))
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	o.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE orders SET name = ?, email = ?, phone = ?, amount = ?, type = ?, class_id = ?,
			no_of_participants = ?, participants = ?, payment_status = ?, mail_sent = ?, updated_at = ?
		WHERE id = ?`),
		o.Name, o.Email, o.Phone, o.Amount, string(o.Type), o.ClassID,
		o.NoOfParticipants, string(participants), string(o.PaymentStatus), o.MailSent, o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) CreateRegistration(ctx context.Context, r *Registration) error {
	participants, err := json.Marshal(participantsOrEmpty(r.Participants))
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO registrations (id, order_id, signature, name, email, phone, amount, type, class_id,
			no_of_participants, participants, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`),
		r.ID, r.OrderID, r.Signature, r.Name, r.Email, r.Phone, r.Amount, string(r.Type), r.ClassID,
		r.NoOfParticipants, string(participants), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLStore) GetRegistration(ctx context.Context, merchantOrderID string) (*Registration, error) {
	var (
		r            Registration
		regType      string
		participants string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, order_id, signature, name, email, phone, amount, type, class_id,
			no_of_participants, participants, created_at
		FROM registrations WHERE id = ?`), merchantOrderID).Scan(
		&r.ID, &r.OrderID, &r.Signature, &r.Name, &r.Email, &r.Phone, &r.Amount, &regType, &r.ClassID,
		&r.NoOfParticipants, &participants, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	r.Type = RegistrationType(regType)
	if err := json.Unmarshal([]byte(participants), &r.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return &r, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return conn.Close(s.db)
}

func participantsOrEmpty(p []Participant) []Participant {
	if p == nil {
		return []Participant{}
	}
	return p
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	signature TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL,
	base_price TEXT NOT NULL,
	gst_amount TEXT NOT NULL,
	pass_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	merchant_order_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL,
	type TEXT NOT NULL,
	class_id TEXT NOT NULL DEFAULT '',
	no_of_participants INTEGER NOT NULL DEFAULT 0,
	participants TEXT NOT NULL DEFAULT '[]',
	payment_status TEXT NOT NULL,
	mail_sent BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL UNIQUE,
	signature TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL,
	type TEXT NOT NULL,
	class_id TEXT NOT NULL DEFAULT '',
	no_of_participants INTEGER NOT NULL DEFAULT 0,
	participants TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	signature TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount NUMERIC(12,2) NOT NULL,
	base_price NUMERIC(12,2) NOT NULL,
	gst_amount NUMERIC(12,2) NOT NULL,
	pass_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	merchant_order_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount NUMERIC(12,2) NOT NULL,
	type TEXT NOT NULL,
	class_id TEXT NOT NULL DEFAULT '',
	no_of_participants INTEGER NOT NULL DEFAULT 0,
	participants JSONB NOT NULL DEFAULT '[]',
	payment_status TEXT NOT NULL,
	mail_sent BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL UNIQUE,
	signature TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	amount NUMERIC(12,2) NOT NULL,
	type TEXT NOT NULL,
	class_id TEXT NOT NULL DEFAULT '',
	no_of_participants INTEGER NOT NULL DEFAULT 0,
	participants JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL
);
`
