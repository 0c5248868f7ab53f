package jwtcookie

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	GetByUsername(ctx context.Context, username string, criteria ...repository.SelectCriteria) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string, criteria ...repository.SelectCriteria) (*User, error)

	// GetOrCreateByUsername returns the record for the username, inserting it
	// first when missing. The insert is conflict-tolerant so concurrent
	// first-time logins for the same username cannot produce duplicates. The
	// boolean reports whether this call created the record.
	GetOrCreateByUsername(ctx context.Context, record *User) (*User, bool, error)
	GetOrCreateByUsernameTx(ctx context.Context, tx bun.IDB, record *User) (*User, bool, error)

	Save(ctx context.Context, user *User) error
	SaveTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByUsername(ctx context.Context, username string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username, criteria...)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetOrCreateByUsername(ctx context.Context, record *User) (*User, bool, error) {
	return a.GetOrCreateByUsernameTx(ctx, a.db, record)
}

func (a *users) GetOrCreateByUsernameTx(ctx context.Context, tx bun.IDB, record *User) (*User, bool, error) {
	existing, err := a.GetByUsernameTx(ctx, tx, record.Username)
	if err == nil {
		return existing, false, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, false, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	res, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (username) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	created := false
	if rows, err := res.RowsAffected(); err == nil && rows > 0 {
		created = true
	}

	// Re-select so a concurrent create that won the race is what we return.
	existing, err = a.GetByUsernameTx(ctx, tx, record.Username)
	if err != nil {
		return nil, false, err
	}

	return existing, created, nil
}

func (a *users) Save(ctx context.Context, user *User) error {
	return a.SaveTx(ctx, a.db, user)
}

func (a *users) SaveTx(ctx context.Context, tx bun.IDB, user *User) error {
	now := time.Now()
	user.UpdatedAt = &now

	_, err := tx.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)

	return err
}
