package repository

import (
	"database/sql"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Profile     ProfileRepository
	XeroToken   XeroTokenRepository
	Customers   PartyRepository
	Suppliers   PartyRepository
	XeroContact XeroContactRepository
	XeroItem    XeroItemRepository
	Job         JobRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres, box *utils.SecretBox) *Repositories {
	return &Repositories{
		Profile:     NewProfileRepository(db),
		XeroToken:   NewXeroTokenRepository(db, box),
		Customers:   NewPartyRepository(db, "customers"),
		Suppliers:   NewPartyRepository(db, "suppliers"),
		XeroContact: NewXeroContactRepository(db),
		XeroItem:    NewXeroItemRepository(db),
		Job:         NewJobRepository(db),
	}
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
