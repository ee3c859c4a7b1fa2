// Package testkit provides database fixtures shared by package tests.
package testkit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/db"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated, isolated in-memory database for one test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Options())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, gdb *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "-" + uuid.NewString()[:8] + "@example.com",
		Role:     role,
		IsActive: true,
		Skills:   []string{"go"},
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// CreateProject inserts an open project owned by client.
func CreateProject(t *testing.T, gdb *gorm.DB, client *models.User, title string) *models.Project {
	t.Helper()

	p := &models.Project{
		Title:       title,
		Description: "Description of " + title,
		ClientID:    client.ID,
		Category:    "Web Development",
		Skills:      []string{"go", "postgres"},
		Budget:      models.Budget{Min: 100, Max: 1000},
		Deadline:    time.Now().Add(30 * 24 * time.Hour).UTC(),
		Status:      models.ProjectOpen,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return p
}

// CreateBid inserts a pending bid directly, bypassing the counter.
func CreateBid(t *testing.T, gdb *gorm.DB, project *models.Project, freelancer *models.User, amount float64) *models.Bid {
	t.Helper()

	b := &models.Bid{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		Amount:       amount,
		DeliveryDays: 7,
		Proposal:     "I can do this",
		Status:       models.BidPending,
	}
	if err := gdb.Create(b).Error; err != nil {
		t.Fatalf("create bid: %v", err)
	}
	return b
}
