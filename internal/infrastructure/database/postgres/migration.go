// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/easystock-backend/internal/domain/calendar"
	"github.com/your-org/easystock-backend/internal/domain/listing"
	"github.com/your-org/easystock-backend/internal/domain/movement"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/domain/task"
	"github.com/your-org/easystock-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - base tables
		&user.User{},

		// Product domain
		&product.Category{},
		&product.Product{},

		// Storefront listings
		&listing.Listing{},

		// Stock movement ledger
		&movement.Movement{},

		// Task board
		&task.Task{},

		// Calendar domain
		&calendar.Festival{},
		&calendar.FestivalBestSeller{},
		&calendar.CustomEvent{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Product indexes. Soft-deleted rows free their code for reuse,
		// so uniqueness only applies to live rows.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_code_live ON products(code) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Listing indexes
		"CREATE INDEX IF NOT EXISTS idx_listings_active ON listings(is_active)",

		// Movement ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_movements_product_created ON movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_movements_direction_created ON movements(direction, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_movements_batch ON movements(batch_id)",
		"CREATE INDEX IF NOT EXISTS idx_movements_created_by ON movements(created_by)",

		// Task indexes
		"CREATE INDEX IF NOT EXISTS idx_tasks_assigned_status ON tasks(assigned_to, status)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_priority_due ON tasks(priority, due_date)",

		// Calendar indexes
		"CREATE INDEX IF NOT EXISTS idx_festivals_start_date ON festivals(start_date)",
		"CREATE INDEX IF NOT EXISTS idx_festival_best_sellers_rank ON festival_best_sellers(festival_id, rank)",
		"CREATE INDEX IF NOT EXISTS idx_custom_events_user_date ON custom_events(created_by, event_date)",
		"CREATE INDEX IF NOT EXISTS idx_custom_events_shared ON custom_events(is_shared, event_date)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{Name: "เสื้อผ้า"},
		{Name: "ของใช้ในบ้าน"},
		{Name: "เครื่องเขียน"},
		{Name: "อื่นๆ"},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("name = ?", category.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

// seedAdminUser creates the default shop-owner account
func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@easystock.local").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:     "admin@easystock.local",
			Password:  string(hashedPassword),
			FirstName: "Shop",
			LastName:  "Owner",
			Role:      user.RoleAdmin,
			IsActive:  true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@easystock.local (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
