// Command seed populates a development database with demo accounts, students
// and fee obligations so the portal can be exercised without real data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/pkg/config"
	"github.com/ecoleconnect/portail-api/pkg/database"
)

type seedProfile struct {
	email     string
	firstName string
	lastName  string
	role      models.Role
}

var profiles = []seedProfile{
	{"admin@ecoleconnect.fr", "Sophie", "Bernard", models.RoleAdmin},
	{"prof@ecoleconnect.fr", "Julien", "Moreau", models.RoleTeacher},
	{"parent@ecoleconnect.fr", "Marie", "Dupont", models.RoleParent},
	{"eleve@ecoleconnect.fr", "Lucas", "Dupont", models.RoleStudent},
}

func main() {
	password := flag.String("password", "portail123", "password assigned to every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db, *password); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("seed complete")
}

func seed(ctx context.Context, db *sqlx.DB, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	ids := map[models.Role]string{}
	for _, p := range profiles {
		id := uuid.NewString()
		ids[p.role] = id
		_, err := db.ExecContext(ctx, `INSERT INTO profiles (id, email, password_hash, first_name, last_name, role, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7)
            ON CONFLICT (email) DO NOTHING`,
			id, p.email, string(hash), p.firstName, p.lastName, p.role, now)
		if err != nil {
			return fmt.Errorf("insert profile %s: %w", p.email, err)
		}
	}

	parentID := ids[models.RoleParent]
	studentID := uuid.NewString()
	birth := time.Date(2016, time.May, 12, 0, 0, 0, 0, time.UTC)
	_, err = db.ExecContext(ctx, `INSERT INTO students (id, parent_id, first_name, last_name, student_number, class_level, date_of_birth, enrollment_date, status, created_at, updated_at)
        VALUES ($1, $2, 'Léa', 'Dupont', '2025-001', 'CM2', $3, $4, $5, $4, $4)
        ON CONFLICT (student_number) DO NOTHING`,
		studentID, parentID, birth, now, models.StudentStatusActive)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	feeTypeID := uuid.NewString()
	_, err = db.ExecContext(ctx, `INSERT INTO fee_types (id, name, category, base_amount, is_mandatory, created_at)
        VALUES ($1, 'Cantine', 'restauration', 85, true, $2)
        ON CONFLICT DO NOTHING`, feeTypeID, now)
	if err != nil {
		return fmt.Errorf("insert fee type: %w", err)
	}

	// One overdue and one upcoming obligation so the classifier has both
	// states to show.
	dues := []time.Time{now.AddDate(0, -1, 0), now.AddDate(0, 1, 0)}
	for _, due := range dues {
		_, err = db.ExecContext(ctx, `INSERT INTO student_fees (id, student_id, fee_type_id, amount, due_date, academic_year, status, created_at, updated_at)
            VALUES ($1, $2, $3, 85, $4, '2025-2026', $5, $6, $6)
            ON CONFLICT DO NOTHING`,
			uuid.NewString(), studentID, feeTypeID, due, models.FeeStatusPending, now)
		if err != nil {
			return fmt.Errorf("insert student fee: %w", err)
		}
	}

	return nil
}
