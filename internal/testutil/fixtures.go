package testutil

import (
	"context"
	"database/sql"
	"testing"

	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scoring"

	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every fixture user
const TestPassword = "test-password"

// Fixtures holds test data
type Fixtures struct {
	DB        *sql.DB
	AdminUser *models.User
	Shipper   *models.User
	Company   *models.Company
	Branch    *models.Branch
	Questions []scoring.Question
}

// Questions is a small two-category catalog
func Questions() []scoring.Question {
	defs := scoring.RatingDefinitions{0: "Not rated", 1: "Poor", 2: "Fair", 3: "Good", 4: "Excellent"}
	return []scoring.Question{
		{ID: "resp_quote_speed", CategoryID: "responsiveness", CategoryName: "Responsiveness", Text: "Quote speed", RatingDefinitions: defs},
		{ID: "resp_issue_handling", CategoryID: "responsiveness", CategoryName: "Responsiveness", Text: "Issue handling", RatingDefinitions: defs},
		{ID: "doc_accuracy", CategoryID: "documentation", CategoryName: "Documentation", Text: "Document accuracy", RatingDefinitions: defs},
	}
}

// SetupFixtures creates an admin, a verified shipper, a company with one
// branch and the question catalog
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()
	ctx := context.Background()

	fixtures := &Fixtures{DB: db, Questions: Questions()}

	fixtures.AdminUser = createUser(t, db, "admin@test.com", models.RoleAdmin)
	fixtures.Shipper = createUser(t, db, "shipper@test.com", models.RoleUser)

	companies := repository.NewCompanyRepository(db)
	fixtures.Company = &models.Company{Name: "Test Freight GmbH", IsActive: true}
	if err := companies.Create(ctx, fixtures.Company); err != nil {
		t.Fatalf("Failed to create company: %v", err)
	}
	fixtures.Branch = &models.Branch{
		CompanyID: fixtures.Company.ID,
		Name:      "Hamburg",
		Location:  "Germany",
		IsActive:  true,
	}
	if err := companies.CreateBranch(ctx, fixtures.Branch); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	if _, err := repository.NewQuestionRepository(db).Import(ctx, fixtures.Questions, false); err != nil {
		t.Fatalf("Failed to import questions: %v", err)
	}

	return fixtures
}

func createUser(t *testing.T, db *sql.DB, email, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		UserType:     models.UserTypeShipper,
		Role:         role,
		IsVerified:   true,
		IsActive:     true,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}
