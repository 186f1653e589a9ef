// Command seed populates a development database with departments,
// divisions, user accounts, SLA rules and sample correspondence.
// It is intended to be run offline, not as part of the main server.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/persistence"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
)

func main() {
	password := flag.String("password", "password123", "password for seeded accounts")
	withSamples := flag.Bool("samples", true, "also insert sample correspondence")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	s := seeder{
		logger:      logger,
		users:       repository.NewUserRepository(pg.PoolHandle()),
		departments: repository.NewDepartmentRepository(pg.PoolHandle()),
		divisions:   repository.NewDivisionRepository(pg.PoolHandle()),
		slaRules:    repository.NewSLARuleRepository(pg.PoolHandle()),
		items:       repository.NewCorrespondenceRepository(pg.PoolHandle()),
		bcryptCost:  cfg.Auth.BcryptCost,
	}

	if err := s.run(ctx, *password, *withSamples); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding completed")
}

type seeder struct {
	logger      *zap.Logger
	users       repository.UserRepository
	departments repository.DepartmentRepository
	divisions   repository.DivisionRepository
	slaRules    repository.SLARuleRepository
	items       repository.CorrespondenceRepository
	bcryptCost  int
}

func (s *seeder) run(ctx context.Context, password string, withSamples bool) error {
	departments, err := s.seedDepartments(ctx)
	if err != nil {
		return err
	}
	if err := s.seedDivisions(ctx); err != nil {
		return err
	}
	users, err := s.seedUsers(ctx, password)
	if err != nil {
		return err
	}
	if err := s.seedSLARules(ctx, departments); err != nil {
		return err
	}
	if withSamples {
		if err := s.seedCorrespondence(ctx, users, departments); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedDepartments(ctx context.Context) ([]*domain.Department, error) {
	departments := []*domain.Department{
		{Name: "Administration", Code: "ADM", Description: strPtr("General administration and records")},
		{Name: "Finance", Code: "FIN", Description: strPtr("Budgeting, payments and procurement")},
		{Name: "Legal Affairs", Code: "LEG", Description: strPtr("Contracts, disputes and compliance")},
		{Name: "Public Relations", Code: "PR", Description: strPtr("Citizen inquiries and media")},
	}
	for _, dept := range departments {
		if err := s.departments.Create(ctx, dept); err != nil {
			return nil, err
		}
		s.logger.Info("seeded department", zap.String("name", dept.Name), zap.Int64("id", dept.ID))
	}
	return departments, nil
}

func (s *seeder) seedDivisions(ctx context.Context) error {
	divisions := []*domain.Division{
		{Name: "Head Office", Code: "HO"},
		{Name: "Northern Region", Code: "NR"},
		{Name: "Southern Region", Code: "SR"},
	}
	for _, div := range divisions {
		if err := s.divisions.Create(ctx, div); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedUsers(ctx context.Context, password string) ([]*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	users := []*domain.User{
		{Name: "System Admin", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
		{Name: "Maya Odhiambo", Email: "maya.odhiambo@example.com", Role: domain.RoleManager, Department: strPtr("Administration"), IsActive: true},
		{Name: "Tomas Jensen", Email: "tomas.jensen@example.com", Role: domain.RoleStaff, Department: strPtr("Finance"), IsActive: true},
		{Name: "Leila Haddad", Email: "leila.haddad@example.com", Role: domain.RoleStaff, Department: strPtr("Legal Affairs"), IsActive: true},
	}
	for _, user := range users {
		user.PasswordHash = &hash
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("seeded user", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	}
	return users, nil
}

func (s *seeder) seedSLARules(ctx context.Context, departments []*domain.Department) error {
	urgent := domain.PriorityUrgent
	high := domain.PriorityHigh
	complaint := domain.TypeComplaint
	inquiry := domain.TypeInquiry

	rules := []*domain.SLARule{
		{Name: "Default handling window", ResponseDays: 3, ResolutionDays: 14, IsActive: true},
		{Name: "Urgent fast track", Priority: &urgent, ResponseDays: 1, ResolutionDays: 3, IsActive: true},
		{Name: "High priority", Priority: &high, ResponseDays: 2, ResolutionDays: 7, IsActive: true},
		{Name: "Complaints", Type: &complaint, ResponseDays: 2, ResolutionDays: 10, IsActive: true},
		{Name: "Urgent complaints", Type: &complaint, Priority: &urgent, ResponseDays: 1, ResolutionDays: 2, IsActive: true},
		{Name: "PR inquiries", Type: &inquiry, DepartmentID: &departments[3].ID, ResponseDays: 2, ResolutionDays: 5, IsActive: true},
	}
	for _, rule := range rules {
		if err := s.slaRules.Create(ctx, rule); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedCorrespondence(ctx context.Context, users []*domain.User, departments []*domain.Department) error {
	now := time.Now()
	admin := users[0]
	manager := users[1]
	staff := users[2]

	items := []*domain.Correspondence{
		{
			Subject:      "Budget approval request for Q4",
			Description:  "Request for approval of the revised Q4 operating budget.",
			Type:         domain.TypeRequest,
			Priority:     domain.PriorityHigh,
			Status:       domain.StatusPending,
			SenderName:   "Ministry of Finance",
			SenderEmail:  strPtr("budget@mof.example.gov"),
			AssignedToID: &staff.ID,
			DepartmentID: &departments[1].ID,
			ReceivedDate: now.AddDate(0, 0, -2),
			DueDate:      now.AddDate(0, 0, 5),
			CreatedByID:  admin.ID,
		},
		{
			Subject:      "Complaint about delayed permit processing",
			Description:  "Citizen complaint regarding a construction permit pending for over 60 days.",
			Type:         domain.TypeComplaint,
			Priority:     domain.PriorityUrgent,
			Status:       domain.StatusInProgress,
			SenderName:   "J. Mwangi",
			SenderPhone:  strPtr("+254-700-000-123"),
			AssignedToID: &manager.ID,
			DepartmentID: &departments[0].ID,
			ReceivedDate: now.AddDate(0, 0, -5),
			DueDate:      now.AddDate(0, 0, -1),
			CreatedByID:  admin.ID,
		},
		{
			Subject:      "Inquiry on public records access",
			Description:  "Journalist inquiry about records access procedures.",
			Type:         domain.TypeInquiry,
			Priority:     domain.PriorityNormal,
			Status:       domain.StatusPending,
			SenderName:   "Daily Chronicle",
			SenderEmail:  strPtr("newsdesk@chronicle.example.com"),
			DepartmentID: &departments[3].ID,
			ReceivedDate: now.AddDate(0, 0, -1),
			DueDate:      now.AddDate(0, 0, 20),
			CreatedByID:  admin.ID,
		},
	}
	for _, item := range items {
		item.ReferenceNumber = service.GenerateReferenceNumber(now)
		if err := s.items.Create(ctx, item); err != nil {
			return err
		}
		s.logger.Info("seeded correspondence", zap.String("reference", item.ReferenceNumber))
	}
	return nil
}

func strPtr(s string) *string { return &s }
