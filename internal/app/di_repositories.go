package app

import (
	"fmt"

	abacRepository "github.com/allisson/sentinel/internal/abac/repository"
	abacUseCase "github.com/allisson/sentinel/internal/abac/usecase"
	auditRepository "github.com/allisson/sentinel/internal/audit/repository"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
	clearanceRepository "github.com/allisson/sentinel/internal/clearance/repository"
	clearanceUseCase "github.com/allisson/sentinel/internal/clearance/usecase"
	dacRepository "github.com/allisson/sentinel/internal/dac/repository"
	dacUseCase "github.com/allisson/sentinel/internal/dac/usecase"
	"github.com/allisson/sentinel/internal/database"
	outboxRepository "github.com/allisson/sentinel/internal/outbox/repository"
	outboxUseCase "github.com/allisson/sentinel/internal/outbox/usecase"
	rbacRepository "github.com/allisson/sentinel/internal/rbac/repository"
	rbacUseCase "github.com/allisson/sentinel/internal/rbac/usecase"
	resourceRepository "github.com/allisson/sentinel/internal/resource/repository"
	resourceUseCase "github.com/allisson/sentinel/internal/resource/usecase"
	rubacRepository "github.com/allisson/sentinel/internal/rubac/repository"
	rubacUseCase "github.com/allisson/sentinel/internal/rubac/usecase"
)

// repositories groups the driver specific persistence adapters.
type repositories struct {
	audit      auditUseCase.AuditRepository
	outbox     outboxUseCase.OutboxEventRepository
	resource   resourceUseCase.ResourceRepository
	clearance  clearanceUseCase.ClearanceRepository
	escalation clearanceUseCase.EscalationRepository
	role       rbacUseCase.RoleRepository
	assignment rbacUseCase.AssignmentRepository
	request    rbacUseCase.RequestRepository
	permission dacUseCase.PermissionRepository
	transfer   dacUseCase.TransferRepository
	link       dacUseCase.LinkRepository
	policy     abacUseCase.PolicyRepository
	attribute  abacUseCase.AttributeRepository
	rule       rubacUseCase.RuleRepository
	holiday    rubacUseCase.HolidayRepository
	device     rubacUseCase.DeviceRepository
}

// repos returns the repositories matching the configured database driver.
func (c *Container) repos() (*repositories, error) {
	err := c.resolve("repositories", &c.repositoriesInit, func() (err error) {
		c.repositories, err = c.initRepositories()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.repositories, nil
}

// initRepositories selects the appropriate repositories based on the database driver.
func (c *Container) initRepositories() (*repositories, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for repositories: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return &repositories{
			audit:      auditRepository.NewMySQLAuditRepository(db),
			outbox:     outboxRepository.NewMySQLOutboxEventRepository(db),
			resource:   resourceRepository.NewMySQLResourceRepository(db),
			clearance:  clearanceRepository.NewMySQLClearanceRepository(db),
			escalation: clearanceRepository.NewMySQLEscalationRepository(db),
			role:       rbacRepository.NewMySQLRoleRepository(db),
			assignment: rbacRepository.NewMySQLAssignmentRepository(db),
			request:    rbacRepository.NewMySQLRequestRepository(db),
			permission: dacRepository.NewMySQLPermissionRepository(db),
			transfer:   dacRepository.NewMySQLTransferRepository(db),
			link:       dacRepository.NewMySQLLinkRepository(db),
			policy:     abacRepository.NewMySQLPolicyRepository(db),
			attribute:  abacRepository.NewMySQLAttributeRepository(db),
			rule:       rubacRepository.NewMySQLRuleRepository(db),
			holiday:    rubacRepository.NewMySQLHolidayRepository(db),
			device:     rubacRepository.NewMySQLDeviceRepository(db),
		}, nil
	case database.DriverPostgres:
		return &repositories{
			audit:      auditRepository.NewPostgreSQLAuditRepository(db),
			outbox:     outboxRepository.NewPostgreSQLOutboxEventRepository(db),
			resource:   resourceRepository.NewPostgreSQLResourceRepository(db),
			clearance:  clearanceRepository.NewPostgreSQLClearanceRepository(db),
			escalation: clearanceRepository.NewPostgreSQLEscalationRepository(db),
			role:       rbacRepository.NewPostgreSQLRoleRepository(db),
			assignment: rbacRepository.NewPostgreSQLAssignmentRepository(db),
			request:    rbacRepository.NewPostgreSQLRequestRepository(db),
			permission: dacRepository.NewPostgreSQLPermissionRepository(db),
			transfer:   dacRepository.NewPostgreSQLTransferRepository(db),
			link:       dacRepository.NewPostgreSQLLinkRepository(db),
			policy:     abacRepository.NewPostgreSQLPolicyRepository(db),
			attribute:  abacRepository.NewPostgreSQLAttributeRepository(db),
			rule:       rubacRepository.NewPostgreSQLRuleRepository(db),
			holiday:    rubacRepository.NewPostgreSQLHolidayRepository(db),
			device:     rubacRepository.NewPostgreSQLDeviceRepository(db),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
