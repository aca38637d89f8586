package app

import (
	"fmt"

	abacUseCase "github.com/allisson/sentinel/internal/abac/usecase"
	accessUseCase "github.com/allisson/sentinel/internal/access/usecase"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
	clearanceUseCase "github.com/allisson/sentinel/internal/clearance/usecase"
	dacService "github.com/allisson/sentinel/internal/dac/service"
	dacUseCase "github.com/allisson/sentinel/internal/dac/usecase"
	"github.com/allisson/sentinel/internal/database"
	macUseCase "github.com/allisson/sentinel/internal/mac/usecase"
	rbacUseCase "github.com/allisson/sentinel/internal/rbac/usecase"
	resourceUseCase "github.com/allisson/sentinel/internal/resource/usecase"
	rubacUseCase "github.com/allisson/sentinel/internal/rubac/usecase"
)

// ResourceUseCase returns the resource registry use case.
func (c *Container) ResourceUseCase() (resourceUseCase.ResourceUseCase, error) {
	err := c.resolve("resourceUseCase", &c.resourceUseCaseInit, func() error {
		deps, err := c.writeDeps("resource use case")
		if err != nil {
			return err
		}
		c.resourceUseCase = resourceUseCase.NewResourceUseCase(
			deps.txManager, deps.repos.resource, deps.audit, c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.resourceUseCase, nil
}

// MACUseCase returns the Bell-LaPadula evaluator over stored clearances and labels.
func (c *Container) MACUseCase() (macUseCase.MACUseCase, error) {
	err := c.resolve("macUseCase", &c.macUseCaseInit, func() error {
		repos, err := c.repos()
		if err != nil {
			return fmt.Errorf("failed to get repositories for mac use case: %w", err)
		}
		c.macUseCase = macUseCase.NewMACUseCase(repos.clearance, repos.resource, c.Clock())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.macUseCase, nil
}

// ClearanceUseCase returns the clearance lifecycle use case.
func (c *Container) ClearanceUseCase() (clearanceUseCase.ClearanceUseCase, error) {
	err := c.resolve("clearanceUseCase", &c.clearanceUseCaseInit, func() error {
		deps, err := c.writeDeps("clearance use case")
		if err != nil {
			return err
		}
		c.clearanceUseCase = clearanceUseCase.NewClearanceUseCase(
			deps.txManager,
			deps.repos.clearance,
			deps.repos.escalation,
			deps.audit,
			c.Clock(),
			c.config.ClearanceReviewInterval,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.clearanceUseCase, nil
}

// RBACUseCase returns the role based access control use case.
func (c *Container) RBACUseCase() (rbacUseCase.RBACUseCase, error) {
	err := c.resolve("rbacUseCase", &c.rbacUseCaseInit, func() error {
		deps, err := c.writeDeps("rbac use case")
		if err != nil {
			return err
		}
		c.rbacUseCase = rbacUseCase.NewRBACUseCase(
			deps.txManager,
			deps.repos.role,
			deps.repos.assignment,
			deps.repos.request,
			deps.audit,
			c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.rbacUseCase, nil
}

// PermissionUseCase returns the discretionary permission use case.
func (c *Container) PermissionUseCase() (dacUseCase.PermissionUseCase, error) {
	err := c.resolve("permissionUseCase", &c.permissionUseCaseInit, func() error {
		deps, err := c.writeDeps("permission use case")
		if err != nil {
			return err
		}
		subjects, err := c.MACUseCase()
		if err != nil {
			return fmt.Errorf("failed to get mac use case for permission use case: %w", err)
		}
		c.permissionUseCase = dacUseCase.NewPermissionUseCase(
			deps.txManager,
			deps.repos.permission,
			deps.repos.resource,
			subjects,
			deps.audit,
			c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.permissionUseCase, nil
}

// TransferUseCase returns the ownership transfer use case.
func (c *Container) TransferUseCase() (dacUseCase.TransferUseCase, error) {
	err := c.resolve("transferUseCase", &c.transferUseCaseInit, func() error {
		deps, err := c.writeDeps("transfer use case")
		if err != nil {
			return err
		}
		c.transferUseCase = dacUseCase.NewTransferUseCase(
			deps.txManager, deps.repos.transfer, deps.repos.resource, deps.audit, c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.transferUseCase, nil
}

// SharingLinkUseCase returns the sharing link use case, wrapped with metrics when enabled.
func (c *Container) SharingLinkUseCase() (dacUseCase.SharingLinkUseCase, error) {
	err := c.resolve("sharingLinkUseCase", &c.sharingLinkUseCaseInit, func() error {
		deps, err := c.writeDeps("sharing link use case")
		if err != nil {
			return err
		}
		useCase := dacUseCase.NewSharingLinkUseCase(
			deps.txManager,
			deps.repos.link,
			deps.repos.permission,
			deps.repos.resource,
			dacService.NewLinkSecrets(),
			deps.audit,
			c.Clock(),
		)
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for sharing link use case: %w", err)
			}
			useCase = dacUseCase.NewSharingLinkUseCaseWithMetrics(useCase, businessMetrics)
		}
		c.sharingLinkUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.sharingLinkUseCase, nil
}

// ABACUseCase returns the attribute based access control use case.
func (c *Container) ABACUseCase() (abacUseCase.ABACUseCase, error) {
	err := c.resolve("abacUseCase", &c.abacUseCaseInit, func() error {
		deps, err := c.writeDeps("abac use case")
		if err != nil {
			return err
		}
		c.abacUseCase = abacUseCase.NewABACUseCase(
			deps.txManager, deps.repos.policy, deps.repos.attribute, deps.audit, c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.abacUseCase, nil
}

// RuBACUseCase returns the context rule use case.
func (c *Container) RuBACUseCase() (rubacUseCase.RuBACUseCase, error) {
	err := c.resolve("rubacUseCase", &c.rubacUseCaseInit, func() error {
		deps, err := c.writeDeps("rubac use case")
		if err != nil {
			return err
		}
		c.rubacUseCase = rubacUseCase.NewRuBACUseCase(
			deps.txManager,
			deps.repos.rule,
			deps.repos.holiday,
			deps.repos.device,
			deps.audit,
			c.Clock(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.rubacUseCase, nil
}

// AccessUseCase returns the orchestrator running every model, wrapped with metrics when enabled.
func (c *Container) AccessUseCase() (accessUseCase.AccessUseCase, error) {
	err := c.resolve("accessUseCase", &c.accessUseCaseInit, func() (err error) {
		c.accessUseCase, err = c.initAccessUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.accessUseCase, nil
}

// initAccessUseCase builds one evaluator per model on top of the model use cases.
func (c *Container) initAccessUseCase() (accessUseCase.AccessUseCase, error) {
	repos, err := c.repos()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for access use case: %w", err)
	}
	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for access use case: %w", err)
	}
	rbac, err := c.RBACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rbac use case for access use case: %w", err)
	}
	mac, err := c.MACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get mac use case for access use case: %w", err)
	}
	dac, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for access use case: %w", err)
	}
	abac, err := c.ABACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get abac use case for access use case: %w", err)
	}
	rubac, err := c.RuBACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rubac use case for access use case: %w", err)
	}

	evaluators := []accessUseCase.Evaluator{
		accessUseCase.NewRBACEvaluator(rbac),
		accessUseCase.NewMACEvaluator(mac),
		accessUseCase.NewDACEvaluator(dac),
		accessUseCase.NewABACEvaluator(abac, mac, repos.resource, c.Clock()),
		accessUseCase.NewRuBACEvaluator(rubac, repos.resource),
	}
	useCase := accessUseCase.NewAccessUseCase(evaluators, audit, c.Clock())

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for access use case: %w", err)
	}
	return accessUseCase.NewAccessUseCaseWithMetrics(useCase, businessMetrics), nil
}

// writeDependencies bundles what every mutating use case needs.
type writeDependencies struct {
	txManager database.TxManager
	repos     *repositories
	audit     auditUseCase.AuditUseCase
}

// writeDeps resolves the transaction manager, repositories and audit trail for component.
func (c *Container) writeDeps(component string) (*writeDependencies, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for %s: %w", component, err)
	}
	repos, err := c.repos()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for %s: %w", component, err)
	}
	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for %s: %w", component, err)
	}
	return &writeDependencies{txManager: txManager, repos: repos, audit: audit}, nil
}
