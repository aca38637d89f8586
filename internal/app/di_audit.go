package app

import (
	"fmt"

	auditService "github.com/allisson/sentinel/internal/audit/service"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
	"github.com/allisson/sentinel/internal/outbox/publisher"
	outboxUseCase "github.com/allisson/sentinel/internal/outbox/usecase"
)

// ChainHasher returns the keyed hasher of the audit chain.
func (c *Container) ChainHasher() (auditService.ChainHasher, error) {
	err := c.resolve("chainHasher", &c.chainHasherInit, func() (err error) {
		c.chainHasher, err = c.initChainHasher()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.chainHasher, nil
}

// AuditUseCase returns the audit trail use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	err := c.resolve("auditUseCase", &c.auditUseCaseInit, func() (err error) {
		c.auditUseCase, err = c.initAuditUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.auditUseCase, nil
}

// Publisher returns the broker publisher used by the outbox worker.
func (c *Container) Publisher() (*publisher.RabbitMQPublisher, error) {
	err := c.resolve("publisher", &c.publisherInit, func() (err error) {
		c.publisher, err = publisher.NewRabbitMQPublisher(
			c.config.RabbitMQURL,
			c.config.RabbitMQExchange,
			c.Logger(),
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.publisher, nil
}

// OutboxUseCase returns the outbox worker.
func (c *Container) OutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	err := c.resolve("outboxUseCase", &c.outboxUseCaseInit, func() (err error) {
		c.outboxUseCase, err = c.initOutboxUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.outboxUseCase, nil
}

// initChainHasher loads the master key, unwrapping it through KMS when a key URI is set.
func (c *Container) initChainHasher() (auditService.ChainHasher, error) {
	masterKey, err := auditService.NewKeyLoader().Load(c.ctx, c.config.KMSKeyURI, c.config.AuditSigningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit signing key: %w", err)
	}

	hasher, err := auditService.NewChainHasher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create chain hasher: %w", err)
	}
	return hasher, nil
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit use case: %w", err)
	}

	repos, err := c.repos()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for audit use case: %w", err)
	}

	hasher, err := c.ChainHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get chain hasher for audit use case: %w", err)
	}

	return auditUseCase.NewAuditUseCase(txManager, repos.audit, repos.outbox, hasher, c.Clock()), nil
}

// initOutboxUseCase creates the outbox worker with all its dependencies.
func (c *Container) initOutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	repos, err := c.repos()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for outbox use case: %w", err)
	}

	pub, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for outbox use case: %w", err)
	}

	useCaseConfig := outboxUseCase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}
	processor := outboxUseCase.NewPublishingEventProcessor(pub, logger)

	return outboxUseCase.NewOutboxUseCase(useCaseConfig, txManager, repos.outbox, processor, c.Clock(), logger), nil
}
