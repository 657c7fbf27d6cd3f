package partner

import (
	"context"

	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	clock          shared.Clock
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, txScope shared.TransactionScope, logger *zap.Logger) *CustomerService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		txScope:      txScope,
		logger:       logger,
		clock:        shared.SystemClock,
	}
}

// SetEventPublisher sets the event publisher. Deleting a customer relies on
// it to cascade to the customer's credit lines.
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the wall clock used to evaluate licenses
func (s *CustomerService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.CustomerRank != nil {
		if err := customer.SetCustomerRank(*req.CustomerRank); err != nil {
			return nil, err
		}
	}
	if req.LicenseNumber != "" || req.LicenseValidUpto != nil {
		customer.SetLicense(req.LicenseNumber, req.LicenseValidUpto)
	}
	if req.StateCode != "" {
		customer.SetState(req.StateCode)
	}
	if req.ParentID != nil {
		if err := s.setParent(ctx, customer, req.ParentID); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, customer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code),
	)

	response := ToCustomerResponse(customer, s.clock())
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer, s.clock())
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponses(customers, s.clock()), nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	return s.mutate(ctx, tenantID, customerID, func(ctx context.Context, customer *partner.Customer) error {
		if req.Name != nil {
			if err := customer.Update(*req.Name); err != nil {
				return err
			}
		}
		if req.CustomerRank != nil {
			if err := customer.SetCustomerRank(*req.CustomerRank); err != nil {
				return err
			}
		}
		if req.StateCode != nil {
			customer.SetState(*req.StateCode)
		}
		if req.ParentID != nil {
			return s.setParent(ctx, customer, req.ParentID)
		}
		return nil
	})
}

// UpdateLicense replaces the license details. The license is not validated
// here; sales orders check it when they are created or edited.
func (s *CustomerService) UpdateLicense(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateLicenseRequest) (*CustomerResponse, error) {
	return s.mutate(ctx, tenantID, customerID, func(_ context.Context, customer *partner.Customer) error {
		customer.SetLicense(req.LicenseNumber, req.LicenseValidUpto)
		return nil
	})
}

// Delete deletes a customer together with its credit lines
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		customer.MarkDeleted()
		// dependents go first so foreign keys hold
		if err := shared.PublishPending(ctx, s.eventPublisher, customer); err != nil {
			return err
		}
		return s.customerRepo.DeleteForTenant(ctx, tenantID, customerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("customer deleted", zap.String("customer_id", customerID.String()))
	return nil
}

func (s *CustomerService) mutate(ctx context.Context, tenantID, customerID uuid.UUID, fn func(ctx context.Context, customer *partner.Customer) error) (*CustomerResponse, error) {
	var customer *partner.Customer
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		customer, err = s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if err := fn(ctx, customer); err != nil {
			return err
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, customer)
	})
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer, s.clock())
	return &response, nil
}

// setParent links customer to an existing parent. uuid.Nil clears the link.
func (s *CustomerService) setParent(ctx context.Context, customer *partner.Customer, parentID *uuid.UUID) error {
	if *parentID == uuid.Nil {
		return customer.SetParent(nil)
	}
	if _, err := s.customerRepo.FindByIDForTenant(ctx, customer.TenantID, *parentID); err != nil {
		return err
	}
	return customer.SetParent(parentID)
}
