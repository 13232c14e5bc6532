package testutil

import (
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/google/uuid"
)

// Customer options
type CustomerOption func(*domain.Customer)

func WithLastName(name string) CustomerOption {
	return func(c *domain.Customer) {
		c.LastName = name
	}
}

func WithEmail(email string) CustomerOption {
	return func(c *domain.Customer) {
		c.Email = email
	}
}

func WithAddress(address, city, postalCode string) CustomerOption {
	return func(c *domain.Customer) {
		c.Address = address
		c.City = city
		c.PostalCode = postalCode
	}
}

func NewTestCustomer(firstName string, opts ...CustomerOption) *domain.Customer {
	now := time.Now().UTC()
	c := &domain.Customer{
		ID:        uuid.New().String(),
		FirstName: firstName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Estimate options
type EstimateOption func(*domain.Estimate)

func WithCustomerID(id string) EstimateOption {
	return func(e *domain.Estimate) {
		e.CustomerID = &id
	}
}

func WithEstimateStatus(s domain.EstimateStatus) EstimateOption {
	return func(e *domain.Estimate) {
		e.Status = s
	}
}

func NewTestEstimate(title string, opts ...EstimateOption) *domain.Estimate {
	now := time.Now().UTC()
	e := &domain.Estimate{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    domain.EstimateDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Group options
type GroupOption func(*domain.GroupRecord)

func WithParentGroup(id string) GroupOption {
	return func(g *domain.GroupRecord) {
		g.ParentGroupID = &id
	}
}

func WithGroupOrder(i int) GroupOption {
	return func(g *domain.GroupRecord) {
		g.OrderIndex = &i
	}
}

func NewTestGroup(estimateID, name string, opts ...GroupOption) domain.GroupRecord {
	now := time.Now().UTC()
	g := domain.GroupRecord{
		ID:         uuid.New().String(),
		EstimateID: estimateID,
		Name:       name,
		OrderIndex: domain.IntPtr(0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// Item options
type ItemOption func(*domain.ItemRecord)

func InGroup(id string) ItemOption {
	return func(it *domain.ItemRecord) {
		it.GroupID = &id
	}
}

func WithQuantity(q float64) ItemOption {
	return func(it *domain.ItemRecord) {
		it.Quantity = q
	}
}

// WithCosts sets the material and labor cost per unit.
func WithCosts(material, labor float64) ItemOption {
	return func(it *domain.ItemRecord) {
		it.MaterialCost = &material
		it.LaborCost = &labor
	}
}

func WithItemOrder(i int) ItemOption {
	return func(it *domain.ItemRecord) {
		it.OrderIndex = &i
	}
}

// WithCatalogItem marks the item as taken from the costbook.
func WithCatalogItem(costbookID string) ItemOption {
	return func(it *domain.ItemRecord) {
		it.CostbookItemID = &costbookID
	}
}

func NewTestItem(estimateID, description string, opts ...ItemOption) domain.ItemRecord {
	now := time.Now().UTC()
	it := domain.ItemRecord{
		ID:          uuid.New().String(),
		EstimateID:  estimateID,
		Description: description,
		Quantity:    1,
		Unit:        "ea",
		OrderIndex:  domain.IntPtr(0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}
