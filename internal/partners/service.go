package partners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts party writes to the remote store.
type RepositoryPort interface {
	Insert(ctx context.Context, kind Kind, p Party) error
	Update(ctx context.Context, kind Kind, p Party) error
	Delete(ctx context.Context, kind Kind, id string) error
}

// Service owns one registry (customers or suppliers).
type Service struct {
	kind     Kind
	spec     sequence.Spec
	conn     *connectivity.State
	repo     RepositoryPort
	seq      *sequence.Generator
	mirror   mirror.View[Party]
	validate *validator.Validate
}

// NewCustomerService builds the customer registry service.
func NewCustomerService(conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[Party]) *Service {
	return newService(KindCustomer, sequence.Customer, conn, repo, seq, m)
}

// NewSupplierService builds the supplier registry service.
func NewSupplierService(conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[Party]) *Service {
	return newService(KindSupplier, sequence.Supplier, conn, repo, seq, m)
}

func newService(kind Kind, spec sequence.Spec, conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[Party]) *Service {
	return &Service{
		kind:     kind,
		spec:     spec,
		conn:     conn,
		repo:     repo,
		seq:      seq,
		mirror:   m,
		validate: validator.New(),
	}
}

// List returns the current registry snapshot (live or cached).
func (s *Service) List(ctx context.Context) []Party {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sticky subscription error, if any.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Get finds a party by id in the loaded set.
func (s *Service) Get(ctx context.Context, id string) (Party, error) {
	for _, p := range s.mirror.Items() {
		if p.ID == id {
			return p, nil
		}
	}
	return Party{}, fmt.Errorf("%s %s: %w", s.kind, id, shared.ErrNotFound)
}

// Create assigns the next display id and writes the record. The display id
// is assigned exactly once and never changes afterwards.
func (s *Service) Create(ctx context.Context, input PartyInput) (Party, error) {
	if !s.conn.Online() {
		return Party{}, shared.OfflineError(fmt.Sprintf("create a %s", s.kind))
	}
	if err := s.validateInput(input); err != nil {
		return Party{}, err
	}
	displayID, err := s.seq.Next(ctx, s.spec, time.Now())
	if err != nil {
		return Party{}, err
	}
	now := time.Now().UTC()
	p := Party{
		ID:            uuid.NewString(),
		DisplayID:     displayID,
		Name:          strings.TrimSpace(input.Name),
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		PriceType:     input.PriceType,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.kind, p); err != nil {
		return Party{}, fmt.Errorf("partners: create %s: %w", s.kind, err)
	}
	return p, nil
}

// Update rewrites the mutable fields of a record.
func (s *Service) Update(ctx context.Context, id string, input PartyInput) error {
	if !s.conn.Online() {
		return shared.OfflineError(fmt.Sprintf("edit a %s", s.kind))
	}
	if err := s.validateInput(input); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.Name = strings.TrimSpace(input.Name)
	current.ContactPerson = input.ContactPerson
	current.Phone = input.Phone
	current.Email = input.Email
	current.Address = input.Address
	current.PriceType = input.PriceType
	current.Notes = input.Notes
	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.kind, current); err != nil {
		return fmt.Errorf("partners: update %s: %w", s.kind, err)
	}
	return nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.conn.Online() {
		return shared.OfflineError(fmt.Sprintf("delete a %s", s.kind))
	}
	if err := s.repo.Delete(ctx, s.kind, id); err != nil {
		return fmt.Errorf("partners: delete %s: %w", s.kind, err)
	}
	return nil
}

func (s *Service) validateInput(input PartyInput) error {
	if err := s.validate.Struct(input); err != nil {
		issues := &shared.ValidationError{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			issues.Add("field %s failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
		return issues
	}
	return nil
}
