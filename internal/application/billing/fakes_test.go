package billing_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/access"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con transacciones por snapshot
// ──────────────────────────────────────────────────────────────────────────────

type memData struct {
	customers  map[string]entity.Customer
	properties map[string]entity.Property
	estimates  map[string]entity.Estimate
	estItems   map[string][]entity.LineItem
	activity   map[string][]entity.ActivityEntry
	invoices   map[string]entity.Invoice
	invItems   map[string][]entity.LineItem
	payments   map[string]entity.Payment
}

func (d memData) clone() memData {
	c := memData{
		customers:  maps.Clone(d.customers),
		properties: maps.Clone(d.properties),
		estimates:  maps.Clone(d.estimates),
		estItems:   make(map[string][]entity.LineItem, len(d.estItems)),
		activity:   make(map[string][]entity.ActivityEntry, len(d.activity)),
		invoices:   maps.Clone(d.invoices),
		invItems:   make(map[string][]entity.LineItem, len(d.invItems)),
		payments:   maps.Clone(d.payments),
	}
	for k, v := range d.estItems {
		c.estItems[k] = slices.Clone(v)
	}
	for k, v := range d.activity {
		c.activity[k] = slices.Clone(v)
	}
	for k, v := range d.invItems {
		c.invItems[k] = slices.Clone(v)
	}
	return c
}

type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data memData

	// failInvoiceItems simula un fallo al insertar líneas de factura.
	failInvoiceItems error
}

func newMemStore() *memStore {
	return &memStore{data: memData{
		customers:  map[string]entity.Customer{},
		properties: map[string]entity.Property{},
		estimates:  map[string]entity.Estimate{},
		estItems:   map[string][]entity.LineItem{},
		activity:   map[string][]entity.ActivityEntry{},
		invoices:   map[string]entity.Invoice{},
		invItems:   map[string][]entity.LineItem{},
		payments:   map[string]entity.Payment{},
	}}
}

func (s *memStore) repos() billing.Repos {
	return billing.Repos{
		Customers:  memCustomers{s},
		Properties: memProperties{s},
		Estimates:  memEstimates{s},
		Invoices:   memInvoices{s},
		Payments:   memPayments{s},
	}
}

// RunBilling serializa las transacciones y restaura el snapshot si fn falla.
func (s *memStore) RunBilling(ctx context.Context, fn func(r billing.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.repos()); err != nil {
		s.mu.Lock()
		s.data = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) OwnerOf(_ context.Context, kind access.ResourceKind, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case access.ResourceCustomer:
		if c, ok := s.data.customers[id]; ok {
			return c.ID, nil
		}
	case access.ResourceProperty:
		if p, ok := s.data.properties[id]; ok {
			return p.CustomerID, nil
		}
	case access.ResourceEstimate:
		if e, ok := s.data.estimates[id]; ok {
			return e.CustomerID, nil
		}
	case access.ResourceInvoice:
		if inv, ok := s.data.invoices[id]; ok {
			return inv.CustomerID, nil
		}
	case access.ResourcePayment:
		if p, ok := s.data.payments[id]; ok {
			if inv, ok := s.data.invoices[p.InvoiceID]; ok {
				return inv.CustomerID, nil
			}
		}
	}
	return "", domain.ErrNotFound
}

func (s *memStore) invoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.invoices)
}

func (s *memStore) invoice(id string) entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.invoices[id]
}

func (s *memStore) invoiceItems(id string) []entity.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.invItems[id]
}

func (s *memStore) estimate(id string) entity.Estimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.estimates[id]
}

func page[T any](list []T, p repository.Page) []T {
	if p.Offset >= len(list) {
		return nil
	}
	list = list[p.Offset:]
	if p.Limit > 0 && p.Limit < len(list) {
		list = list[:p.Limit]
	}
	return list
}

// maxNumber replica en memoria la consulta MAX(substring(number ...)) del repositorio.
func maxNumber(prefix string, numbers []string) int64 {
	var top int64
	for _, n := range numbers {
		if v, ok := parseNumber(prefix, n); ok && v > top {
			top = v
		}
	}
	return top
}

func parseNumber(prefix, number string) (int64, bool) {
	rest, ok := strings.CutPrefix(number, prefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ── clientes ─────────────────────────────────────────────────────────────────

type memCustomers struct{ s *memStore }

func (r memCustomers) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r memCustomers) List(_ context.Context, p repository.Page) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Customer, 0, len(r.s.data.customers))
	for _, c := range r.s.data.customers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, p), nil
}

func (r memCustomers) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.customers[c.ID] = *c
	return nil
}

func (r memCustomers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.customers, id)
	for pid, p := range r.s.data.properties {
		if p.CustomerID == id {
			delete(r.s.data.properties, pid)
		}
	}
	for eid, e := range r.s.data.estimates {
		if e.CustomerID == id {
			delete(r.s.data.estimates, eid)
			delete(r.s.data.estItems, eid)
			delete(r.s.data.activity, eid)
		}
	}
	return nil
}

func (r memCustomers) CountInvoices(_ context.Context, customerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, inv := range r.s.data.invoices {
		if inv.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

// ── propiedades ──────────────────────────────────────────────────────────────

type memProperties struct{ s *memStore }

func (r memProperties) Create(_ context.Context, p *entity.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.properties[p.ID] = *p
	return nil
}

func (r memProperties) GetByID(_ context.Context, id string) (*entity.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.properties[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memProperties) ListByCustomer(_ context.Context, customerID string) ([]*entity.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Property
	for _, p := range r.s.data.properties {
		p := p
		if p.CustomerID == customerID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memProperties) Update(_ context.Context, p *entity.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.properties[p.ID] = *p
	return nil
}

func (r memProperties) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.properties, id)
	return nil
}

func (r memProperties) CountInvoices(_ context.Context, propertyID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, inv := range r.s.data.invoices {
		if inv.PropertyID != nil && *inv.PropertyID == propertyID {
			n++
		}
	}
	return n, nil
}

// ── presupuestos ─────────────────────────────────────────────────────────────

type memEstimates struct{ s *memStore }

func (r memEstimates) Create(_ context.Context, e *entity.Estimate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.data.estimates {
		if other.Number == e.Number || other.PublicToken == e.PublicToken {
			return domain.ErrConflict
		}
	}
	r.s.data.estimates[e.ID] = *e
	return nil
}

func (r memEstimates) GetByID(_ context.Context, id string) (*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.estimates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r memEstimates) GetByToken(_ context.Context, token string) (*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.data.estimates {
		if e.PublicToken == token {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memEstimates) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.GetByID(ctx, id)
}

func (r memEstimates) List(_ context.Context, f repository.EstimateFilter) ([]*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Estimate
	for _, e := range r.s.data.estimates {
		e := e
		if f.CustomerID != "" && e.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, f.Page), nil
}

func (r memEstimates) Update(_ context.Context, e *entity.Estimate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.estimates[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	e.ConvertedInvoiceID = cur.ConvertedInvoiceID
	r.s.data.estimates[e.ID] = *e
	return nil
}

func (r memEstimates) UpdateStatus(_ context.Context, id string, status entity.EstimateStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.estimates[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	r.s.data.estimates[id] = e
	return nil
}

func (r memEstimates) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.estimates, id)
	delete(r.s.data.estItems, id)
	delete(r.s.data.activity, id)
	return nil
}

func (r memEstimates) ReplaceItems(_ context.Context, id string, items []entity.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.estItems[id] = slices.Clone(items)
	return nil
}

func (r memEstimates) ListItems(_ context.Context, id string) ([]entity.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.data.estItems[id]), nil
}

func (r memEstimates) MaxNumber(_ context.Context, prefix string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	numbers := make([]string, 0, len(r.s.data.estimates))
	for _, e := range r.s.data.estimates {
		numbers = append(numbers, e.Number)
	}
	return maxNumber(prefix, numbers), nil
}

func (r memEstimates) SetConvertedInvoice(_ context.Context, estimateID, invoiceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.estimates[estimateID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.ConvertedInvoiceID != nil {
		return domain.InvalidState("ya convertido")
	}
	e.ConvertedInvoiceID = &invoiceID
	r.s.data.estimates[estimateID] = e
	return nil
}

func (r memEstimates) AppendActivity(_ context.Context, a *entity.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.activity[a.EstimateID] = append(r.s.data.activity[a.EstimateID], *a)
	return nil
}

func (r memEstimates) ListActivity(_ context.Context, id string) ([]entity.ActivityEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.data.activity[id]), nil
}

func (r memEstimates) ListOverdue(_ context.Context, today time.Time) ([]*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Estimate
	for _, e := range r.s.data.estimates {
		e := e
		if (e.Status == entity.EstimateStatusDraft || e.Status == entity.EstimateStatusSent) && e.ExpiresDate.Before(today) {
			out = append(out, &e)
		}
	}
	return out, nil
}

// ── facturas ─────────────────────────────────────────────────────────────────

type memInvoices struct{ s *memStore }

func (r memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.data.invoices {
		if other.Number == inv.Number || other.PublicToken == inv.PublicToken {
			return domain.ErrConflict
		}
	}
	r.s.data.invoices[inv.ID] = *inv
	return nil
}

func (r memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.data.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (r memInvoices) GetByToken(_ context.Context, token string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.data.invoices {
		if inv.PublicToken == token {
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memInvoices) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r memInvoices) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.data.invoices {
		inv := inv
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, f.Page), nil
}

func (r memInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.invoices[inv.ID] = *inv
	return nil
}

func (r memInvoices) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.data.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	r.s.data.invoices[id] = inv
	return nil
}

func (r memInvoices) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.invoices, id)
	delete(r.s.data.invItems, id)
	for pid, p := range r.s.data.payments {
		if p.InvoiceID == id {
			delete(r.s.data.payments, pid)
		}
	}
	return nil
}

func (r memInvoices) ReplaceItems(_ context.Context, id string, items []entity.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInvoiceItems != nil {
		// la primera línea entra y la segunda falla, como un error a mitad del bucle
		if len(items) > 0 {
			r.s.data.invItems[id] = slices.Clone(items[:1])
		}
		return r.s.failInvoiceItems
	}
	r.s.data.invItems[id] = slices.Clone(items)
	return nil
}

func (r memInvoices) ListItems(_ context.Context, id string) ([]entity.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.data.invItems[id]), nil
}

func (r memInvoices) MaxNumber(_ context.Context, prefix string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	numbers := make([]string, 0, len(r.s.data.invoices))
	for _, inv := range r.s.data.invoices {
		numbers = append(numbers, inv.Number)
	}
	return maxNumber(prefix, numbers), nil
}

// ── pagos ────────────────────────────────────────────────────────────────────

type memPayments struct{ s *memStore }

func (r memPayments) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.invoices[p.InvoiceID]; !ok {
		return errors.New("violación de clave foránea invoice_id")
	}
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r memPayments) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memPayments) ListByInvoice(_ context.Context, invoiceID string) ([]entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.s.data.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memPayments) Update(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r memPayments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.payments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.payments, id)
	return nil
}

func (r memPayments) SumByInvoice(_ context.Context, invoiceID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.s.data.payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}
