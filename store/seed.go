package store

import (
	"context"
	"time"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
)

// DemoEntities returns a small data set for one tenant: two clients with
// tickets, invoices in every stored code form, quotes and a few others.
// Client ids are filled in by Seed once the clients exist.
func DemoEntities(now time.Time) []entity.Entity {
	day := 24 * time.Hour
	at := func(ago time.Duration) time.Time { return now.Add(-ago) }

	return []entity.Entity{
		{Type: entity.Client, Name: "Acme Corporation", Code: "ACME", Email: "ops@acme.example", Status: "active", CreatedAt: at(400 * day), UpdatedAt: at(2 * day)},
		{Type: entity.Client, Name: "Globex Industries", Code: "GLBX", Email: "it@globex.example", Status: "active", CreatedAt: at(300 * day), UpdatedAt: at(40 * day)},
		{Type: entity.Ticket, Code: "T-1001", Title: "Printer offline on floor 3", Description: "Acme front desk printer", Status: "open", CreatedAt: at(3 * day), UpdatedAt: at(0)},
		{Type: entity.Ticket, Code: "T-1002", Title: "VPN drops every hour", Status: "pending", CreatedAt: at(10 * day), UpdatedAt: at(5 * day)},
		{Type: entity.Ticket, Code: "T-1003", Title: "Email migration", Status: "closed", CreatedAt: at(90 * day), UpdatedAt: at(60 * day)},
		{Type: entity.Invoice, Code: "INV-1001", Title: "March managed services", Status: "unpaid", CreatedAt: at(20 * day), UpdatedAt: at(20 * day)},
		{Type: entity.Invoice, Code: "INV1002", Title: "Hardware refresh", Status: "paid", CreatedAt: at(50 * day), UpdatedAt: at(45 * day)},
		{Type: entity.Invoice, Code: "1003", Title: "Onsite visit", Status: "unpaid", CreatedAt: at(5 * day), UpdatedAt: at(5 * day)},
		{Type: entity.Quote, Code: "QUOTE-7", Title: "Firewall upgrade", Status: "pending", CreatedAt: at(8 * day), UpdatedAt: at(8 * day)},
		{Type: entity.Quote, Code: "QUO-8", Title: "Laptop fleet", Status: "active", CreatedAt: at(15 * day), UpdatedAt: at(15 * day)},
		{Type: entity.Project, Code: "P-1", Name: "Office move", Description: "Acme relocation", Status: "active", CreatedAt: at(30 * day), UpdatedAt: at(1 * day)},
		{Type: entity.Asset, Code: "A-100", Name: "Core switch", Description: "Rack 2", Status: "active", CreatedAt: at(200 * day), UpdatedAt: at(100 * day)},
		{Type: entity.User, Name: "Dana Tech", Email: "dana@msp.example", Status: "active", CreatedAt: at(500 * day), UpdatedAt: at(10 * day)},
		{Type: entity.Contact, Name: "Wile Coyote", Email: "wile@acme.example", CreatedAt: at(100 * day), UpdatedAt: at(100 * day)},
		{Type: entity.Vendor, Name: "Parts Unlimited", Email: "sales@parts.example", CreatedAt: at(250 * day), UpdatedAt: at(250 * day)},
	}
}

// Seed inserts DemoEntities for the tenant. The first client owns the
// tickets, invoices and quotes; returns the number of inserted records.
func Seed(ctx context.Context, s *SQLStore, tenantID int64, now time.Time) (int, error) {
	records := DemoEntities(now)
	var acmeID int64
	for i := range records {
		e := &records[i]
		e.TenantID = tenantID
		if e.Type != entity.Client && e.Type != entity.User && e.Type != entity.Vendor {
			e.ClientID = acmeID
		}
		if _, err := s.Insert(ctx, e); err != nil {
			return i, errors.Wrapf(err, "seed record %d", i)
		}
		if acmeID == 0 && e.Type == entity.Client {
			acmeID = e.ID
		}
	}
	return len(records), nil
}
